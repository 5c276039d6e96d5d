package main

import (
	"fmt"
	"time"

	"github.com/mittwald/mittcheck/pkg/cli"
	"github.com/mittwald/mittcheck/pkg/probe"
	"github.com/spf13/cobra"
)

var (
	watchInterval time.Duration
	watchJSON     bool
)

func init() {
	watchCommand.Flags().DurationVarP(&watchInterval, "interval", "i", 5*time.Second, "time between two reports (at least 1s)")
	watchCommand.Flags().BoolVarP(&watchJSON, "json", "j", false, "print every report as JSON")
	ctlCommand.AddCommand(watchCommand)
}

var watchCommand = &cobra.Command{
	Use:   "watch",
	Args:  cobra.NoArgs,
	Short: "Follow the health report",
	Long:  "This command keeps a connection to a running mittcheck open and prints a new report every interval.",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient := cli.NewAPIClient(apiAddress)

		render := func(status *probe.StatusResponse) (string, error) {
			if watchJSON {
				return cli.PrettyJSON(status)
			}
			return cli.RenderReport(status), nil
		}

		resp := apiClient.Watch(watchInterval, render)
		if resp.Err() != nil {
			return resp.Err()
		}

		if err := resp.Print(); err != nil {
			return fmt.Errorf("failed to follow health report: %w", err)
		}

		return nil
	},
}
