package main

import (
	"fmt"

	"github.com/mittwald/mittcheck/pkg/cli"
	"github.com/mittwald/mittcheck/pkg/health"
	"github.com/spf13/cobra"
)

func init() {
	probeCmd.Flags().BoolP("json", "j", false, "Print the probe result as JSON")
	probeCmd.Flags().Bool("exit-with-status", false, "Exit with status code 0 if the probe is healthy, 1 if not")

	ctlCommand.AddCommand(&probeCmd)
}

var probeCmd = cobra.Command{
	Use:        "probe <probe>",
	Args:       cobra.ExactArgs(1),
	ArgAliases: []string{"probe"},
	Short:      "Run a single probe",
	Long:       "This command runs a single named probe of a running mittcheck and shows its result.",

	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient := cli.NewAPIClient(apiAddress)

		resp := apiClient.Probe(args[0])
		if resp.Err() != nil {
			return fmt.Errorf("failed to run probe %s: %w", args[0], resp.Err())
		}

		if printJSON, _ := cmd.Flags().GetBool("json"); printJSON {
			if err := resp.Print(); err != nil {
				return fmt.Errorf("failed to print output: %w", err)
			}
		} else {
			fmt.Println(styleListItem.Render(cli.ProbeLine(&resp.Body)))
		}

		if exitWithStatus, _ := cmd.Flags().GetBool("exit-with-status"); exitWithStatus && resp.Body.Status == health.StatusUnhealthy {
			return exitError(1)
		}

		return nil
	},
}
