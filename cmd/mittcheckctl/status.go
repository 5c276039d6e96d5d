package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mittwald/mittcheck/pkg/cli"
	"github.com/mittwald/mittcheck/pkg/health"
	"github.com/spf13/cobra"
)

func init() {
	statusCmd.Flags().BoolP("json", "j", false, "Print the report as JSON")
	statusCmd.Flags().Bool("exit-with-status", false, "Exit with status code 0 if all probes are healthy, 1 if not")

	ctlCommand.AddCommand(&statusCmd)
}

var statusCmd = cobra.Command{
	Use:   "status",
	Args:  cobra.NoArgs,
	Short: "Show the health report",
	Long:  "This command runs all probes of a running mittcheck once and shows the resulting report.",

	RunE: func(cmd *cobra.Command, args []string) error {
		apiClient := cli.NewAPIClient(apiAddress)

		resp := apiClient.Status()
		if resp.Err() != nil {
			return fmt.Errorf("failed to get health report: %w", resp.Err())
		}

		if printJSON, _ := cmd.Flags().GetBool("json"); printJSON {
			if err := resp.Print(); err != nil {
				return fmt.Errorf("failed to print output: %w", err)
			}
		} else {
			fmt.Println(cli.RenderReport(&resp.Body))
			fmt.Println(styleInfoBox.Render(
				lipgloss.JoinVertical(
					lipgloss.Left,
					"To check a single probe or to follow the report, you can use the following commands:",
					styleCommandBlock.Render(lipgloss.JoinVertical(lipgloss.Left,
						styleCommand.Render(cmd.Root().CommandPath()+" probe")+styleParam.Render(" <probe>"),
						styleCommand.Render(cmd.Root().CommandPath()+" watch"),
					)),
				),
			))
		}

		if exitWithStatus, _ := cmd.Flags().GetBool("exit-with-status"); exitWithStatus && resp.Body.Status == health.StatusUnhealthy {
			return exitError(1)
		}

		return nil
	},
}
