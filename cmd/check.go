package cmd

import (
	"context"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/pkg/cli"
	"github.com/mittwald/mittcheck/pkg/health"
	"github.com/mittwald/mittcheck/pkg/probe"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	JSON     bool
	Template string
	Timeout  time.Duration
	Health   health.Options
}

func init() {
	check.Flags().BoolP("json", "j", false, "print the report as JSON")
	check.Flags().StringP("template", "t", "", "render the report with a Go template (sprig functions available)")

	rootCmd.AddCommand(check)
}

var check = &cobra.Command{
	Use:          "check",
	Short:        "Run all probes once",
	Long:         "This sub-command runs all configured probes once, prints the report and exits with status code 1 if any probe is unhealthy",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts := checkOptions{
			Timeout: probeTimeout,
			Health:  healthOptions(),
		}
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Template, _ = cmd.Flags().GetString("template")

		status, err := runCheck(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		if err != nil {
			return err
		}

		if status.Status == health.StatusUnhealthy {
			return errUnhealthy
		}

		return nil
	},
}

func runCheck(ctx context.Context, out io.Writer, cfg *config.Config, opts checkOptions) (*probe.StatusResponse, error) {
	var tpl *template.Template
	if opts.Template != "" {
		var err error
		if tpl, err = cli.ParseTemplate(opts.Template); err != nil {
			return nil, err
		}
	}

	aggregator, err := probe.NewAggregator(cfg, opts.Health)
	if err != nil {
		return nil, err
	}

	status := probe.NewStatusResponse(aggregator.RunAll(ctx, opts.Timeout))

	switch {
	case tpl != nil:
		err = cli.RenderTemplate(out, tpl, status)
	case opts.JSON:
		var body []byte
		body, err = cli.IndentJSON(status)
		if err == nil {
			_, err = out.Write(body)
		}
	default:
		_, err = fmt.Fprintln(out, cli.RenderReport(status))
	}

	return status, err
}
