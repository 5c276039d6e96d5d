package cmd

import (
	"context"

	"github.com/mittwald/mittcheck/pkg/metrics"
	"github.com/mittwald/mittcheck/pkg/pidfile"
	"github.com/mittwald/mittcheck/pkg/probe"
	"github.com/mittwald/mittcheck/pkg/proc"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	DefaultListenAddress = ":9102"
	DefaultAPIAddress    = "http://localhost:9102"
)

var (
	listenAddress string
	pidFile       string
	enableMetrics bool
)

func init() {
	rootCmd.AddCommand(serve)
	serve.PersistentFlags().StringVarP(&listenAddress, "listen", "l", DefaultListenAddress, "address to listen for probe requests; use unix:///path/to.sock for a unix socket")
	serve.PersistentFlags().StringVarP(&pidFile, "pidfile", "", "", "write mittchecks process id to this file")
	serve.PersistentFlags().BoolVar(&enableMetrics, "metrics", true, "expose prometheus metrics on /metrics")
}

var serve = &cobra.Command{
	Use:          "serve",
	Aliases:      []string{"up"},
	Short:        "Serve the health endpoint",
	Long:         "This sub-command starts the probe server, waits for all readiness probes, runs the boot jobs and keeps serving until it is terminated",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		pidFileHandle := pidfile.New(pidFile)

		if err := pidFileHandle.Acquire(); err != nil {
			return errors.Wrapf(err, "failed to write pid file to %q", pidFile)
		}

		defer func() {
			if err := pidFileHandle.Release(); err != nil {
				log.Errorf("error while cleaning up the pid file: %s", err)
			}
		}()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts := probe.HandlerOptions{
			Timeout:     probeTimeout,
			Parallelism: parallelism,
			Disabled:    disabled,
		}
		if enableMetrics {
			opts.Metrics = metrics.NewRecorder()
		}

		probeHandler, err := probe.NewProbeHandler(cfg, opts)
		if err != nil {
			return errors.Wrap(err, "failed to set up probes")
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		serverErr := make(chan error, 1)
		go func() {
			err := probe.RunProbeServer(ctx, probeHandler, listenAddress)
			if err != nil {
				cancel()
			}
			serverErr <- err
		}()

		if err := initialize(ctx, probeHandler, proc.NewRunner(cfg)); err != nil {
			cancel()
			if srvErr := <-serverErr; srvErr != nil {
				return errors.Wrap(srvErr, "probe server stopped with error")
			}
			if cmd.Context().Err() != nil {
				log.Info("terminated during initialization")
				return nil
			}
			return err
		}

		if err := <-serverErr; err != nil {
			return errors.Wrap(err, "probe server stopped with error")
		}

		log.Info("probe server stopped without error")
		return nil
	},
}

func initialize(ctx context.Context, probeHandler *probe.Handler, runner *proc.Runner) error {
	if err := probeHandler.Wait(ctx); err != nil {
		return errors.Wrap(err, "probe handler failed while waiting for readiness")
	}

	if err := runner.Boot(ctx); err != nil {
		return errors.Wrap(err, "runner error'ed during initialization")
	}

	log.Info("initialization complete")
	return nil
}
