package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/pkg/health"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configDir     string
	enableProfile bool
	logLevel      string
	probeTimeout  time.Duration
	parallelism   int
	disabled      []string
)

// errUnhealthy makes the process exit with status 1 without printing an
// additional error.
var errUnhealthy = errors.New("at least one probe is unhealthy")

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", "/etc/mittcheck.d", "set directory to where your .hcl-configs are located")
	rootCmd.PersistentFlags().BoolVar(&enableProfile, "profile", false, "enable pprof http server")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&probeTimeout, "timeout", health.DefaultTimeout, "timeout for every single probe execution")
	rootCmd.PersistentFlags().IntVar(&parallelism, "parallel", 1, "number of probes executed at the same time")
	rootCmd.PersistentFlags().StringSliceVar(&disabled, "disable", nil, "names of probes that are reported as skipped without being executed")
}

var rootCmd = &cobra.Command{
	Use:           "mittcheck",
	Short:         "mittcheck - health check aggregator",
	Long:          "mittcheck runs a configurable set of named probes (mail, databases, brokers, storage, custom commands) and reports their health",
	Version:       Version,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return pkgerrors.Wrapf(err, "invalid log level %q", logLevel)
		}
		log.SetLevel(level)

		if enableProfile {
			go func() {
				mux := http.NewServeMux()
				mux.HandleFunc("/debug/pprof/", pprof.Index)
				mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
				mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
				mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
				mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

				listener, err := net.Listen("tcp", "127.0.0.1:0")
				if err != nil {
					log.Errorf("pprof server failed to listen: %v", err)
					return
				}
				log.Infof("Starting pprof server on http://%s/debug/pprof/", listener.Addr().String())
				err = http.Serve(listener, mux)
				if err != nil {
					log.Errorf("pprof server error: %v", err)
				}
			}()
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Warn("Running 'mittcheck' without any arguments - defaulting to 'serve'. This behaviour may change in future releases!")
		return serve.RunE(cmd, args)
	},
}

func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if err := cfg.LoadFromDir(configDir); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to load configuration from %q", configDir)
	}

	return cfg, nil
}

func healthOptions() health.Options {
	return health.Options{
		Parallelism: parallelism,
		Disabled:    disabled,
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if errors.Is(err, errUnhealthy) {
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
