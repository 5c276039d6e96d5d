package probe

import (
	"fmt"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/pkg/health"
	"github.com/pkg/errors"
)

// Build creates the probe described by a single probe block. Exactly one
// probe kind must be configured.
func Build(cfg *config.Probe) (Probe, error) {
	var (
		probes []Probe
		err    error
	)

	add := func(p Probe, buildErr error) {
		if buildErr != nil && err == nil {
			err = buildErr
		}
		probes = append(probes, p)
	}

	if cfg.Filesystem != "" {
		add(&filesystemProbe{path: cfg.Filesystem}, nil)
	}
	if cfg.MySQL != nil {
		add(NewMySQLProbe(cfg.MySQL), nil)
	}
	if cfg.SQLite != nil {
		add(NewSQLiteProbe(cfg.SQLite), nil)
	}
	if cfg.Redis != nil {
		add(NewRedisProbe(cfg.Redis), nil)
	}
	if cfg.MongoDB != nil {
		add(NewMongoDBProbe(cfg.MongoDB))
	}
	if cfg.Amqp != nil {
		add(NewAmqpProbe(cfg.Amqp), nil)
	}
	if cfg.HTTP != nil {
		add(NewHttpProbe(cfg.HTTP))
	}
	if cfg.SMTP != nil {
		add(NewSmtpProbe(cfg.SMTP), nil)
	}
	if cfg.S3 != nil {
		add(NewS3Probe(cfg.S3))
	}
	if cfg.Disk != nil {
		add(NewDiskProbe(cfg.Disk))
	}
	if cfg.Command != nil {
		add(NewCommandProbe(cfg.Command))
	}

	if err != nil {
		return nil, errors.Wrapf(err, "invalid probe %q", cfg.Name)
	}

	switch len(probes) {
	case 0:
		return nil, fmt.Errorf("probe %q has no probe kind configured", cfg.Name)
	case 1:
		return probes[0], nil
	default:
		return nil, fmt.Errorf("probe %q configures %d probe kinds, expected exactly one", cfg.Name, len(probes))
	}
}

// NewAggregator builds all configured probes and registers them with a new
// aggregator. Probes with `enabled = false` are registered, but skipped.
func NewAggregator(cfg *config.Config, opts health.Options) (*health.Aggregator, error) {
	return newAggregator(cfg.Probes, health.Options{
		Parallelism: opts.Parallelism,
		Disabled:    append(cfg.DisabledProbes(), opts.Disabled...),
	})
}

// newWaitAggregator contains only the enabled probes marked with `wait = true`.
func newWaitAggregator(cfg *config.Config, opts health.Options) (*health.Aggregator, error) {
	disabled := make(map[string]bool, len(opts.Disabled))
	for _, name := range opts.Disabled {
		disabled[name] = true
	}

	var waitProbes []config.Probe
	for i := range cfg.Probes {
		if cfg.Probes[i].Wait && cfg.Probes[i].IsEnabled() && !disabled[cfg.Probes[i].Name] {
			waitProbes = append(waitProbes, cfg.Probes[i])
		}
	}

	return newAggregator(waitProbes, health.Options{Parallelism: opts.Parallelism})
}

func newAggregator(probes []config.Probe, opts health.Options) (*health.Aggregator, error) {
	agg := health.NewAggregator(opts)

	for i := range probes {
		p, err := Build(&probes[i])
		if err != nil {
			return nil, err
		}

		if err := agg.Register(probes[i].Name, asHealthProbe(p)); err != nil {
			return nil, err
		}
	}

	return agg, nil
}
