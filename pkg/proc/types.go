package proc

import (
	"context"
	"os/exec"
	"time"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/pkg/errors"
)

const (
	defaultBootJobTimeout = 30 * time.Second
)

type Runner struct {
	Config *config.Config

	bootJobs []*BootJob
}

// BootJob is a one-shot command (e.g. a database migration) that has to
// complete before the probe server is considered up.
type BootJob struct {
	Config *config.BootJob

	cmd           *exec.Cmd
	cancelProcess context.CancelFunc
	timeout       time.Duration
}

func NewBootJob(c *config.BootJob) (*BootJob, error) {
	bj := BootJob{
		Config:  c,
		timeout: defaultBootJobTimeout,
	}

	if c.Command == "" {
		return nil, errors.Errorf("boot job %q has no command", c.Name)
	}

	if ts := c.Timeout; ts != "" {
		t, err := time.ParseDuration(ts)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid timeout for boot job %q", c.Name)
		}

		bj.timeout = t
	}

	return &bj, nil
}

func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		Config:   cfg,
		bootJobs: make([]*BootJob, 0, len(cfg.BootJobs)),
	}
}
