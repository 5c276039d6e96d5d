package proc

import (
	"context"
	"os"
	"os/exec"

	"github.com/mittwald/mittcheck/internal/helper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func (job *BootJob) Run(ctx context.Context) error {
	l := log.WithField("job.name", job.Config.Name)

	if job.timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.timeout)
		defer cancel()
	}

	ctx, job.cancelProcess = context.WithCancel(ctx)
	defer job.cancelProcess()

	job.cmd = exec.CommandContext(ctx, helper.ResolveEnv(job.Config.Command), helper.ResolveEnvSlice(job.Config.Args)...)
	job.cmd.Stdout = os.Stdout
	job.cmd.Stderr = os.Stderr
	job.cmd.Dir = job.Config.WorkingDirectory
	if job.Config.Env != nil {
		job.cmd.Env = append(os.Environ(), helper.ResolveEnvSlice(job.Config.Env)...)
	}

	l.Info("starting boot job")

	if err := job.cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start boot job '%s'", job.Config.Name)
	}

	err := job.cmd.Wait()
	if err != nil {
		l.WithError(err).Error("job exited with error")
	} else {
		l.Info("boot job completed")
	}

	if ctx.Err() != nil { // execution cancelled or timed out
		if job.Config.CanFail {
			l.WithError(ctx.Err()).Warn("job was interrupted, but is allowed to fail")
			return nil
		}
		return errors.Wrapf(ctx.Err(), "boot job '%s' did not complete", job.Config.Name)
	}

	if err != nil {
		if job.Config.CanFail {
			l.WithError(err).Warn("job failed, but is allowed to fail")
			return nil
		}

		return errors.Wrapf(err, "error while exec'ing boot job '%s'", job.Config.Name)
	}

	return nil
}
