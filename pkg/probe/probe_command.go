package probe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/internal/helper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	maxCommandOutput = 256
	commandWaitDelay = 500 * time.Millisecond
)

// commandProbe runs a custom check command. Exit code 0 means healthy.
type commandProbe struct {
	command    string
	args       []string
	env        []string
	workingDir string
}

func NewCommandProbe(cfg *config.Command) (*commandProbe, error) {
	if cfg.Command == "" {
		return nil, errors.New("command probe requires a command")
	}

	return &commandProbe{
		command:    helper.ResolveEnv(cfg.Command),
		args:       helper.ResolveEnvSlice(cfg.Args),
		env:        helper.ResolveEnvSlice(cfg.Env),
		workingDir: helper.ResolveEnv(cfg.WorkingDirectory),
	}, nil
}

func (c *commandProbe) Exec(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.command, c.args...)
	cmd.Dir = c.workingDir
	cmd.WaitDelay = commandWaitDelay
	if c.env != nil {
		cmd.Env = append(os.Environ(), c.env...)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		output := strings.TrimSpace(out.String())
		if len(output) > maxCommandOutput {
			output = output[:maxCommandOutput] + "..."
		}
		if output == "" {
			return errors.Wrapf(err, "check command %q failed", c.command)
		}
		return fmt.Errorf("check command %q failed: %s: %s", c.command, err, output)
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "command", "status": "alive", "command": c.command}).Debug()

	return nil
}
