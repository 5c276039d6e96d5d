package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/pkg/health"
	"github.com/mittwald/mittcheck/pkg/metrics"
	"github.com/mittwald/mittcheck/pkg/probe"
	"github.com/mittwald/mittcheck/pkg/proc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "probes.hcl"), []byte(contents), 0o644))
	return dir
}

func loadTestConfig(t *testing.T, contents string) *config.Config {
	cfg := &config.Config{}
	require.NoError(t, cfg.LoadFromDir(writeConfig(t, contents)))
	return cfg
}

func TestRunCheckHealthy(t *testing.T) {
	data := t.TempDir()
	cfg := loadTestConfig(t, `
probe "data" {
  filesystem = "`+data+`"
}

probe "custom" {
  command {
    command = "/bin/sh"
    args    = ["-c", "exit 0"]
  }
}
`)

	out := bytes.Buffer{}
	status, err := runCheck(context.Background(), &out, cfg, checkOptions{Timeout: time.Second})

	require.NoError(t, err)
	assert.Equal(t, health.StatusHealthy, status.Status)
	assert.Contains(t, out.String(), "2 probes")
	assert.Contains(t, out.String(), "data")
	assert.Contains(t, out.String(), "custom")
}

func TestRunCheckJSON(t *testing.T) {
	cfg := loadTestConfig(t, `
probe "data" {
  filesystem = "/does/not/exist"
}

probe "optional" {
  enabled    = false
  filesystem = "/does/not/exist"
}
`)

	out := bytes.Buffer{}
	status, err := runCheck(context.Background(), &out, cfg, checkOptions{JSON: true, Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, health.StatusUnhealthy, status.Status)

	parsed := probe.StatusResponse{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &parsed))
	require.Len(t, parsed.Probes, 2)
	assert.Equal(t, health.StatusUnhealthy, parsed.Probes[0].Status)
	assert.Equal(t, health.StatusSkipped, parsed.Probes[1].Status)
}

func TestRunCheckTemplate(t *testing.T) {
	cfg := loadTestConfig(t, `
probe "data" {
  filesystem = "/does/not/exist"
}
`)

	out := bytes.Buffer{}
	_, err := runCheck(context.Background(), &out, cfg, checkOptions{
		Template: `{{ .Status }}:{{ range .Probes }}{{ .Name | upper }}{{ end }}`,
		Timeout:  time.Second,
		Health:   health.Options{Disabled: []string{"data"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "healthy:DATA", out.String())
}

func TestRunCheckInvalidTemplate(t *testing.T) {
	cfg := loadTestConfig(t, `probe "data" { filesystem = "/" }`)

	_, err := runCheck(context.Background(), &bytes.Buffer{}, cfg, checkOptions{Template: "{{ .Status "})

	assert.ErrorContains(t, err, "failed to parse output template")
}

func TestRunCheckInvalidProbe(t *testing.T) {
	cfg := loadTestConfig(t, `probe "nothing" {}`)

	_, err := runCheck(context.Background(), &bytes.Buffer{}, cfg, checkOptions{})

	assert.ErrorContains(t, err, "has no probe kind configured")
}

func TestInitializeRunsBootJobsAfterReadiness(t *testing.T) {
	dir := t.TempDir()
	cfg := loadTestConfig(t, `
probe "data" {
  wait       = true
  filesystem = "`+dir+`"
}

boot "migrate" {
  command          = "/bin/sh"
  args             = ["-c", "touch migrated"]
  workingDirectory = "`+dir+`"
}
`)

	handler, err := probe.NewProbeHandler(cfg, probe.HandlerOptions{Timeout: time.Second, Metrics: metrics.NewRecorder()})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, initialize(ctx, handler, proc.NewRunner(cfg)))
	assert.FileExists(t, filepath.Join(dir, "migrated"))
}

func TestInitializeFailsOnBootJobError(t *testing.T) {
	cfg := loadTestConfig(t, `
boot "migrate" {
  command = "/bin/sh"
  args    = ["-c", "exit 2"]
}
`)

	handler, err := probe.NewProbeHandler(cfg, probe.HandlerOptions{})
	require.NoError(t, err)

	err = initialize(context.Background(), handler, proc.NewRunner(cfg))

	assert.ErrorContains(t, err, "boot job 'migrate'")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["serve"])
	assert.True(t, names["check"])
	assert.True(t, names["version"])
	assert.Contains(t, serve.Aliases, "up")
}
