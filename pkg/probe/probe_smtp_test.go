package probe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmtpProbeExecOk(t *testing.T) {
	server := startFakeSMTPServer(t)
	host, port, err := net.SplitHostPort(server.Addr())
	require.NoError(t, err)

	subject := NewSmtpProbe(&config.SMTP{Host: config.Host{Hostname: host, Port: port}, HeloName: "mittcheck.test"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, subject.Exec(ctx))
	assert.Equal(t, []string{"EHLO", "NOOP", "QUIT"}, server.Commands())
}

func TestSmtpProbeExecConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	subject := &smtpProbe{addr: addr}

	assert.Error(t, subject.Exec(context.Background()))
}

func TestSmtpProbeDefaultPort(t *testing.T) {
	subject := NewSmtpProbe(&config.SMTP{Host: config.Host{Hostname: "mail.example"}})

	assert.Equal(t, "mail.example:25", subject.addr)
}
