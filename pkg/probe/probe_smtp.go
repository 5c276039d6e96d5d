package probe

import (
	"context"
	"net"
	"net/smtp"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/internal/helper"
	log "github.com/sirupsen/logrus"
)

type smtpProbe struct {
	addr     string
	heloName string
}

func NewSmtpProbe(cfg *config.SMTP) *smtpProbe {
	hostname := helper.ResolveEnv(cfg.Hostname)
	port := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Port), "25", "port", "smtp")

	return &smtpProbe{
		addr:     net.JoinHostPort(hostname, port),
		heloName: helper.ResolveEnv(cfg.HeloName),
	}
}

func (s *smtpProbe) Exec(ctx context.Context) error {
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	host, _, _ := net.SplitHostPort(s.addr)
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer client.Close()

	if s.heloName != "" {
		if err := client.Hello(s.heloName); err != nil {
			return err
		}
	}

	if err := client.Noop(); err != nil {
		return err
	}

	if err := client.Quit(); err != nil {
		return err
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "smtp", "status": "alive", "host": s.addr}).Debug()

	return nil
}
