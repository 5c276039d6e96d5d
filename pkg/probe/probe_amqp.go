package probe

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/internal/helper"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const (
	defaultVirtualHost = "/"
)

type amqpProbe struct {
	user        string
	password    string
	hostname    string
	virtualHost string
	port        string
}

func NewAmqpProbe(cfg *config.Amqp) *amqpProbe {
	virtualHost := helper.ResolveEnv(cfg.VirtualHost)
	if virtualHost == "" {
		virtualHost = defaultVirtualHost
	}

	return &amqpProbe{
		user:        helper.ResolveEnv(cfg.User),
		password:    helper.ResolveEnv(cfg.Password),
		hostname:    helper.ResolveEnv(cfg.Hostname),
		virtualHost: virtualHost,
		port:        helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Port), "5672", "port", "amqp"),
	}
}

func (a *amqpProbe) url() *url.URL {
	u := url.URL{
		Scheme: "amqp",
		Host:   net.JoinHostPort(a.hostname, a.port),
		Path:   a.virtualHost,
	}

	if a.user != "" && a.password != "" {
		u.User = url.UserPassword(a.user, a.password)
	}

	return &u
}

func (a *amqpProbe) Exec(ctx context.Context) error {
	u := a.url()

	conn, err := amqp.DialConfig(u.String(), amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			dialer := net.Dialer{}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if deadline, ok := ctx.Deadline(); ok {
				_ = conn.SetDeadline(deadline)
			}
			return conn, nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to dial amqp with url '%s': %s", u.Redacted(), err.Error())
	}
	defer conn.Close()

	log.WithFields(log.Fields{"kind": "probe", "name": "amqp", "status": "alive", "host": u.Host}).Debug()

	return nil
}
