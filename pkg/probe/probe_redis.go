package probe

import (
	"context"
	"net"
	"time"

	"github.com/go-redis/redis"
	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/internal/helper"
	log "github.com/sirupsen/logrus"
)

type redisProbe struct {
	addr     string
	password string
}

func NewRedisProbe(cfg *config.Redis) *redisProbe {
	hostname := helper.ResolveEnv(cfg.Hostname)
	port := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Port), "6379", "port", "redis")

	return &redisProbe{
		addr:     net.JoinHostPort(hostname, port),
		password: helper.ResolveEnv(cfg.Password),
	}
}

func (r *redisProbe) Exec(ctx context.Context) error {
	timeout := timeoutFromContext(ctx, 5*time.Second)

	client := redis.NewClient(&redis.Options{
		Addr:         r.addr,
		Password:     r.password,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   0,
	})
	defer client.Close()

	if _, err := client.WithContext(ctx).Ping().Result(); err != nil {
		return err
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "redis", "status": "alive", "host": r.addr}).Debug()

	return nil
}
