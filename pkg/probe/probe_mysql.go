package probe

import (
	"context"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/internal/helper"
	log "github.com/sirupsen/logrus"
)

type mySQLProbe struct {
	dsn  string
	addr string
}

func NewMySQLProbe(cfg *config.MySQL) *mySQLProbe {
	hostname := helper.ResolveEnv(cfg.Hostname)
	port := helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Port), "3306", "port", "mysql")

	connCfg := mysql.NewConfig()
	connCfg.User = helper.ResolveEnv(cfg.User)
	connCfg.Passwd = helper.ResolveEnv(cfg.Password)
	connCfg.Net = "tcp"
	connCfg.Addr = net.JoinHostPort(hostname, port)
	connCfg.DBName = helper.ResolveEnv(cfg.Database)

	return &mySQLProbe{
		dsn:  connCfg.FormatDSN(),
		addr: connCfg.Addr,
	}
}

func (m *mySQLProbe) Exec(ctx context.Context) error {
	if err := pingSQL(ctx, "mysql", m.dsn); err != nil {
		return err
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "mysql", "status": "alive", "host": m.addr}).Debug()

	return nil
}
