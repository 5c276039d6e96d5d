package probe

import (
	"context"
	"fmt"
	"os"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/internal/helper"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteProbe struct {
	path string
}

func NewSQLiteProbe(cfg *config.SQLite) *sqliteProbe {
	return &sqliteProbe{
		path: helper.ResolveEnv(cfg.Path),
	}
}

func (s *sqliteProbe) Exec(ctx context.Context) error {
	// opening a missing file would silently create an empty database
	if _, err := os.Stat(s.path); err != nil {
		return err
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)", s.path)
	if err := pingSQL(ctx, "sqlite", dsn); err != nil {
		return err
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "sqlite", "status": "alive", "path": s.path}).Debug()

	return nil
}
