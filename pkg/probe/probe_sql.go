package probe

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// pingSQL opens a connection pool for dsn, pings it and runs a trivial query.
func pingSQL(ctx context.Context, driver, dsn string) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return errors.Wrap(err, "SELECT 1 failed")
	}

	return nil
}
