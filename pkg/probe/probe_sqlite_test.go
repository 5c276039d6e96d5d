package probe

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/mittwald/mittcheck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteProbeExecOk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE schema_migrations (version INTEGER PRIMARY KEY)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	subject := NewSQLiteProbe(&config.SQLite{Path: path})

	assert.NoError(t, subject.Exec(context.Background()))
}

func TestSQLiteProbeMissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	subject := NewSQLiteProbe(&config.SQLite{Path: path})

	assert.Error(t, subject.Exec(context.Background()))
	assert.NoFileExists(t, path)
}
