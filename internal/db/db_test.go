package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/app?sslmode=disable", "pgx5://u:p@localhost:5432/app?sslmode=disable"},
		{"postgresql://u@db/app", "pgx5://u@db/app"},
		{"pgx5://already", "pgx5://already"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, migrationURL(tt.in))
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Positive(t, ups)
	assert.Equal(t, ups, downs)
}

func TestStatementsCoverStores(t *testing.T) {
	for _, name := range []string{
		"health_check", "list_users", "update_user_assignments", "merge_user_ledger",
		"insert_scan_run", "last_scan_run", "prune_ledger", "purge_scan_runs",
	} {
		assert.Contains(t, Statements, name)
	}
}
