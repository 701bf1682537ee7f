package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/crm?sslmode=disable", migrateURL("postgres://u:p@localhost:5432/crm?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/crm", migrateURL("postgresql://u@db/crm"))
	assert.Equal(t, "pgx5://ya", migrateURL("pgx5://ya"))
}

func TestMigrate_Validaciones(t *testing.T) {
	_, err := Migrate("", MigrateUp)
	assert.Error(t, err)
	_, err = Migrate("postgres://localhost/crm", "sideways")
	assert.Error(t, err)
}

func TestMigrations_ParesUpDown(t *testing.T) {
	files, err := fs.Glob(migrationFS, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	ups, downs := 0, 0
	for _, f := range files {
		switch {
		case strings.HasSuffix(f, ".up.sql"):
			ups++
		case strings.HasSuffix(f, ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
}
