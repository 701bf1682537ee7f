package postgres

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Direcciones aceptadas por Migrate.
const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// Migrate aplica (up) o revierte (down) las migraciones embebidas sobre dsn.
// Que no haya nada que aplicar no es un error. Devuelve la versión resultante.
func Migrate(dsn, direction string) (uint, error) {
	if dsn == "" {
		return 0, errors.New("migrate: DATABASE_URL vacío")
	}
	if direction != MigrateUp && direction != MigrateDown {
		return 0, fmt.Errorf("migrate: dirección %q inválida (up|down)", direction)
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("migrate: fuente: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dsn))
	if err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("migrate: versión: %w", err)
	}
	return version, nil
}

// migrateURL cambia el esquema postgres:// por pgx5://, que es el que registra el driver pgx v5.
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}
