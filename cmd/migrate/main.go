// migrate aplica o revierte las migraciones embebidas: go run ./cmd/migrate -direction=up
package main

import (
	"flag"

	"github.com/jhoicas/crm-api/internal/infrastructure/postgres"
	"github.com/jhoicas/crm-api/pkg/config"
	"github.com/jhoicas/crm-api/pkg/logger"
)

func main() {
	direction := flag.String("direction", postgres.MigrateUp, "dirección de la migración: up o down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "crm-migrate"})

	version, err := postgres.Migrate(cfg.DB.ConnectionString(), *direction)
	if err != nil {
		log.Fatal().Err(err).Str("direction", *direction).Msg("migraciones")
	}
	log.Info().Str("direction", *direction).Uint("version", version).Msg("migraciones completadas")
}
