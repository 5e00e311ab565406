// Command server runs the PlateAdmin dashboard: HTML pages and the JSON API.
package main

import (
	"fmt"
	"os"

	"github.com/plateadmin/plateadmin/internal/config"
	"github.com/plateadmin/plateadmin/internal/logger"
	"github.com/plateadmin/plateadmin/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, "plateadmin-server")
	log := logger.GetLogger()

	srv, err := server.New(cfg, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().
		Str("version", version).
		Str("addr", cfg.HTTP.Addr).
		Str("base_url", cfg.HTTP.BaseURL).
		Bool("demo_data", cfg.SeedDemoData).
		Msg("Starting PlateAdmin dashboard")

	// Start returns after SIGINT/SIGTERM once in-flight requests finish
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
