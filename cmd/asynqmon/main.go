// Command asynqmon serves the task queue UI for the reset-mail and inventory
// queues.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"

	"github.com/plateadmin/plateadmin/internal/config"
	"github.com/plateadmin/plateadmin/internal/logger"
)

const rootPath = "/asynqmon"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, "plateadmin-asynqmon")
	log := logger.GetLogger()

	addr := ":" + envOr("ASYNQMON_PORT", "8090")
	readOnly, _ := strconv.ParseBool(envOr("ASYNQMON_READONLY", "false"))

	monitor := asynqmon.New(asynqmon.Options{
		RootPath:     rootPath,
		RedisConnOpt: asynq.RedisClientOpt{Addr: cfg.Redis.Address},
		ReadOnly:     readOnly,
	})
	defer monitor.Close()

	mux := http.NewServeMux()
	mux.Handle(rootPath+"/", monitor)
	mux.Handle("/", http.RedirectHandler(rootPath+"/", http.StatusFound))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", addr).Str("redis", cfg.Redis.Address).Bool("read_only", readOnly).Msg("Starting Asynqmon")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Asynqmon failed")
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
