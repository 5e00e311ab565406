package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/config"
	"github.com/plateadmin/plateadmin/internal/database"
	"github.com/plateadmin/plateadmin/internal/logger"
	"github.com/plateadmin/plateadmin/internal/tasks"
	"github.com/plateadmin/plateadmin/internal/workers"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, "plateadmin-worker")
	log := logger.GetLogger()

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Worker failed")
	}
	log.Info().Msg("Worker shutdown complete")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	log.Info().Str("version", version).Str("redis", cfg.Redis.Address).Msg("Starting PlateAdmin worker")

	db, err := database.Open(cfg.Database.URL, log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	// The inventory scheduler enqueues through its own client
	client := asynq.NewClient(redisOpt)
	defer client.Close()

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
		Logger: &asynqLogger{log: log},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.Error().Err(err).
				Str("task_type", task.Type()).
				Int("retry", retried).
				Int("max_retry", maxRetry).
				Msg("Task failed")
		}),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(newMux(db, log)); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}

	go workers.StartInventoryScheduler(ctx, client, db, log)

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal, draining tasks...")
	srv.Shutdown()
	return nil
}

// newMux routes each task type to its handler
func newMux(db *gorm.DB, log zerolog.Logger) *asynq.ServeMux {
	handlers := map[string]asynq.HandlerFunc{
		tasks.TypePasswordResetMail: func(ctx context.Context, t *asynq.Task) error {
			return workers.HandlePasswordResetMail(ctx, t, log)
		},
		tasks.TypeInventoryRefresh: func(ctx context.Context, t *asynq.Task) error {
			return workers.HandleInventoryRefresh(ctx, t, db, log)
		},
	}

	mux := asynq.NewServeMux()
	for taskType, handler := range handlers {
		mux.Handle(taskType, handler)
	}
	return mux
}

// asynqLogger adapts zerolog to asynq's Logger interface
type asynqLogger struct {
	log zerolog.Logger
}

func (l *asynqLogger) Debug(args ...any) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...any) { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...any) { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...any) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...any) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
