package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderflow/cmd"
	httpadapter "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/amqp"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/core/ports"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, configs.Database().DSN())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err = postgres.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	events, closeEvents := newEventPublisher(configs, logger)

	app := cmd.NewCompositionRoot(configs, db, events, logger)
	realtime := app.NewRealtimeHandler()

	e, err := httpadapter.NewRouter(httpadapter.RouterConfig{
		Logger:   logger,
		Verifier: app.Verifier(),
		Handlers: app.NewHTTPHandlers(),
		Realtime: realtime.Serve,
	})
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	jobManager := app.NewJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("failed to start jobs: %v", err)
	}

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server stopped: %v", err)
		}
	}()
	logger.InfoContext(ctx, "orderflow started", "port", configs.HTTPPort)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	if err = app.Broker().Shutdown(shutdownCtx); err != nil {
		logger.Error("tracking broker shutdown failed", "error", err)
	}
	realtime.Close()
	if err = app.Dispatcher().Wait(shutdownCtx); err != nil {
		logger.Error("pending notifications abandoned", "error", err)
	}
	jobManager.StopAll()
	if err = closeEvents.Close(); err != nil {
		logger.Error("failed to close event publisher", "error", err)
	}
}

func getConfigs() cmd.Config {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	config, err := cmd.LoadConfig(cmd.EnvLookup)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return config
}

func newEventPublisher(configs cmd.Config, logger *slog.Logger) (ports.OrderEventPublisher, io.Closer) {
	if configs.RabbitMQURL == "" {
		logger.Warn("RABBITMQ_URL is not set, integration events are discarded")
		return amqp.Discard{}, nopCloser{}
	}

	publisher, err := amqp.Dial(configs.RabbitMQURL, configs.RabbitMQExchange)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	return publisher, publisher
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
