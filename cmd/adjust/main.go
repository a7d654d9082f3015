package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climate-adjust-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/climate-adjust-service/internal/adapter/kafka"
	"github.com/couchcryptid/climate-adjust-service/internal/adapter/pylt"
	"github.com/couchcryptid/climate-adjust-service/internal/adapter/remote"
	"github.com/couchcryptid/climate-adjust-service/internal/adjust"
	"github.com/couchcryptid/climate-adjust-service/internal/config"
	"github.com/couchcryptid/climate-adjust-service/internal/domain"
	"github.com/couchcryptid/climate-adjust-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var adjuster domain.Adjuster
	switch cfg.AdjustBackend {
	case config.BackendRemote:
		adjuster = remote.NewClient(cfg.AdjustURL, logger)
		logger.Info("remote adjuster configured", "url", cfg.AdjustURL)
	default:
		adjuster = pylt.NewRunner(cfg.AdjustCommand, logger)
		logger.Info("exec adjuster configured", "command", cfg.AdjustCommand)
	}

	opts := []adjust.Option{adjust.WithTimeout(cfg.AdjustTimeout)}

	// Audit events are feature-flagged via KAFKA_BROKERS.
	var publisher *kafkaadapter.Publisher
	if cfg.AuditEnabled() {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		opts = append(opts, adjust.WithPublisher(publisher))
		logger.Info("audit events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("audit events disabled")
	}

	svc := adjust.New(cfg.DataDir, adjuster, logger, metrics, opts...)

	if err := svc.CheckReadiness(context.Background()); err != nil {
		logger.Warn("data directory incomplete, /adjust will fail until files are present", "data_dir", cfg.DataDir, "error", err)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.HTTPWriteTimeout, svc, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
