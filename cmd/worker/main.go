package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskboard/internal/config"
	"taskboard/internal/mqhandler"
	"taskboard/internal/repository"
	"taskboard/internal/service/webhook"
	"taskboard/internal/util"
	pkgdb "taskboard/pkg/db"
	"taskboard/pkg/logger"
	"taskboard/pkg/mq"
	pkgredis "taskboard/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting taskboard-worker...",
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// DB (webhook registrations live here)
	dbConn, err := pkgdb.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis dedup guard. Keys expire after a day; a redelivery later than
	// that is indistinguishable from a new event anyway.
	rdb := pkgredis.NewClient(cfg.Redis)
	defer rdb.Close()
	deduper := util.NewDeduper(rdb, 24*time.Hour)

	webhookRepo := repository.NewStatusWebhookRepository(dbConn)
	dispatcher := webhook.NewDispatcher(webhookRepo, cfg.Webhook.Timeout(), log)
	statusHandler := mqhandler.NewStatusChangedHandler(dispatcher, deduper, log)

	log.Info("Initializing MQ consumer for task.status_changed...",
		zap.String("queue", "task.status_changed.q"),
		zap.String("routing_key", mq.RoutingKeyTaskStatusChanged),
	)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "task.status_changed.q", mq.RoutingKeyTaskStatusChanged, log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(statusHandler.Handle)

	go func() {
		log.Info("Starting task.status_changed consumer...")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Status changed consumer failed", zap.Error(err))
		}
	}()

	// Metrics endpoint only; the worker has no API surface.
	metricsSrv := &http.Server{
		Addr:    ":9091",
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics server failed", zap.Error(err))
		}
	}()

	log.Info("taskboard-worker is fully initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down taskboard-worker gracefully...")
	consumer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("Metrics server shutdown error", zap.Error(err))
	}

	log.Info("taskboard-worker shutdown complete")
}
