package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/handler"
	"taskboard/internal/httpserver"
	"taskboard/internal/repository"
	"taskboard/internal/service/activity"
	"taskboard/internal/service/comment"
	"taskboard/internal/service/identity"
	"taskboard/internal/service/planner"
	"taskboard/internal/service/project"
	"taskboard/internal/service/sharing"
	"taskboard/internal/service/task"
	"taskboard/internal/service/webhook"
	pkgdb "taskboard/pkg/db"
	"taskboard/pkg/logger"
	"taskboard/pkg/mq"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting taskboard-server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("port", cfg.Server.Port),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := pkgdb.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx, dbConn); err != nil {
		migrateCancel()
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrateCancel()
	log.Info("Database ready")

	// MQ publisher. The server keeps working without it; publishing is
	// best-effort by contract.
	var publisher *mq.Publisher
	publisher, err = mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Error("Failed to init MQ publisher, events disabled", zap.Error(err))
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Repositories
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	memberRepo := repository.NewMemberRepository(dbConn)
	invitationRepo := repository.NewInvitationRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	commentRepo := repository.NewCommentRepository(dbConn)
	activityRepo := repository.NewActivityRepository(dbConn, log)
	webhookRepo := repository.NewStatusWebhookRepository(dbConn)

	// Identity provider: static dev principal when configured, JWT
	// verification otherwise.
	var provider identity.Provider
	if cfg.Auth.DevEmail != "" {
		log.Warn("Using static development identity provider",
			zap.String("dev_email", cfg.Auth.DevEmail),
		)
		provider = identity.NewStaticProvider(cfg.Auth.DevEmail, cfg.Auth.DevName)
	} else {
		provider = identity.NewJWTProvider(cfg.Auth.Secret)
	}

	// Services
	identitySvc := identity.NewService(userRepo, log)
	activitySvc := activity.NewService(activityRepo, log)
	var events task.EventPublisher
	if publisher != nil {
		events = publisher
	}
	taskSvc := task.NewService(taskRepo, activitySvc, events, log)
	projectSvc := project.NewService(projectRepo, memberRepo, log)
	sharingSvc := sharing.NewService(memberRepo, invitationRepo, cfg.Sharing.InvitationTTL(), log)
	commentSvc := comment.NewService(commentRepo, taskRepo, activitySvc, log)
	plannerSvc := planner.NewService(taskRepo, cfg.Planner.FeedURL, cfg.Planner.Timeout(), log)
	dispatcher := webhook.NewDispatcher(webhookRepo, cfg.Webhook.Timeout(), log)

	handlers := httpserver.Handlers{
		Auth:     handler.NewAuthHandler(provider, identitySvc, log),
		Project:  handler.NewProjectHandler(projectSvc, taskRepo, log),
		Task:     handler.NewTaskHandler(taskSvc, log),
		Planner:  handler.NewPlannerHandler(plannerSvc, taskSvc, log),
		Sharing:  handler.NewSharingHandler(sharingSvc, log),
		Webhook:  handler.NewWebhookHandler(dispatcher, log),
		Comment:  handler.NewCommentHandler(commentSvc, log),
		Activity: handler.NewActivityHandler(activitySvc, log),
	}

	gin.SetMode(gin.ReleaseMode)
	router := httpserver.NewRouter(handlers, provider, log, dbConn, publisher)

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "HEAD"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: corsWrapper.Handler(router),
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("taskboard-server is fully initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down taskboard-server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("taskboard-server shutdown complete")
}
