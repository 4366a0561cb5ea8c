package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskboard/internal/handler"
	"taskboard/internal/service/identity"
	"taskboard/pkg/mq"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Project  *handler.ProjectHandler
	Task     *handler.TaskHandler
	Planner  *handler.PlannerHandler
	Sharing  *handler.SharingHandler
	Webhook  *handler.WebhookHandler
	Comment  *handler.CommentHandler
	Activity *handler.ActivityHandler
}

func NewRouter(h Handlers, provider identity.Provider, logger *zap.Logger, db *pgxpool.Pool, publisher *mq.Publisher) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(Metrics())

	// Health endpoints first.
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if publisher != nil && !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public: resolve does its own credential check, the client view is
	// gated by the project token instead of a user credential.
	r.POST("/auth/resolve", h.Auth.Resolve)
	r.GET("/client/tasks", h.Project.ListClientTasks)

	auth := r.Group("/")
	auth.Use(Authenticate(provider))
	{
		auth.GET("/projects", h.Project.ListProjects)
		auth.POST("/projects", h.Project.CreateProject)

		auth.GET("/tasks", h.Task.ListTasks)
		auth.POST("/tasks", h.Task.CreateTask)
		auth.PATCH("/tasks/:id", h.Task.UpdateTask)
		auth.DELETE("/tasks/:id", h.Task.DeleteTask)

		auth.GET("/daily-tasks", h.Planner.GetDailyTasks)
		auth.POST("/webhooks/daily", h.Planner.IngestDailyTasks)

		auth.GET("/status-webhooks", h.Webhook.ListStatusWebhooks)
		auth.POST("/status-webhooks", h.Webhook.RegisterStatusWebhook)

		auth.GET("/project-sharing", h.Sharing.GetSharing)
		auth.POST("/project-sharing/invitations", h.Sharing.CreateInvitation)
		auth.DELETE("/project-sharing/invitations/:id", h.Sharing.DeleteInvitation)
		auth.PATCH("/project-sharing/members/:id", h.Sharing.UpdateMemberRole)
		auth.DELETE("/project-sharing/members/:id", h.Sharing.RemoveMember)
		auth.POST("/invitations/accept", h.Sharing.AcceptInvitation)

		auth.GET("/comments", h.Comment.ListComments)
		auth.POST("/comments", h.Comment.CreateComment)

		auth.GET("/activity", h.Activity.GetActivity)
	}

	return r
}
