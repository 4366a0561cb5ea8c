package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/service/webhook"
)

type WebhookHandler struct {
	dispatcher *webhook.Dispatcher
	logger     *zap.Logger
}

func NewWebhookHandler(dispatcher *webhook.Dispatcher, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher, logger: logger}
}

func (h *WebhookHandler) ListStatusWebhooks(c *gin.Context) {
	projectID := c.Query("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId required"})
		return
	}

	hooks, err := h.dispatcher.List(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("ListStatusWebhooks: failed to fetch webhooks",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch webhooks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": hooks})
}

// RegisterStatusWebhook upserts the URL for a (project, status) pair.
func (h *WebhookHandler) RegisterStatusWebhook(c *gin.Context) {
	var req struct {
		ProjectID string `json:"project_id"`
		Status    string `json:"status"`
		URL       string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.ProjectID == "" || req.Status == "" || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id, status and url required"})
		return
	}
	switch req.Status {
	case model.StatusTodo, model.StatusInProgress, model.StatusDone:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	hook, err := h.dispatcher.Register(c.Request.Context(), req.ProjectID, req.Status, req.URL)
	if err != nil {
		h.logger.Error("RegisterStatusWebhook: failed to register webhook",
			zap.Error(err),
			zap.String("project_id", req.ProjectID),
			zap.String("status", req.Status),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register webhook"})
		return
	}
	c.JSON(http.StatusOK, hook)
}
