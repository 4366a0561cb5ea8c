package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/service/comment"
)

type CommentHandler struct {
	comments *comment.Service
	logger   *zap.Logger
}

func NewCommentHandler(comments *comment.Service, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	taskID := c.Query("taskId")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taskId required"})
		return
	}

	comments, err := h.comments.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		h.logger.Error("ListComments: failed to fetch comments",
			zap.Error(err),
			zap.String("task_id", taskID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch comments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req struct {
		TaskID  string `json:"task_id"`
		UserID  string `json:"user_id"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.TaskID == "" || req.UserID == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id, user_id and content required"})
		return
	}

	created, err := h.comments.Create(c.Request.Context(), req.TaskID, req.UserID, req.Content)
	if err != nil {
		h.logger.Error("CreateComment: failed to create comment",
			zap.Error(err),
			zap.String("task_id", req.TaskID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create comment"})
		return
	}
	c.JSON(http.StatusCreated, created)
}
