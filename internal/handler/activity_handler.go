package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/repository"
	"taskboard/internal/service/activity"
)

type ActivityHandler struct {
	activity *activity.Service
	logger   *zap.Logger
}

func NewActivityHandler(svc *activity.Service, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activity: svc, logger: logger}
}

// GetActivity returns a project's activity feed newest-first. Client
// callers pass visibility=public to hide internal entries.
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	projectID := c.Query("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := h.activity.Query(c.Request.Context(), projectID, repository.QueryOptions{
		Visibility:  c.Query("visibility"),
		Limit:       limit,
		IncludeUser: true,
		IncludeTask: true,
	})
	if err != nil {
		h.logger.Error("GetActivity: failed to fetch activity",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}
