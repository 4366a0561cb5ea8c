package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/service/planner"
	"taskboard/internal/service/task"
)

type PlannerHandler struct {
	planner *planner.Service
	tasks   *task.Service
	logger  *zap.Logger
}

func NewPlannerHandler(plannerSvc *planner.Service, tasks *task.Service, logger *zap.Logger) *PlannerHandler {
	return &PlannerHandler{planner: plannerSvc, tasks: tasks, logger: logger}
}

// GetDailyTasks returns the merged daily planner view for a user.
func (h *PlannerHandler) GetDailyTasks(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}

	view, err := h.planner.GetDailyView(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("GetDailyTasks: failed to build daily view",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch daily tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": view})
}

type dailyIngestTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ProjectID   string     `json:"project_id"`
	Priority    string     `json:"priority"`
	AssigneeID  *string    `json:"assignee_id"`
	ExternalID  *string    `json:"external_id"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags"`
}

// IngestDailyTasks accepts a batch of externally sourced tasks and
// creates them through the normal task pipeline. Entries missing a title
// or project are skipped, not rejected; partial batches are the norm for
// feed payloads.
func (h *PlannerHandler) IngestDailyTasks(c *gin.Context) {
	var req struct {
		UserID string            `json:"userId"`
		Tasks  []dailyIngestTask `json:"tasks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}

	created := make([]any, 0, len(req.Tasks))
	skipped := 0
	for _, in := range req.Tasks {
		if in.Title == "" || in.ProjectID == "" {
			skipped++
			continue
		}
		assignee := in.AssigneeID
		if assignee == nil {
			assignee = &req.UserID
		}
		t, err := h.tasks.Create(c.Request.Context(), task.CreateInput{
			Title:       in.Title,
			Description: in.Description,
			Priority:    in.Priority,
			AssigneeID:  assignee,
			ProjectID:   in.ProjectID,
			ExternalID:  in.ExternalID,
			DueDate:     in.DueDate,
			Tags:        in.Tags,
		}, req.UserID)
		if err != nil {
			h.logger.Error("IngestDailyTasks: failed to create task",
				zap.Error(err),
				zap.String("project_id", in.ProjectID),
			)
			skipped++
			continue
		}
		created = append(created, t)
	}

	h.logger.Info("IngestDailyTasks: batch processed",
		zap.String("user_id", req.UserID),
		zap.Int("created", len(created)),
		zap.Int("skipped", skipped),
	)
	c.JSON(http.StatusOK, gin.H{"tasks": created})
}
