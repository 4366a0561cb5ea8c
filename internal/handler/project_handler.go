package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/service/project"
)

// ClientTaskLister backs the token-gated read-only client view.
type ClientTaskLister interface {
	ListPublicByProjects(ctx context.Context, projectIDs []string) ([]model.Task, error)
}

type ProjectHandler struct {
	projects    *project.Service
	clientTasks ClientTaskLister
	logger      *zap.Logger
}

func NewProjectHandler(projects *project.Service, clientTasks ClientTaskLister, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, clientTasks: clientTasks, logger: logger}
}

// ListProjects returns the caller's projects, provisioning a starter
// project on first access.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}

	projects, err := h.projects.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("ListProjects: failed to fetch projects",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req struct {
		Name       string `json:"name"`
		ClientName string `json:"client_name"`
		UserID     string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and userId required"})
		return
	}

	created, err := h.projects.Create(c.Request.Context(), req.Name, req.ClientName, req.UserID)
	if err != nil {
		h.logger.Error("CreateProject: failed to create project",
			zap.Error(err),
			zap.String("user_id", req.UserID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListClientTasks serves the external client view. Both the client name
// and token must match; only public tasks are ever returned.
func (h *ProjectHandler) ListClientTasks(c *gin.Context) {
	clientName := c.Query("clientName")
	clientToken := c.Query("clientToken")
	if clientName == "" || clientToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientName and clientToken required"})
		return
	}

	projects, err := h.projects.ListByClient(c.Request.Context(), clientName, clientToken)
	if err != nil {
		h.logger.Error("ListClientTasks: failed to resolve client projects",
			zap.Error(err),
			zap.String("client_name", clientName),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch tasks"})
		return
	}
	if len(projects) == 0 {
		c.JSON(http.StatusOK, gin.H{"tasks": []model.Task{}})
		return
	}

	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	tasks, err := h.clientTasks.ListPublicByProjects(c.Request.Context(), ids)
	if err != nil {
		h.logger.Error("ListClientTasks: failed to fetch tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch tasks"})
		return
	}

	// The store query filters too, but internal tasks must never leave
	// through the client view regardless of what the lister returned.
	public := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Visibility == model.VisibilityPublic {
			public = append(public, t)
		}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": public})
}
