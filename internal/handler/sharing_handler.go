package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/repository"
	"taskboard/internal/service/sharing"
)

type SharingHandler struct {
	sharing *sharing.Service
	logger  *zap.Logger
}

func NewSharingHandler(svc *sharing.Service, logger *zap.Logger) *SharingHandler {
	return &SharingHandler{sharing: svc, logger: logger}
}

// GetSharing returns a project's members and pending invitations.
func (h *SharingHandler) GetSharing(c *gin.Context) {
	projectID := c.Query("projectId")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId required"})
		return
	}

	members, invitations, err := h.sharing.ListSharing(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("GetSharing: failed to fetch sharing state",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sharing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "invitations": invitations})
}

func (h *SharingHandler) CreateInvitation(c *gin.Context) {
	var req struct {
		ProjectID string `json:"project_id"`
		Email     string `json:"email"`
		Role      string `json:"role"`
		UserID    string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.ProjectID == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id and email required"})
		return
	}

	inv, err := h.sharing.Invite(c.Request.Context(), req.ProjectID, req.Email, req.Role, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, sharing.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, sharing.ErrAlreadyMember), errors.Is(err, sharing.ErrInviteExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Error("CreateInvitation: failed to create invitation",
				zap.Error(err),
				zap.String("project_id", req.ProjectID),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invitation"})
		}
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *SharingHandler) DeleteInvitation(c *gin.Context) {
	id := c.Param("id")
	if err := h.sharing.RevokeInvitation(c.Request.Context(), id); err != nil {
		if errors.Is(err, sharing.ErrInvitationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
			return
		}
		h.logger.Error("DeleteInvitation: failed to delete invitation",
			zap.Error(err),
			zap.String("invitation_id", id),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete invitation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SharingHandler) AcceptInvitation(c *gin.Context) {
	var req struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Token == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and userId required"})
		return
	}

	if err := h.sharing.Accept(c.Request.Context(), req.Token, req.UserID); err != nil {
		switch {
		case errors.Is(err, sharing.ErrInvitationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
		case errors.Is(err, sharing.ErrInvitationExpired):
			c.JSON(http.StatusGone, gin.H{"error": "invitation expired"})
		default:
			h.logger.Error("AcceptInvitation: failed to accept invitation", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept invitation"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SharingHandler) UpdateMemberRole(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Role   string `json:"role"`
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	member, err := h.sharing.UpdateMemberRole(c.Request.Context(), id, req.Role, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, sharing.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, sharing.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		default:
			h.logger.Error("UpdateMemberRole: failed to update role",
				zap.Error(err),
				zap.String("member_id", id),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update role"})
		}
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *SharingHandler) RemoveMember(c *gin.Context) {
	id := c.Param("id")
	if err := h.sharing.RemoveMember(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		h.logger.Error("RemoveMember: failed to remove member",
			zap.Error(err),
			zap.String("member_id", id),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
