package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/service/identity"
)

type AuthHandler struct {
	provider identity.Provider
	identity *identity.Service
	logger   *zap.Logger
}

func NewAuthHandler(provider identity.Provider, svc *identity.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{provider: provider, identity: svc, logger: logger}
}

// Resolve maps the caller's external identity to the internal user,
// creating or re-linking it lazily.
func (h *AuthHandler) Resolve(c *gin.Context) {
	principal, err := h.provider.FromRequest(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	user, err := h.identity.Resolve(c.Request.Context(), principal)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		h.logger.Error("Resolve: failed to resolve user",
			zap.Error(err),
			zap.String("auth_id", principal.ExternalID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
