package handler

import (
	"errors"
	"net/http"

	"identity-service/internal/auth"
	"identity-service/internal/logger"

	"github.com/Nerzal/gocloak/v13"
	"github.com/gin-gonic/gin"
)

// writeError maps provider failures to HTTP responses. Only not-found and
// conflict answers from the provider are passed through; anything else is
// a generic 500.
func (h *Handler) writeError(c *gin.Context, operation string, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	case errors.Is(err, auth.ErrAdminNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Keycloak admin not configured"})
		return
	}

	var apiErr *gocloak.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound, http.StatusConflict:
			c.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}
	}

	logger.Error("identity provider request failed", map[string]any{
		"provider":  h.provider.Name(),
		"operation": operation,
		"error":     err.Error(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{"error": "identity provider request failed"})
}
