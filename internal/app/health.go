package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

type health struct {
	service   string
	port      string
	startedAt time.Time
	db        *sql.DB
}

func (h *health) uptime() string {
	return time.Since(h.startedAt).Round(time.Second).String()
}

func (h *health) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"service":    h.service,
		"port":       h.port,
		"uptime":     h.uptime(),
		"start_time": h.startedAt.Format(time.RFC3339),
	})
}

func (h *health) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"port":   h.port,
		"uptime": h.uptime(),
	})
}

func (h *health) ready(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unavailable",
				"database": err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
