package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/database"
	"github.com/tieubaoca/pdfqa-be/types"
)

const healthCheckTimeout = 5 * time.Second

type HealthHandler struct {
	pingers []database.Pinger
}

// NewHealthHandler reports the first failing pinger as the database status.
// The service itself is healthy whenever it can answer.
func NewHealthHandler(pingers ...database.Pinger) *HealthHandler {
	return &HealthHandler{pingers: pingers}
}

func (h *HealthHandler) HandleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	res := types.HealthResponse{
		Status:    "healthy",
		Database:  "healthy",
		Timestamp: time.Now(),
	}
	for _, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			res.Database = "unhealthy: " + err.Error()
			break
		}
	}
	c.JSON(http.StatusOK, res)
}
