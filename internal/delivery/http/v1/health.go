package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, healthCheckTimeout)
	defer cancel()

	err := h.health.Ping(ctx)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("storage is unavailable")
		abort(c, newStatusTextError(http.StatusServiceUnavailable))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
