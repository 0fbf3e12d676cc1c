package v1

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const usernameCtxKey = "username"

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Warn().Msg("authorization header required")
		abort(c, newUnauthorizedError(errUnauthorized.Error()))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		h.logger.Warn().Msg("invalid authorization header")
		abort(c, newUnauthorizedError(errUnauthorized.Error()))
		return
	}

	claims, err := h.auth.ParseJWTToken(parts[1])
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to parse token")
		abort(c, newUnauthorizedError(errUnauthorized.Error()))
		return
	}

	c.Set(usernameCtxKey, claims.Subject)
	c.Next()
}

func (h *handlerImpl) HandleAccessLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	event := h.logger.Info()
	if c.Writer.Status() >= 500 {
		event = h.logger.Error()
	}

	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}

	event.
		Str("method", c.Request.Method).
		Str("route", route).
		Int("status", c.Writer.Status()).
		Int("bytes", c.Writer.Size()).
		Dur("duration", time.Since(start)).
		Str("remote_addr", c.ClientIP()).
		Msg("http request")
}
