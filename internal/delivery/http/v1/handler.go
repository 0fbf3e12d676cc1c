package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-reminders/internal/monitor"
	"github.com/adanyl0v/todo-reminders/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
	HandleAccessLog(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleGetTaskStats(c *gin.Context)

	HandleGetAlerts(c *gin.Context)
	HandleHealth(c *gin.Context)
}

// AlertFeed is the read side of the alerts fired by the due-task monitor.
type AlertFeed interface {
	Since(after uint64) ([]monitor.Alert, uint64)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	tasks  services.TaskService
	alerts AlertFeed
	health HealthChecker
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	alerts AlertFeed,
	health HealthChecker,
) Handler {
	return &handlerImpl{
		logger: logger,
		auth:   authService,
		tasks:  taskService,
		alerts: alerts,
		health: health,
	}
}

// RegisterRoutes mounts the API on router. Everything except login and the
// health check goes through the auth middleware.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/healthz", h.HandleHealth)
	router.POST("/login", h.HandleLogin)

	authorized := router.Group("/", h.HandleAuthMiddleware)
	authorized.GET("/todos", h.HandleGetTasks)
	authorized.POST("/todos", h.HandleCreateTask)
	authorized.GET("/todos/stats", h.HandleGetTaskStats)
	authorized.PUT("/todos/:id", h.HandleUpdateTask)
	authorized.DELETE("/todos/:id", h.HandleDeleteTask)
	authorized.GET("/alerts", h.HandleGetAlerts)
}
