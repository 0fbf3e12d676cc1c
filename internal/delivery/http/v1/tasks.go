package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/todo-reminders/internal/models"
	"github.com/adanyl0v/todo-reminders/internal/services"
)

type taskResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	DueDate   string    `json:"dueDate,omitempty"`
	DueTime   string    `json:"dueTime,omitempty"`
	Notified  bool      `json:"notified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:        task.ID,
		Text:      task.Text,
		Completed: task.Completed,
		DueDate:   task.DueDate,
		DueTime:   task.DueTime,
		Notified:  task.Notified,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, newTaskResponse(task))
	}
	c.JSON(http.StatusOK, resp)
}

type createTaskRequest struct {
	Text    string `json:"text"`
	DueDate string `json:"dueDate"`
	DueTime string `json:"dueTime"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		Text:    req.Text,
		DueDate: req.DueDate,
		DueTime: req.DueTime,
	})
	if err != nil {
		h.abortTaskError(c, err, "failed to create task")
		return
	}

	h.logger.Debug().
		Str("id", task.ID).
		Str("username", c.GetString(usernameCtxKey)).
		Msg("created task")
	c.JSON(http.StatusCreated, newTaskResponse(task))
}

// Fields missing from the body (or null) are left untouched. An empty
// string clears dueDate/dueTime. Any other field, notified included, is
// ignored.
type updateTaskRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
	DueDate   *string `json:"dueDate"`
	DueTime   *string `json:"dueTime"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	id := c.Param("id")

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTask(c, id, models.TaskPatch{
		Text:      req.Text,
		Completed: req.Completed,
		DueDate:   req.DueDate,
		DueTime:   req.DueTime,
	})
	if err != nil {
		h.abortTaskError(c, err, "failed to update task")
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	id := c.Param("id")

	err := h.tasks.DeleteTask(c, id)
	if err != nil {
		h.abortTaskError(c, err, "failed to delete task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted"})
}

type taskStatsResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func (h *handlerImpl) HandleGetTaskStats(c *gin.Context) {
	stats, err := h.tasks.TaskStats(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, taskStatsResponse{
		Total:     stats.Total,
		Completed: stats.Completed,
		Pending:   stats.Pending,
	})
}

func (h *handlerImpl) abortTaskError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrInvalidTask):
		abort(c, newBadRequestError(err.Error()))
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(errTaskNotFound.Error()))
	default:
		h.logger.Error().
			Err(err).
			Str("id", c.Param("id")).
			Msg(msg)
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
