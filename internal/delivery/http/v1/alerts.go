package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/todo-reminders/internal/monitor"
)

type alertResponse struct {
	Seq     uint64    `json:"seq"`
	TaskID  string    `json:"taskId"`
	Text    string    `json:"text"`
	DueDate string    `json:"dueDate"`
	DueTime string    `json:"dueTime"`
	FiredAt time.Time `json:"firedAt"`
}

type alertsResponse struct {
	Alerts []alertResponse `json:"alerts"`
	Last   uint64          `json:"last"`
}

func newAlertResponse(alert monitor.Alert) alertResponse {
	return alertResponse{
		Seq:     alert.Seq,
		TaskID:  alert.TaskID,
		Text:    alert.Text,
		DueDate: alert.DueDate,
		DueTime: alert.DueTime,
		FiredAt: alert.FiredAt,
	}
}

// HandleGetAlerts returns the alerts fired after the ?after= sequence
// number. Clients pass back the returned last value on the next poll. A
// cursor from before a server restart is treated as 0.
func (h *handlerImpl) HandleGetAlerts(c *gin.Context) {
	var after uint64
	if raw := c.Query("after"); raw != "" {
		var err error
		after, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			abort(c, newBadRequestError("after must be a non-negative integer"))
			return
		}
	}

	alerts, last := h.alerts.Since(after)
	resp := alertsResponse{
		Alerts: make([]alertResponse, 0, len(alerts)),
		Last:   last,
	}
	for _, alert := range alerts {
		resp.Alerts = append(resp.Alerts, newAlertResponse(alert))
	}
	c.JSON(http.StatusOK, resp)
}
