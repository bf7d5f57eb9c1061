package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-retention-api/internal/service"
	"github.com/noah-isme/sma-retention-api/pkg/response"
)

// AlertHandler exposes the alert inbox.
type AlertHandler struct {
	alerts *service.AlertService
}

// NewAlertHandler constructs AlertHandler.
func NewAlertHandler(alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// ListUnread godoc
// @Summary List unread alerts
// @Tags Alerts
// @Produce json
// @Param limit query int false "Maximum alerts returned"
// @Success 200 {object} response.Envelope
// @Router /alerts [get]
func (h *AlertHandler) ListUnread(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	alerts, err := h.alerts.ListUnread(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}

// MarkRead godoc
// @Summary Mark an alert as read
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 204
// @Router /alerts/{id}/read [post]
func (h *AlertHandler) MarkRead(c *gin.Context) {
	if err := h.alerts.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
