package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-retention-api/internal/models"
	"github.com/noah-isme/sma-retention-api/internal/service"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
	"github.com/noah-isme/sma-retention-api/pkg/response"
)

// InterventionHandler exposes intervention task endpoints.
type InterventionHandler struct {
	interventions *service.InterventionService
}

// NewInterventionHandler constructs InterventionHandler.
func NewInterventionHandler(interventions *service.InterventionService) *InterventionHandler {
	return &InterventionHandler{interventions: interventions}
}

// Create godoc
// @Summary Open an intervention task
// @Tags Interventions
// @Accept json
// @Produce json
// @Param payload body service.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Router /interventions [post]
func (h *InterventionHandler) Create(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	task, err := h.interventions.CreateTask(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// List godoc
// @Summary List intervention tasks
// @Tags Interventions
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /interventions [get]
func (h *InterventionHandler) List(c *gin.Context) {
	var filter models.TaskFilter
	filter.StudentID = c.Query("studentId")
	filter.MentorID = c.Query("mentorId")
	if status := strings.ToUpper(c.Query("status")); status != "" {
		st := models.TaskStatus(status)
		if !st.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid task status"))
			return
		}
		filter.Status = &st
	}
	if priority := strings.ToUpper(c.Query("priority")); priority != "" {
		pr := models.TaskPriority(priority)
		if !pr.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid task priority"))
			return
		}
		filter.Priority = &pr
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	tasks, pagination, err := h.interventions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, pagination)
}

// Get godoc
// @Summary Get an intervention task
// @Tags Interventions
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /interventions/{id} [get]
func (h *InterventionHandler) Get(c *gin.Context) {
	task, err := h.interventions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

type updateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Move a task through its lifecycle
// @Tags Interventions
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body updateTaskStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /interventions/{id}/status [patch]
func (h *InterventionHandler) UpdateStatus(c *gin.Context) {
	var req updateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	task, err := h.interventions.UpdateTaskStatus(c.Request.Context(), c.Param("id"), models.TaskStatus(strings.ToUpper(req.Status)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Escalate godoc
// @Summary Escalate an intervention task
// @Tags Interventions
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /interventions/{id}/escalate [post]
func (h *InterventionHandler) Escalate(c *gin.Context) {
	task, err := h.interventions.EscalateTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Violations godoc
// @Summary List current SLA violations
// @Tags Interventions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /interventions/sla-violations [get]
func (h *InterventionHandler) Violations(c *gin.Context) {
	tasks, err := h.interventions.CheckSLAViolations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, nil)
}

// AutoEscalate godoc
// @Summary Escalate every overdue task
// @Tags Interventions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /interventions/auto-escalate [post]
func (h *InterventionHandler) AutoEscalate(c *gin.Context) {
	tasks, err := h.interventions.AutoEscalateOverdueTasks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, nil)
}
