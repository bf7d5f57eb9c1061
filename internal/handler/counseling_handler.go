package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-retention-api/internal/service"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
	"github.com/noah-isme/sma-retention-api/pkg/response"
)

// CounselingHandler exposes counseling session endpoints.
type CounselingHandler struct {
	counseling *service.CounselingService
}

// NewCounselingHandler constructs CounselingHandler.
func NewCounselingHandler(counseling *service.CounselingService) *CounselingHandler {
	return &CounselingHandler{counseling: counseling}
}

// Create godoc
// @Summary Log a counseling session
// @Tags Counseling
// @Accept json
// @Produce json
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /counseling [post]
func (h *CounselingHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	log, err := h.counseling.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, log)
}

// Complete godoc
// @Summary Complete a session and capture the after-risk snapshot
// @Tags Counseling
// @Produce json
// @Param id path string true "Counseling log ID"
// @Success 200 {object} response.Envelope
// @Router /counseling/{id}/complete [post]
func (h *CounselingHandler) Complete(c *gin.Context) {
	log, err := h.counseling.CompleteSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// ListByStudent godoc
// @Summary List a student's counseling sessions
// @Tags Counseling
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/counseling [get]
func (h *CounselingHandler) ListByStudent(c *gin.Context) {
	logs, err := h.counseling.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// Improvement godoc
// @Summary Aggregate counseling improvement metrics for a student
// @Tags Counseling
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/counseling/improvement [get]
func (h *CounselingHandler) Improvement(c *gin.Context) {
	metrics, err := h.counseling.ImprovementMetrics(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metrics, nil)
}
