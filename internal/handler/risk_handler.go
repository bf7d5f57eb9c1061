package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-retention-api/internal/models"
	"github.com/noah-isme/sma-retention-api/internal/service"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
	"github.com/noah-isme/sma-retention-api/pkg/response"
)

// RiskHandler exposes risk profile and recalculation endpoints.
type RiskHandler struct {
	risk   *service.RiskService
	recalc *service.RecalcService
}

// NewRiskHandler constructs RiskHandler.
func NewRiskHandler(risk *service.RiskService, recalc *service.RecalcService) *RiskHandler {
	return &RiskHandler{risk: risk, recalc: recalc}
}

// Profile godoc
// @Summary Get a student's risk profile
// @Tags Risk
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/risk [get]
func (h *RiskHandler) Profile(c *gin.Context) {
	profile, err := h.risk.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Refresh godoc
// @Summary Recalculate and persist a student's risk profile
// @Tags Risk
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/risk/refresh [post]
func (h *RiskHandler) Refresh(c *gin.Context) {
	profile, err := h.risk.RefreshRiskProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

type recalcRequest struct {
	StudentIDs []string `json:"student_ids"`
	RiskLevel  string   `json:"risk_level"`
}

// Recalculate godoc
// @Summary Queue a batch risk recalculation
// @Tags Risk
// @Accept json
// @Produce json
// @Param payload body recalcRequest true "Recalculation scope"
// @Success 202 {object} response.Envelope
// @Router /risk/recalculate [post]
func (h *RiskHandler) Recalculate(c *gin.Context) {
	var req recalcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	var (
		jobID string
		count int
		err   error
	)
	switch {
	case len(req.StudentIDs) > 0:
		count = len(req.StudentIDs)
		jobID, err = h.recalc.EnqueueStudents(req.StudentIDs)
	case req.RiskLevel != "":
		level := models.RiskLevel(strings.ToUpper(req.RiskLevel))
		if !level.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid risk level"))
			return
		}
		jobID, count, err = h.recalc.EnqueueByRisk(c.Request.Context(), level)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_ids or risk_level is required"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"job_id": jobID, "students": count}, nil)
}
