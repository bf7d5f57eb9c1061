package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-retention-api/internal/service"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
	"github.com/noah-isme/sma-retention-api/pkg/response"
)

// StaffHandler exposes mentor and counselor roster endpoints.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs StaffHandler.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// ListMentors godoc
// @Summary List mentors with current load
// @Tags Staff
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentors [get]
func (h *StaffHandler) ListMentors(c *gin.Context) {
	mentors, err := h.staff.ListMentors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentors, nil)
}

// CreateMentor godoc
// @Summary Register a mentor
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body service.CreateMentorRequest true "Mentor payload"
// @Success 201 {object} response.Envelope
// @Router /mentors [post]
func (h *StaffHandler) CreateMentor(c *gin.Context) {
	var req service.CreateMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mentor, err := h.staff.CreateMentor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mentor)
}

// ListCounselors godoc
// @Summary List counselors with current load
// @Tags Staff
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /counselors [get]
func (h *StaffHandler) ListCounselors(c *gin.Context) {
	counselors, err := h.staff.ListCounselors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counselors, nil)
}

// CreateCounselor godoc
// @Summary Register a counselor
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body service.CreateCounselorRequest true "Counselor payload"
// @Success 201 {object} response.Envelope
// @Router /counselors [post]
func (h *StaffHandler) CreateCounselor(c *gin.Context) {
	var req service.CreateCounselorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	counselor, err := h.staff.CreateCounselor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, counselor)
}
