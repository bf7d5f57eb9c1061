package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-retention-api/internal/service"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
	"github.com/noah-isme/sma-retention-api/pkg/response"
)

// AssignmentHandler exposes mentor matching and assignment endpoints.
type AssignmentHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// AutoAssign godoc
// @Summary Auto-assign the best-matching mentor to a student
// @Tags Assignments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/mentor/auto-assign [post]
func (h *AssignmentHandler) AutoAssign(c *gin.Context) {
	assignment, err := h.assignments.AutoAssignMentor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if assignment == nil {
		response.JSON(c, http.StatusOK, gin.H{"assigned": false}, nil)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

type assignMentorRequest struct {
	MentorID string `json:"mentor_id" binding:"required"`
}

// AssignMentor godoc
// @Summary Assign a specific mentor to a student
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body assignMentorRequest true "Mentor selection"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/mentor [post]
func (h *AssignmentHandler) AssignMentor(c *gin.Context) {
	var req assignMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.AssignMentor(c.Request.Context(), c.Param("id"), req.MentorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

type assignCounselorRequest struct {
	CounselorID string `json:"counselor_id" binding:"required"`
}

// AssignCounselor godoc
// @Summary Assign a counselor to a student
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body assignCounselorRequest true "Counselor selection"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/counselor [post]
func (h *AssignmentHandler) AssignCounselor(c *gin.Context) {
	var req assignCounselorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.AssignCounselor(c.Request.Context(), c.Param("id"), req.CounselorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Suggestions godoc
// @Summary List scored mentor candidates for a student
// @Tags Assignments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/mentor/suggestions [get]
func (h *AssignmentHandler) Suggestions(c *gin.Context) {
	matches, err := h.assignments.SuggestMentors(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matches, nil)
}

// History godoc
// @Summary List a student's mentor assignment history
// @Tags Assignments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/mentor/history [get]
func (h *AssignmentHandler) History(c *gin.Context) {
	assignments, err := h.assignments.ListMentorAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}
