package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-retention-api/internal/models"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
)

type mentorStore interface {
	ListWithLoad(ctx context.Context) ([]models.MentorWithLoad, error)
	Create(ctx context.Context, mentor *models.Mentor) error
}

type counselorStore interface {
	ListWithLoad(ctx context.Context) ([]models.CounselorWithLoad, error)
	Create(ctx context.Context, counselor *models.Counselor) error
}

// CreateMentorRequest holds payload for registering mentors.
type CreateMentorRequest struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Department     string `json:"department" validate:"required"`
	Specialization string `json:"specialization" validate:"required"`
	MaxStudents    int    `json:"max_students" validate:"required,min=1,max=50"`
}

// CreateCounselorRequest holds payload for registering counselors.
type CreateCounselorRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Department  string `json:"department" validate:"required"`
	MaxStudents int    `json:"max_students" validate:"required,min=1,max=100"`
}

// StaffService manages the mentor and counselor rosters.
type StaffService struct {
	mentors    mentorStore
	counselors counselorStore
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStaffService constructs the staff service.
func NewStaffService(mentors mentorStore, counselors counselorStore, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{mentors: mentors, counselors: counselors, validator: validate, logger: logger}
}

// ListMentors returns all active mentors with their current load.
func (s *StaffService) ListMentors(ctx context.Context) ([]models.MentorWithLoad, error) {
	return s.mentors.ListWithLoad(ctx)
}

// CreateMentor registers a new mentor.
func (s *StaffService) CreateMentor(ctx context.Context, req CreateMentorRequest) (*models.Mentor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mentor payload")
	}
	mentor := &models.Mentor{
		FullName:       req.FullName,
		Email:          req.Email,
		Department:     req.Department,
		Specialization: req.Specialization,
		MaxStudents:    req.MaxStudents,
		Active:         true,
	}
	if err := s.mentors.Create(ctx, mentor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mentor")
	}
	s.logger.Info("mentor registered", zap.String("mentor_id", mentor.ID), zap.String("specialization", mentor.Specialization))
	return mentor, nil
}

// ListCounselors returns all active counselors with their current load.
func (s *StaffService) ListCounselors(ctx context.Context) ([]models.CounselorWithLoad, error) {
	return s.counselors.ListWithLoad(ctx)
}

// CreateCounselor registers a new counselor.
func (s *StaffService) CreateCounselor(ctx context.Context, req CreateCounselorRequest) (*models.Counselor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid counselor payload")
	}
	counselor := &models.Counselor{
		FullName:    req.FullName,
		Email:       req.Email,
		Department:  req.Department,
		MaxStudents: req.MaxStudents,
		Active:      true,
	}
	if err := s.counselors.Create(ctx, counselor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create counselor")
	}
	s.logger.Info("counselor registered", zap.String("counselor_id", counselor.ID))
	return counselor, nil
}
