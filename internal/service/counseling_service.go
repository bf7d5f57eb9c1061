package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-retention-api/internal/models"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
)

type counselingRepository interface {
	Create(ctx context.Context, log *models.CounselingLog) error
	FindByID(ctx context.Context, id string) (*models.CounselingLog, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.CounselingLog, error)
	SetAfterSnapshot(ctx context.Context, id string, riskAfter models.RiskLevel, scoreAfter int) error
}

type riskProfiler interface {
	GetProfile(ctx context.Context, studentID string) (*models.RiskProfile, error)
	RefreshRiskProfile(ctx context.Context, studentID string) (*models.RiskProfile, error)
}

// CreateSessionRequest carries the payload for logging a counseling session.
type CreateSessionRequest struct {
	StudentID        string     `json:"student_id" validate:"required"`
	MentorID         string     `json:"mentor_id" validate:"required"`
	SessionDate      time.Time  `json:"session_date"`
	Notes            string     `json:"notes" validate:"required,min=3"`
	ActionsTaken     *string    `json:"actions_taken,omitempty"`
	FollowUpRequired bool       `json:"follow_up_required"`
	FollowUpDate     *time.Time `json:"follow_up_date,omitempty"`
}

// CounselingService records counseling sessions with before/after risk
// snapshots and aggregates improvement metrics from them.
type CounselingService struct {
	logs      counselingRepository
	risk      riskProfiler
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCounselingService constructs a CounselingService.
func NewCounselingService(logs counselingRepository, risk riskProfiler, validate *validator.Validate, logger *zap.Logger) *CounselingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CounselingService{
		logs:      logs,
		risk:      risk,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession opens a session log, snapshotting the student's current risk
// as the "before" state.
func (s *CounselingService) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.CounselingLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	profile, err := s.risk.GetProfile(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	sessionDate := req.SessionDate
	if sessionDate.IsZero() {
		sessionDate = s.now()
	}
	log := &models.CounselingLog{
		StudentID:        req.StudentID,
		MentorID:         req.MentorID,
		SessionDate:      sessionDate,
		Notes:            req.Notes,
		ActionsTaken:     req.ActionsTaken,
		FollowUpRequired: req.FollowUpRequired,
		FollowUpDate:     req.FollowUpDate,
		RiskBefore:       profile.OverallRisk,
		RiskScoreBefore:  profile.HybridScore,
	}
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("create counseling log: %w", err)
	}

	s.logger.Info("counseling session logged",
		zap.String("log_id", log.ID),
		zap.String("student_id", log.StudentID),
		zap.String("risk_before", string(log.RiskBefore)),
	)
	return log, nil
}

// CompleteSession recomputes the student's risk and stores it as the "after"
// snapshot. Completing an already-completed session is a conflict.
func (s *CounselingService) CompleteSession(ctx context.Context, logID string) (*models.CounselingLog, error) {
	log, err := s.logs.FindByID(ctx, logID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "counseling log not found")
		}
		return nil, fmt.Errorf("load counseling log: %w", err)
	}
	if log.RiskAfter != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "session already completed")
	}

	profile, err := s.risk.RefreshRiskProfile(ctx, log.StudentID)
	if err != nil {
		return nil, err
	}
	if err := s.logs.SetAfterSnapshot(ctx, logID, profile.OverallRisk, profile.HybridScore); err != nil {
		return nil, fmt.Errorf("store after snapshot: %w", err)
	}

	log.RiskAfter = &profile.OverallRisk
	log.RiskScoreAfter = &profile.HybridScore

	s.logger.Info("counseling session completed",
		zap.String("log_id", log.ID),
		zap.String("student_id", log.StudentID),
		zap.Int("risk_improvement", log.RiskScoreBefore-profile.HybridScore),
	)
	return log, nil
}

// ListByStudent returns a student's session history, newest first.
func (s *CounselingService) ListByStudent(ctx context.Context, studentID string) ([]models.CounselingLog, error) {
	return s.logs.ListByStudent(ctx, studentID)
}

// ImprovementMetrics aggregates the risk deltas of completed sessions. A
// positive delta means the risk score went down after the session.
func (s *CounselingService) ImprovementMetrics(ctx context.Context, studentID string) (*models.ImprovementMetrics, error) {
	logs, err := s.logs.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list counseling logs: %w", err)
	}

	metrics := &models.ImprovementMetrics{TotalSessions: len(logs)}
	var sum int
	for _, log := range logs {
		if log.RiskAfter == nil || log.RiskScoreAfter == nil {
			continue
		}
		improvement := log.RiskScoreBefore - *log.RiskScoreAfter
		metrics.Improvements = append(metrics.Improvements, models.SessionImprovement{
			LogID:           log.ID,
			SessionDate:     log.SessionDate,
			RiskImprovement: improvement,
			RiskBefore:      log.RiskBefore,
			RiskAfter:       *log.RiskAfter,
		})
		sum += improvement
	}
	metrics.CompletedSessions = len(metrics.Improvements)
	if metrics.CompletedSessions > 0 {
		metrics.HasData = true
		metrics.AverageRiskImprovement = float64(sum) / float64(metrics.CompletedSessions)
	}
	return metrics, nil
}
