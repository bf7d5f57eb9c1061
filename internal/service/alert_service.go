package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-retention-api/internal/models"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
)

const defaultAlertLimit = 50

type alertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	ListUnread(ctx context.Context, limit int) ([]models.AlertDetail, error)
	MarkRead(ctx context.Context, id string) error
}

// AlertService exposes alert creation and the unread inbox.
type AlertService struct {
	alerts alertRepository
	logger *zap.Logger
}

// NewAlertService constructs an AlertService.
func NewAlertService(alerts alertRepository, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{alerts: alerts, logger: logger}
}

// Create stores a new alert.
func (s *AlertService) Create(ctx context.Context, studentID string, level models.RiskLevel, message string) (*models.Alert, error) {
	if !level.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid risk level")
	}
	if message == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message is required")
	}
	alert := &models.Alert{
		StudentID: studentID,
		RiskLevel: level,
		Message:   message,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	s.logger.Info("alert created",
		zap.String("student_id", studentID),
		zap.String("risk_level", string(level)),
	)
	return alert, nil
}

// ListUnread returns unread alerts with student context, newest first.
func (s *AlertService) ListUnread(ctx context.Context, limit int) ([]models.AlertDetail, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultAlertLimit
	}
	return s.alerts.ListUnread(ctx, limit)
}

// MarkRead flags an alert as read.
func (s *AlertService) MarkRead(ctx context.Context, id string) error {
	if err := s.alerts.MarkRead(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "alert not found")
		}
		return fmt.Errorf("mark alert read: %w", err)
	}
	return nil
}
