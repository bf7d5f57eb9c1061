package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-retention-api/internal/models"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
)

const alertCooldown = 24 * time.Hour

type riskStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateRiskFields(ctx context.Context, update models.RiskFieldsUpdate) error
}

type attendanceReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error)
}

type assessmentReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Assessment, error)
}

type alertWriter interface {
	Create(ctx context.Context, alert *models.Alert) error
	HasRecentUnread(ctx context.Context, studentID string, level models.RiskLevel, since time.Time) (bool, error)
}

// RiskService computes rule-based, comprehensive and hybrid risk profiles and
// writes the cached risk fields back through the persistence collaborator.
type RiskService struct {
	students    riskStudentRepository
	attendance  attendanceReader
	assessments assessmentReader
	alerts      alertWriter
	ml          *MLService
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewRiskService constructs a RiskService.
func NewRiskService(students riskStudentRepository, attendance attendanceReader, assessments assessmentReader, alerts alertWriter, ml *MLService, metrics *MetricsService, logger *zap.Logger) *RiskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RiskService{
		students:    students,
		attendance:  attendance,
		assessments: assessments,
		alerts:      alerts,
		ml:          ml,
		metrics:     metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CalculateHybridRisk blends the rule-based profile with an optional ML
// prediction. Without a prediction the rule profile is returned as-is tagged
// RULE_BASED_ONLY. With one, the overall level is re-derived purely from the
// blended score, which can lower a rule-determined HIGH.
func (s *RiskService) CalculateHybridRisk(student *models.Student, records []models.AttendanceRecord, assessments []models.Assessment, ml *models.MLPrediction, now time.Time) models.RiskProfile {
	if s.metrics != nil {
		s.metrics.RecordRiskEvaluation()
	}

	profile := CalculateComprehensiveRisk(student, records, assessments, now)

	if ml == nil {
		profile.HybridScore = profile.RiskScore
		profile.Method = models.MethodRuleBasedOnly
		return profile
	}

	mlScore := ml.Probability * 100
	hybridScore := int(math.Round(float64(profile.RiskScore)*0.6 + mlScore*0.4))

	overall := models.RiskLow
	if hybridScore >= 60 {
		overall = models.RiskHigh
	} else if hybridScore >= 30 {
		overall = models.RiskMedium
	}

	profile.OverallRisk = overall
	profile.HybridScore = hybridScore
	profile.MLPrediction = &models.MLContribution{
		Probability:  ml.Probability,
		Confidence:   ml.Confidence,
		RiskLevel:    ml.RiskLevel,
		Contribution: int(math.Round(mlScore * 0.4)),
	}
	if ml.Confidence < 0.7 {
		profile.Recommendations = append(profile.Recommendations, "ML prediction has low confidence - monitor closely")
	}
	profile.Method = models.MethodHybrid
	return profile
}

// GetProfile recomputes the risk profile on demand using the student's cached
// ML fields, without invoking the predictor.
func (s *RiskService) GetProfile(ctx context.Context, studentID string) (*models.RiskProfile, error) {
	student, records, assessments, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}
	profile := s.CalculateHybridRisk(student, records, assessments, cachedPrediction(student), s.now())
	return &profile, nil
}

// RefreshRiskProfile recomputes and persists a student's risk, invoking the
// predictor when the cached ML result is stale. On HIGH risk it raises an
// alert guarded by the unread-alert cooldown.
func (s *RiskService) RefreshRiskProfile(ctx context.Context, studentID string) (*models.RiskProfile, error) {
	student, records, assessments, err := s.load(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	ml := cachedPrediction(student)
	if s.ml != nil && s.ml.NeedsRefresh(student.MLLastUpdated, now) {
		if fresh := s.ml.Predict(ctx, student, assessments); fresh != nil {
			ml = fresh
		}
	}

	profile := s.CalculateHybridRisk(student, records, assessments, ml, now)

	changed := student.DropoutRisk != profile.OverallRisk || student.RiskReason != profile.RiskReason
	if profile.MLPrediction != nil {
		if student.MLProbability == nil || *student.MLProbability != profile.MLPrediction.Probability {
			changed = true
		}
	}
	if !changed {
		return &profile, nil
	}

	update := models.RiskFieldsUpdate{
		StudentID:     student.ID,
		DropoutRisk:   profile.OverallRisk,
		RiskReason:    profile.RiskReason,
		MLProbability: student.MLProbability,
		MLConfidence:  student.MLConfidence,
		MLLastUpdated: student.MLLastUpdated,
	}
	if profile.MLPrediction != nil {
		update.MLProbability = &profile.MLPrediction.Probability
		update.MLConfidence = &profile.MLPrediction.Confidence
		update.MLLastUpdated = &now
	}
	if err := s.students.UpdateRiskFields(ctx, update); err != nil {
		return nil, fmt.Errorf("persist risk fields: %w", err)
	}

	s.logger.Info("risk profile updated",
		zap.String("student_id", student.ID),
		zap.String("enrollment_no", student.EnrollmentNo),
		zap.String("risk_level", string(profile.OverallRisk)),
		zap.String("method", string(profile.Method)),
	)

	if profile.OverallRisk == models.RiskHigh {
		if err := s.raiseHighRiskAlert(ctx, student, profile.RiskReason, now); err != nil {
			s.logger.Warn("high risk alert failed", zap.String("student_id", student.ID), zap.Error(err))
		}
	}

	return &profile, nil
}

// raiseHighRiskAlert creates a HIGH alert unless an unread one exists within
// the cooldown window. Suppression is a silent no-op, not an error.
func (s *RiskService) raiseHighRiskAlert(ctx context.Context, student *models.Student, reason string, now time.Time) error {
	if s.alerts == nil {
		return nil
	}
	exists, err := s.alerts.HasRecentUnread(ctx, student.ID, models.RiskHigh, now.Add(-alertCooldown))
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if reason == "" {
		reason = "Multiple risk indicators detected"
	}
	return s.alerts.Create(ctx, &models.Alert{
		StudentID: student.ID,
		RiskLevel: models.RiskHigh,
		Message:   fmt.Sprintf("HIGH RISK: Student %s (%s) requires immediate attention. Risk factors: %s", student.FullName, student.EnrollmentNo, reason),
		CreatedAt: now,
	})
}

func (s *RiskService) load(ctx context.Context, studentID string) (*models.Student, []models.AttendanceRecord, []models.Assessment, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, nil, nil, fmt.Errorf("load student: %w", err)
	}

	records, err := s.attendance.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, nil, err
	}
	assessments, err := s.assessments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, nil, err
	}
	return student, records, assessments, nil
}

// cachedPrediction rebuilds an MLPrediction from the student's cached ML
// columns, deriving the level from probability bands.
func cachedPrediction(student *models.Student) *models.MLPrediction {
	if student.MLProbability == nil {
		return nil
	}
	confidence := *student.MLProbability
	if student.MLConfidence != nil {
		confidence = *student.MLConfidence
	}
	level := "LOW"
	if *student.MLProbability >= 0.7 {
		level = "HIGH"
	} else if *student.MLProbability >= 0.4 {
		level = "MEDIUM"
	}
	prediction := &models.MLPrediction{
		Probability: *student.MLProbability,
		Confidence:  confidence,
		RiskLevel:   level,
	}
	if student.MLLastUpdated != nil {
		prediction.Timestamp = *student.MLLastUpdated
	}
	return prediction
}
