package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-retention-api/internal/models"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
)

type mockRiskStudentRepo struct {
	student *models.Student
	updates []models.RiskFieldsUpdate
}

func (m *mockRiskStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.student == nil || m.student.ID != id {
		return nil, sql.ErrNoRows
	}
	cp := *m.student
	return &cp, nil
}

func (m *mockRiskStudentRepo) UpdateRiskFields(ctx context.Context, update models.RiskFieldsUpdate) error {
	m.updates = append(m.updates, update)
	return nil
}

type mockAttendanceReader struct {
	records []models.AttendanceRecord
}

func (m *mockAttendanceReader) ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error) {
	return m.records, nil
}

type mockAssessmentReader struct {
	assessments []models.Assessment
}

func (m *mockAssessmentReader) ListByStudent(ctx context.Context, studentID string) ([]models.Assessment, error) {
	return m.assessments, nil
}

type mockAlertWriter struct {
	created      []models.Alert
	recentUnread bool
}

func (m *mockAlertWriter) Create(ctx context.Context, alert *models.Alert) error {
	m.created = append(m.created, *alert)
	return nil
}

func (m *mockAlertWriter) HasRecentUnread(ctx context.Context, studentID string, level models.RiskLevel, since time.Time) (bool, error) {
	return m.recentUnread, nil
}

func newRiskServiceForTest(students *mockRiskStudentRepo, alerts *mockAlertWriter, now time.Time) *RiskService {
	svc := NewRiskService(students, &mockAttendanceReader{}, &mockAssessmentReader{}, alerts, nil, nil, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCalculateHybridRiskWithoutPrediction(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newRiskServiceForTest(&mockRiskStudentRepo{}, nil, now)
	student := &models.Student{
		ID:                "stu-1",
		AttendancePercent: 55,
		CurrentCGPA:       4.5,
	}

	profile := svc.CalculateHybridRisk(student, nil, nil, nil, now)

	assert.Equal(t, models.MethodRuleBasedOnly, profile.Method)
	assert.Equal(t, profile.RiskScore, profile.HybridScore)
	assert.Nil(t, profile.MLPrediction)
}

func TestCalculateHybridRiskBlendsAndRederivesLevel(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newRiskServiceForTest(&mockRiskStudentRepo{}, nil, now)
	// Low attendance (+20), low CGPA (+10) and disciplinary history (+10).
	student := &models.Student{
		ID:                 "stu-1",
		AttendancePercent:  70,
		CurrentCGPA:        6.0,
		DisciplinaryIssues: 1,
	}
	profile := svc.CalculateHybridRisk(student, nil, nil, &models.MLPrediction{
		Probability: 0.9,
		Confidence:  0.85,
		RiskLevel:   "HIGH",
	}, now)

	// Rule score 40 (20+10+10): hybrid = round(40*0.6 + 90*0.4) = 60.
	assert.Equal(t, 40, profile.RiskScore)
	assert.Equal(t, 60, profile.HybridScore)
	assert.Equal(t, models.RiskHigh, profile.OverallRisk)
	assert.Equal(t, models.MethodHybrid, profile.Method)
	require.NotNil(t, profile.MLPrediction)
	assert.Equal(t, 36, profile.MLPrediction.Contribution)
	assert.NotContains(t, profile.Recommendations, "ML prediction has low confidence - monitor closely")
}

func TestCalculateHybridRiskCanLowerRuleLevel(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newRiskServiceForTest(&mockRiskStudentRepo{}, nil, now)
	// Critical attendance fires HIGH with rule score 40, but a near-zero ML
	// probability pulls the blended score under the HIGH threshold.
	student := &models.Student{
		ID:                "stu-1",
		AttendancePercent: 55,
		CurrentCGPA:       8.0,
	}

	profile := svc.CalculateHybridRisk(student, nil, nil, &models.MLPrediction{
		Probability: 0.05,
		Confidence:  0.9,
	}, now)

	// hybrid = round(40*0.6 + 5*0.4) = 26 -> LOW despite the rule HIGH.
	assert.Equal(t, 26, profile.HybridScore)
	assert.Equal(t, models.RiskLow, profile.OverallRisk)
}

func TestCalculateHybridRiskLowConfidenceCaveat(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newRiskServiceForTest(&mockRiskStudentRepo{}, nil, now)
	student := &models.Student{ID: "stu-1", AttendancePercent: 90, CurrentCGPA: 8.0}

	profile := svc.CalculateHybridRisk(student, nil, nil, &models.MLPrediction{
		Probability: 0.5,
		Confidence:  0.55,
	}, now)

	assert.Contains(t, profile.Recommendations, "ML prediction has low confidence - monitor closely")
}

func TestGetProfileUsesCachedMLFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	probability := 0.8
	students := &mockRiskStudentRepo{student: &models.Student{
		ID:                "stu-1",
		AttendancePercent: 90,
		CurrentCGPA:       8.0,
		MLProbability:     &probability,
	}}
	svc := newRiskServiceForTest(students, nil, now)

	profile, err := svc.GetProfile(context.Background(), "stu-1")

	require.NoError(t, err)
	require.NotNil(t, profile.MLPrediction)
	assert.Equal(t, 0.8, profile.MLPrediction.Probability)
	assert.Equal(t, "HIGH", profile.MLPrediction.RiskLevel)
	assert.Equal(t, models.MethodHybrid, profile.Method)
	assert.Empty(t, students.updates, "GetProfile must not persist")
}

func TestGetProfileNotFound(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	svc := newRiskServiceForTest(&mockRiskStudentRepo{}, nil, now)

	_, err := svc.GetProfile(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRefreshRiskProfilePersistsOnChange(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	students := &mockRiskStudentRepo{student: &models.Student{
		ID:                "stu-1",
		EnrollmentNo:      "EN-001",
		FullName:          "Rahul Verma",
		AttendancePercent: 55,
		CurrentCGPA:       4.5,
		DropoutRisk:       models.RiskUnknown,
	}}
	alerts := &mockAlertWriter{}
	svc := newRiskServiceForTest(students, alerts, now)

	profile, err := svc.RefreshRiskProfile(context.Background(), "stu-1")

	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, profile.OverallRisk)
	require.Len(t, students.updates, 1)
	assert.Equal(t, models.RiskHigh, students.updates[0].DropoutRisk)

	require.Len(t, alerts.created, 1)
	alert := alerts.created[0]
	assert.Equal(t, models.RiskHigh, alert.RiskLevel)
	assert.Contains(t, alert.Message, "HIGH RISK: Student Rahul Verma (EN-001) requires immediate attention.")
	assert.Contains(t, alert.Message, "Risk factors:")
}

func TestRefreshRiskProfileSkipsPersistWhenUnchanged(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	student := &models.Student{
		ID:                "stu-1",
		AttendancePercent: 95,
		CurrentCGPA:       9.0,
		DropoutRisk:       models.RiskLow,
		RiskReason:        "Good standing",
	}
	students := &mockRiskStudentRepo{student: student}
	svc := newRiskServiceForTest(students, &mockAlertWriter{}, now)

	profile, err := svc.RefreshRiskProfile(context.Background(), "stu-1")

	require.NoError(t, err)
	assert.Equal(t, models.RiskLow, profile.OverallRisk)
	assert.Empty(t, students.updates)
}

func TestRefreshRiskProfileAlertCooldownSuppression(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	students := &mockRiskStudentRepo{student: &models.Student{
		ID:                "stu-1",
		FullName:          "Rahul Verma",
		AttendancePercent: 55,
		CurrentCGPA:       4.5,
		DropoutRisk:       models.RiskUnknown,
	}}
	alerts := &mockAlertWriter{recentUnread: true}
	svc := newRiskServiceForTest(students, alerts, now)

	_, err := svc.RefreshRiskProfile(context.Background(), "stu-1")

	require.NoError(t, err)
	assert.Empty(t, alerts.created, "unread alert within cooldown suppresses a new one")
}

func TestCachedPredictionLevels(t *testing.T) {
	cases := []struct {
		probability float64
		level       string
	}{
		{0.75, "HIGH"},
		{0.7, "HIGH"},
		{0.5, "MEDIUM"},
		{0.4, "MEDIUM"},
		{0.1, "LOW"},
	}
	for _, tc := range cases {
		p := tc.probability
		prediction := cachedPrediction(&models.Student{MLProbability: &p})
		require.NotNil(t, prediction)
		assert.Equal(t, tc.level, prediction.RiskLevel, "probability %.2f", tc.probability)
		assert.Equal(t, tc.probability, prediction.Confidence, "confidence falls back to probability")
	}

	assert.Nil(t, cachedPrediction(&models.Student{}))
}
