package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

type stubPredictor struct {
	prediction *models.MLPrediction
	err        error

	attendance float64
	cgpa       float64
	failures   int
	issues     int
}

func (s *stubPredictor) Predict(ctx context.Context, attendance, cgpa float64, failures, issues int) (*models.MLPrediction, error) {
	s.attendance = attendance
	s.cgpa = cgpa
	s.failures = failures
	s.issues = issues
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.prediction
	return &cp, nil
}

func TestParsePredictorOutput(t *testing.T) {
	stdout := `Loading model...
Dropout Probability: 81.50%
Confidence: 92.30%
Risk Level: HIGH
Prediction: Likely to drop out
`

	prediction, err := parsePredictorOutput(stdout)

	require.NoError(t, err)
	assert.InDelta(t, 0.815, prediction.Probability, 1e-9)
	assert.InDelta(t, 0.923, prediction.Confidence, 1e-9)
	assert.Equal(t, "HIGH", prediction.RiskLevel)
	assert.Equal(t, "Likely to drop out", prediction.Prediction)
}

func TestParsePredictorOutputConfidenceDefaultsToProbability(t *testing.T) {
	prediction, err := parsePredictorOutput("Dropout Probability: 40%\nRisk Level: MEDIUM\n")

	require.NoError(t, err)
	assert.InDelta(t, 0.4, prediction.Probability, 1e-9)
	assert.InDelta(t, 0.4, prediction.Confidence, 1e-9)
}

func TestParsePredictorOutputMissingProbability(t *testing.T) {
	_, err := parsePredictorOutput("Risk Level: HIGH\nPrediction: Likely to drop out\n")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing probability")
}

func TestMLServicePredictDerivesInputs(t *testing.T) {
	predictor := &stubPredictor{prediction: &models.MLPrediction{Probability: 0.6, Confidence: 0.8}}
	svc := NewMLService(predictor, time.Second, time.Hour, nil, nil)

	student := &models.Student{
		ID:                 "stu-1",
		AttendancePercent:  62.5,
		CurrentCGPA:        5.4,
		DisciplinaryIssues: 2,
	}
	assessments := []models.Assessment{
		{MarksObtained: 20, TotalMarks: 100},
		{MarksObtained: 70, TotalMarks: 100},
		{MarksObtained: 10, TotalMarks: 100},
	}

	prediction := svc.Predict(context.Background(), student, assessments)

	require.NotNil(t, prediction)
	assert.Equal(t, 62.5, predictor.attendance)
	assert.Equal(t, 5.4, predictor.cgpa)
	assert.Equal(t, 2, predictor.failures)
	assert.Equal(t, 2, predictor.issues)
	assert.False(t, prediction.Timestamp.IsZero())
}

func TestMLServicePredictFailsClosed(t *testing.T) {
	predictor := &stubPredictor{err: errors.New("model unavailable")}
	svc := NewMLService(predictor, time.Second, time.Hour, nil, nil)

	prediction := svc.Predict(context.Background(), &models.Student{ID: "stu-1"}, nil)

	assert.Nil(t, prediction)
}

func TestMLServicePredictNilPredictor(t *testing.T) {
	svc := NewMLService(nil, time.Second, time.Hour, nil, nil)

	assert.Nil(t, svc.Predict(context.Background(), &models.Student{ID: "stu-1"}, nil))
}

func TestNeedsRefresh(t *testing.T) {
	svc := NewMLService(&stubPredictor{}, time.Second, 7*24*time.Hour, nil, nil)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, svc.NeedsRefresh(nil, now), "no cached result")

	fresh := now.Add(-6 * 24 * time.Hour)
	assert.False(t, svc.NeedsRefresh(&fresh, now))

	stale := now.Add(-8 * 24 * time.Hour)
	assert.True(t, svc.NeedsRefresh(&stale, now))

	boundary := now.Add(-7 * 24 * time.Hour)
	assert.False(t, svc.NeedsRefresh(&boundary, now), "exactly at TTL is not yet stale")
}
