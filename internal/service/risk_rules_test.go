package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

func attendanceSeries(now time.Time, daysAgoStart, count int, status models.AttendanceStatus) []models.AttendanceRecord {
	records := make([]models.AttendanceRecord, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, models.AttendanceRecord{
			Date:   now.AddDate(0, 0, -(daysAgoStart + i)),
			Status: status,
		})
	}
	return records
}

func assessmentSeries(now time.Time, percentages ...float64) []models.Assessment {
	assessments := make([]models.Assessment, 0, len(percentages))
	for i, p := range percentages {
		assessments = append(assessments, models.Assessment{
			Subject:       "Mathematics",
			ExamType:      "UNIT_TEST",
			MarksObtained: p,
			TotalMarks:    100,
			Date:          now.AddDate(0, 0, -i*7),
		})
	}
	return assessments
}

func TestAnalyzeAttendanceTrendInsufficientData(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	records := attendanceSeries(now, 1, 9, models.AttendancePresent)

	trend := AnalyzeAttendanceTrend(records, now)

	assert.Equal(t, models.TrendInsufficientData, trend.Trend)
	assert.Zero(t, trend.PercentageChange)
}

func TestAnalyzeAttendanceTrendDeclining(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// Previous window fully present, recent window mostly absent.
	records := append(
		attendanceSeries(now, 31, 10, models.AttendancePresent),
		attendanceSeries(now, 1, 10, models.AttendanceAbsent)...,
	)

	trend := AnalyzeAttendanceTrend(records, now)

	assert.Equal(t, models.TrendDeclining, trend.Trend)
	assert.Less(t, trend.PercentageChange, -15.0)
	assert.Equal(t, 100.0, trend.PreviousPercent)
	assert.Equal(t, 0.0, trend.RecentPercent)
}

func TestAnalyzeAttendanceTrendImproving(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	records := append(
		attendanceSeries(now, 31, 10, models.AttendanceAbsent),
		attendanceSeries(now, 1, 10, models.AttendancePresent)...,
	)

	trend := AnalyzeAttendanceTrend(records, now)

	assert.Equal(t, models.TrendImproving, trend.Trend)
	assert.Greater(t, trend.PercentageChange, 15.0)
}

func TestAnalyzeAttendanceTrendStableWithinBand(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// 100% -> 90%: a 10 point drop stays inside the ±15 band.
	records := append(
		attendanceSeries(now, 31, 10, models.AttendancePresent),
		attendanceSeries(now, 1, 9, models.AttendancePresent)...,
	)
	records = append(records, models.AttendanceRecord{
		Date:   now.AddDate(0, 0, -10),
		Status: models.AttendanceAbsent,
	})

	trend := AnalyzeAttendanceTrend(records, now)

	assert.Equal(t, models.TrendStable, trend.Trend)
}

func TestDetectPerformanceDropRequiresSixAssessments(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	drop := DetectPerformanceDrop(assessmentSeries(now, 40, 40, 40, 90, 90))

	assert.False(t, drop.HasDropped)
	assert.Zero(t, drop.DropPercentage)
}

func TestDetectPerformanceDropDetectsSuddenDrop(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// Recent avg 40, previous avg 90: a 50 point slide.
	drop := DetectPerformanceDrop(assessmentSeries(now, 40, 40, 40, 90, 90, 90))

	assert.True(t, drop.HasDropped)
	assert.InDelta(t, 50.0, drop.DropPercentage, 0.01)
	assert.InDelta(t, 40.0, drop.RecentAvg, 0.01)
	assert.InDelta(t, 90.0, drop.PreviousAvg, 0.01)
}

func TestDetectPerformanceDropIgnoresSmallSlide(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	drop := DetectPerformanceDrop(assessmentSeries(now, 70, 70, 70, 85, 85, 85))

	assert.False(t, drop.HasDropped)
	assert.InDelta(t, 15.0, drop.DropPercentage, 0.01)
}

func TestDetectInactivityMissedExamsAndGap(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	records := attendanceSeries(now, 1, 8, models.AttendanceAbsent)
	records = append(records, attendanceSeries(now, 9, 5, models.AttendancePresent)...)
	assessments := []models.Assessment{{Date: now.AddDate(0, 0, -45), TotalMarks: 100, MarksObtained: 80}}

	signal := DetectInactivity(records, assessments, now)

	assert.True(t, signal.MissedExams)
	assert.Equal(t, 8, signal.AttendanceGap)
	require.NotNil(t, signal.LastAttendance)
	assert.Equal(t, now.AddDate(0, 0, -1), *signal.LastAttendance)
}

func TestDetectInactivityGapResetsOnPresence(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	records := attendanceSeries(now, 1, 4, models.AttendanceAbsent)
	records = append(records, models.AttendanceRecord{Date: now.AddDate(0, 0, -5), Status: models.AttendancePresent})
	records = append(records, attendanceSeries(now, 6, 3, models.AttendanceAbsent)...)

	signal := DetectInactivity(records, nil, now)

	assert.Equal(t, 4, signal.AttendanceGap)
	assert.False(t, signal.MissedExams)
}

func TestCountFailedAssessments(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assessments := assessmentSeries(now, 30, 32.9, 33, 80)

	assert.Equal(t, 2, CountFailedAssessments(assessments))
}

func TestCalculateRiskGoodStanding(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	student := &models.Student{
		AttendancePercent: 92,
		CurrentCGPA:       8.5,
	}

	result := CalculateRisk(student, nil, nil, now)

	assert.Equal(t, models.RiskLow, result.RiskLevel)
	assert.Zero(t, result.RiskScore)
	assert.Equal(t, "Good standing", result.RiskReason)
}

func TestCalculateRiskCriticalStudent(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	student := &models.Student{
		FullName:           "Rahul Verma",
		AttendancePercent:  55,
		CurrentCGPA:        4.5,
		DisciplinaryIssues: 3,
	}
	// Derived attendance matches the stored 55%.
	records := make([]models.AttendanceRecord, 0, 20)
	records = append(records, attendanceSeries(now, 1, 11, models.AttendancePresent)...)
	records = append(records, attendanceSeries(now, 12, 9, models.AttendanceAbsent)...)

	result := CalculateRisk(student, records, nil, now)

	assert.Equal(t, models.RiskHigh, result.RiskLevel)
	assert.GreaterOrEqual(t, result.RiskScore, 90)
	assert.Contains(t, result.RiskReason, "Critical attendance shortage (55.0%)")
	assert.Contains(t, result.RiskReason, "Critical academic standing (CGPA: 4.5)")
	assert.Contains(t, result.RiskReason, "High disciplinary issues (3)")
}

func TestCalculateRiskScoreCappedAtHundred(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	student := &models.Student{
		AttendancePercent:  30,
		CurrentCGPA:        3.0,
		DisciplinaryIssues: 5,
	}
	records := attendanceSeries(now, 1, 30, models.AttendanceAbsent)
	records = append(records, attendanceSeries(now, 31, 15, models.AttendancePresent)...)
	assessments := assessmentSeries(now, 10, 10, 10, 80, 80, 80)

	result := CalculateRisk(student, records, assessments, now)

	assert.Equal(t, models.RiskHigh, result.RiskLevel)
	assert.Equal(t, 100, result.RiskScore)
}

func TestCalculateRiskScoreOverrideEscalatesLevel(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// No single HIGH rule fires, but accumulated medium signals cross 60.
	student := &models.Student{
		AttendancePercent:  70,
		CurrentCGPA:        6.0,
		DisciplinaryIssues: 1,
	}
	assessments := assessmentSeries(now, 35, 36, 37, 90, 90, 90)

	result := CalculateRisk(student, assessmentsToAttendance(now), assessments, now)

	assert.Equal(t, models.RiskHigh, result.RiskLevel)
	assert.GreaterOrEqual(t, result.RiskScore, 60)
}

// assessmentsToAttendance produces a 70% present series long enough to avoid
// the insufficient-data trend path.
func assessmentsToAttendance(now time.Time) []models.AttendanceRecord {
	records := make([]models.AttendanceRecord, 0, 20)
	for i := 0; i < 20; i++ {
		status := models.AttendancePresent
		if i%10 >= 7 {
			status = models.AttendanceAbsent
		}
		records = append(records, models.AttendanceRecord{
			Date:   now.AddDate(0, 0, -(i + 1)),
			Status: status,
		})
	}
	return records
}

func TestCalculateRiskMonotonicWithFailures(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	student := &models.Student{AttendancePercent: 80, CurrentCGPA: 7.0}

	var previous int
	for failures := 0; failures <= 4; failures++ {
		percentages := make([]float64, 0, failures)
		for i := 0; i < failures; i++ {
			percentages = append(percentages, 20)
		}
		result := CalculateRisk(student, nil, assessmentSeries(now, percentages...), now)
		assert.GreaterOrEqual(t, result.RiskScore, previous, fmt.Sprintf("score should not decrease at %d failures", failures))
		previous = result.RiskScore
	}
}

func TestCalculateComprehensiveRiskBreakdownAndRecommendations(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	student := &models.Student{
		ID:                 "stu-1",
		EnrollmentNo:       "EN-001",
		FullName:           "Anita Desai",
		AttendancePercent:  55,
		CurrentCGPA:        4.8,
		DisciplinaryIssues: 3,
	}

	profile := CalculateComprehensiveRisk(student, nil, nil, now)

	assert.Equal(t, models.RiskHigh, profile.OverallRisk)
	assert.Equal(t, models.RiskHigh, profile.Breakdown.Attendance.Risk)
	assert.Equal(t, models.RiskHigh, profile.Breakdown.Academic.Risk)
	assert.Equal(t, models.RiskHigh, profile.Breakdown.Behavioral.Risk)
	assert.Contains(t, profile.Recommendations, "Immediate counseling session required")
	assert.Contains(t, profile.Recommendations, "Parent meeting for attendance")
	assert.Contains(t, profile.Recommendations, "Disciplinary committee review")
	assert.Equal(t, now, profile.LastUpdated)
}

func TestCalculateComprehensiveRiskLowRecommendation(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	student := &models.Student{AttendancePercent: 95, CurrentCGPA: 9.0}

	profile := CalculateComprehensiveRisk(student, nil, nil, now)

	assert.Equal(t, models.RiskLow, profile.OverallRisk)
	assert.Equal(t, []string{"Maintain current performance"}, profile.Recommendations)
}
