package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

const (
	trendWindow       = 30 * 24 * time.Hour
	inactivityWindow  = 30 * 24 * time.Hour
	minTrendRecords   = 10
	minDropAssessment = 6
	failThresholdPct  = 33.0
)

// AnalyzeAttendanceTrend compares the last 30 days of attendance against the
// 30 days before. Windows are anchored at the provided instant, so the result
// shifts as time passes; risk is meant to reflect current recency.
func AnalyzeAttendanceTrend(records []models.AttendanceRecord, now time.Time) models.AttendanceTrend {
	if len(records) < minTrendRecords {
		return models.AttendanceTrend{Trend: models.TrendInsufficientData}
	}

	thirtyDaysAgo := now.Add(-trendWindow)
	sixtyDaysAgo := now.Add(-2 * trendWindow)

	var recentTotal, recentPresent, previousTotal, previousPresent int
	for _, r := range records {
		switch {
		case !r.Date.Before(thirtyDaysAgo):
			recentTotal++
			if r.Status == models.AttendancePresent {
				recentPresent++
			}
		case !r.Date.Before(sixtyDaysAgo):
			previousTotal++
			if r.Status == models.AttendancePresent {
				previousPresent++
			}
		}
	}

	var recentPercent, previousPercent float64
	if recentTotal > 0 {
		recentPercent = float64(recentPresent) / float64(recentTotal) * 100
	}
	if previousTotal > 0 {
		previousPercent = float64(previousPresent) / float64(previousTotal) * 100
	}

	change := recentPercent - previousPercent
	trend := models.TrendStable
	if change < -15 {
		trend = models.TrendDeclining
	} else if change > 15 {
		trend = models.TrendImproving
	}

	return models.AttendanceTrend{
		Trend:            trend,
		PercentageChange: change,
		RecentPercent:    recentPercent,
		PreviousPercent:  previousPercent,
	}
}

// DetectPerformanceDrop compares the average percentage of the three most
// recent assessments against the three before them. Input must be sorted
// newest first.
func DetectPerformanceDrop(assessments []models.Assessment) models.PerformanceDrop {
	if len(assessments) < minDropAssessment {
		return models.PerformanceDrop{}
	}

	avg := func(slice []models.Assessment) float64 {
		var sum float64
		for _, a := range slice {
			sum += a.Percentage()
		}
		return sum / float64(len(slice))
	}

	recentAvg := avg(assessments[:3])
	previousAvg := avg(assessments[3:6])
	drop := previousAvg - recentAvg

	return models.PerformanceDrop{
		HasDropped:     drop > 20,
		DropPercentage: drop,
		RecentAvg:      recentAvg,
		PreviousAvg:    previousAvg,
	}
}

// DetectInactivity flags students with no assessment activity in the last 30
// days and measures the longest consecutive absence run. Assessments must be
// sorted newest first.
func DetectInactivity(records []models.AttendanceRecord, assessments []models.Assessment, now time.Time) models.InactivitySignal {
	thirtyDaysAgo := now.Add(-inactivityWindow)

	recentAssessments := 0
	for _, a := range assessments {
		if !a.Date.Before(thirtyDaysAgo) {
			recentAssessments++
		}
	}
	missedExams := recentAssessments == 0 && len(assessments) > 0

	sorted := make([]models.AttendanceRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })

	// The gap resets on any non-ABSENT record.
	maxGap, currentGap := 0, 0
	for _, r := range sorted {
		if r.Status == models.AttendanceAbsent {
			currentGap++
			if currentGap > maxGap {
				maxGap = currentGap
			}
		} else {
			currentGap = 0
		}
	}

	signal := models.InactivitySignal{MissedExams: missedExams, AttendanceGap: maxGap}
	if len(sorted) > 0 {
		d := sorted[0].Date
		signal.LastAttendance = &d
	}
	if len(assessments) > 0 {
		d := assessments[0].Date
		signal.LastAssessment = &d
	}
	return signal
}

// CalculateRisk runs the weighted rule accumulation over one student's
// records. The level only ever escalates as rules fire; the final score
// thresholds can raise it further but never lower it.
func CalculateRisk(student *models.Student, records []models.AttendanceRecord, assessments []models.Assessment, now time.Time) models.RiskAssessment {
	level := models.RiskLow
	score := 0
	var reasons []string

	raiseTo := func(target models.RiskLevel) {
		if target == models.RiskHigh {
			level = models.RiskHigh
		} else if target == models.RiskMedium && level != models.RiskHigh {
			level = models.RiskMedium
		}
	}

	// 1. Attendance.
	attendancePercent := student.AttendancePercent
	if len(records) > 0 {
		present := 0
		for _, r := range records {
			if r.Status == models.AttendancePresent {
				present++
			}
		}
		attendancePercent = float64(present) / float64(len(records)) * 100
	}

	if attendancePercent < 60 {
		raiseTo(models.RiskHigh)
		score += 40
		reasons = append(reasons, fmt.Sprintf("Critical attendance shortage (%.1f%%)", attendancePercent))
	} else if attendancePercent < 75 {
		raiseTo(models.RiskMedium)
		score += 20
		reasons = append(reasons, fmt.Sprintf("Low attendance warning (%.1f%%)", attendancePercent))
	}

	if AnalyzeAttendanceTrend(records, now).Trend == models.TrendDeclining {
		raiseTo(models.RiskMedium)
		score += 15
		reasons = append(reasons, "Declining attendance trend")
	}

	// 2. Academics.
	failed := CountFailedAssessments(assessments)
	if failed > 2 {
		raiseTo(models.RiskHigh)
		score += 30
		reasons = append(reasons, fmt.Sprintf("Repeated failures (%d exams)", failed))
	} else if failed > 0 {
		// Flat +15 whether one or two failures.
		raiseTo(models.RiskMedium)
		score += 15
		reasons = append(reasons, fmt.Sprintf("Failed in %d assessment(s)", failed))
	}

	if student.CurrentCGPA > 0 {
		if student.CurrentCGPA < 5.0 {
			raiseTo(models.RiskHigh)
			score += 25
			reasons = append(reasons, fmt.Sprintf("Critical academic standing (CGPA: %s)", formatCGPA(student.CurrentCGPA)))
		} else if student.CurrentCGPA < 6.5 {
			score += 10
			reasons = append(reasons, fmt.Sprintf("Low CGPA (%s)", formatCGPA(student.CurrentCGPA)))
		}
	}

	// 3. Sudden performance drop.
	if drop := DetectPerformanceDrop(assessments); drop.HasDropped {
		raiseTo(models.RiskMedium)
		score += 20
		reasons = append(reasons, fmt.Sprintf("Sudden performance drop (-%.1f%%)", drop.DropPercentage))
	}

	// 4. Behavioral.
	if student.DisciplinaryIssues > 2 {
		raiseTo(models.RiskHigh)
		score += 25
		reasons = append(reasons, fmt.Sprintf("High disciplinary issues (%d)", student.DisciplinaryIssues))
	} else if student.DisciplinaryIssues > 0 {
		score += 10
		reasons = append(reasons, "Disciplinary history")
	}

	// 5. Inactivity.
	inactivity := DetectInactivity(records, assessments, now)
	if inactivity.MissedExams {
		score += 10
		reasons = append(reasons, "Missed recent exams")
	}
	if inactivity.AttendanceGap > 7 {
		score += 10
		reasons = append(reasons, fmt.Sprintf("Long absence gap (%d days)", inactivity.AttendanceGap))
	}

	// 6. Final override from the accumulated score.
	if score >= 60 {
		level = models.RiskHigh
	} else if score >= 30 {
		raiseTo(models.RiskMedium)
	}
	if score > 100 {
		score = 100
	}

	reason := "Good standing"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}

	return models.RiskAssessment{RiskLevel: level, RiskScore: score, RiskReason: reason}
}

// CalculateComprehensiveRisk wraps CalculateRisk with a per-category breakdown
// and level-driven recommendations.
func CalculateComprehensiveRisk(student *models.Student, records []models.AttendanceRecord, assessments []models.Assessment, now time.Time) models.RiskProfile {
	assessment := CalculateRisk(student, records, assessments, now)
	trend := AnalyzeAttendanceTrend(records, now)
	drop := DetectPerformanceDrop(assessments)
	inactivity := DetectInactivity(records, assessments, now)

	var recommendations []string
	switch assessment.RiskLevel {
	case models.RiskHigh:
		recommendations = append(recommendations, "Immediate counseling session required")
		if student.AttendancePercent < 60 {
			recommendations = append(recommendations, "Parent meeting for attendance")
		}
		if drop.HasDropped {
			recommendations = append(recommendations, "Remedial classes for academic drop")
		}
		if student.DisciplinaryIssues > 2 {
			recommendations = append(recommendations, "Disciplinary committee review")
		}
	case models.RiskMedium:
		recommendations = append(recommendations, "Monitor progress closely")
		if trend.Trend == models.TrendDeclining {
			recommendations = append(recommendations, "Student meeting regarding attendance")
		}
		if inactivity.MissedExams {
			recommendations = append(recommendations, "Check reason for missed exams")
		}
	default:
		recommendations = append(recommendations, "Maintain current performance")
	}

	return models.RiskProfile{
		StudentID:    student.ID,
		EnrollmentNo: student.EnrollmentNo,
		StudentName:  student.FullName,
		OverallRisk:  assessment.RiskLevel,
		RiskScore:    assessment.RiskScore,
		RiskReason:   assessment.RiskReason,
		Breakdown: models.RiskBreakdown{
			Attendance: models.AttendanceBreakdown{
				Risk:        thresholdRisk(student.AttendancePercent, 60, 75),
				Current:     student.AttendancePercent,
				Trend:       trend.Trend,
				TrendChange: trend.PercentageChange,
			},
			Academic: models.AcademicBreakdown{
				Risk:           thresholdRisk(student.CurrentCGPA, 5.0, 6.5),
				CGPA:           student.CurrentCGPA,
				RecentDrop:     drop.HasDropped,
				DropPercentage: drop.DropPercentage,
			},
			Behavioral: models.BehavioralBreakdown{
				Risk:   disciplinaryRisk(student.DisciplinaryIssues),
				Issues: student.DisciplinaryIssues,
			},
			Inactivity: inactivity,
		},
		Recommendations: recommendations,
		LastUpdated:     now,
	}
}

// CountFailedAssessments counts scores below the 33% pass line.
func CountFailedAssessments(assessments []models.Assessment) int {
	failed := 0
	for _, a := range assessments {
		if a.Percentage() < failThresholdPct {
			failed++
		}
	}
	return failed
}

// thresholdRisk labels a value HIGH below the first bound and MEDIUM below the second.
func thresholdRisk(value, highBelow, mediumBelow float64) models.RiskLevel {
	switch {
	case value < highBelow:
		return models.RiskHigh
	case value < mediumBelow:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func disciplinaryRisk(issues int) models.RiskLevel {
	switch {
	case issues > 2:
		return models.RiskHigh
	case issues > 0:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func formatCGPA(cgpa float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", cgpa), "0"), ".")
}
