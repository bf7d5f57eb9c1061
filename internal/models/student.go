package models

import (
	"time"

	"github.com/lib/pq"
)

// RiskLevel categorises a student's dropout risk.
type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskUnknown RiskLevel = "UNKNOWN"
)

// Valid returns true when the level is a supported value.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskUnknown:
		return true
	default:
		return false
	}
}

// Student represents a learner tracked by the retention platform.
type Student struct {
	ID                 string         `db:"id" json:"id"`
	EnrollmentNo       string         `db:"enrollment_no" json:"enrollment_no"`
	FullName           string         `db:"full_name" json:"full_name"`
	Department         string         `db:"department" json:"department"`
	Semester           int            `db:"semester" json:"semester"`
	CurrentCGPA        float64        `db:"current_cgpa" json:"current_cgpa"`
	AttendancePercent  float64        `db:"attendance_percent" json:"attendance_percent"`
	DisciplinaryIssues int            `db:"disciplinary_issues" json:"disciplinary_issues"`
	DropoutRisk        RiskLevel      `db:"dropout_risk" json:"dropout_risk"`
	RiskReason         string         `db:"risk_reason" json:"risk_reason"`
	MLProbability      *float64       `db:"ml_probability" json:"ml_probability,omitempty"`
	MLConfidence       *float64       `db:"ml_confidence" json:"ml_confidence,omitempty"`
	MLLastUpdated      *time.Time     `db:"ml_last_updated" json:"ml_last_updated,omitempty"`
	CounselorNotes     string         `db:"counselor_notes" json:"counselor_notes"`
	ProblemCategories  pq.StringArray `db:"problem_categories" json:"problem_categories,omitempty"`
	Active             bool           `db:"active" json:"active"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	Department string
	RiskLevel  *RiskLevel
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// RiskFieldsUpdate carries the cached risk columns written back after a scoring pass.
type RiskFieldsUpdate struct {
	StudentID     string
	DropoutRisk   RiskLevel
	RiskReason    string
	MLProbability *float64
	MLConfidence  *float64
	MLLastUpdated *time.Time
}
