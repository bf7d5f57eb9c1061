package models

import "time"

// TrendDirection classifies an attendance trend.
type TrendDirection string

const (
	TrendInsufficientData TrendDirection = "INSUFFICIENT_DATA"
	TrendDeclining        TrendDirection = "DECLINING"
	TrendImproving        TrendDirection = "IMPROVING"
	TrendStable           TrendDirection = "STABLE"
)

// AttendanceTrend compares the last 30 days of attendance against the 30 days before.
type AttendanceTrend struct {
	Trend            TrendDirection `json:"trend"`
	PercentageChange float64        `json:"percentage_change"`
	RecentPercent    float64        `json:"recent_percent"`
	PreviousPercent  float64        `json:"previous_percent"`
}

// PerformanceDrop compares the most recent three assessments against the prior three.
type PerformanceDrop struct {
	HasDropped     bool    `json:"has_dropped"`
	DropPercentage float64 `json:"drop_percentage"`
	RecentAvg      float64 `json:"recent_avg"`
	PreviousAvg    float64 `json:"previous_avg"`
}

// InactivitySignal captures missed-exam and absence-gap indicators.
type InactivitySignal struct {
	MissedExams    bool       `json:"missed_exams"`
	AttendanceGap  int        `json:"attendance_gap"`
	LastAttendance *time.Time `json:"last_attendance,omitempty"`
	LastAssessment *time.Time `json:"last_assessment,omitempty"`
}

// RiskAssessment is the output of one rule-based scoring pass.
type RiskAssessment struct {
	RiskLevel  RiskLevel `json:"risk_level"`
	RiskScore  int       `json:"risk_score"`
	RiskReason string    `json:"risk_reason"`
}

// AttendanceBreakdown details the attendance contribution to a risk profile.
type AttendanceBreakdown struct {
	Risk        RiskLevel      `json:"risk"`
	Current     float64        `json:"current"`
	Trend       TrendDirection `json:"trend"`
	TrendChange float64        `json:"trend_change"`
}

// AcademicBreakdown details the academic contribution to a risk profile.
type AcademicBreakdown struct {
	Risk           RiskLevel `json:"risk"`
	CGPA           float64   `json:"cgpa"`
	RecentDrop     bool      `json:"recent_drop"`
	DropPercentage float64   `json:"drop_percentage"`
}

// BehavioralBreakdown details the behavioural contribution to a risk profile.
type BehavioralBreakdown struct {
	Risk   RiskLevel `json:"risk"`
	Issues int       `json:"issues"`
}

// RiskBreakdown groups the per-category sub-assessments of a profile.
type RiskBreakdown struct {
	Attendance AttendanceBreakdown `json:"attendance"`
	Academic   AcademicBreakdown   `json:"academic"`
	Behavioral BehavioralBreakdown `json:"behavioral"`
	Inactivity InactivitySignal    `json:"inactivity"`
}

// ScoringMethod identifies how a profile was computed.
type ScoringMethod string

const (
	MethodRuleBasedOnly ScoringMethod = "RULE_BASED_ONLY"
	MethodHybrid        ScoringMethod = "HYBRID"
)

// MLPrediction is the parsed output of the external dropout predictor.
type MLPrediction struct {
	Probability float64   `json:"probability"`
	Confidence  float64   `json:"confidence"`
	RiskLevel   string    `json:"risk_level"`
	Prediction  string    `json:"prediction"`
	Timestamp   time.Time `json:"timestamp"`
}

// MLContribution records how the ML prediction entered a hybrid score.
type MLContribution struct {
	Probability  float64 `json:"probability"`
	Confidence   float64 `json:"confidence"`
	RiskLevel    string  `json:"risk_level"`
	Contribution int     `json:"contribution"`
}

// RiskProfile is the full computed profile for one student. It is recomputed
// on demand and never partially applied.
type RiskProfile struct {
	StudentID       string          `json:"student_id"`
	EnrollmentNo    string          `json:"enrollment_no"`
	StudentName     string          `json:"student_name"`
	OverallRisk     RiskLevel       `json:"overall_risk"`
	RiskScore       int             `json:"risk_score"`
	RiskReason      string          `json:"risk_reason"`
	Breakdown       RiskBreakdown   `json:"breakdown"`
	Recommendations []string        `json:"recommendations"`
	HybridScore     int             `json:"hybrid_score"`
	MLPrediction    *MLContribution `json:"ml_prediction,omitempty"`
	Method          ScoringMethod   `json:"method"`
	LastUpdated     time.Time       `json:"last_updated"`
}

// ProblemAnalysis is the classifier collaborator's reading of counselor notes.
type ProblemAnalysis struct {
	Categories []string `json:"categories"`
	Summary    string   `json:"summary"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}
