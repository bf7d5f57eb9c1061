package models

import "time"

// CounselingLog records one counseling session with risk snapshots taken
// before and after the session window.
type CounselingLog struct {
	ID               string     `db:"id" json:"id"`
	StudentID        string     `db:"student_id" json:"student_id"`
	MentorID         string     `db:"mentor_id" json:"mentor_id"`
	SessionDate      time.Time  `db:"session_date" json:"session_date"`
	Notes            string     `db:"notes" json:"notes"`
	ActionsTaken     *string    `db:"actions_taken" json:"actions_taken,omitempty"`
	FollowUpRequired bool       `db:"follow_up_required" json:"follow_up_required"`
	FollowUpDate     *time.Time `db:"follow_up_date" json:"follow_up_date,omitempty"`
	RiskBefore       RiskLevel  `db:"risk_before" json:"risk_before"`
	RiskScoreBefore  int        `db:"risk_score_before" json:"risk_score_before"`
	RiskAfter        *RiskLevel `db:"risk_after" json:"risk_after,omitempty"`
	RiskScoreAfter   *int       `db:"risk_score_after" json:"risk_score_after,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// SessionImprovement summarises the risk delta of one completed session.
type SessionImprovement struct {
	LogID           string    `json:"log_id"`
	SessionDate     time.Time `json:"session_date"`
	RiskImprovement int       `json:"risk_improvement"`
	RiskBefore      RiskLevel `json:"risk_before"`
	RiskAfter       RiskLevel `json:"risk_after"`
}

// ImprovementMetrics aggregates counseling outcomes for one student.
type ImprovementMetrics struct {
	HasData                bool                 `json:"has_data"`
	TotalSessions          int                  `json:"total_sessions"`
	CompletedSessions      int                  `json:"completed_sessions"`
	AverageRiskImprovement float64              `json:"average_risk_improvement"`
	Improvements           []SessionImprovement `json:"improvements,omitempty"`
}
