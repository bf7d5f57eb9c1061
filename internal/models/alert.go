package models

import "time"

// Alert is a notification raised by the scorer or the SLA escalator.
// Read state is the only mutable field.
type Alert struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	RiskLevel RiskLevel `db:"risk_level" json:"risk_level"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AlertDetail extends an alert with student context for list views.
type AlertDetail struct {
	Alert
	StudentName  string    `db:"student_name" json:"student_name"`
	EnrollmentNo string    `db:"enrollment_no" json:"enrollment_no"`
	Department   string    `db:"department" json:"department"`
	DropoutRisk  RiskLevel `db:"dropout_risk" json:"dropout_risk"`
}
