package models

import "time"

// Assessment is a graded exam or test entry. Rows are append-only per student.
type Assessment struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	Subject       string    `db:"subject" json:"subject"`
	ExamType      string    `db:"exam_type" json:"exam_type"`
	MarksObtained float64   `db:"marks_obtained" json:"marks_obtained"`
	TotalMarks    float64   `db:"total_marks" json:"total_marks"`
	Date          time.Time `db:"date" json:"date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Percentage returns the score as a 0-100 percentage.
func (a Assessment) Percentage() float64 {
	if a.TotalMarks <= 0 {
		return 0
	}
	return a.MarksObtained / a.TotalMarks * 100
}

// AssessmentFilter defines query filters for assessment listings.
type AssessmentFilter struct {
	StudentID string
	Subject   string
	ExamType  string
	Page      int
	PageSize  int
}
