package models

import "time"

// Mentor is a capacity-bounded staff member who takes on at-risk students.
type Mentor struct {
	ID             string    `db:"id" json:"id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Email          string    `db:"email" json:"email"`
	Department     string    `db:"department" json:"department"`
	Specialization string    `db:"specialization" json:"specialization"`
	MaxStudents    int       `db:"max_students" json:"max_students"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// MentorWithLoad extends a mentor with its current ACTIVE assignment count.
type MentorWithLoad struct {
	Mentor
	CurrentLoad int `db:"current_load" json:"current_load"`
}

// HasCapacity reports whether the mentor can take another student.
func (m MentorWithLoad) HasCapacity() bool {
	return m.CurrentLoad < m.MaxStudents
}

// AssignmentStatus tracks whether an assignment row is the current one.
type AssignmentStatus string

const (
	AssignmentActive     AssignmentStatus = "ACTIVE"
	AssignmentReassigned AssignmentStatus = "REASSIGNED"
)

// MentorAssignment links a student to a mentor. At most one ACTIVE row exists
// per student at a time.
type MentorAssignment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	MentorID   string           `db:"mentor_id" json:"mentor_id"`
	Status     AssignmentStatus `db:"status" json:"status"`
	AssignedAt time.Time        `db:"assigned_at" json:"assigned_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// MentorMatch is a scored candidate produced by specialization matching.
type MentorMatch struct {
	MentorWithLoad
	MatchScore        int      `json:"match_score"`
	MatchedCategories []string `json:"matched_categories"`
}
