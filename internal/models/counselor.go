package models

import "time"

// Counselor is a capacity-bounded staff member responsible for counseling cases.
type Counselor struct {
	ID          string    `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Email       string    `db:"email" json:"email"`
	Department  string    `db:"department" json:"department"`
	MaxStudents int       `db:"max_students" json:"max_students"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CounselorWithLoad extends a counselor with its current ACTIVE assignment count.
type CounselorWithLoad struct {
	Counselor
	CurrentLoad int `db:"current_load" json:"current_load"`
}

// HasCapacity reports whether the counselor can take another student.
func (c CounselorWithLoad) HasCapacity() bool {
	return c.CurrentLoad < c.MaxStudents
}

// CounselorAssignment links a student to a counselor with the same
// ACTIVE/REASSIGNED semantics as mentor assignments.
type CounselorAssignment struct {
	ID          string           `db:"id" json:"id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	CounselorID string           `db:"counselor_id" json:"counselor_id"`
	Status      AssignmentStatus `db:"status" json:"status"`
	AssignedAt  time.Time        `db:"assigned_at" json:"assigned_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}
