package models

import "time"

// TaskPriority sets the SLA window of an intervention task.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "HIGH"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityLow    TaskPriority = "LOW"
)

// Valid returns true when the priority is a supported value.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// SLA returns the deadline window for the priority. Due dates are fixed at
// creation and never recomputed.
func (p TaskPriority) SLA() time.Duration {
	switch p {
	case PriorityHigh:
		return 48 * time.Hour
	case PriorityMedium:
		return 7 * 24 * time.Hour
	default:
		return 14 * 24 * time.Hour
	}
}

// TaskStatus tracks the intervention task lifecycle.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskEscalated  TaskStatus = "ESCALATED"
)

// Valid returns true when the status is a supported value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskEscalated:
		return true
	default:
		return false
	}
}

// InterventionTask is an SLA-tracked action item for an at-risk student.
type InterventionTask struct {
	ID          string       `db:"id" json:"id"`
	StudentID   string       `db:"student_id" json:"student_id"`
	MentorID    *string      `db:"mentor_id" json:"mentor_id,omitempty"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Priority    TaskPriority `db:"priority" json:"priority"`
	DueDate     time.Time    `db:"due_date" json:"due_date"`
	Status      TaskStatus   `db:"status" json:"status"`
	Escalated   bool         `db:"escalated" json:"escalated"`
	EscalatedAt *time.Time   `db:"escalated_at" json:"escalated_at,omitempty"`
	CompletedAt *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// TaskFilter defines query filters for task listings.
type TaskFilter struct {
	StudentID string
	MentorID  string
	Status    *TaskStatus
	Priority  *TaskPriority
	Page      int
	PageSize  int
}
