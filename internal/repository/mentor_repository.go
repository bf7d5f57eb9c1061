package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

// MentorRepository manages mentors and their assignment rows.
type MentorRepository struct {
	db *sqlx.DB
}

// NewMentorRepository constructs a MentorRepository.
func NewMentorRepository(db *sqlx.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// ListWithLoad returns all active mentors annotated with their ACTIVE assignment count.
func (r *MentorRepository) ListWithLoad(ctx context.Context) ([]models.MentorWithLoad, error) {
	const query = `SELECT m.id, m.full_name, m.email, m.department, m.specialization, m.max_students,
        m.active, m.created_at, m.updated_at,
        COUNT(a.id) FILTER (WHERE a.status = 'ACTIVE') AS current_load
        FROM mentors m
        LEFT JOIN mentor_assignments a ON a.mentor_id = m.id
        WHERE m.active = true
        GROUP BY m.id
        ORDER BY m.full_name ASC`
	var mentors []models.MentorWithLoad
	if err := r.db.SelectContext(ctx, &mentors, query); err != nil {
		return nil, fmt.Errorf("list mentors with load: %w", err)
	}
	return mentors, nil
}

// FindByID fetches a mentor by ID.
func (r *MentorRepository) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	const query = `SELECT id, full_name, email, department, specialization, max_students, active, created_at, updated_at
        FROM mentors WHERE id = $1`
	var mentor models.Mentor
	if err := r.db.GetContext(ctx, &mentor, query, id); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// Create inserts a new mentor.
func (r *MentorRepository) Create(ctx context.Context, mentor *models.Mentor) error {
	if mentor.ID == "" {
		mentor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mentor.CreatedAt.IsZero() {
		mentor.CreatedAt = now
	}
	mentor.UpdatedAt = now
	const query = `INSERT INTO mentors (id, full_name, email, department, specialization, max_students, active, created_at, updated_at)
        VALUES (:id, :full_name, :email, :department, :specialization, :max_students, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mentor); err != nil {
		return fmt.Errorf("create mentor: %w", err)
	}
	return nil
}

// ActiveAssignment returns the student's current ACTIVE mentor assignment, or nil.
func (r *MentorRepository) ActiveAssignment(ctx context.Context, studentID string) (*models.MentorAssignment, error) {
	const query = `SELECT id, student_id, mentor_id, status, assigned_at, updated_at
        FROM mentor_assignments WHERE student_id = $1 AND status = $2 LIMIT 1`
	var assignment models.MentorAssignment
	if err := r.db.GetContext(ctx, &assignment, query, studentID, models.AssignmentActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active mentor assignment: %w", err)
	}
	return &assignment, nil
}

// CountActiveAssignments returns the mentor's current ACTIVE assignment count.
func (r *MentorRepository) CountActiveAssignments(ctx context.Context, mentorID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM mentor_assignments WHERE mentor_id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &count, query, mentorID, models.AssignmentActive); err != nil {
		return 0, fmt.Errorf("count active assignments: %w", err)
	}
	return count, nil
}

// Assign supersedes any ACTIVE assignment for the student and inserts a new
// ACTIVE row in one transaction, so no intermediate state with zero or two
// ACTIVE assignments is observable.
func (r *MentorRepository) Assign(ctx context.Context, studentID, mentorID string) (*models.MentorAssignment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mentor assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx,
		`UPDATE mentor_assignments SET status = $3, updated_at = $4 WHERE student_id = $1 AND status = $2`,
		studentID, models.AssignmentActive, models.AssignmentReassigned, now,
	); err != nil {
		return nil, fmt.Errorf("supersede mentor assignment: %w", err)
	}

	assignment := &models.MentorAssignment{
		ID:         uuid.NewString(),
		StudentID:  studentID,
		MentorID:   mentorID,
		Status:     models.AssignmentActive,
		AssignedAt: now,
		UpdatedAt:  now,
	}
	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO mentor_assignments (id, student_id, mentor_id, status, assigned_at, updated_at)
        VALUES (:id, :student_id, :mentor_id, :status, :assigned_at, :updated_at)`, assignment,
	); err != nil {
		return nil, fmt.Errorf("insert mentor assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mentor assignment: %w", err)
	}
	return assignment, nil
}

// ListAssignments returns all assignment rows for a student, newest first.
func (r *MentorRepository) ListAssignments(ctx context.Context, studentID string) ([]models.MentorAssignment, error) {
	const query = `SELECT id, student_id, mentor_id, status, assigned_at, updated_at
        FROM mentor_assignments WHERE student_id = $1 ORDER BY assigned_at DESC`
	var assignments []models.MentorAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, studentID); err != nil {
		return nil, fmt.Errorf("list mentor assignments: %w", err)
	}
	return assignments, nil
}
