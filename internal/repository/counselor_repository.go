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

// CounselorRepository manages counselors and their assignment rows.
type CounselorRepository struct {
	db *sqlx.DB
}

// NewCounselorRepository constructs a CounselorRepository.
func NewCounselorRepository(db *sqlx.DB) *CounselorRepository {
	return &CounselorRepository{db: db}
}

// ListWithLoad returns all active counselors annotated with their ACTIVE assignment count.
func (r *CounselorRepository) ListWithLoad(ctx context.Context) ([]models.CounselorWithLoad, error) {
	const query = `SELECT c.id, c.full_name, c.email, c.department, c.max_students,
        c.active, c.created_at, c.updated_at,
        COUNT(a.id) FILTER (WHERE a.status = 'ACTIVE') AS current_load
        FROM counselors c
        LEFT JOIN counselor_assignments a ON a.counselor_id = c.id
        WHERE c.active = true
        GROUP BY c.id
        ORDER BY c.full_name ASC`
	var counselors []models.CounselorWithLoad
	if err := r.db.SelectContext(ctx, &counselors, query); err != nil {
		return nil, fmt.Errorf("list counselors with load: %w", err)
	}
	return counselors, nil
}

// FindByID fetches a counselor by ID.
func (r *CounselorRepository) FindByID(ctx context.Context, id string) (*models.Counselor, error) {
	const query = `SELECT id, full_name, email, department, max_students, active, created_at, updated_at
        FROM counselors WHERE id = $1`
	var counselor models.Counselor
	if err := r.db.GetContext(ctx, &counselor, query, id); err != nil {
		return nil, err
	}
	return &counselor, nil
}

// Create inserts a new counselor.
func (r *CounselorRepository) Create(ctx context.Context, counselor *models.Counselor) error {
	if counselor.ID == "" {
		counselor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if counselor.CreatedAt.IsZero() {
		counselor.CreatedAt = now
	}
	counselor.UpdatedAt = now
	const query = `INSERT INTO counselors (id, full_name, email, department, max_students, active, created_at, updated_at)
        VALUES (:id, :full_name, :email, :department, :max_students, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, counselor); err != nil {
		return fmt.Errorf("create counselor: %w", err)
	}
	return nil
}

// ActiveAssignment returns the student's current ACTIVE counselor assignment, or nil.
func (r *CounselorRepository) ActiveAssignment(ctx context.Context, studentID string) (*models.CounselorAssignment, error) {
	const query = `SELECT id, student_id, counselor_id, status, assigned_at, updated_at
        FROM counselor_assignments WHERE student_id = $1 AND status = $2 LIMIT 1`
	var assignment models.CounselorAssignment
	if err := r.db.GetContext(ctx, &assignment, query, studentID, models.AssignmentActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active counselor assignment: %w", err)
	}
	return &assignment, nil
}

// CountActiveAssignments returns the counselor's current ACTIVE assignment count.
func (r *CounselorRepository) CountActiveAssignments(ctx context.Context, counselorID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM counselor_assignments WHERE counselor_id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &count, query, counselorID, models.AssignmentActive); err != nil {
		return 0, fmt.Errorf("count active counselor assignments: %w", err)
	}
	return count, nil
}

// Assign supersedes any ACTIVE counselor assignment for the student and
// inserts a new ACTIVE row in one transaction.
func (r *CounselorRepository) Assign(ctx context.Context, studentID, counselorID string) (*models.CounselorAssignment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin counselor assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx,
		`UPDATE counselor_assignments SET status = $3, updated_at = $4 WHERE student_id = $1 AND status = $2`,
		studentID, models.AssignmentActive, models.AssignmentReassigned, now,
	); err != nil {
		return nil, fmt.Errorf("supersede counselor assignment: %w", err)
	}

	assignment := &models.CounselorAssignment{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		CounselorID: counselorID,
		Status:      models.AssignmentActive,
		AssignedAt:  now,
		UpdatedAt:   now,
	}
	if _, err = tx.NamedExecContext(ctx,
		`INSERT INTO counselor_assignments (id, student_id, counselor_id, status, assigned_at, updated_at)
        VALUES (:id, :student_id, :counselor_id, :status, :assigned_at, :updated_at)`, assignment,
	); err != nil {
		return nil, fmt.Errorf("insert counselor assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit counselor assignment: %w", err)
	}
	return assignment, nil
}
