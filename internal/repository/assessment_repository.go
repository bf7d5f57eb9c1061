package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

// AssessmentRepository manages append-only assessment rows.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs an AssessmentRepository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// ListByStudent returns all assessments for one student, newest first.
func (r *AssessmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Assessment, error) {
	const query = `SELECT id, student_id, subject, exam_type, marks_obtained, total_marks, date, created_at
        FROM assessments WHERE student_id = $1 ORDER BY date DESC`
	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, studentID); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return assessments, nil
}

// Create inserts a new assessment row. Rows are never updated or deleted.
func (r *AssessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assessments (id, student_id, subject, exam_type, marks_obtained, total_marks, date, created_at)
        VALUES (:id, :student_id, :subject, :exam_type, :marks_obtained, :total_marks, :date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assessment); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}
