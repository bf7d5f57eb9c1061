package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

const counselingColumns = `id, student_id, mentor_id, session_date, notes, actions_taken, follow_up_required,
        follow_up_date, risk_before, risk_score_before, risk_after, risk_score_after, created_at, updated_at`

// CounselingRepository manages counseling session logs.
type CounselingRepository struct {
	db *sqlx.DB
}

// NewCounselingRepository constructs a CounselingRepository.
func NewCounselingRepository(db *sqlx.DB) *CounselingRepository {
	return &CounselingRepository{db: db}
}

// Create inserts a new counseling log.
func (r *CounselingRepository) Create(ctx context.Context, log *models.CounselingLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = now
	}
	log.UpdatedAt = now
	const query = `INSERT INTO counseling_logs (id, student_id, mentor_id, session_date, notes, actions_taken,
        follow_up_required, follow_up_date, risk_before, risk_score_before, risk_after, risk_score_after,
        created_at, updated_at)
        VALUES (:id, :student_id, :mentor_id, :session_date, :notes, :actions_taken,
        :follow_up_required, :follow_up_date, :risk_before, :risk_score_before, :risk_after, :risk_score_after,
        :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create counseling log: %w", err)
	}
	return nil
}

// FindByID fetches a counseling log by ID.
func (r *CounselingRepository) FindByID(ctx context.Context, id string) (*models.CounselingLog, error) {
	query := fmt.Sprintf("SELECT %s FROM counseling_logs WHERE id = $1", counselingColumns)
	var log models.CounselingLog
	if err := r.db.GetContext(ctx, &log, query, id); err != nil {
		return nil, err
	}
	return &log, nil
}

// ListByStudent returns all counseling logs for one student, newest first.
func (r *CounselingRepository) ListByStudent(ctx context.Context, studentID string) ([]models.CounselingLog, error) {
	query := fmt.Sprintf("SELECT %s FROM counseling_logs WHERE student_id = $1 ORDER BY session_date DESC", counselingColumns)
	var logs []models.CounselingLog
	if err := r.db.SelectContext(ctx, &logs, query, studentID); err != nil {
		return nil, fmt.Errorf("list counseling logs: %w", err)
	}
	return logs, nil
}

// SetAfterSnapshot stores the post-session risk snapshot.
func (r *CounselingRepository) SetAfterSnapshot(ctx context.Context, id string, riskAfter models.RiskLevel, scoreAfter int) error {
	const query = `UPDATE counseling_logs SET risk_after = $2, risk_score_after = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, riskAfter, scoreAfter, time.Now().UTC()); err != nil {
		return fmt.Errorf("set counseling after snapshot: %w", err)
	}
	return nil
}
