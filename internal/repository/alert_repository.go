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

// AlertRepository manages alert rows. Only read state mutates after creation.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository constructs an AlertRepository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO alerts (id, student_id, risk_level, message, is_read, created_at)
        VALUES (:id, :student_id, :risk_level, :message, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, alert); err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// ListUnread returns unread alerts with student context, newest first.
func (r *AlertRepository) ListUnread(ctx context.Context, limit int) ([]models.AlertDetail, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT a.id, a.student_id, a.risk_level, a.message, a.is_read, a.created_at,
        s.full_name AS student_name, s.enrollment_no, s.department, s.dropout_risk
        FROM alerts a
        JOIN students s ON s.id = a.student_id
        WHERE a.is_read = false
        ORDER BY a.created_at DESC LIMIT %d`, limit)
	var alerts []models.AlertDetail
	if err := r.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, fmt.Errorf("list unread alerts: %w", err)
	}
	return alerts, nil
}

// MarkRead flips the read flag for one alert.
func (r *AlertRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE alerts SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// HasRecentUnread reports whether an unread alert at the given level exists
// for the student since the provided instant. Used as the cooldown guard.
func (r *AlertRepository) HasRecentUnread(ctx context.Context, studentID string, level models.RiskLevel, since time.Time) (bool, error) {
	const query = `SELECT 1 FROM alerts
        WHERE student_id = $1 AND risk_level = $2 AND is_read = false AND created_at >= $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, level, since); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check recent unread alert: %w", err)
	}
	return true, nil
}
