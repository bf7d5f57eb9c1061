package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

// AnalyticsRepository provides read-optimised aggregates for dashboards.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository constructs an AnalyticsRepository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// RiskDistribution counts active students per risk level.
func (r *AnalyticsRepository) RiskDistribution(ctx context.Context) ([]models.RiskDistribution, error) {
	const query = `SELECT dropout_risk, COUNT(*) AS count
        FROM students WHERE active = true
        GROUP BY dropout_risk
        ORDER BY dropout_risk`
	var rows []models.RiskDistribution
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("risk distribution: %w", err)
	}
	return rows, nil
}

// DepartmentSummaries aggregates risk indicators per department.
func (r *AnalyticsRepository) DepartmentSummaries(ctx context.Context) ([]models.DepartmentRiskSummary, error) {
	const query = `SELECT department,
        COUNT(*) AS student_count,
        COUNT(*) FILTER (WHERE dropout_risk = 'HIGH') AS high_risk_count,
        COALESCE(AVG(attendance_percent), 0) AS avg_attendance,
        COALESCE(AVG(current_cgpa), 0) AS avg_cgpa
        FROM students WHERE active = true
        GROUP BY department
        ORDER BY department`
	var rows []models.DepartmentRiskSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("department summaries: %w", err)
	}
	return rows, nil
}
