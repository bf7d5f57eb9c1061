package models

import "time"

// RiskDistribution counts students per risk level.
type RiskDistribution struct {
	RiskLevel RiskLevel `db:"dropout_risk" json:"risk_level"`
	Count     int       `db:"count" json:"count"`
}

// DepartmentRiskSummary aggregates risk indicators per department.
type DepartmentRiskSummary struct {
	Department    string  `db:"department" json:"department"`
	StudentCount  int     `db:"student_count" json:"student_count"`
	HighRiskCount int     `db:"high_risk_count" json:"high_risk_count"`
	AvgAttendance float64 `db:"avg_attendance" json:"avg_attendance"`
	AvgCGPA       float64 `db:"avg_cgpa" json:"avg_cgpa"`
}

// AnalyticsSystemMetrics represents system level analytics captured from instrumentation.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	RiskEvaluations          uint64    `json:"risk_evaluations"`
	MLPredictorCalls         uint64    `json:"ml_predictor_calls"`
	MLPredictorFailures      uint64    `json:"ml_predictor_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
