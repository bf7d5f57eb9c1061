package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

const studentColumns = `id, enrollment_no, full_name, department, semester, current_cgpa, attendance_percent,
        disciplinary_issues, dropout_risk, risk_reason, ml_probability, ml_confidence, ml_last_updated,
        counselor_notes, problem_categories, active, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students s"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("s.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.RiskLevel != nil {
		conditions = append(conditions, fmt.Sprintf("s.dropout_risk = $%d", len(args)+1))
		args = append(args, *filter.RiskLevel)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("s.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.enrollment_no) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":          "s.full_name",
		"enrollment_no":      "s.enrollment_no",
		"attendance_percent": "s.attendance_percent",
		"current_cgpa":       "s.current_cgpa",
		"created_at":         "s.created_at",
	}
	if sortBy == "" {
		sortBy = "created_at"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d",
		prefixColumns(studentColumns, "s"), base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListIDsByRisk returns student IDs at the given risk level.
func (r *StudentRepository) ListIDsByRisk(ctx context.Context, level models.RiskLevel) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, "SELECT id FROM students WHERE dropout_risk = $1 AND active = true", level); err != nil {
		return nil, fmt.Errorf("list student ids by risk: %w", err)
	}
	return ids, nil
}

// ListAtRisk returns active students at MEDIUM or HIGH risk, highest risk first.
func (r *StudentRepository) ListAtRisk(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students
        WHERE active = true AND dropout_risk IN ($1, $2)
        ORDER BY CASE dropout_risk WHEN 'HIGH' THEN 0 ELSE 1 END, attendance_percent ASC`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, models.RiskHigh, models.RiskMedium); err != nil {
		return nil, fmt.Errorf("list at-risk students: %w", err)
	}
	return students, nil
}

// ExistsByEnrollmentNo checks if a student with the given enrollment number exists.
func (r *StudentRepository) ExistsByEnrollmentNo(ctx context.Context, enrollmentNo string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE enrollment_no = $1"
	args := []interface{}{enrollmentNo}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment no: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.DropoutRisk == "" {
		student.DropoutRisk = models.RiskUnknown
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, enrollment_no, full_name, department, semester, current_cgpa,
        attendance_percent, disciplinary_issues, dropout_risk, risk_reason, ml_probability, ml_confidence,
        ml_last_updated, counselor_notes, problem_categories, active, created_at, updated_at)
        VALUES (:id, :enrollment_no, :full_name, :department, :semester, :current_cgpa,
        :attendance_percent, :disciplinary_issues, :dropout_risk, :risk_reason, :ml_probability, :ml_confidence,
        :ml_last_updated, :counselor_notes, :problem_categories, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student's base profile.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET enrollment_no = :enrollment_no, full_name = :full_name,
        department = :department, semester = :semester, current_cgpa = :current_cgpa,
        attendance_percent = :attendance_percent, disciplinary_issues = :disciplinary_issues,
        counselor_notes = :counselor_notes, problem_categories = :problem_categories,
        active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdateRiskFields persists the cached risk columns produced by a scoring pass.
func (r *StudentRepository) UpdateRiskFields(ctx context.Context, update models.RiskFieldsUpdate) error {
	const query = `UPDATE students SET dropout_risk = $2, risk_reason = $3, ml_probability = $4,
        ml_confidence = $5, ml_last_updated = $6, updated_at = $7 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		update.StudentID,
		update.DropoutRisk,
		update.RiskReason,
		update.MLProbability,
		update.MLConfidence,
		update.MLLastUpdated,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("update risk fields: %w", err)
	}
	return nil
}

// UpdateProblemCategories caches the classifier output for a student.
func (r *StudentRepository) UpdateProblemCategories(ctx context.Context, studentID string, categories []string) error {
	const query = `UPDATE students SET problem_categories = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, studentID, pq.StringArray(categories), time.Now().UTC()); err != nil {
		return fmt.Errorf("update problem categories: %w", err)
	}
	return nil
}

func prefixColumns(columns, alias string) string {
	parts := strings.Split(columns, ",")
	prefixed := make([]string, 0, len(parts))
	for _, part := range parts {
		prefixed = append(prefixed, alias+"."+strings.TrimSpace(part))
	}
	return strings.Join(prefixed, ", ")
}
