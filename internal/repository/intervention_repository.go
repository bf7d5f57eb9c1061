package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

const taskColumns = `id, student_id, mentor_id, title, description, priority, due_date, status,
        escalated, escalated_at, completed_at, created_at, updated_at`

// InterventionRepository manages SLA-tracked intervention tasks.
type InterventionRepository struct {
	db *sqlx.DB
}

// NewInterventionRepository constructs an InterventionRepository.
func NewInterventionRepository(db *sqlx.DB) *InterventionRepository {
	return &InterventionRepository{db: db}
}

// Create inserts a new task.
func (r *InterventionRepository) Create(ctx context.Context, task *models.InterventionTask) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	const query = `INSERT INTO intervention_tasks (id, student_id, mentor_id, title, description, priority,
        due_date, status, escalated, escalated_at, completed_at, created_at, updated_at)
        VALUES (:id, :student_id, :mentor_id, :title, :description, :priority,
        :due_date, :status, :escalated, :escalated_at, :completed_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create intervention task: %w", err)
	}
	return nil
}

// FindByID fetches a task by ID.
func (r *InterventionRepository) FindByID(ctx context.Context, id string) (*models.InterventionTask, error) {
	query := fmt.Sprintf("SELECT %s FROM intervention_tasks WHERE id = $1", taskColumns)
	var task models.InterventionTask
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns tasks matching the filter, newest first.
func (r *InterventionRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.InterventionTask, int, error) {
	base := "FROM intervention_tasks"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.MentorID != "" {
		conditions = append(conditions, fmt.Sprintf("mentor_id = $%d", len(args)+1))
		args = append(args, filter.MentorID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)+1))
		args = append(args, *filter.Priority)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", taskColumns, base, size, offset)
	var tasks []models.InterventionTask
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list intervention tasks: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count intervention tasks: %w", err)
	}
	return tasks, total, nil
}

// ListOverdue returns open, not-yet-escalated tasks whose due date has passed.
func (r *InterventionRepository) ListOverdue(ctx context.Context, now time.Time) ([]models.InterventionTask, error) {
	query := fmt.Sprintf(`SELECT %s FROM intervention_tasks
        WHERE status IN ($1, $2) AND due_date < $3 AND escalated = false
        ORDER BY due_date ASC`, taskColumns)
	var tasks []models.InterventionTask
	if err := r.db.SelectContext(ctx, &tasks, query, models.TaskPending, models.TaskInProgress, now); err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	return tasks, nil
}

// MarkEscalated transitions a task to ESCALATED and stamps the escalation time.
func (r *InterventionRepository) MarkEscalated(ctx context.Context, id string, escalatedAt time.Time) error {
	const query = `UPDATE intervention_tasks SET status = $2, escalated = true, escalated_at = $3, updated_at = $3
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.TaskEscalated, escalatedAt); err != nil {
		return fmt.Errorf("mark task escalated: %w", err)
	}
	return nil
}

// UpdateStatus moves a task through its lifecycle; COMPLETED stamps completedAt.
func (r *InterventionRepository) UpdateStatus(ctx context.Context, id string, status models.TaskStatus, completedAt *time.Time) error {
	const query = `UPDATE intervention_tasks SET status = $2, completed_at = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, completedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}
