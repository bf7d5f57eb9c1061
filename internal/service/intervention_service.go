package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-retention-api/internal/models"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
)

type interventionRepository interface {
	Create(ctx context.Context, task *models.InterventionTask) error
	FindByID(ctx context.Context, id string) (*models.InterventionTask, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.InterventionTask, int, error)
	ListOverdue(ctx context.Context, now time.Time) ([]models.InterventionTask, error)
	MarkEscalated(ctx context.Context, id string, escalatedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus, completedAt *time.Time) error
}

type interventionAlertWriter interface {
	Create(ctx context.Context, alert *models.Alert) error
}

type interventionStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// CreateTaskRequest carries the payload for opening an intervention task.
type CreateTaskRequest struct {
	StudentID   string  `json:"student_id" validate:"required"`
	MentorID    *string `json:"mentor_id,omitempty"`
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Priority    string  `json:"priority" validate:"required,priority"`
}

// InterventionService manages the intervention task lifecycle and its SLA
// deadlines.
type InterventionService struct {
	tasks     interventionRepository
	students  interventionStudentReader
	alerts    interventionAlertWriter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewInterventionService constructs an InterventionService.
func NewInterventionService(tasks interventionRepository, students interventionStudentReader, alerts interventionAlertWriter, validate *validator.Validate, logger *zap.Logger) *InterventionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &InterventionService{
		tasks:     tasks,
		students:  students,
		alerts:    alerts,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	_ = svc.validator.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return models.TaskPriority(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// CreateTask opens a task with a due date fixed at creation from the
// priority's SLA window.
func (s *InterventionService) CreateTask(ctx context.Context, req CreateTaskRequest) (*models.InterventionTask, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, fmt.Errorf("load student: %w", err)
	}

	now := s.now()
	priority := models.TaskPriority(strings.ToUpper(req.Priority))
	task := &models.InterventionTask{
		StudentID:   req.StudentID,
		MentorID:    req.MentorID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		DueDate:     now.Add(priority.SLA()),
		Status:      models.TaskPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create intervention task: %w", err)
	}

	s.logger.Info("intervention task created",
		zap.String("task_id", task.ID),
		zap.String("student_id", task.StudentID),
		zap.String("priority", string(task.Priority)),
		zap.Time("due_date", task.DueDate),
	)
	return task, nil
}

// Get returns a task by id.
func (s *InterventionService) Get(ctx context.Context, id string) (*models.InterventionTask, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, fmt.Errorf("load task: %w", err)
	}
	return task, nil
}

// List returns tasks matching the filter with pagination info.
func (s *InterventionService) List(ctx context.Context, filter models.TaskFilter) ([]models.InterventionTask, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// CheckSLAViolations returns every open, not-yet-escalated task past its due
// date.
func (s *InterventionService) CheckSLAViolations(ctx context.Context) ([]models.InterventionTask, error) {
	return s.tasks.ListOverdue(ctx, s.now())
}

// EscalateTask marks the task ESCALATED and raises a HIGH alert referencing
// it. Escalating an already-escalated task is a no-op.
func (s *InterventionService) EscalateTask(ctx context.Context, taskID string) (*models.InterventionTask, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Escalated {
		return task, nil
	}

	now := s.now()
	if err := s.tasks.MarkEscalated(ctx, taskID, now); err != nil {
		return nil, fmt.Errorf("escalate task: %w", err)
	}
	task.Status = models.TaskEscalated
	task.Escalated = true
	task.EscalatedAt = &now

	s.logger.Warn("intervention task escalated",
		zap.String("task_id", task.ID),
		zap.String("student_id", task.StudentID),
		zap.Time("due_date", task.DueDate),
	)

	if s.alerts != nil {
		alert := &models.Alert{
			StudentID: task.StudentID,
			RiskLevel: models.RiskHigh,
			Message:   fmt.Sprintf("ESCALATED: Intervention task %q overdue and requires immediate attention", task.Title),
			CreatedAt: now,
		}
		if err := s.alerts.Create(ctx, alert); err != nil {
			s.logger.Warn("escalation alert failed", zap.String("task_id", task.ID), zap.Error(err))
		}
	}
	return task, nil
}

// AutoEscalateOverdueTasks escalates every SLA violation. The escalated flag
// in the selection predicate makes repeated sweeps idempotent.
func (s *InterventionService) AutoEscalateOverdueTasks(ctx context.Context) ([]models.InterventionTask, error) {
	overdue, err := s.CheckSLAViolations(ctx)
	if err != nil {
		return nil, err
	}

	escalated := make([]models.InterventionTask, 0, len(overdue))
	for _, task := range overdue {
		updated, err := s.EscalateTask(ctx, task.ID)
		if err != nil {
			s.logger.Error("auto-escalation failed", zap.String("task_id", task.ID), zap.Error(err))
			continue
		}
		escalated = append(escalated, *updated)
	}
	if len(escalated) > 0 {
		s.logger.Info("auto-escalated overdue tasks", zap.Int("count", len(escalated)))
	}
	return escalated, nil
}

// UpdateTaskStatus moves a task through its lifecycle. COMPLETED sets
// completedAt and is terminal.
func (s *InterventionService) UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) (*models.InterventionTask, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid task status")
	}
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == models.TaskCompleted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "task already completed")
	}

	var completedAt *time.Time
	if status == models.TaskCompleted {
		now := s.now()
		completedAt = &now
	}
	if err := s.tasks.UpdateStatus(ctx, taskID, status, completedAt); err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	task.Status = status
	task.CompletedAt = completedAt
	return task, nil
}
