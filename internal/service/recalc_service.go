package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-retention-api/internal/models"
	"github.com/noah-isme/sma-retention-api/pkg/jobs"
)

const recalcJobType = "risk-recalculation"

type recalcStudentLister interface {
	ListIDsByRisk(ctx context.Context, level models.RiskLevel) ([]string, error)
}

type riskRefresher interface {
	RefreshRiskProfile(ctx context.Context, studentID string) (*models.RiskProfile, error)
}

type cacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// RecalcBatch is the payload of one queued recalculation job.
type RecalcBatch struct {
	StudentIDs []string `json:"student_ids"`
}

// RecalcService runs risk recalculation batches through the background job
// queue. Students inside one batch are processed sequentially so risk writes
// never race each other.
type RecalcService struct {
	risk      riskRefresher
	students  recalcStudentLister
	analytics cacheInvalidator
	queue     *jobs.Queue
	logger    *zap.Logger
}

// NewRecalcService constructs the service and its queue. Start must be called
// before Enqueue.
func NewRecalcService(risk riskRefresher, students recalcStudentLister, analytics cacheInvalidator, workers, buffer int, logger *zap.Logger) *RecalcService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RecalcService{
		risk:      risk,
		students:  students,
		analytics: analytics,
		logger:    logger,
	}
	s.queue = jobs.NewQueue(recalcJobType, s.handle, jobs.QueueConfig{
		Workers:    workers,
		BufferSize: buffer,
		MaxRetries: 1,
		Logger:     logger,
	})
	return s
}

// Start boots the queue workers.
func (s *RecalcService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *RecalcService) Stop() {
	s.queue.Stop()
}

// EnqueueStudents queues a recalculation batch for the given student IDs.
func (s *RecalcService) EnqueueStudents(studentIDs []string) (string, error) {
	if len(studentIDs) == 0 {
		return "", nil
	}
	jobID := uuid.NewString()
	err := s.queue.Enqueue(jobs.Job{
		ID:      jobID,
		Type:    recalcJobType,
		Payload: RecalcBatch{StudentIDs: studentIDs},
	})
	if err != nil {
		return "", fmt.Errorf("enqueue recalculation: %w", err)
	}
	s.logger.Info("risk recalculation queued",
		zap.String("job_id", jobID),
		zap.Int("students", len(studentIDs)),
	)
	return jobID, nil
}

// EnqueueByRisk queues a batch covering every active student at the given
// risk level.
func (s *RecalcService) EnqueueByRisk(ctx context.Context, level models.RiskLevel) (string, int, error) {
	ids, err := s.students.ListIDsByRisk(ctx, level)
	if err != nil {
		return "", 0, err
	}
	jobID, err := s.EnqueueStudents(ids)
	return jobID, len(ids), err
}

// handle processes one batch. Per-student failures are collected and logged,
// never aborting the rest of the batch.
func (s *RecalcService) handle(ctx context.Context, job jobs.Job) error {
	batch, ok := job.Payload.(RecalcBatch)
	if !ok {
		return fmt.Errorf("unexpected payload for job %s", job.ID)
	}

	var failed int
	for _, studentID := range batch.StudentIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.risk.RefreshRiskProfile(ctx, studentID); err != nil {
			failed++
			s.logger.Warn("recalculation failed for student",
				zap.String("job_id", job.ID),
				zap.String("student_id", studentID),
				zap.Error(err),
			)
		}
	}

	if s.analytics != nil {
		s.analytics.InvalidateCache(ctx)
	}
	s.logger.Info("risk recalculation finished",
		zap.String("job_id", job.ID),
		zap.Int("processed", len(batch.StudentIDs)-failed),
		zap.Int("failed", failed),
	)
	return nil
}
