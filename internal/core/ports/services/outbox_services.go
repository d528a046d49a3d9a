package services

import (
	"context"

	"github.com/strataops/strataledger/internal/core/domain"
)

// OutboxSvcFacade manages secondary GL posting tasks.
type OutboxSvcFacade interface {
	// Enqueue inserts a task in the caller's transaction. payload is marshalled
	// to JSON.
	Enqueue(ctx context.Context, associationID string, taskType domain.OutboxTaskType, payload interface{}) error

	// ProcessPending executes up to batchSize pending tasks and reports how
	// many were attempted. Failures mark the task FAILED and continue.
	ProcessPending(ctx context.Context, batchSize int) (int, error)

	// RetryTask re-queues a FAILED task for dispatch.
	RetryTask(ctx context.Context, associationID string, taskID string) (*domain.OutboxTask, error)

	// ListTasks returns an association's tasks for the admin surface.
	ListTasks(ctx context.Context, associationID string, status *domain.OutboxStatus, limit int) ([]domain.OutboxTask, error)
}
