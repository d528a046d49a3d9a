package repositories

import (
	"context"
	"time"

	"github.com/strataops/strataledger/internal/core/domain"
)

// OutboxRepository persists secondary GL posting tasks. Enqueue runs inside
// the primary operation's transaction; the remaining methods serve the
// background dispatcher and the admin surface.
type OutboxRepository interface {
	// EnqueueTask inserts a PENDING task.
	EnqueueTask(ctx context.Context, task domain.OutboxTask) error

	// FindTaskByID retrieves one task.
	FindTaskByID(ctx context.Context, associationID string, taskID string) (*domain.OutboxTask, error)

	// ListPendingTasks returns up to limit PENDING tasks, oldest first.
	ListPendingTasks(ctx context.Context, limit int) ([]domain.OutboxTask, error)

	// ListTasks returns an association's tasks, optionally filtered by status,
	// newest first.
	ListTasks(ctx context.Context, associationID string, status *domain.OutboxStatus, limit int) ([]domain.OutboxTask, error)

	// MarkTaskSent stamps successful dispatch.
	MarkTaskSent(ctx context.Context, taskID string, now time.Time) error

	// MarkTaskFailed increments attempts and records the error.
	MarkTaskFailed(ctx context.Context, taskID string, taskErr string) error

	// RequeueTask flips a FAILED task back to PENDING with a clean error slate.
	RequeueTask(ctx context.Context, associationID string, taskID string) error
}
