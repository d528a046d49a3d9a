package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	"github.com/strataops/strataledger/internal/models"
	"github.com/strataops/strataledger/internal/utils/mapping"
)

const outboxColumns = `task_id, association_id, task_type, payload, status, attempts, last_error, created_at, sent_at`

type PgxOutboxRepository struct {
	BaseRepository
}

// newPgxOutboxRepository creates a new repository for posting task data.
func newPgxOutboxRepository(pool *pgxpool.Pool) *PgxOutboxRepository {
	return &PgxOutboxRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxOutboxRepository implements portsrepo.OutboxRepository
var _ portsrepo.OutboxRepository = (*PgxOutboxRepository)(nil)

func scanOutboxRow(row pgx.Row) (models.OutboxTask, error) {
	var m models.OutboxTask
	err := row.Scan(
		&m.TaskID,
		&m.AssociationID,
		&m.TaskType,
		&m.Payload,
		&m.Status,
		&m.Attempts,
		&m.LastError,
		&m.CreatedAt,
		&m.SentAt,
	)
	return m, err
}

// EnqueueTask inserts a PENDING task. Callers run this inside the primary
// operation's transaction so the task exists exactly when the operation
// committed.
func (r *PgxOutboxRepository) EnqueueTask(ctx context.Context, task domain.OutboxTask) error {
	m := mapping.ToModelOutboxTask(task)

	query := `
		INSERT INTO outbox_tasks (` + outboxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		m.TaskID,
		m.AssociationID,
		m.TaskType,
		m.Payload,
		m.Status,
		m.Attempts,
		m.LastError,
		m.CreatedAt,
		m.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task %s: %w", m.TaskID, err)
	}
	return nil
}

// FindTaskByID retrieves one task, scoped to the association.
func (r *PgxOutboxRepository) FindTaskByID(ctx context.Context, associationID string, taskID string) (*domain.OutboxTask, error) {
	query := `
		SELECT ` + outboxColumns + `
		FROM outbox_tasks
		WHERE task_id = $1 AND association_id = $2;
	`
	m, err := scanOutboxRow(r.q(ctx).QueryRow(ctx, query, taskID, associationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task by ID %s: %w", taskID, err)
	}

	task := mapping.ToDomainOutboxTask(m)
	return &task, nil
}

// ListPendingTasks returns up to limit PENDING tasks, oldest first, with the
// rows locked and concurrently-locked rows skipped so parallel dispatchers
// never double-process a task.
func (r *PgxOutboxRepository) ListPendingTasks(ctx context.Context, limit int) ([]domain.OutboxTask, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + outboxColumns + `
		FROM outbox_tasks
		WHERE status = 'PENDING'
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED;
	`
	rows, err := r.q(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending tasks: %w", err)
	}
	defer rows.Close()

	modelTasks := []models.OutboxTask{}
	for rows.Next() {
		m, scanErr := scanOutboxRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan pending task row: %w", scanErr)
		}
		modelTasks = append(modelTasks, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending task rows: %w", err)
	}

	return mapping.ToDomainOutboxTaskSlice(modelTasks), nil
}

// ListTasks returns an association's tasks, optionally filtered by status,
// newest first.
func (r *PgxOutboxRepository) ListTasks(ctx context.Context, associationID string, status *domain.OutboxStatus, limit int) ([]domain.OutboxTask, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + outboxColumns + `
		FROM outbox_tasks
		WHERE association_id = $1
	`
	args := []interface{}{associationID}
	if status != nil {
		args = append(args, *status)
		query += ` AND status = $2`
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d;`, len(args))

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks for association %s: %w", associationID, err)
	}
	defer rows.Close()

	modelTasks := []models.OutboxTask{}
	for rows.Next() {
		m, scanErr := scanOutboxRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan task row for association %s: %w", associationID, scanErr)
		}
		modelTasks = append(modelTasks, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows for association %s: %w", associationID, err)
	}

	return mapping.ToDomainOutboxTaskSlice(modelTasks), nil
}

// MarkTaskSent stamps successful dispatch.
func (r *PgxOutboxRepository) MarkTaskSent(ctx context.Context, taskID string, now time.Time) error {
	query := `
		UPDATE outbox_tasks
		SET status = 'SENT', attempts = attempts + 1, last_error = '', sent_at = $2
		WHERE task_id = $1;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query, taskID, now)
	if err != nil {
		return fmt.Errorf("failed to mark task %s sent: %w", taskID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkTaskFailed increments attempts and records the error.
func (r *PgxOutboxRepository) MarkTaskFailed(ctx context.Context, taskID string, taskErr string) error {
	query := `
		UPDATE outbox_tasks
		SET status = 'FAILED', attempts = attempts + 1, last_error = $2
		WHERE task_id = $1;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query, taskID, taskErr)
	if err != nil {
		return fmt.Errorf("failed to mark task %s failed: %w", taskID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RequeueTask flips a FAILED task back to PENDING with a clean error slate.
func (r *PgxOutboxRepository) RequeueTask(ctx context.Context, associationID string, taskID string) error {
	query := `
		UPDATE outbox_tasks
		SET status = 'PENDING', last_error = ''
		WHERE task_id = $1 AND association_id = $2 AND status = 'FAILED';
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query, taskID, associationID)
	if err != nil {
		return fmt.Errorf("failed to requeue task %s: %w", taskID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the task does not exist or it is not FAILED.
		if _, findErr := r.FindTaskByID(ctx, associationID, taskID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: task %s is not in FAILED status", apperrors.ErrConflict, taskID)
	}
	return nil
}
