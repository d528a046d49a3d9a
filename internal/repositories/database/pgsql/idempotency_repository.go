package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	"github.com/strataops/strataledger/internal/models"
	"github.com/strataops/strataledger/internal/utils/mapping"
)

type PgxIdempotencyRepository struct {
	BaseRepository
}

// newPgxIdempotencyRepository creates a new repository for idempotency records.
func newPgxIdempotencyRepository(pool *pgxpool.Pool) *PgxIdempotencyRepository {
	return &PgxIdempotencyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxIdempotencyRepository implements portsrepo.IdempotencyRepositoryWithTx
var _ portsrepo.IdempotencyRepositoryWithTx = (*PgxIdempotencyRepository)(nil)

// InsertInProgress inserts a fresh IN_PROGRESS record. The primary key on
// (association_id, operation, idempotency_key) arbitrates races: the loser
// gets apperrors.ErrDuplicate.
func (r *PgxIdempotencyRepository) InsertInProgress(ctx context.Context, record domain.IdempotencyRecord) error {
	m := mapping.ToModelIdempotencyRecord(record)

	query := `
		INSERT INTO idempotency_records (association_id, operation, idempotency_key, status, result, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		m.AssociationID,
		m.Operation,
		m.IdempotencyKey,
		m.Status,
		m.Result,
		m.CreatedAt,
		m.CompletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: idempotency key %s already recorded for operation %s", apperrors.ErrDuplicate, m.IdempotencyKey, m.Operation)
		}
		return fmt.Errorf("failed to insert idempotency record: %w", err)
	}
	return nil
}

// FindRecord retrieves the record for a key.
func (r *PgxIdempotencyRepository) FindRecord(ctx context.Context, associationID string, operation string, idempotencyKey string) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT association_id, operation, idempotency_key, status, result, created_at, completed_at
		FROM idempotency_records
		WHERE association_id = $1 AND operation = $2 AND idempotency_key = $3;
	`
	var m models.IdempotencyRecord
	err := r.q(ctx).QueryRow(ctx, query, associationID, operation, idempotencyKey).Scan(
		&m.AssociationID,
		&m.Operation,
		&m.IdempotencyKey,
		&m.Status,
		&m.Result,
		&m.CreatedAt,
		&m.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find idempotency record: %w", err)
	}

	record := mapping.ToDomainIdempotencyRecord(m)
	return &record, nil
}

// ClaimForRetry atomically flips a FAILED record, or an IN_PROGRESS record
// created before staleBefore, back to a fresh IN_PROGRESS owned by the
// caller. The WHERE clause is the compare half of the compare-and-set: zero
// rows affected means another executor holds the record.
func (r *PgxIdempotencyRepository) ClaimForRetry(ctx context.Context, associationID string, operation string, idempotencyKey string, staleBefore time.Time, now time.Time) (bool, error) {
	query := `
		UPDATE idempotency_records
		SET status = 'IN_PROGRESS', result = NULL, completed_at = NULL, created_at = $5
		WHERE association_id = $1 AND operation = $2 AND idempotency_key = $3
		  AND (status = 'FAILED' OR (status = 'IN_PROGRESS' AND created_at < $4));
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query, associationID, operation, idempotencyKey, staleBefore, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency record for retry: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// MarkCompleted stores the execution result and stamps completion.
func (r *PgxIdempotencyRepository) MarkCompleted(ctx context.Context, associationID string, operation string, idempotencyKey string, result []byte, now time.Time) error {
	query := `
		UPDATE idempotency_records
		SET status = 'COMPLETED', result = $4, completed_at = $5
		WHERE association_id = $1 AND operation = $2 AND idempotency_key = $3;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query, associationID, operation, idempotencyKey, result, now)
	if err != nil {
		return fmt.Errorf("failed to mark idempotency record completed: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkFailed records the failed execution so a later retry may claim it.
func (r *PgxIdempotencyRepository) MarkFailed(ctx context.Context, associationID string, operation string, idempotencyKey string, now time.Time) error {
	query := `
		UPDATE idempotency_records
		SET status = 'FAILED', completed_at = $4
		WHERE association_id = $1 AND operation = $2 AND idempotency_key = $3;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query, associationID, operation, idempotencyKey, now)
	if err != nil {
		return fmt.Errorf("failed to mark idempotency record failed: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
