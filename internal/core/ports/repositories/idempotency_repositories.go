package repositories

import (
	"context"
	"time"

	"github.com/strataops/strataledger/internal/core/domain"
)

// IdempotencyRepository persists the records that arbitrate exactly-once
// execution of client-keyed operations.
type IdempotencyRepository interface {
	// InsertInProgress inserts a fresh IN_PROGRESS record. A concurrent or
	// previous execution with the same key surfaces as apperrors.ErrDuplicate.
	InsertInProgress(ctx context.Context, record domain.IdempotencyRecord) error

	// FindRecord retrieves the record for a key, or apperrors.ErrNotFound.
	FindRecord(ctx context.Context, associationID string, operation string, idempotencyKey string) (*domain.IdempotencyRecord, error)

	// ClaimForRetry atomically flips a FAILED record, or an IN_PROGRESS record
	// created before staleBefore, back to IN_PROGRESS. Returns false when
	// another executor won the claim.
	ClaimForRetry(ctx context.Context, associationID string, operation string, idempotencyKey string, staleBefore time.Time, now time.Time) (bool, error)

	// MarkCompleted stores the execution result and stamps completion.
	MarkCompleted(ctx context.Context, associationID string, operation string, idempotencyKey string, result []byte, now time.Time) error

	// MarkFailed records the failed execution so a later retry may claim it.
	MarkFailed(ctx context.Context, associationID string, operation string, idempotencyKey string, now time.Time) error
}

// IdempotencyRepositoryWithTx extends IdempotencyRepository with transaction capabilities
type IdempotencyRepositoryWithTx interface {
	IdempotencyRepository
	TransactionManager
}
