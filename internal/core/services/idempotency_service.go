package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/obsmetrics"
)

// claimAttempts bounds the find/claim loop when racing another executor over
// a FAILED or stale record.
const claimAttempts = 2

// IdempotencyService arbitrates exactly-once execution of client-keyed
// operations. A record is claimed before the operation runs; completed
// executions store their JSON result for replay. IN_PROGRESS records older
// than takeoverAfter are treated as crashed executions and may be reclaimed.
type IdempotencyService struct {
	BaseService
	idemRepo      portsrepo.IdempotencyRepositoryWithTx
	takeoverAfter time.Duration
}

// NewIdempotencyService creates a new IdempotencyService.
func NewIdempotencyService(idemRepo portsrepo.IdempotencyRepositoryWithTx, takeoverAfter time.Duration) *IdempotencyService {
	return &IdempotencyService{
		idemRepo:      idemRepo,
		takeoverAfter: takeoverAfter,
	}
}

// Ensure IdempotencyService implements the portssvc.IdempotencySvcFacade interface
var _ portssvc.IdempotencySvcFacade = (*IdempotencyService)(nil)

// Execute runs fn at most once per (association, operation, key).
func (s *IdempotencyService) Execute(ctx context.Context, associationID string, operation string, idempotencyKey string, fn func(ctx context.Context) (interface{}, error)) (json.RawMessage, bool, error) {
	if uuid.Validate(idempotencyKey) != nil {
		return nil, false, apperrors.NewBadRequestError("idempotency key must be a valid UUID")
	}

	now := time.Now()
	record := domain.IdempotencyRecord{
		AssociationID:  associationID,
		Operation:      operation,
		IdempotencyKey: idempotencyKey,
		Status:         domain.IdempotencyInProgress,
		CreatedAt:      now,
	}

	err := s.idemRepo.InsertInProgress(ctx, record)
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to insert idempotency record", slog.String("operation", operation))
			return nil, false, err
		}
		// The key has been seen before. Replay, reject, or claim.
		result, replayed, claimErr := s.resolveExisting(ctx, associationID, operation, idempotencyKey)
		if claimErr != nil || replayed {
			return result, replayed, claimErr
		}
	}

	return s.run(ctx, associationID, operation, idempotencyKey, fn)
}

// resolveExisting decides what an already-present record means: a COMPLETED
// record replays its stored result, a live IN_PROGRESS record is a conflict,
// and a FAILED or stale IN_PROGRESS record is claimed for re-execution.
func (s *IdempotencyService) resolveExisting(ctx context.Context, associationID string, operation string, idempotencyKey string) (json.RawMessage, bool, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		record, err := s.idemRepo.FindRecord(ctx, associationID, operation, idempotencyKey)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// Record vanished between insert conflict and lookup. Retry the loop;
				// worst case the caller sees a conflict.
				continue
			}
			s.LogError(ctx, err, "Failed to load idempotency record", slog.String("operation", operation))
			return nil, false, err
		}

		switch record.Status {
		case domain.IdempotencyCompleted:
			obsmetrics.IncIdempotentReplay()
			s.LogInfo(ctx, "Idempotent replay",
				slog.String("operation", operation),
				slog.String("idempotency_key", idempotencyKey))
			return record.Result, true, nil

		case domain.IdempotencyInProgress:
			staleBefore := time.Now().Add(-s.takeoverAfter)
			if record.CreatedAt.After(staleBefore) {
				return nil, false, apperrors.NewConflictError(fmt.Sprintf("operation %s with this idempotency key is already in progress", operation))
			}
			claimed, err := s.idemRepo.ClaimForRetry(ctx, associationID, operation, idempotencyKey, staleBefore, time.Now())
			if err != nil {
				return nil, false, err
			}
			if claimed {
				return nil, false, nil
			}
			// Another executor claimed first; re-read to see what it did.

		case domain.IdempotencyFailed:
			claimed, err := s.idemRepo.ClaimForRetry(ctx, associationID, operation, idempotencyKey, time.Now(), time.Now())
			if err != nil {
				return nil, false, err
			}
			if claimed {
				return nil, false, nil
			}

		default:
			return nil, false, apperrors.NewInternalServerError(fmt.Sprintf("idempotency record in unknown status %q", record.Status))
		}
	}

	return nil, false, apperrors.NewConflictError(fmt.Sprintf("operation %s with this idempotency key is already in progress", operation))
}

// run executes fn and the COMPLETED mark in one transaction, so a stored
// result implies the operation's effects committed and vice versa.
func (s *IdempotencyService) run(ctx context.Context, associationID string, operation string, idempotencyKey string, fn func(ctx context.Context) (interface{}, error)) (json.RawMessage, bool, error) {
	var stored json.RawMessage

	runErr := s.idemRepo.RunInTx(ctx, func(ctx context.Context) error {
		result, err := fn(ctx)
		if err != nil {
			return err
		}

		body, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal operation result: %w", err)
		}
		stored = body
		return s.idemRepo.MarkCompleted(ctx, associationID, operation, idempotencyKey, body, time.Now())
	})
	if runErr != nil {
		// The operation rolled back. Record the failure outside the dead
		// transaction so a later request with the same key can retry.
		markCtx := context.WithoutCancel(ctx)
		if markErr := s.idemRepo.MarkFailed(markCtx, associationID, operation, idempotencyKey, time.Now()); markErr != nil {
			s.LogError(ctx, markErr, "Failed to mark idempotency record failed",
				slog.String("operation", operation),
				slog.String("idempotency_key", idempotencyKey))
		}
		return nil, false, runErr
	}

	return stored, false, nil
}
