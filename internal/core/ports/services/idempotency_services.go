package services

import (
	"context"
	"encoding/json"
)

// IdempotencySvcFacade wraps a mutating operation with exactly-once semantics
// keyed by a client-supplied idempotency key.
type IdempotencySvcFacade interface {
	// Execute runs fn at most once per (association, operation, key). A replay
	// of a completed execution returns the stored result with replayed=true and
	// does not invoke fn. A concurrent in-flight execution is rejected with
	// apperrors.ErrConflict. A previously failed execution is claimed and fn is
	// retried. fn runs inside a single database transaction; its returned value
	// is marshalled to JSON and stored as the operation's result.
	Execute(ctx context.Context, associationID string, operation string, idempotencyKey string, fn func(ctx context.Context) (interface{}, error)) (json.RawMessage, bool, error)
}
