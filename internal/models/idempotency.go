package models

import (
	"database/sql"
	"time"
)

// IdempotencyStatus tracks the lifecycle of one keyed execution.
type IdempotencyStatus string

const (
	IdempotencyInProgress IdempotencyStatus = "IN_PROGRESS"
	IdempotencyCompleted  IdempotencyStatus = "COMPLETED"
	IdempotencyFailed     IdempotencyStatus = "FAILED"
)

// IdempotencyRecord arbitrates exactly-once execution of a keyed operation.
// The primary key is (association_id, operation, idempotency_key).
type IdempotencyRecord struct {
	AssociationID  string            `db:"association_id"`
	Operation      string            `db:"operation"`
	IdempotencyKey string            `db:"idempotency_key"`
	Status         IdempotencyStatus `db:"status"`
	Result         []byte            `db:"result"` // JSONB, NULL until completed
	CreatedAt      time.Time         `db:"created_at"`
	CompletedAt    sql.NullTime      `db:"completed_at"`
}
