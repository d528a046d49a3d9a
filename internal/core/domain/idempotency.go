package domain

import (
	"encoding/json"
	"time"
)

// IdempotencyStatus tracks the lifecycle of one keyed execution.
type IdempotencyStatus string

const (
	IdempotencyInProgress IdempotencyStatus = "IN_PROGRESS"
	IdempotencyCompleted  IdempotencyStatus = "COMPLETED"
	IdempotencyFailed     IdempotencyStatus = "FAILED"
)

// IdempotencyRecord arbitrates exactly-once execution of a client-keyed
// operation. The unique (association, operation, key) tuple is claimed before
// the operation runs; COMPLETED records store the result for replay.
type IdempotencyRecord struct {
	AssociationID  string            `json:"associationID"`
	Operation      string            `json:"operation"`      // e.g. "payment.record"
	IdempotencyKey string            `json:"idempotencyKey"` // Client-supplied UUID
	Status         IdempotencyStatus `json:"status"`
	Result         json.RawMessage   `json:"result,omitempty"` // Response body of the completed execution
	CreatedAt      time.Time         `json:"createdAt"`
	CompletedAt    *time.Time        `json:"completedAt,omitempty"`
}
