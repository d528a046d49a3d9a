package models

import (
	"database/sql"
	"time"
)

// OutboxStatus tracks delivery of an outbox task row.
type OutboxStatus string

const (
	OutboxPending OutboxStatus = "PENDING"
	OutboxSent    OutboxStatus = "SENT"
	OutboxFailed  OutboxStatus = "FAILED"
)

// OutboxTask is a queued secondary GL posting, written in the same transaction
// as the operation that requires it.
type OutboxTask struct {
	TaskID        string       `db:"task_id"`
	AssociationID string       `db:"association_id"`
	TaskType      string       `db:"task_type"`
	Payload       []byte       `db:"payload"` // JSONB
	Status        OutboxStatus `db:"status"`
	Attempts      int          `db:"attempts"`
	LastError     string       `db:"last_error"`
	CreatedAt     time.Time    `db:"created_at"`
	SentAt        sql.NullTime `db:"sent_at"`
}
