package domain

import (
	"encoding/json"
	"time"
)

// OutboxTaskType names the secondary GL effect a task carries.
type OutboxTaskType string

const (
	TaskChargeGLPost     OutboxTaskType = "charge.gl_post"
	TaskChargeGLWriteoff OutboxTaskType = "charge.gl_writeoff"
	TaskPaymentGLPost    OutboxTaskType = "payment.gl_post"
	TaskPaymentGLReverse OutboxTaskType = "payment.gl_reverse"
)

// OutboxStatus tracks delivery of an outbox task.
type OutboxStatus string

const (
	OutboxPending OutboxStatus = "PENDING"
	OutboxSent    OutboxStatus = "SENT"
	OutboxFailed  OutboxStatus = "FAILED"
)

// OutboxTask is a secondary GL posting queued in the same transaction as the
// primary operation and executed asynchronously by the dispatcher. Failures
// never roll back the primary; they accumulate attempts here instead.
type OutboxTask struct {
	TaskID        string          `json:"taskID"` // Primary Key (UUID)
	AssociationID string          `json:"associationID"`
	TaskType      OutboxTaskType  `json:"taskType"`
	Payload       json.RawMessage `json:"payload"`
	Status        OutboxStatus    `json:"status"`
	Attempts      int             `json:"attempts"`
	LastError     string          `json:"lastError,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	SentAt        *time.Time      `json:"sentAt,omitempty"`
}
