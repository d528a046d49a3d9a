package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus indicates the state of a payment row.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentCleared  PaymentStatus = "CLEARED"
	PaymentBounced  PaymentStatus = "BOUNCED"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentVoided   PaymentStatus = "VOIDED"
)

// Payment represents money received from a unit.
type Payment struct {
	PaymentID       string          `db:"payment_id"`
	AssociationID   string          `db:"association_id"`
	UnitID          string          `db:"unit_id"`
	Amount          decimal.Decimal `db:"amount"`
	AppliedAmount   decimal.Decimal `db:"applied_amount"`
	UnappliedAmount decimal.Decimal `db:"unapplied_amount"`
	Status          PaymentStatus   `db:"status"`
	Method          string          `db:"method"`
	Reference       string          `db:"reference"`
	ReceivedDate    time.Time       `db:"received_date"`
	GLEntryID       sql.NullString  `db:"gl_entry_id"`
	AuditFields
}

// PaymentApplication links a slice of a payment to one charge.
type PaymentApplication struct {
	ApplicationID string          `db:"application_id"`
	PaymentID     string          `db:"payment_id"`
	ChargeID      string          `db:"charge_id"`
	Amount        decimal.Decimal `db:"amount"`
	AppliedAt     time.Time       `db:"applied_at"`
}
