package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus indicates the state of a received payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentCleared  PaymentStatus = "CLEARED"
	PaymentBounced  PaymentStatus = "BOUNCED"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentVoided   PaymentStatus = "VOIDED"
)

// PaymentMethod identifies how a payment arrived.
type PaymentMethod string

const (
	MethodCheck    PaymentMethod = "CHECK"
	MethodACH      PaymentMethod = "ACH"
	MethodCard     PaymentMethod = "CARD"
	MethodCash     PaymentMethod = "CASH"
	MethodTransfer PaymentMethod = "TRANSFER"
)

// Payment represents money received from a unit, applied to its open charges
// oldest-first. AppliedAmount + UnappliedAmount always equals Amount.
type Payment struct {
	PaymentID       string          `json:"paymentID"`     // Primary Key (UUID)
	AssociationID   string          `json:"associationID"` // FK -> associations.association_id (Not Null)
	UnitID          string          `json:"unitID"`        // FK -> units.unit_id (Not Null)
	Amount          decimal.Decimal `json:"amount"`
	AppliedAmount   decimal.Decimal `json:"appliedAmount"`
	UnappliedAmount decimal.Decimal `json:"unappliedAmount"`
	Status          PaymentStatus   `json:"status"`
	Method          PaymentMethod   `json:"method"`
	Reference       string          `json:"reference"` // Check number, transaction id, etc.
	ReceivedDate    time.Time       `json:"receivedDate"`
	GLEntryID       *string         `json:"glEntryID,omitempty"` // Journal entry posted for this payment
	AuditFields
	Applications []PaymentApplication `json:"applications,omitempty"`
}

// Applicable reports whether more of the payment can be applied to charges.
func (p *Payment) Applicable() bool {
	switch p.Status {
	case PaymentVoided, PaymentBounced, PaymentRefunded:
		return false
	}
	return p.UnappliedAmount.IsPositive()
}

// PaymentApplication links a slice of a payment to a single charge.
type PaymentApplication struct {
	ApplicationID string          `json:"applicationID"` // Primary Key (UUID)
	PaymentID     string          `json:"paymentID"`     // FK -> payments.payment_id (Not Null)
	ChargeID      string          `json:"chargeID"`      // FK -> charges.charge_id (Not Null)
	Amount        decimal.Decimal `json:"amount"`        // Positive slice applied to the charge
	AppliedAt     time.Time       `json:"appliedAt"`
}
