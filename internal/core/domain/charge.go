package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChargeStatus indicates the collection state of an assessment charge.
type ChargeStatus string

const (
	ChargeBilled        ChargeStatus = "BILLED"
	ChargePartiallyPaid ChargeStatus = "PARTIALLY_PAID"
	ChargePaid          ChargeStatus = "PAID"
	ChargeWrittenOff    ChargeStatus = "WRITTEN_OFF"
	ChargeCredited      ChargeStatus = "CREDITED"
)

// Charge represents one assessment billed to a unit. BalanceDue and the
// non-terminal statuses are derived from the amounts; WRITTEN_OFF and
// CREDITED are explicit terminal transitions that freeze the status.
type Charge struct {
	ChargeID         string          `json:"chargeID"`         // Primary Key (UUID)
	AssociationID    string          `json:"associationID"`    // FK -> associations.association_id (Not Null)
	UnitID           string          `json:"unitID"`           // FK -> units.unit_id (Not Null)
	AssessmentTypeID string          `json:"assessmentTypeID"` // FK -> assessment_types.assessment_type_id (Not Null)
	Description      string          `json:"description"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PaidAmount       decimal.Decimal `json:"paidAmount"`
	BalanceDue       decimal.Decimal `json:"balanceDue"` // Always TotalAmount - PaidAmount
	Status           ChargeStatus    `json:"status"`
	DueDate          time.Time       `json:"dueDate"`
	GLEntryID        *string         `json:"glEntryID,omitempty"` // Journal entry posted for this charge
	AuditFields
}

// IsTerminal reports whether the charge has left the collection lifecycle.
func (c *Charge) IsTerminal() bool {
	return c.Status == ChargeWrittenOff || c.Status == ChargeCredited
}

// RecomputeDerived refreshes BalanceDue and, for non-terminal charges, the
// status implied by the amounts.
func (c *Charge) RecomputeDerived() {
	c.BalanceDue = c.TotalAmount.Sub(c.PaidAmount)
	if c.IsTerminal() {
		return
	}
	switch {
	case c.BalanceDue.IsZero() || c.BalanceDue.IsNegative():
		c.Status = ChargePaid
	case c.PaidAmount.IsPositive():
		c.Status = ChargePartiallyPaid
	default:
		c.Status = ChargeBilled
	}
}

// Open reports whether the charge can still receive payment applications.
func (c *Charge) Open() bool {
	return !c.IsTerminal() && c.BalanceDue.IsPositive()
}

// UnitBalance summarizes a unit's standing: billed charges, received payments,
// and how much of the open balance is past due. Written-off and credited
// charges are excluded from every figure.
type UnitBalance struct {
	UnitID        string          `json:"unitID"`
	TotalCharges  decimal.Decimal `json:"totalCharges"`
	TotalPayments decimal.Decimal `json:"totalPayments"`
	Balance       decimal.Decimal `json:"balance"` // Sum of open balance_due
	PastDueAmount decimal.Decimal `json:"pastDueAmount"`
}
