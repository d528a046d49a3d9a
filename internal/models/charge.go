package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeStatus indicates the collection state of a charge row.
type ChargeStatus string

const (
	ChargeBilled        ChargeStatus = "BILLED"
	ChargePartiallyPaid ChargeStatus = "PARTIALLY_PAID"
	ChargePaid          ChargeStatus = "PAID"
	ChargeWrittenOff    ChargeStatus = "WRITTEN_OFF"
	ChargeCredited      ChargeStatus = "CREDITED"
)

// Charge represents one assessment billed to a unit.
type Charge struct {
	ChargeID         string          `db:"charge_id"`
	AssociationID    string          `db:"association_id"`
	UnitID           string          `db:"unit_id"`
	AssessmentTypeID string          `db:"assessment_type_id"`
	Description      string          `db:"description"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	PaidAmount       decimal.Decimal `db:"paid_amount"`
	BalanceDue       decimal.Decimal `db:"balance_due"`
	Status           ChargeStatus    `db:"status"`
	DueDate          time.Time       `db:"due_date"`
	GLEntryID        sql.NullString  `db:"gl_entry_id"`
	AuditFields
}
