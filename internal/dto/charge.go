package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/core/domain"
)

// CreateChargeRequest defines the data needed to bill a charge to a unit.
type CreateChargeRequest struct {
	UnitID           string          `json:"unitID" binding:"required"`
	AssessmentTypeID string          `json:"assessmentTypeID" binding:"required"`
	Description      string          `json:"description"` // Optional, defaults to the assessment type name
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	DueDate          time.Time       `json:"dueDate" binding:"required"`
}

// ChargeResponse defines the data returned for a charge.
type ChargeResponse struct {
	ChargeID         string              `json:"chargeID"`
	UnitID           string              `json:"unitID"`
	AssessmentTypeID string              `json:"assessmentTypeID"`
	Description      string              `json:"description"`
	TotalAmount      decimal.Decimal     `json:"totalAmount"`
	PaidAmount       decimal.Decimal     `json:"paidAmount"`
	BalanceDue       decimal.Decimal     `json:"balanceDue"`
	Status           domain.ChargeStatus `json:"status"`
	DueDate          time.Time           `json:"dueDate"`
	GLEntryID        *string             `json:"glEntryID,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	CreatedBy        string              `json:"createdBy"`
	LastUpdatedAt    time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy    string              `json:"lastUpdatedBy"`
}

// ToChargeResponse converts a domain.Charge to ChargeResponse DTO.
func ToChargeResponse(c *domain.Charge) ChargeResponse {
	return ChargeResponse{
		ChargeID:         c.ChargeID,
		UnitID:           c.UnitID,
		AssessmentTypeID: c.AssessmentTypeID,
		Description:      c.Description,
		TotalAmount:      c.TotalAmount,
		PaidAmount:       c.PaidAmount,
		BalanceDue:       c.BalanceDue,
		Status:           c.Status,
		DueDate:          c.DueDate,
		GLEntryID:        c.GLEntryID,
		CreatedAt:        c.CreatedAt,
		CreatedBy:        c.CreatedBy,
		LastUpdatedAt:    c.LastUpdatedAt,
		LastUpdatedBy:    c.LastUpdatedBy,
	}
}

// ToListChargeResponse converts a slice of domain.Charge to []ChargeResponse.
func ToListChargeResponse(charges []domain.Charge) []ChargeResponse {
	res := make([]ChargeResponse, len(charges))
	for i, c := range charges {
		res[i] = ToChargeResponse(&c)
	}
	return res
}

// ListChargesParams defines query parameters for listing a unit's charges.
type ListChargesParams struct {
	IncludeTerminal bool    `form:"includeTerminal,default=false"`
	Limit           int     `form:"limit,default=20"`
	NextToken       *string `form:"nextToken"`
}

// ListChargesResponse wraps a page of charges.
type ListChargesResponse struct {
	Charges   []ChargeResponse `json:"charges"`
	NextToken *string          `json:"nextToken,omitempty"`
}

// UnitBalanceResponse defines the aggregate balance returned for a unit.
type UnitBalanceResponse struct {
	UnitID        string          `json:"unitID"`
	TotalCharges  decimal.Decimal `json:"totalCharges"`
	TotalPayments decimal.Decimal `json:"totalPayments"`
	Balance       decimal.Decimal `json:"balance"`
	PastDueAmount decimal.Decimal `json:"pastDueAmount"`
}

// ToUnitBalanceResponse converts a domain.UnitBalance to UnitBalanceResponse DTO.
func ToUnitBalanceResponse(b *domain.UnitBalance) UnitBalanceResponse {
	return UnitBalanceResponse{
		UnitID:        b.UnitID,
		TotalCharges:  b.TotalCharges,
		TotalPayments: b.TotalPayments,
		Balance:       b.Balance,
		PastDueAmount: b.PastDueAmount,
	}
}
