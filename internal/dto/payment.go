package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/core/domain"
)

// RecordPaymentRequest defines the data needed to record a received payment.
type RecordPaymentRequest struct {
	UnitID       string               `json:"unitID" binding:"required"`
	Amount       decimal.Decimal      `json:"amount" binding:"required"`
	Method       domain.PaymentMethod `json:"method" binding:"required,oneof=CHECK ACH CARD CASH TRANSFER"`
	Reference    string               `json:"reference"` // Optional check number / processor reference
	ReceivedDate time.Time            `json:"receivedDate" binding:"required"`
	AutoApply    *bool                `json:"autoApply"` // Optional, defaults to true
}

// PaymentApplicationResponse defines one charge allocation of a payment.
type PaymentApplicationResponse struct {
	ApplicationID string          `json:"applicationID"`
	ChargeID      string          `json:"chargeID"`
	Amount        decimal.Decimal `json:"amount"`
	AppliedAt     time.Time       `json:"appliedAt"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID       string                       `json:"paymentID"`
	UnitID          string                       `json:"unitID"`
	Amount          decimal.Decimal              `json:"amount"`
	AppliedAmount   decimal.Decimal              `json:"appliedAmount"`
	UnappliedAmount decimal.Decimal              `json:"unappliedAmount"`
	Status          domain.PaymentStatus         `json:"status"`
	Method          domain.PaymentMethod         `json:"method"`
	Reference       string                       `json:"reference,omitempty"`
	ReceivedDate    time.Time                    `json:"receivedDate"`
	GLEntryID       *string                      `json:"glEntryID,omitempty"`
	CreatedAt       time.Time                    `json:"createdAt"`
	CreatedBy       string                       `json:"createdBy"`
	LastUpdatedAt   time.Time                    `json:"lastUpdatedAt"`
	LastUpdatedBy   string                       `json:"lastUpdatedBy"`
	Applications    []PaymentApplicationResponse `json:"applications,omitempty"`
}

// ToPaymentApplicationResponse converts a domain.PaymentApplication to DTO.
func ToPaymentApplicationResponse(a *domain.PaymentApplication) PaymentApplicationResponse {
	return PaymentApplicationResponse{
		ApplicationID: a.ApplicationID,
		ChargeID:      a.ChargeID,
		Amount:        a.Amount,
		AppliedAt:     a.AppliedAt,
	}
}

// ToPaymentApplicationResponses converts a slice of domain.PaymentApplication to DTOs.
func ToPaymentApplicationResponses(apps []domain.PaymentApplication) []PaymentApplicationResponse {
	responses := make([]PaymentApplicationResponse, len(apps))
	for i, a := range apps {
		responses[i] = ToPaymentApplicationResponse(&a)
	}
	return responses
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:       p.PaymentID,
		UnitID:          p.UnitID,
		Amount:          p.Amount,
		AppliedAmount:   p.AppliedAmount,
		UnappliedAmount: p.UnappliedAmount,
		Status:          p.Status,
		Method:          p.Method,
		Reference:       p.Reference,
		ReceivedDate:    p.ReceivedDate,
		GLEntryID:       p.GLEntryID,
		CreatedAt:       p.CreatedAt,
		CreatedBy:       p.CreatedBy,
		LastUpdatedAt:   p.LastUpdatedAt,
		LastUpdatedBy:   p.LastUpdatedBy,
		Applications:    ToPaymentApplicationResponses(p.Applications),
	}
}

// ToListPaymentResponse converts a slice of domain.Payment to []PaymentResponse.
func ToListPaymentResponse(payments []domain.Payment) []PaymentResponse {
	res := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		res[i] = ToPaymentResponse(&p)
	}
	return res
}

// ListPaymentsParams defines query parameters for listing a unit's payments.
type ListPaymentsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListPaymentsResponse wraps a page of payments.
type ListPaymentsResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	NextToken *string           `json:"nextToken,omitempty"`
}
