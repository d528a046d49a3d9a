package services

import (
	"context"

	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/dto"
)

// PaymentReaderSvc defines read operations for payment data
type PaymentReaderSvc interface {
	// GetPaymentByID retrieves a specific payment, application rows included.
	GetPaymentByID(ctx context.Context, associationID string, paymentID string) (*domain.Payment, error)

	// ListPaymentsByUnit retrieves a paginated list of a unit's payments.
	ListPaymentsByUnit(ctx context.Context, associationID string, unitID string, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error)
}

// PaymentWriterSvc defines write operations for payment data
type PaymentWriterSvc interface {
	// RecordPayment persists a received payment, optionally applying it to the
	// unit's open charges oldest-first, and queues its GL posting.
	RecordPayment(ctx context.Context, associationID string, req dto.RecordPaymentRequest, creatorUserID string) (*domain.Payment, error)

	// ApplyPayment allocates a payment's unapplied remainder to the unit's open
	// charges oldest-first.
	ApplyPayment(ctx context.Context, associationID string, paymentID string, requestingUserID string) (*domain.Payment, error)

	// VoidPayment unwinds all of a payment's applications, restores the charges,
	// and queues the reversal of its GL entry.
	VoidPayment(ctx context.Context, associationID string, paymentID string, requestingUserID string) (*domain.Payment, error)
}

// PaymentSvcFacade combines all payment-related service interfaces
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentWriterSvc
}
