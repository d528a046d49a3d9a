package repositories

import (
	"context"

	"github.com/strataops/strataledger/internal/core/domain"
)

// PaymentReader defines read operations for payment data
type PaymentReader interface {
	// FindPaymentByID retrieves a specific payment by its unique identifier.
	FindPaymentByID(ctx context.Context, associationID string, paymentID string) (*domain.Payment, error)

	// ListPaymentsByUnit retrieves a paginated list of a unit's payments,
	// newest received first.
	ListPaymentsByUnit(ctx context.Context, associationID string, unitID string, limit int, nextToken *string) ([]domain.Payment, *string, error)

	// FindApplicationsByPaymentID retrieves the application rows of a payment.
	FindApplicationsByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentApplication, error)
}

// PaymentWriter defines write operations for payment data
type PaymentWriter interface {
	// SavePayment persists a new payment.
	SavePayment(ctx context.Context, payment domain.Payment) error

	// UpdatePaymentAmounts rewrites a payment's applied/unapplied amounts,
	// status, GL entry link and audit fields.
	UpdatePaymentAmounts(ctx context.Context, payment domain.Payment) error

	// SaveApplications persists a batch of application rows.
	SaveApplications(ctx context.Context, applications []domain.PaymentApplication) error

	// DeleteApplicationsByPaymentID removes all application rows of a payment,
	// used by void.
	DeleteApplicationsByPaymentID(ctx context.Context, paymentID string) error
}

// PaymentRepositoryFacade combines all payment-related repository interfaces
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}

// PaymentRepositoryWithTx extends PaymentRepositoryFacade with transaction capabilities
type PaymentRepositoryWithTx interface {
	PaymentRepositoryFacade
	TransactionManager
}
