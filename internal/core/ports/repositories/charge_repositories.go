package repositories

import (
	"context"
	"time"

	"github.com/strataops/strataledger/internal/core/domain"
)

// ChargeReader defines read operations for charge data
type ChargeReader interface {
	// FindChargeByID retrieves a specific charge by its unique identifier.
	FindChargeByID(ctx context.Context, associationID string, chargeID string) (*domain.Charge, error)

	// ListChargesByUnit retrieves a paginated list of a unit's charges ordered by
	// due date, oldest first. Terminal charges are included only when asked for.
	ListChargesByUnit(ctx context.Context, associationID string, unitID string, includeTerminal bool, limit int, nextToken *string) ([]domain.Charge, *string, error)

	// GetUnitBalance aggregates the unit's charges and payments into a balance summary.
	GetUnitBalance(ctx context.Context, associationID string, unitID string, asOf time.Time) (*domain.UnitBalance, error)
}

// ChargeWriter defines write operations for charge data
type ChargeWriter interface {
	// SaveCharge persists a new charge.
	SaveCharge(ctx context.Context, charge domain.Charge) error

	// UpdateChargeAmounts rewrites a charge's paid amount, balance due, status
	// and audit fields after an application or void.
	UpdateChargeAmounts(ctx context.Context, charge domain.Charge) error

	// SetChargeGLEntry records the journal entry posted for the charge.
	SetChargeGLEntry(ctx context.Context, chargeID string, entryID string, userID string, now time.Time) error
}

// ChargeTransactionSupport defines row-locking reads used by payment
// application and void, inside an ambient transaction.
type ChargeTransactionSupport interface {
	// FindOpenChargesByUnitForUpdate locks and returns the unit's open charges
	// ordered by (due_date, charge_id). The deterministic order serializes
	// concurrent payments against the same unit without deadlocking.
	FindOpenChargesByUnitForUpdate(ctx context.Context, associationID string, unitID string) ([]domain.Charge, error)

	// FindChargesByIDsForUpdate locks and returns specific charges in
	// ascending charge_id order.
	FindChargesByIDsForUpdate(ctx context.Context, chargeIDs []string) (map[string]domain.Charge, error)
}

// ChargeRepositoryFacade combines all charge-related repository interfaces
type ChargeRepositoryFacade interface {
	ChargeReader
	ChargeWriter
	ChargeTransactionSupport
}

// ChargeRepositoryWithTx extends ChargeRepositoryFacade with transaction capabilities
type ChargeRepositoryWithTx interface {
	ChargeRepositoryFacade
	TransactionManager
}
