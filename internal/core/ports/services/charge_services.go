package services

import (
	"context"

	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/dto"
)

// ChargeReaderSvc defines read operations for charge data
type ChargeReaderSvc interface {
	// GetChargeByID retrieves a specific charge by its ID.
	GetChargeByID(ctx context.Context, associationID string, chargeID string) (*domain.Charge, error)

	// ListChargesByUnit retrieves a paginated list of a unit's charges.
	ListChargesByUnit(ctx context.Context, associationID string, unitID string, params dto.ListChargesParams) (*dto.ListChargesResponse, error)

	// GetUnitBalance aggregates a unit's charges and payments into a balance summary.
	GetUnitBalance(ctx context.Context, associationID string, unitID string) (*domain.UnitBalance, error)
}

// ChargeWriterSvc defines write operations for charge data
type ChargeWriterSvc interface {
	// CreateCharge bills an assessment to a unit and queues its GL posting.
	CreateCharge(ctx context.Context, associationID string, req dto.CreateChargeRequest, creatorUserID string) (*domain.Charge, error)

	// WriteOffCharge marks the remaining balance uncollectible and queues the
	// bad-debt GL posting. Terminal charges are rejected.
	WriteOffCharge(ctx context.Context, associationID string, chargeID string, requestingUserID string) (*domain.Charge, error)

	// CreditCharge cancels a charge with an offsetting credit. Terminal charges
	// are rejected.
	CreditCharge(ctx context.Context, associationID string, chargeID string, requestingUserID string) (*domain.Charge, error)
}

// ChargeSvcFacade combines all charge-related service interfaces
type ChargeSvcFacade interface {
	ChargeReaderSvc
	ChargeWriterSvc
}
