package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/dto"
	"github.com/strataops/strataledger/internal/obsmetrics"
)

const (
	maxListChargesLimit     = 100
	defaultListChargesLimit = 20
)

// ChargeService manages the assessment charge lifecycle.
type ChargeService struct {
	BaseService
	chargeRepo portsrepo.ChargeRepositoryWithTx
	assocRepo  portsrepo.AssociationRepositoryFacade
	outbox     portssvc.OutboxSvcFacade
}

// NewChargeService creates a new ChargeService.
func NewChargeService(chargeRepo portsrepo.ChargeRepositoryWithTx, assocRepo portsrepo.AssociationRepositoryFacade, outbox portssvc.OutboxSvcFacade) *ChargeService {
	return &ChargeService{
		chargeRepo: chargeRepo,
		assocRepo:  assocRepo,
		outbox:     outbox,
	}
}

// Ensure ChargeService implements the portssvc.ChargeSvcFacade interface
var _ portssvc.ChargeSvcFacade = (*ChargeService)(nil)

// CreateCharge bills an assessment to a unit. The charge row and its GL
// posting task commit together; the posting itself happens asynchronously so
// a GL problem can never block billing.
func (s *ChargeService) CreateCharge(ctx context.Context, associationID string, req dto.CreateChargeRequest, creatorUserID string) (*domain.Charge, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("charge amount must be positive")
	}

	if _, err := s.assocRepo.FindUnitByID(ctx, associationID, req.UnitID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("unit %s not found", req.UnitID))
		}
		return nil, err
	}
	assessmentType, err := s.assocRepo.FindAssessmentTypeByID(ctx, associationID, req.AssessmentTypeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("assessment type %s not found", req.AssessmentTypeID))
		}
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = assessmentType.Name
	}

	now := time.Now()
	charge := domain.Charge{
		ChargeID:         uuid.NewString(),
		AssociationID:    associationID,
		UnitID:           req.UnitID,
		AssessmentTypeID: req.AssessmentTypeID,
		Description:      description,
		TotalAmount:      req.Amount,
		PaidAmount:       decimal.Zero,
		BalanceDue:       req.Amount,
		Status:           domain.ChargeBilled,
		DueDate:          req.DueDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	err = s.chargeRepo.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.chargeRepo.SaveCharge(ctx, charge); err != nil {
			return err
		}
		return s.outbox.Enqueue(ctx, associationID, domain.TaskChargeGLPost, chargeTaskPayload{
			AssociationID: associationID,
			ChargeID:      charge.ChargeID,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create charge", slog.String("unit_id", req.UnitID))
		return nil, err
	}

	obsmetrics.IncChargeBilled()
	s.LogInfo(ctx, "Charge created",
		slog.String("charge_id", charge.ChargeID),
		slog.String("unit_id", charge.UnitID),
		slog.String("amount", charge.TotalAmount.StringFixed(2)))
	return &charge, nil
}

// WriteOffCharge marks the remaining balance uncollectible. The charge is
// locked for the transition, and the bad-debt GL posting is queued in the
// same transaction.
func (s *ChargeService) WriteOffCharge(ctx context.Context, associationID string, chargeID string, requestingUserID string) (*domain.Charge, error) {
	var written *domain.Charge
	err := s.chargeRepo.RunInTx(ctx, func(ctx context.Context) error {
		charge, err := s.lockCharge(ctx, associationID, chargeID)
		if err != nil {
			return err
		}
		if charge.IsTerminal() {
			return apperrors.NewConflictError(fmt.Sprintf("charge %s is already %s", chargeID, charge.Status))
		}

		now := time.Now()
		charge.Status = domain.ChargeWrittenOff
		charge.LastUpdatedAt = now
		charge.LastUpdatedBy = requestingUserID
		if err := s.chargeRepo.UpdateChargeAmounts(ctx, *charge); err != nil {
			return err
		}

		if err := s.outbox.Enqueue(ctx, associationID, domain.TaskChargeGLWriteoff, chargeTaskPayload{
			AssociationID: associationID,
			ChargeID:      chargeID,
		}); err != nil {
			return err
		}

		written = charge
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to write off charge", slog.String("charge_id", chargeID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Charge written off", slog.String("charge_id", chargeID), slog.String("balance_due", written.BalanceDue.StringFixed(2)))
	return written, nil
}

// CreditCharge cancels a charge with an offsetting credit. The charge leaves
// the collection lifecycle and is excluded from balances; any GL correction
// goes through a manual reversal of the original posting.
func (s *ChargeService) CreditCharge(ctx context.Context, associationID string, chargeID string, requestingUserID string) (*domain.Charge, error) {
	var credited *domain.Charge
	err := s.chargeRepo.RunInTx(ctx, func(ctx context.Context) error {
		charge, err := s.lockCharge(ctx, associationID, chargeID)
		if err != nil {
			return err
		}
		if charge.IsTerminal() {
			return apperrors.NewConflictError(fmt.Sprintf("charge %s is already %s", chargeID, charge.Status))
		}

		now := time.Now()
		charge.Status = domain.ChargeCredited
		charge.LastUpdatedAt = now
		charge.LastUpdatedBy = requestingUserID
		if err := s.chargeRepo.UpdateChargeAmounts(ctx, *charge); err != nil {
			return err
		}

		credited = charge
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to credit charge", slog.String("charge_id", chargeID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Charge credited", slog.String("charge_id", chargeID))
	return credited, nil
}

// lockCharge row-locks one charge and verifies it belongs to the association.
func (s *ChargeService) lockCharge(ctx context.Context, associationID string, chargeID string) (*domain.Charge, error) {
	locked, err := s.chargeRepo.FindChargesByIDsForUpdate(ctx, []string{chargeID})
	if err != nil {
		return nil, err
	}
	charge, ok := locked[chargeID]
	if !ok || charge.AssociationID != associationID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("charge %s not found", chargeID))
	}
	return &charge, nil
}

// GetChargeByID retrieves a specific charge by its ID.
func (s *ChargeService) GetChargeByID(ctx context.Context, associationID string, chargeID string) (*domain.Charge, error) {
	charge, err := s.chargeRepo.FindChargeByID(ctx, associationID, chargeID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find charge by ID", slog.String("charge_id", chargeID))
		}
		return nil, err
	}
	return charge, nil
}

// ListChargesByUnit retrieves a paginated list of a unit's charges, oldest
// due first.
func (s *ChargeService) ListChargesByUnit(ctx context.Context, associationID string, unitID string, params dto.ListChargesParams) (*dto.ListChargesResponse, error) {
	if _, err := s.assocRepo.FindUnitByID(ctx, associationID, unitID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultListChargesLimit
	}
	if limit > maxListChargesLimit {
		limit = maxListChargesLimit
	}

	charges, nextToken, err := s.chargeRepo.ListChargesByUnit(ctx, associationID, unitID, params.IncludeTerminal, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list charges", slog.String("unit_id", unitID))
		return nil, err
	}

	return &dto.ListChargesResponse{
		Charges:   dto.ToListChargeResponse(charges),
		NextToken: nextToken,
	}, nil
}

// GetUnitBalance aggregates a unit's charges and payments into a balance summary.
func (s *ChargeService) GetUnitBalance(ctx context.Context, associationID string, unitID string) (*domain.UnitBalance, error) {
	if _, err := s.assocRepo.FindUnitByID(ctx, associationID, unitID); err != nil {
		return nil, err
	}

	balance, err := s.chargeRepo.GetUnitBalance(ctx, associationID, unitID, time.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate unit balance", slog.String("unit_id", unitID))
		return nil, err
	}
	return balance, nil
}
