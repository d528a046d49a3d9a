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
	maxListPaymentsLimit     = 100
	defaultListPaymentsLimit = 20
)

// PaymentService manages payments, their application to charges, and voids.
type PaymentService struct {
	BaseService
	paymentRepo portsrepo.PaymentRepositoryWithTx
	chargeRepo  portsrepo.ChargeRepositoryWithTx
	assocRepo   portsrepo.AssociationRepositoryFacade
	outbox      portssvc.OutboxSvcFacade
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo portsrepo.PaymentRepositoryWithTx, chargeRepo portsrepo.ChargeRepositoryWithTx, assocRepo portsrepo.AssociationRepositoryFacade, outbox portssvc.OutboxSvcFacade) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		chargeRepo:  chargeRepo,
		assocRepo:   assocRepo,
		outbox:      outbox,
	}
}

// Ensure PaymentService implements the portssvc.PaymentSvcFacade interface
var _ portssvc.PaymentSvcFacade = (*PaymentService)(nil)

// RecordPayment persists a received payment and, unless autoApply is disabled,
// allocates it to the unit's open charges oldest-first in the same
// transaction. The GL posting task commits alongside.
func (s *PaymentService) RecordPayment(ctx context.Context, associationID string, req dto.RecordPaymentRequest, creatorUserID string) (*domain.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("payment amount must be positive")
	}

	if _, err := s.assocRepo.FindUnitByID(ctx, associationID, req.UnitID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("unit %s not found", req.UnitID))
		}
		return nil, err
	}

	autoApply := req.AutoApply == nil || *req.AutoApply

	now := time.Now()
	payment := domain.Payment{
		PaymentID:       uuid.NewString(),
		AssociationID:   associationID,
		UnitID:          req.UnitID,
		Amount:          req.Amount,
		AppliedAmount:   decimal.Zero,
		UnappliedAmount: req.Amount,
		Status:          domain.PaymentCleared,
		Method:          req.Method,
		Reference:       req.Reference,
		ReceivedDate:    req.ReceivedDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	err := s.paymentRepo.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
			return err
		}
		if autoApply {
			if err := s.allocate(ctx, &payment, creatorUserID, now); err != nil {
				return err
			}
		}
		return s.outbox.Enqueue(ctx, associationID, domain.TaskPaymentGLPost, paymentTaskPayload{
			AssociationID: associationID,
			PaymentID:     payment.PaymentID,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record payment", slog.String("unit_id", req.UnitID))
		return nil, err
	}

	obsmetrics.IncPaymentRecorded()
	s.LogInfo(ctx, "Payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("unit_id", payment.UnitID),
		slog.String("amount", payment.Amount.StringFixed(2)),
		slog.String("applied", payment.AppliedAmount.StringFixed(2)))
	return &payment, nil
}

// allocate distributes the payment's unapplied remainder across the unit's
// open charges, oldest due date first. The charges are locked in a
// deterministic order so concurrent payments against the same unit serialize
// instead of deadlocking. Surplus beyond the open balances stays unapplied.
func (s *PaymentService) allocate(ctx context.Context, payment *domain.Payment, userID string, now time.Time) error {
	open, err := s.chargeRepo.FindOpenChargesByUnitForUpdate(ctx, payment.AssociationID, payment.UnitID)
	if err != nil {
		return fmt.Errorf("failed to lock open charges: %w", err)
	}

	remaining := payment.UnappliedAmount
	applications := make([]domain.PaymentApplication, 0, len(open))
	for i := range open {
		if !remaining.IsPositive() {
			break
		}
		charge := &open[i]

		applyAmount := decimal.Min(remaining, charge.BalanceDue)
		if !applyAmount.IsPositive() {
			continue
		}

		charge.PaidAmount = charge.PaidAmount.Add(applyAmount)
		charge.RecomputeDerived()
		charge.LastUpdatedAt = now
		charge.LastUpdatedBy = userID
		if err := s.chargeRepo.UpdateChargeAmounts(ctx, *charge); err != nil {
			return err
		}

		applications = append(applications, domain.PaymentApplication{
			ApplicationID: uuid.NewString(),
			PaymentID:     payment.PaymentID,
			ChargeID:      charge.ChargeID,
			Amount:        applyAmount,
			AppliedAt:     now,
		})
		remaining = remaining.Sub(applyAmount)
	}

	if len(applications) == 0 {
		return nil
	}

	if err := s.paymentRepo.SaveApplications(ctx, applications); err != nil {
		return fmt.Errorf("failed to save payment applications: %w", err)
	}

	payment.UnappliedAmount = remaining
	payment.AppliedAmount = payment.Amount.Sub(remaining)
	payment.LastUpdatedAt = now
	payment.LastUpdatedBy = userID
	if err := s.paymentRepo.UpdatePaymentAmounts(ctx, *payment); err != nil {
		return err
	}

	payment.Applications = append(payment.Applications, applications...)
	obsmetrics.AddApplications(len(applications))
	return nil
}

// ApplyPayment allocates a payment's unapplied remainder to the unit's open
// charges oldest-first.
func (s *PaymentService) ApplyPayment(ctx context.Context, associationID string, paymentID string, requestingUserID string) (*domain.Payment, error) {
	var applied *domain.Payment
	err := s.paymentRepo.RunInTx(ctx, func(ctx context.Context) error {
		payment, err := s.paymentRepo.FindPaymentByID(ctx, associationID, paymentID)
		if err != nil {
			return err
		}
		switch payment.Status {
		case domain.PaymentVoided, domain.PaymentBounced, domain.PaymentRefunded:
			return apperrors.NewConflictError(fmt.Sprintf("payment %s is %s and cannot be applied", paymentID, payment.Status))
		}
		if !payment.UnappliedAmount.IsPositive() {
			return apperrors.NewConflictError(fmt.Sprintf("payment %s has no unapplied amount", paymentID))
		}

		if err := s.allocate(ctx, payment, requestingUserID, time.Now()); err != nil {
			return err
		}

		apps, err := s.paymentRepo.FindApplicationsByPaymentID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment applications: %w", err)
		}
		payment.Applications = apps
		applied = payment
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to apply payment", slog.String("payment_id", paymentID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Payment applied",
		slog.String("payment_id", paymentID),
		slog.String("applied", applied.AppliedAmount.StringFixed(2)),
		slog.String("unapplied", applied.UnappliedAmount.StringFixed(2)))
	return applied, nil
}

// VoidPayment unwinds all of the payment's applications, restores the
// affected charges, and queues the reversal of its GL entry. Restores and the
// void commit atomically; a queueing problem is logged but never blocks the
// void itself.
func (s *PaymentService) VoidPayment(ctx context.Context, associationID string, paymentID string, requestingUserID string) (*domain.Payment, error) {
	var voided *domain.Payment
	err := s.paymentRepo.RunInTx(ctx, func(ctx context.Context) error {
		payment, err := s.paymentRepo.FindPaymentByID(ctx, associationID, paymentID)
		if err != nil {
			return err
		}
		if payment.Status == domain.PaymentVoided {
			return apperrors.NewConflictError(fmt.Sprintf("payment %s is already voided", paymentID))
		}

		applications, err := s.paymentRepo.FindApplicationsByPaymentID(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment applications: %w", err)
		}

		now := time.Now()
		if len(applications) > 0 {
			chargeIDs := make([]string, len(applications))
			for i, app := range applications {
				chargeIDs[i] = app.ChargeID
			}
			locked, err := s.chargeRepo.FindChargesByIDsForUpdate(ctx, chargeIDs)
			if err != nil {
				return fmt.Errorf("failed to lock applied charges: %w", err)
			}

			for _, app := range applications {
				charge := locked[app.ChargeID]
				charge.PaidAmount = decimal.Max(decimal.Zero, charge.PaidAmount.Sub(app.Amount))
				charge.BalanceDue = charge.TotalAmount.Sub(charge.PaidAmount)
				if charge.PaidAmount.IsZero() {
					charge.Status = domain.ChargeBilled
				} else {
					charge.Status = domain.ChargePartiallyPaid
				}
				charge.LastUpdatedAt = now
				charge.LastUpdatedBy = requestingUserID
				if err := s.chargeRepo.UpdateChargeAmounts(ctx, charge); err != nil {
					return err
				}
				locked[app.ChargeID] = charge
			}

			if err := s.paymentRepo.DeleteApplicationsByPaymentID(ctx, paymentID); err != nil {
				return fmt.Errorf("failed to delete payment applications: %w", err)
			}
		}

		payment.Status = domain.PaymentVoided
		payment.AppliedAmount = decimal.Zero
		payment.UnappliedAmount = payment.Amount
		payment.LastUpdatedAt = now
		payment.LastUpdatedBy = requestingUserID
		if err := s.paymentRepo.UpdatePaymentAmounts(ctx, *payment); err != nil {
			return err
		}

		if err := s.outbox.Enqueue(ctx, associationID, domain.TaskPaymentGLReverse, paymentTaskPayload{
			AssociationID: associationID,
			PaymentID:     paymentID,
		}); err != nil {
			s.LogWarn(ctx, "Failed to queue GL reversal for voided payment",
				slog.String("payment_id", paymentID),
				slog.String("error", err.Error()))
		}

		payment.Applications = nil
		voided = payment
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to void payment", slog.String("payment_id", paymentID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Payment voided", slog.String("payment_id", paymentID))
	return voided, nil
}

// GetPaymentByID retrieves a specific payment, application rows included.
func (s *PaymentService) GetPaymentByID(ctx context.Context, associationID string, paymentID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, associationID, paymentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find payment by ID", slog.String("payment_id", paymentID))
		}
		return nil, err
	}

	applications, err := s.paymentRepo.FindApplicationsByPaymentID(ctx, paymentID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load payment applications", slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to load payment applications: %w", err)
	}
	payment.Applications = applications
	return payment, nil
}

// ListPaymentsByUnit retrieves a paginated list of a unit's payments, newest
// received first.
func (s *PaymentService) ListPaymentsByUnit(ctx context.Context, associationID string, unitID string, params dto.ListPaymentsParams) (*dto.ListPaymentsResponse, error) {
	if _, err := s.assocRepo.FindUnitByID(ctx, associationID, unitID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultListPaymentsLimit
	}
	if limit > maxListPaymentsLimit {
		limit = maxListPaymentsLimit
	}

	payments, nextToken, err := s.paymentRepo.ListPaymentsByUnit(ctx, associationID, unitID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments", slog.String("unit_id", unitID))
		return nil, err
	}

	return &dto.ListPaymentsResponse{
		Payments:  dto.ToListPaymentResponse(payments),
		NextToken: nextToken,
	}, nil
}
