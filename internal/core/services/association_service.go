package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/dto"
)

// AssociationService handles association bootstrap, units and assessment types.
type AssociationService struct {
	BaseService
	assocRepo portsrepo.AssociationRepositoryWithTx
	seeder    portssvc.AccountSeederSvc
}

// NewAssociationService creates a new AssociationService.
func NewAssociationService(assocRepo portsrepo.AssociationRepositoryWithTx, seeder portssvc.AccountSeederSvc) *AssociationService {
	return &AssociationService{
		assocRepo: assocRepo,
		seeder:    seeder,
	}
}

// Ensure AssociationService implements the portssvc.AssociationSvcFacade interface
var _ portssvc.AssociationSvcFacade = (*AssociationService)(nil)

// CreateAssociation persists a new association and seeds its default chart of
// accounts and assessment types, all in one transaction.
func (s *AssociationService) CreateAssociation(ctx context.Context, req dto.CreateAssociationRequest, creatorUserID string) (*domain.Association, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidationError("association name must not be empty")
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	now := time.Now()
	association := domain.Association{
		AssociationID: uuid.NewString(),
		Name:          req.Name,
		Timezone:      timezone,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	err := s.assocRepo.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.assocRepo.SaveAssociation(ctx, association); err != nil {
			return err
		}
		if _, err := s.seeder.SeedDefaultAccounts(ctx, association.AssociationID, creatorUserID); err != nil {
			return fmt.Errorf("failed to seed association defaults: %w", err)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create association", slog.String("name", req.Name))
		return nil, err
	}

	s.LogInfo(ctx, "Association created", slog.String("association_id", association.AssociationID), slog.String("name", association.Name))
	return &association, nil
}

// GetAssociationByID retrieves a specific association by its ID.
func (s *AssociationService) GetAssociationByID(ctx context.Context, associationID string) (*domain.Association, error) {
	association, err := s.assocRepo.FindAssociationByID(ctx, associationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find association by ID", slog.String("association_id", associationID))
		}
		return nil, err
	}
	return association, nil
}

// CreateUnit persists a new unit in an association.
func (s *AssociationService) CreateUnit(ctx context.Context, associationID string, req dto.CreateUnitRequest, creatorUserID string) (*domain.Unit, error) {
	if strings.TrimSpace(req.UnitNumber) == "" {
		return nil, apperrors.NewValidationError("unit number must not be empty")
	}

	if _, err := s.assocRepo.FindAssociationByID(ctx, associationID); err != nil {
		return nil, err
	}

	now := time.Now()
	unit := domain.Unit{
		UnitID:        uuid.NewString(),
		AssociationID: associationID,
		UnitNumber:    req.UnitNumber,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.assocRepo.SaveUnit(ctx, unit); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save unit", slog.String("unit_number", req.UnitNumber))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Unit created", slog.String("unit_id", unit.UnitID), slog.String("unit_number", unit.UnitNumber))
	return &unit, nil
}

// GetUnitByID retrieves a specific unit scoped to an association.
func (s *AssociationService) GetUnitByID(ctx context.Context, associationID string, unitID string) (*domain.Unit, error) {
	unit, err := s.assocRepo.FindUnitByID(ctx, associationID, unitID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find unit by ID", slog.String("unit_id", unitID))
		}
		return nil, err
	}
	return unit, nil
}

// ListUnits retrieves all units of an association.
func (s *AssociationService) ListUnits(ctx context.Context, associationID string) ([]domain.Unit, error) {
	units, err := s.assocRepo.ListUnits(ctx, associationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list units", slog.String("association_id", associationID))
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	if units == nil {
		return []domain.Unit{}, nil
	}
	return units, nil
}

// ListAssessmentTypes retrieves an association's assessment types.
func (s *AssociationService) ListAssessmentTypes(ctx context.Context, associationID string) ([]domain.AssessmentType, error) {
	types, err := s.assocRepo.ListAssessmentTypes(ctx, associationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list assessment types", slog.String("association_id", associationID))
		return nil, fmt.Errorf("failed to list assessment types: %w", err)
	}
	if types == nil {
		return []domain.AssessmentType{}, nil
	}
	return types, nil
}
