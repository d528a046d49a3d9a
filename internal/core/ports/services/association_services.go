package services

import (
	"context"

	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/dto"
)

// AssociationReaderSvc defines read operations for association data
type AssociationReaderSvc interface {
	// GetAssociationByID retrieves a specific association by its ID.
	GetAssociationByID(ctx context.Context, associationID string) (*domain.Association, error)

	// ListUnits retrieves all units of an association.
	ListUnits(ctx context.Context, associationID string) ([]domain.Unit, error)

	// GetUnitByID retrieves a specific unit scoped to an association.
	GetUnitByID(ctx context.Context, associationID string, unitID string) (*domain.Unit, error)

	// ListAssessmentTypes retrieves an association's assessment types.
	ListAssessmentTypes(ctx context.Context, associationID string) ([]domain.AssessmentType, error)
}

// AssociationWriterSvc defines write operations for association data
type AssociationWriterSvc interface {
	// CreateAssociation persists a new association and seeds its default chart
	// of accounts and assessment types.
	CreateAssociation(ctx context.Context, req dto.CreateAssociationRequest, creatorUserID string) (*domain.Association, error)

	// CreateUnit persists a new unit in an association.
	CreateUnit(ctx context.Context, associationID string, req dto.CreateUnitRequest, creatorUserID string) (*domain.Unit, error)
}

// AssociationSvcFacade combines all association-related service interfaces
type AssociationSvcFacade interface {
	AssociationReaderSvc
	AssociationWriterSvc
}
