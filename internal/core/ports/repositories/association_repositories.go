package repositories

import (
	"context"

	"github.com/strataops/strataledger/internal/core/domain"
)

// AssociationReader defines read operations for association data
type AssociationReader interface {
	// FindAssociationByID retrieves a specific association by its ID.
	FindAssociationByID(ctx context.Context, associationID string) (*domain.Association, error)
}

// AssociationWriter defines write operations for association data
type AssociationWriter interface {
	// SaveAssociation persists a new association.
	SaveAssociation(ctx context.Context, association domain.Association) error
}

// UnitReader defines read operations for unit data
type UnitReader interface {
	// FindUnitByID retrieves a specific unit scoped to an association.
	FindUnitByID(ctx context.Context, associationID string, unitID string) (*domain.Unit, error)

	// ListUnits retrieves all units of an association ordered by unit number.
	ListUnits(ctx context.Context, associationID string) ([]domain.Unit, error)
}

// UnitWriter defines write operations for unit data
type UnitWriter interface {
	// SaveUnit persists a new unit.
	SaveUnit(ctx context.Context, unit domain.Unit) error
}

// AssessmentTypeReader defines read operations for assessment type data
type AssessmentTypeReader interface {
	// FindAssessmentTypeByID retrieves a specific assessment type scoped to an association.
	FindAssessmentTypeByID(ctx context.Context, associationID string, assessmentTypeID string) (*domain.AssessmentType, error)

	// ListAssessmentTypes retrieves all assessment types of an association.
	ListAssessmentTypes(ctx context.Context, associationID string) ([]domain.AssessmentType, error)
}

// AssessmentTypeWriter defines write operations for assessment type data
type AssessmentTypeWriter interface {
	// SaveAssessmentTypes persists a batch of assessment types, used when
	// seeding an association.
	SaveAssessmentTypes(ctx context.Context, types []domain.AssessmentType) error
}

// AssociationRepositoryFacade combines all association-scoped repository interfaces
// This is a facade for clients that need access to all operations
type AssociationRepositoryFacade interface {
	AssociationReader
	AssociationWriter
	UnitReader
	UnitWriter
	AssessmentTypeReader
	AssessmentTypeWriter
}

// AssociationRepositoryWithTx extends AssociationRepositoryFacade with transaction capabilities
type AssociationRepositoryWithTx interface {
	AssociationRepositoryFacade
	TransactionManager
}
