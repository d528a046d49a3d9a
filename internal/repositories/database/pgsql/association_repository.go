package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	"github.com/strataops/strataledger/internal/models"
	"github.com/strataops/strataledger/internal/utils/mapping"
)

type PgxAssociationRepository struct {
	BaseRepository
}

// newPgxAssociationRepository creates a new repository for association, unit
// and assessment type data.
func newPgxAssociationRepository(pool *pgxpool.Pool) *PgxAssociationRepository {
	return &PgxAssociationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAssociationRepository implements portsrepo.AssociationRepositoryWithTx
var _ portsrepo.AssociationRepositoryWithTx = (*PgxAssociationRepository)(nil)

// SaveAssociation persists a new association.
func (r *PgxAssociationRepository) SaveAssociation(ctx context.Context, association domain.Association) error {
	m := mapping.ToModelAssociation(association)

	query := `
		INSERT INTO associations (association_id, name, timezone, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		m.AssociationID,
		m.Name,
		m.Timezone,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: association %s already exists", apperrors.ErrDuplicate, m.AssociationID)
		}
		return fmt.Errorf("failed to save association %s: %w", m.AssociationID, err)
	}
	return nil
}

// FindAssociationByID retrieves an association by its ID.
func (r *PgxAssociationRepository) FindAssociationByID(ctx context.Context, associationID string) (*domain.Association, error) {
	query := `
		SELECT association_id, name, timezone, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM associations
		WHERE association_id = $1;
	`
	var m models.Association
	err := r.q(ctx).QueryRow(ctx, query, associationID).Scan(
		&m.AssociationID,
		&m.Name,
		&m.Timezone,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find association by ID %s: %w", associationID, err)
	}

	association := mapping.ToDomainAssociation(m)
	return &association, nil
}

// SaveUnit persists a new unit.
func (r *PgxAssociationRepository) SaveUnit(ctx context.Context, unit domain.Unit) error {
	m := mapping.ToModelUnit(unit)

	query := `
		INSERT INTO units (unit_id, association_id, unit_number, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		m.UnitID,
		m.AssociationID,
		m.UnitNumber,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: unit number %s already exists in association %s", apperrors.ErrDuplicate, m.UnitNumber, m.AssociationID)
		}
		return fmt.Errorf("failed to save unit %s: %w", m.UnitID, err)
	}
	return nil
}

// FindUnitByID retrieves a unit by its ID, scoped to the association.
func (r *PgxAssociationRepository) FindUnitByID(ctx context.Context, associationID string, unitID string) (*domain.Unit, error) {
	query := `
		SELECT unit_id, association_id, unit_number, created_at, created_by, last_updated_at, last_updated_by
		FROM units
		WHERE unit_id = $1 AND association_id = $2;
	`
	var m models.Unit
	err := r.q(ctx).QueryRow(ctx, query, unitID, associationID).Scan(
		&m.UnitID,
		&m.AssociationID,
		&m.UnitNumber,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find unit by ID %s: %w", unitID, err)
	}

	unit := mapping.ToDomainUnit(m)
	return &unit, nil
}

// ListUnits retrieves all units of an association ordered by unit number.
func (r *PgxAssociationRepository) ListUnits(ctx context.Context, associationID string) ([]domain.Unit, error) {
	query := `
		SELECT unit_id, association_id, unit_number, created_at, created_by, last_updated_at, last_updated_by
		FROM units
		WHERE association_id = $1
		ORDER BY unit_number;
	`
	rows, err := r.q(ctx).Query(ctx, query, associationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query units for association %s: %w", associationID, err)
	}
	defer rows.Close()

	modelUnits := []models.Unit{}
	for rows.Next() {
		var m models.Unit
		if err := rows.Scan(
			&m.UnitID,
			&m.AssociationID,
			&m.UnitNumber,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan unit row for association %s: %w", associationID, err)
		}
		modelUnits = append(modelUnits, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unit rows for association %s: %w", associationID, err)
	}

	return mapping.ToDomainUnitSlice(modelUnits), nil
}

// SaveAssessmentTypes persists a batch of assessment types, used when seeding
// an association.
func (r *PgxAssociationRepository) SaveAssessmentTypes(ctx context.Context, types []domain.AssessmentType) error {
	if len(types) == 0 {
		return nil
	}

	query := `
		INSERT INTO assessment_types (assessment_type_id, association_id, name, income_account_number, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, t := range types {
		m := mapping.ToModelAssessmentType(t)
		batch.Queue(query,
			m.AssessmentTypeID,
			m.AssociationID,
			m.Name,
			m.IncomeAccountNumber,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	br := r.q(ctx).SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: duplicate assessment type name", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save assessment type batch: %w", err)
	}
	return nil
}

// FindAssessmentTypeByID retrieves an assessment type by its ID, scoped to
// the association.
func (r *PgxAssociationRepository) FindAssessmentTypeByID(ctx context.Context, associationID string, assessmentTypeID string) (*domain.AssessmentType, error) {
	query := `
		SELECT assessment_type_id, association_id, name, income_account_number, created_at, created_by, last_updated_at, last_updated_by
		FROM assessment_types
		WHERE assessment_type_id = $1 AND association_id = $2;
	`
	var m models.AssessmentType
	err := r.q(ctx).QueryRow(ctx, query, assessmentTypeID, associationID).Scan(
		&m.AssessmentTypeID,
		&m.AssociationID,
		&m.Name,
		&m.IncomeAccountNumber,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find assessment type by ID %s: %w", assessmentTypeID, err)
	}

	assessmentType := mapping.ToDomainAssessmentType(m)
	return &assessmentType, nil
}

// ListAssessmentTypes retrieves all assessment types of an association.
func (r *PgxAssociationRepository) ListAssessmentTypes(ctx context.Context, associationID string) ([]domain.AssessmentType, error) {
	query := `
		SELECT assessment_type_id, association_id, name, income_account_number, created_at, created_by, last_updated_at, last_updated_by
		FROM assessment_types
		WHERE association_id = $1
		ORDER BY name;
	`
	rows, err := r.q(ctx).Query(ctx, query, associationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment types for association %s: %w", associationID, err)
	}
	defer rows.Close()

	modelTypes := []models.AssessmentType{}
	for rows.Next() {
		var m models.AssessmentType
		if err := rows.Scan(
			&m.AssessmentTypeID,
			&m.AssociationID,
			&m.Name,
			&m.IncomeAccountNumber,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assessment type row for association %s: %w", associationID, err)
		}
		modelTypes = append(modelTypes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessment type rows for association %s: %w", associationID, err)
	}

	return mapping.ToDomainAssessmentTypeSlice(modelTypes), nil
}
