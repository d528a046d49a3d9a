package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	"github.com/strataops/strataledger/internal/models"
	"github.com/strataops/strataledger/internal/utils/mapping"
	"github.com/strataops/strataledger/internal/utils/pagination"
)

const chargeColumns = `charge_id, association_id, unit_id, assessment_type_id, description, total_amount, paid_amount, balance_due, status, due_date, gl_entry_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxChargeRepository struct {
	BaseRepository
}

// newPgxChargeRepository creates a new repository for charge data.
func newPgxChargeRepository(pool *pgxpool.Pool) *PgxChargeRepository {
	return &PgxChargeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxChargeRepository implements portsrepo.ChargeRepositoryWithTx
var _ portsrepo.ChargeRepositoryWithTx = (*PgxChargeRepository)(nil)

func scanChargeRow(row pgx.Row) (models.Charge, error) {
	var m models.Charge
	err := row.Scan(
		&m.ChargeID,
		&m.AssociationID,
		&m.UnitID,
		&m.AssessmentTypeID,
		&m.Description,
		&m.TotalAmount,
		&m.PaidAmount,
		&m.BalanceDue,
		&m.Status,
		&m.DueDate,
		&m.GLEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveCharge inserts a new charge.
func (r *PgxChargeRepository) SaveCharge(ctx context.Context, charge domain.Charge) error {
	m := mapping.ToModelCharge(charge)

	query := `
		INSERT INTO charges (` + chargeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		m.ChargeID,
		m.AssociationID,
		m.UnitID,
		m.AssessmentTypeID,
		m.Description,
		m.TotalAmount,
		m.PaidAmount,
		m.BalanceDue,
		m.Status,
		m.DueDate,
		m.GLEntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save charge %s: %w", m.ChargeID, err)
	}
	return nil
}

// FindChargeByID retrieves a charge by its ID, scoped to the association.
func (r *PgxChargeRepository) FindChargeByID(ctx context.Context, associationID string, chargeID string) (*domain.Charge, error) {
	query := `
		SELECT ` + chargeColumns + `
		FROM charges
		WHERE charge_id = $1 AND association_id = $2;
	`
	m, err := scanChargeRow(r.q(ctx).QueryRow(ctx, query, chargeID, associationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find charge by ID %s: %w", chargeID, err)
	}

	charge := mapping.ToDomainCharge(m)
	return &charge, nil
}

// ListChargesByUnit retrieves a paginated list of a unit's charges, oldest due
// date first, using token-based pagination.
func (r *PgxChargeRepository) ListChargesByUnit(ctx context.Context, associationID string, unitID string, includeTerminal bool, limit int, nextToken *string) ([]domain.Charge, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + chargeColumns + `
		FROM charges
	`
	filterClause := `WHERE association_id = $1 AND unit_id = $2`
	if !includeTerminal {
		filterClause += ` AND status NOT IN ('PAID', 'WRITTEN_OFF', 'CREDITED')`
	}
	orderByClause := `ORDER BY due_date ASC, charge_id ASC`

	args := []interface{}{associationID, unitID}

	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeMultiFieldToken(*nextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		lastDueDate, parseErr := time.Parse(time.RFC3339Nano, fields[0])
		if parseErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", parseErr)
		}
		args = append(args, lastDueDate, fields[1])
		filterClause += ` AND (due_date, charge_id) > ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query charges for unit %s: %w", unitID, err)
	}
	defer rows.Close()

	modelCharges := make([]models.Charge, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanChargeRow(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan charge row for unit %s: %w", unitID, scanErr)
		}
		modelCharges = append(modelCharges, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating charge rows for unit %s: %w", unitID, err)
	}

	var nextTokenVal *string
	results := modelCharges
	if len(modelCharges) > limit {
		last := modelCharges[limit-1]
		token := pagination.EncodeMultiFieldToken(last.DueDate.Format(time.RFC3339Nano), last.ChargeID)
		nextTokenVal = &token
		results = modelCharges[:limit]
	}

	return mapping.ToDomainChargeSlice(results), nextTokenVal, nil
}

// GetUnitBalance aggregates the unit's charges and payments into a balance
// summary in a single query. Written-off and credited charges drop out of the
// totals; bounced and voided payments likewise.
func (r *PgxChargeRepository) GetUnitBalance(ctx context.Context, associationID string, unitID string, asOf time.Time) (*domain.UnitBalance, error) {
	query := `
		SELECT
			COALESCE((SELECT SUM(total_amount) FROM charges
			          WHERE association_id = $1 AND unit_id = $2
			            AND status NOT IN ('WRITTEN_OFF', 'CREDITED')), 0) AS total_charges,
			COALESCE((SELECT SUM(amount) FROM payments
			          WHERE association_id = $1 AND unit_id = $2
			            AND status NOT IN ('BOUNCED', 'VOIDED')), 0) AS total_payments,
			COALESCE((SELECT SUM(balance_due) FROM charges
			          WHERE association_id = $1 AND unit_id = $2
			            AND status IN ('BILLED', 'PARTIALLY_PAID')
			            AND due_date < $3 AND balance_due > 0), 0) AS past_due_amount;
	`
	balance := domain.UnitBalance{UnitID: unitID}
	err := r.q(ctx).QueryRow(ctx, query, associationID, unitID, asOf).Scan(
		&balance.TotalCharges,
		&balance.TotalPayments,
		&balance.PastDueAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate balance for unit %s: %w", unitID, err)
	}

	balance.Balance = balance.TotalCharges.Sub(balance.TotalPayments)
	return &balance, nil
}

// UpdateChargeAmounts rewrites a charge's paid amount, balance due, status and
// audit fields after an application or void.
func (r *PgxChargeRepository) UpdateChargeAmounts(ctx context.Context, charge domain.Charge) error {
	m := mapping.ToModelCharge(charge)

	query := `
		UPDATE charges
		SET paid_amount = $2, balance_due = $3, status = $4, last_updated_at = $5, last_updated_by = $6
		WHERE charge_id = $1;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query,
		m.ChargeID,
		m.PaidAmount,
		m.BalanceDue,
		m.Status,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update amounts for charge %s: %w", m.ChargeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetChargeGLEntry records the journal entry posted for the charge.
func (r *PgxChargeRepository) SetChargeGLEntry(ctx context.Context, chargeID string, entryID string, userID string, now time.Time) error {
	query := `
		UPDATE charges
		SET gl_entry_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE charge_id = $1;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query, chargeID, entryID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set GL entry for charge %s: %w", chargeID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindOpenChargesByUnitForUpdate locks and returns the unit's open charges
// ordered by (due_date, charge_id). Every payment against the same unit locks
// rows in this order, which serializes concurrent applications without
// deadlocking. Must run inside an ambient transaction.
func (r *PgxChargeRepository) FindOpenChargesByUnitForUpdate(ctx context.Context, associationID string, unitID string) ([]domain.Charge, error) {
	query := `
		SELECT ` + chargeColumns + `
		FROM charges
		WHERE association_id = $1 AND unit_id = $2
		  AND balance_due > 0 AND status IN ('BILLED', 'PARTIALLY_PAID')
		ORDER BY due_date ASC, charge_id ASC
		FOR UPDATE;
	`
	rows, err := r.q(ctx).Query(ctx, query, associationID, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock open charges for unit %s: %w", unitID, err)
	}
	defer rows.Close()

	modelCharges := []models.Charge{}
	for rows.Next() {
		m, scanErr := scanChargeRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan locked charge row for unit %s: %w", unitID, scanErr)
		}
		modelCharges = append(modelCharges, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked charge rows for unit %s: %w", unitID, err)
	}

	return mapping.ToDomainChargeSlice(modelCharges), nil
}

// FindChargesByIDsForUpdate locks and returns specific charges in ascending
// charge_id order. Must run inside an ambient transaction.
func (r *PgxChargeRepository) FindChargesByIDsForUpdate(ctx context.Context, chargeIDs []string) (map[string]domain.Charge, error) {
	if len(chargeIDs) == 0 {
		return map[string]domain.Charge{}, nil
	}

	sorted := make([]string, len(chargeIDs))
	copy(sorted, chargeIDs)
	sort.Strings(sorted)

	query := `
		SELECT ` + chargeColumns + `
		FROM charges
		WHERE charge_id = ANY($1)
		ORDER BY charge_id
		FOR UPDATE;
	`
	rows, err := r.q(ctx).Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to lock charges by IDs: %w", err)
	}
	defer rows.Close()

	chargesMap := make(map[string]domain.Charge)
	for rows.Next() {
		m, scanErr := scanChargeRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan locked charge row: %w", scanErr)
		}
		chargesMap[m.ChargeID] = mapping.ToDomainCharge(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked charge rows: %w", err)
	}

	if len(chargesMap) != len(sorted) {
		missing := []string{}
		for _, id := range sorted {
			if _, found := chargesMap[id]; !found {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("%w: could not find or lock all requested charges, missing: %v", apperrors.ErrNotFound, missing)
	}

	return chargesMap, nil
}
