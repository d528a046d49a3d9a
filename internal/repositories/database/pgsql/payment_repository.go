package pgsql

import (
	"context"
	"errors"
	"fmt"
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

const paymentColumns = `payment_id, association_id, unit_id, amount, applied_amount, unapplied_amount, status, method, reference, received_date, gl_entry_id, created_at, created_by, last_updated_at, last_updated_by`

const applicationColumns = `application_id, payment_id, charge_id, amount, applied_at`

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payment data.
func newPgxPaymentRepository(pool *pgxpool.Pool) *PgxPaymentRepository {
	return &PgxPaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPaymentRepository implements portsrepo.PaymentRepositoryWithTx
var _ portsrepo.PaymentRepositoryWithTx = (*PgxPaymentRepository)(nil)

func scanPaymentRow(row pgx.Row) (models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.AssociationID,
		&m.UnitID,
		&m.Amount,
		&m.AppliedAmount,
		&m.UnappliedAmount,
		&m.Status,
		&m.Method,
		&m.Reference,
		&m.ReceivedDate,
		&m.GLEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SavePayment inserts a new payment.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)

	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.q(ctx).Exec(ctx, query,
		m.PaymentID,
		m.AssociationID,
		m.UnitID,
		m.Amount,
		m.AppliedAmount,
		m.UnappliedAmount,
		m.Status,
		m.Method,
		m.Reference,
		m.ReceivedDate,
		m.GLEntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save payment %s: %w", m.PaymentID, err)
	}
	return nil
}

// FindPaymentByID retrieves a payment by its ID, scoped to the association.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, associationID string, paymentID string) (*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE payment_id = $1 AND association_id = $2;
	`
	m, err := scanPaymentRow(r.q(ctx).QueryRow(ctx, query, paymentID, associationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment by ID %s: %w", paymentID, err)
	}

	payment := mapping.ToDomainPayment(m)
	return &payment, nil
}

// ListPaymentsByUnit retrieves a paginated list of a unit's payments, newest
// received first, using token-based pagination.
func (r *PgxPaymentRepository) ListPaymentsByUnit(ctx context.Context, associationID string, unitID string, limit int, nextToken *string) ([]domain.Payment, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + paymentColumns + `
		FROM payments
	`
	filterClause := `WHERE association_id = $1 AND unit_id = $2`
	orderByClause := `ORDER BY received_date DESC, payment_id DESC`

	args := []interface{}{associationID, unitID}

	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeMultiFieldToken(*nextToken)
		if decodeErr != nil || len(fields) != 2 {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		lastReceived, parseErr := time.Parse(time.RFC3339Nano, fields[0])
		if parseErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", parseErr)
		}
		args = append(args, lastReceived, fields[1])
		filterClause += ` AND (received_date, payment_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query payments for unit %s: %w", unitID, err)
	}
	defer rows.Close()

	modelPayments := make([]models.Payment, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanPaymentRow(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan payment row for unit %s: %w", unitID, scanErr)
		}
		modelPayments = append(modelPayments, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating payment rows for unit %s: %w", unitID, err)
	}

	var nextTokenVal *string
	results := modelPayments
	if len(modelPayments) > limit {
		last := modelPayments[limit-1]
		token := pagination.EncodeMultiFieldToken(last.ReceivedDate.Format(time.RFC3339Nano), last.PaymentID)
		nextTokenVal = &token
		results = modelPayments[:limit]
	}

	return mapping.ToDomainPaymentSlice(results), nextTokenVal, nil
}

// FindApplicationsByPaymentID retrieves the application rows of a payment,
// oldest application first.
func (r *PgxPaymentRepository) FindApplicationsByPaymentID(ctx context.Context, paymentID string) ([]domain.PaymentApplication, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM payment_applications
		WHERE payment_id = $1
		ORDER BY applied_at, application_id;
	`
	rows, err := r.q(ctx).Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications for payment %s: %w", paymentID, err)
	}
	defer rows.Close()

	modelApps := []models.PaymentApplication{}
	for rows.Next() {
		var m models.PaymentApplication
		if err := rows.Scan(&m.ApplicationID, &m.PaymentID, &m.ChargeID, &m.Amount, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application row for payment %s: %w", paymentID, err)
		}
		modelApps = append(modelApps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows for payment %s: %w", paymentID, err)
	}

	return mapping.ToDomainPaymentApplicationSlice(modelApps), nil
}

// UpdatePaymentAmounts rewrites a payment's applied/unapplied amounts, status,
// GL entry link and audit fields.
func (r *PgxPaymentRepository) UpdatePaymentAmounts(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)

	query := `
		UPDATE payments
		SET applied_amount = $2, unapplied_amount = $3, status = $4, gl_entry_id = $5, last_updated_at = $6, last_updated_by = $7
		WHERE payment_id = $1;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query,
		m.PaymentID,
		m.AppliedAmount,
		m.UnappliedAmount,
		m.Status,
		m.GLEntryID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update amounts for payment %s: %w", m.PaymentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveApplications persists a batch of application rows.
func (r *PgxPaymentRepository) SaveApplications(ctx context.Context, applications []domain.PaymentApplication) error {
	if len(applications) == 0 {
		return nil
	}

	query := `
		INSERT INTO payment_applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5);
	`
	batch := &pgx.Batch{}
	for _, app := range applications {
		m := mapping.ToModelPaymentApplication(app)
		batch.Queue(query, m.ApplicationID, m.PaymentID, m.ChargeID, m.Amount, m.AppliedAt)
	}

	br := r.q(ctx).SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to save application batch: %w", err)
	}
	return nil
}

// DeleteApplicationsByPaymentID removes all application rows of a payment,
// used by void.
func (r *PgxPaymentRepository) DeleteApplicationsByPaymentID(ctx context.Context, paymentID string) error {
	query := `DELETE FROM payment_applications WHERE payment_id = $1;`

	if _, err := r.q(ctx).Exec(ctx, query, paymentID); err != nil {
		return fmt.Errorf("failed to delete applications for payment %s: %w", paymentID, err)
	}
	return nil
}
