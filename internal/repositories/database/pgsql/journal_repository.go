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

const entryColumns = `entry_id, association_id, entry_number, entry_date, description, status, is_reversal, reversed_entry_id, source_type, source_id, posted_at, approved_at, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, line_number, debit, credit, memo, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entry and line data.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

func scanEntryRow(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.AssociationID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.Description,
		&m.Status,
		&m.IsReversal,
		&m.ReversedEntryID,
		&m.SourceType,
		&m.SourceID,
		&m.PostedAt,
		&m.ApprovedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanLineRow(row pgx.Row) (models.JournalLine, error) {
	var m models.JournalLine
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.AccountID,
		&m.LineNumber,
		&m.Debit,
		&m.Credit,
		&m.Memo,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// NextEntryNumber allocates the next value of the association's entry
// sequence. The upsert row-locks the sequence row, so concurrent postings in
// the same association serialize here and each gets a distinct value. Must
// run inside the transaction that persists the entry.
func (r *PgxJournalRepository) NextEntryNumber(ctx context.Context, associationID string) (int64, error) {
	query := `
		INSERT INTO entry_sequences (association_id, last_value)
		VALUES ($1, 1)
		ON CONFLICT (association_id)
		DO UPDATE SET last_value = entry_sequences.last_value + 1
		RETURNING last_value;
	`
	var next int64
	if err := r.q(ctx).QueryRow(ctx, query, associationID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to allocate entry number for association %s: %w", associationID, err)
	}
	return next, nil
}

// SaveEntry persists an entry and its lines. Joins the caller's transaction
// when one is on the context.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error {
	m := mapping.ToModelJournalEntry(entry)

	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.q(ctx).Exec(ctx, entryQuery,
		m.EntryID,
		m.AssociationID,
		m.EntryNumber,
		m.EntryDate,
		m.Description,
		m.Status,
		m.IsReversal,
		m.ReversedEntryID,
		m.SourceType,
		m.SourceID,
		m.PostedAt,
		m.ApprovedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry %s: %w", m.EntryID, err)
	}

	lineQuery := `
		INSERT INTO journal_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		ml := mapping.ToModelJournalLine(line)
		batch.Queue(lineQuery,
			ml.LineID,
			ml.EntryID,
			ml.AccountID,
			ml.LineNumber,
			ml.Debit,
			ml.Credit,
			ml.Memo,
			ml.CreatedAt,
			ml.CreatedBy,
			ml.LastUpdatedAt,
			ml.LastUpdatedBy,
		)
	}

	br := r.q(ctx).SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert line batch for entry %s: %w", m.EntryID, err)
	}
	return nil
}

// UpdateEntryStatus transitions an entry's status. Posting stamps posted_at;
// posting an entry that sat in PENDING_APPROVAL also stamps approved_at.
func (r *PgxJournalRepository) UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, statusAt time.Time, userID string) error {
	query := `
		UPDATE journal_entries
		SET status = $2,
		    posted_at = CASE WHEN $2 = 'POSTED' THEN $3 ELSE posted_at END,
		    approved_at = CASE WHEN $2 = 'POSTED' AND status = 'PENDING_APPROVAL' THEN $3 ELSE approved_at END,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE entry_id = $1;
	`
	cmdTag, err := r.q(ctx).Exec(ctx, query, entryID, status, statusAt, userID)
	if err != nil {
		return fmt.Errorf("failed to update status for entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("entry " + entryID + " not found for status update")
	}
	return nil
}

// FindEntryByID retrieves an entry by its ID, without lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, associationID string, entryID string) (*domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE entry_id = $1 AND association_id = $2;
	`
	m, err := scanEntryRow(r.q(ctx).QueryRow(ctx, query, entryID, associationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}

	entry := mapping.ToDomainJournalEntry(m)
	return &entry, nil
}

// FindLinesByEntryID retrieves all lines of an entry ordered by line number.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines
		WHERE entry_id = $1
		ORDER BY line_number;
	`
	rows, err := r.q(ctx).Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	modelLines := []models.JournalLine{}
	for rows.Next() {
		m, err := scanLineRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		modelLines = append(modelLines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}

	return mapping.ToDomainJournalLineSlice(modelLines), nil
}

// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry ID.
func (r *PgxJournalRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error) {
	if len(entryIDs) == 0 {
		return map[string][]domain.JournalLine{}, nil
	}

	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_number;
	`
	rows, err := r.q(ctx).Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry IDs: %w", err)
	}
	defer rows.Close()

	linesMap := make(map[string][]domain.JournalLine)
	for rows.Next() {
		m, err := scanLineRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row during batch fetch: %w", err)
		}
		line := mapping.ToDomainJournalLine(m)
		linesMap[line.EntryID] = append(linesMap[line.EntryID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows during batch fetch: %w", err)
	}

	// Entries with no lines still get an empty slice.
	for _, id := range entryIDs {
		if _, exists := linesMap[id]; !exists {
			linesMap[id] = []domain.JournalLine{}
		}
	}
	return linesMap, nil
}

// ListEntries retrieves a paginated list of entries for an association using
// token-based pagination. It returns the entries, a token for the next page,
// and an error.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, associationID string, filter portsrepo.EntryListFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to learn whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + entryColumns + `
		FROM journal_entries
	`
	filterClause := `WHERE association_id = $1`
	args := []interface{}{associationID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		filterClause += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.ExcludeReversals {
		filterClause += ` AND is_reversal = FALSE`
	}

	// Ordering must be stable for the cursor to work: entry_date DESC with
	// created_at DESC as the tie-breaker.
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		filterClause += ` AND (entry_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries for association %s: %w", associationID, err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanEntryRow(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row for association %s: %w", associationID, scanErr)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows for association %s: %w", associationID, err)
	}

	var nextTokenVal *string
	results := modelEntries
	if len(modelEntries) > limit {
		last := modelEntries[limit-1] // Last item actually included in this page.
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &token
		results = modelEntries[:limit]
	}

	return mapping.ToDomainJournalEntrySlice(results), nextTokenVal, nil
}
