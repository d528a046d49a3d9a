package repositories

import (
	"context"
	"time"

	"github.com/strataops/strataledger/internal/core/domain"
)

// EntryListFilter narrows ListEntries results.
type EntryListFilter struct {
	Status           *domain.EntryStatus
	ExcludeReversals bool
}

// JournalReader defines read operations for journal entry data
type JournalReader interface {
	// FindEntryByID retrieves a specific entry by its unique identifier, without lines.
	FindEntryByID(ctx context.Context, associationID string, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries for an association using
	// token-based pagination. It returns the entries, a token for the next page,
	// and an error.
	ListEntries(ctx context.Context, associationID string, filter EntryListFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// JournalLineReader defines read operations for journal line data
type JournalLineReader interface {
	// FindLinesByEntryID retrieves all lines of a single entry ordered by line number.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry ID.
	FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error)
}

// JournalWriter defines write operations for journal entry data
type JournalWriter interface {
	// NextEntryNumber allocates the next value of the association's entry
	// sequence. Must run inside the transaction that persists the entry.
	NextEntryNumber(ctx context.Context, associationID string) (int64, error)

	// SaveEntry persists an entry and its lines.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error

	// UpdateEntryStatus transitions an entry's status, stamping the matching
	// timestamp (posted_at or approved_at) when one applies.
	UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, statusAt time.Time, userID string) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalLineReader
	JournalWriter
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
