package services

import (
	"context"

	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal entry data
type JournalReaderSvc interface {
	// GetEntryByID retrieves a specific entry, lines included.
	GetEntryByID(ctx context.Context, associationID string, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries in an association.
	ListEntries(ctx context.Context, associationID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// JournalWriterSvc defines write operations for journal entry data
type JournalWriterSvc interface {
	// CreateEntry validates and persists a new DRAFT entry with its lines,
	// allocating the next entry number.
	CreateEntry(ctx context.Context, associationID string, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// SubmitEntry moves a DRAFT entry to PENDING_APPROVAL.
	SubmitEntry(ctx context.Context, associationID string, entryID string, requestingUserID string) (*domain.JournalEntry, error)

	// PostEntry posts a DRAFT or PENDING_APPROVAL entry, applying its balance
	// changes atomically.
	PostEntry(ctx context.Context, associationID string, entryID string, requestingUserID string) (*domain.JournalEntry, error)

	// ReverseEntry creates and posts a reversal of a POSTED entry, marking the
	// original REVERSED, all in one transaction.
	ReverseEntry(ctx context.Context, associationID string, entryID string, req dto.ReverseEntryRequest, requestingUserID string) (*domain.JournalEntry, error)
}

// JournalSystemSvc defines entry operations driven by the system rather than a
// request body, used by the outbox dispatcher for charge/payment postings.
type JournalSystemSvc interface {
	// PostSourcedEntry creates and immediately posts a balanced entry linked to
	// its source document.
	PostSourcedEntry(ctx context.Context, associationID string, req dto.CreateEntryRequest, source domain.SourceType, sourceID string, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalSystemSvc
}
