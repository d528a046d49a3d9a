package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry row.
type EntryStatus string

const (
	EntryDraft           EntryStatus = "DRAFT"
	EntryPendingApproval EntryStatus = "PENDING_APPROVAL"
	EntryPosted          EntryStatus = "POSTED"
	EntryReversed        EntryStatus = "REVERSED"
)

// JournalEntry represents a single balanced financial event; its lines are
// stored separately in journal_lines.
type JournalEntry struct {
	EntryID         string         `db:"entry_id"`
	AssociationID   string         `db:"association_id"`
	EntryNumber     string         `db:"entry_number"`
	EntryDate       time.Time      `db:"entry_date"`
	Description     string         `db:"description"`
	Status          EntryStatus    `db:"status"`
	IsReversal      bool           `db:"is_reversal"`
	ReversedEntryID sql.NullString `db:"reversed_entry_id"`
	SourceType      string         `db:"source_type"`
	SourceID        sql.NullString `db:"source_id"`
	PostedAt        sql.NullTime   `db:"posted_at"`
	ApprovedAt      sql.NullTime   `db:"approved_at"`
	AuditFields
}

// JournalLine represents a single line item within an entry. Exactly one of
// Debit or Credit is non-NULL in the database.
type JournalLine struct {
	LineID     string              `db:"line_id"`
	EntryID    string              `db:"entry_id"`
	AccountID  string              `db:"account_id"`
	LineNumber int                 `db:"line_number"`
	Debit      decimal.NullDecimal `db:"debit"`
	Credit     decimal.NullDecimal `db:"credit"`
	Memo       string              `db:"memo"`
	AuditFields
}
