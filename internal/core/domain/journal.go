package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	EntryDraft           EntryStatus = "DRAFT"
	EntryPendingApproval EntryStatus = "PENDING_APPROVAL"
	EntryPosted          EntryStatus = "POSTED"
	EntryReversed        EntryStatus = "REVERSED"
)

// SourceType links a journal entry back to the ledger document that produced it.
type SourceType string

const (
	SourceCharge  SourceType = "CHARGE"
	SourcePayment SourceType = "PAYMENT"
	SourceManual  SourceType = "MANUAL"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple lines. Balances move exactly once, when the entry is posted.
type JournalEntry struct {
	EntryID         string      `json:"entryID"`       // Primary Key (UUID)
	AssociationID   string      `json:"associationID"` // FK -> associations.association_id (Not Null)
	EntryNumber     string      `json:"entryNumber"`   // Human-readable, "JE-000001", per-association sequence
	EntryDate       time.Time   `json:"entryDate"`     // Date the event occurred
	Description     string      `json:"description"`
	Status          EntryStatus `json:"status"`
	IsReversal      bool        `json:"isReversal"`
	ReversedEntryID *string     `json:"reversedEntryID,omitempty"` // Entry this one reverses
	SourceType      SourceType  `json:"sourceType"`
	SourceID        *string     `json:"sourceID,omitempty"` // Charge or payment that produced the entry
	PostedAt        *time.Time  `json:"postedAt,omitempty"`
	ApprovedAt      *time.Time  `json:"approvedAt,omitempty"`
	AuditFields
	Lines []JournalLine `json:"lines,omitempty"`
}

// Postable reports whether the entry may transition to POSTED.
func (j *JournalEntry) Postable() bool {
	return j.Status == EntryDraft || j.Status == EntryPendingApproval
}

// JournalLine represents a single line within an entry, affecting one account.
// Exactly one of Debit or Credit carries a positive amount; the other is zero.
type JournalLine struct {
	LineID     string          `json:"lineID"`     // Primary Key (UUID)
	EntryID    string          `json:"entryID"`    // FK -> journal_entries.entry_id (Not Null)
	AccountID  string          `json:"accountID"`  // FK -> accounts.account_id (Not Null)
	LineNumber int             `json:"lineNumber"` // 1-based position within the entry
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Memo       string          `json:"memo"` // Nullable
	AuditFields
}

// Validate checks the one-sided-positive-amount rule for a line.
func (l *JournalLine) Validate() error {
	debitSet := l.Debit.IsPositive()
	creditSet := l.Credit.IsPositive()
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return errors.New("line amounts must not be negative")
	}
	if debitSet == creditSet {
		return errors.New("exactly one of debit or credit must be positive")
	}
	return nil
}

// Amount returns the line's magnitude regardless of side.
func (l *JournalLine) Amount() decimal.Decimal {
	if l.Debit.IsPositive() {
		return l.Debit
	}
	return l.Credit
}

// IsDebit reports whether the line carries its amount on the debit side.
func (l *JournalLine) IsDebit() bool {
	return l.Debit.IsPositive()
}
