package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/core/domain"
)

// CreateEntryLineRequest defines one line of a new journal entry. Exactly one
// of Debit or Credit must be positive; the other must be zero or omitted.
type CreateEntryLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"` // Optional
}

// CreateEntryRequest defines the data needed to create a new journal entry.
type CreateEntryRequest struct {
	EntryDate   time.Time                `json:"entryDate" binding:"required"`
	Description string                   `json:"description" binding:"required"`
	Lines       []CreateEntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ReverseEntryRequest defines the data for reversing a posted entry.
type ReverseEntryRequest struct {
	Reason       string     `json:"reason"`                 // Optional, appended to the reversal description
	ReversalDate *time.Time `json:"reversalDate,omitempty"` // Defaults to today
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID     string          `json:"lineID"`
	AccountID  string          `json:"accountID"`
	LineNumber int             `json:"lineNumber"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Memo       string          `json:"memo,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID         string                `json:"entryID"`
	EntryNumber     string                `json:"entryNumber"`
	EntryDate       time.Time             `json:"entryDate"`
	Description     string                `json:"description"`
	Status          domain.EntryStatus    `json:"status"`
	IsReversal      bool                  `json:"isReversal"`
	ReversedEntryID *string               `json:"reversedEntryID,omitempty"`
	SourceType      domain.SourceType     `json:"sourceType"`
	SourceID        *string               `json:"sourceID,omitempty"`
	PostedAt        *time.Time            `json:"postedAt,omitempty"`
	ApprovedAt      *time.Time            `json:"approvedAt,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	LastUpdatedAt   time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy   string                `json:"lastUpdatedBy"`
	Lines           []JournalLineResponse `json:"lines,omitempty"`
}

// ToJournalLineResponse converts a domain.JournalLine to JournalLineResponse DTO.
func ToJournalLineResponse(line *domain.JournalLine) JournalLineResponse {
	return JournalLineResponse{
		LineID:     line.LineID,
		AccountID:  line.AccountID,
		LineNumber: line.LineNumber,
		Debit:      line.Debit,
		Credit:     line.Credit,
		Memo:       line.Memo,
	}
}

// ToJournalLineResponses converts a slice of domain.JournalLine to []JournalLineResponse.
func ToJournalLineResponses(lines []domain.JournalLine) []JournalLineResponse {
	responses := make([]JournalLineResponse, len(lines))
	for i, line := range lines {
		responses[i] = ToJournalLineResponse(&line)
	}
	return responses
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		EntryID:         e.EntryID,
		EntryNumber:     e.EntryNumber,
		EntryDate:       e.EntryDate,
		Description:     e.Description,
		Status:          e.Status,
		IsReversal:      e.IsReversal,
		ReversedEntryID: e.ReversedEntryID,
		SourceType:      e.SourceType,
		SourceID:        e.SourceID,
		PostedAt:        e.PostedAt,
		ApprovedAt:      e.ApprovedAt,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
		LastUpdatedAt:   e.LastUpdatedAt,
		LastUpdatedBy:   e.LastUpdatedBy,
		Lines:           ToJournalLineResponses(e.Lines),
	}
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Status           *string `form:"status"` // Optional status filter
	ExcludeReversals bool    `form:"excludeReversals,default=false"`
	Limit            int     `form:"limit,default=20"`
	NextToken        *string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
