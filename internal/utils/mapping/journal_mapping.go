package mapping

import (
	"github.com/strataops/strataledger/internal/core/domain"
	"github.com/strataops/strataledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:         d.EntryID,
		AssociationID:   d.AssociationID,
		EntryNumber:     d.EntryNumber,
		EntryDate:       d.EntryDate,
		Description:     d.Description,
		Status:          models.EntryStatus(d.Status),
		IsReversal:      d.IsReversal,
		ReversedEntryID: toNullString(d.ReversedEntryID),
		SourceType:      string(d.SourceType),
		SourceID:        toNullString(d.SourceID),
		PostedAt:        toNullTime(d.PostedAt),
		ApprovedAt:      toNullTime(d.ApprovedAt),
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:         m.EntryID,
		AssociationID:   m.AssociationID,
		EntryNumber:     m.EntryNumber,
		EntryDate:       m.EntryDate,
		Description:     m.Description,
		Status:          domain.EntryStatus(m.Status),
		IsReversal:      m.IsReversal,
		ReversedEntryID: fromNullString(m.ReversedEntryID),
		SourceType:      domain.SourceType(m.SourceType),
		SourceID:        fromNullString(m.SourceID),
		PostedAt:        fromNullTime(m.PostedAt),
		ApprovedAt:      fromNullTime(m.ApprovedAt),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalEntrySlice converts a slice of model entries to domain entries
func ToDomainJournalEntrySlice(ms []models.JournalEntry) []domain.JournalEntry {
	ds := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntry(m)
	}
	return ds
}

// ToModelJournalLine converts a domain JournalLine to a model JournalLine
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		LineID:      d.LineID,
		EntryID:     d.EntryID,
		AccountID:   d.AccountID,
		LineNumber:  d.LineNumber,
		Debit:       toNullDecimal(d.Debit),
		Credit:      toNullDecimal(d.Credit),
		Memo:        d.Memo,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a model JournalLine to a domain JournalLine
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		LineID:      m.LineID,
		EntryID:     m.EntryID,
		AccountID:   m.AccountID,
		LineNumber:  m.LineNumber,
		Debit:       fromNullDecimal(m.Debit),
		Credit:      fromNullDecimal(m.Credit),
		Memo:        m.Memo,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts a slice of model lines to domain lines
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
