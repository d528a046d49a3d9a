package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopspring/decimal"
	"github.com/strataops/strataledger/internal/apperrors"
	"github.com/strataops/strataledger/internal/core/domain"
	portsrepo "github.com/strataops/strataledger/internal/core/ports/repositories"
	portssvc "github.com/strataops/strataledger/internal/core/ports/services"
	"github.com/strataops/strataledger/internal/dto"
	"github.com/strataops/strataledger/internal/middleware"
	"github.com/strataops/strataledger/internal/obsmetrics"
	"github.com/strataops/strataledger/internal/utils/accounting"
)

const (
	maxListEntriesLimit     = 100
	defaultListEntriesLimit = 20
)

// journalService provides the posting and reversal engines.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryWithTx
}

// NewJournalService creates a new journal service.
func NewJournalService(journalRepo portsrepo.JournalRepositoryWithTx, accountRepo portsrepo.AccountRepositoryWithTx) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildEntry converts the request into a DRAFT entry plus its lines, and runs
// every validation that does not need the transaction: line shape, the
// double-entry balance rule, and account existence/activity.
func (s *journalService) buildEntry(ctx context.Context, associationID string, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, []domain.JournalLine, error) {
	now := time.Now()
	entryID := uuid.NewString()

	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	lines := make([]domain.JournalLine, 0, len(req.Lines))
	accountIDs := make([]string, 0, len(req.Lines))
	seen := make(map[string]struct{}, len(req.Lines))
	for i, lr := range req.Lines {
		lines = append(lines, domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   lr.AccountID,
			LineNumber:  i + 1,
			Debit:       lr.Debit,
			Credit:      lr.Credit,
			Memo:        lr.Memo,
			AuditFields: audit,
		})
		if _, ok := seen[lr.AccountID]; !ok {
			seen[lr.AccountID] = struct{}{}
			accountIDs = append(accountIDs, lr.AccountID)
		}
	}

	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, nil, apperrors.NewValidationError(err.Error())
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, associationID, accountIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch entry accounts: %w", err)
	}
	for _, id := range accountIDs {
		account, ok := accounts[id]
		if !ok {
			return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", id))
		}
		if !account.IsActive {
			return nil, nil, apperrors.NewValidationError(fmt.Sprintf("account %s is inactive", account.AccountNumber))
		}
	}

	entry := &domain.JournalEntry{
		EntryID:       entryID,
		AssociationID: associationID,
		EntryDate:     req.EntryDate,
		Description:   req.Description,
		Status:        domain.EntryDraft,
		SourceType:    domain.SourceManual,
		AuditFields:   audit,
	}
	return entry, lines, nil
}

// applyPosting locks the accounts referenced by the lines, aggregates the
// balance change per account by the normal-balance convention, and writes the
// new balances. Must run inside the posting transaction.
func (s *journalService) applyPosting(ctx context.Context, lines []domain.JournalLine, userID string, now time.Time) error {
	accountIDs := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; !ok {
			seen[line.AccountID] = struct{}{}
			accountIDs = append(accountIDs, line.AccountID)
		}
	}

	locked, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to lock accounts for posting: %w", err)
	}

	deltas := make(map[string]decimal.Decimal, len(locked))
	for _, line := range lines {
		account := locked[line.AccountID]
		if !account.IsActive {
			return apperrors.NewValidationError(fmt.Sprintf("account %s is inactive", account.AccountNumber))
		}
		delta, err := accounting.BalanceDelta(line, account.AccountType)
		if err != nil {
			return err
		}
		deltas[line.AccountID] = deltas[line.AccountID].Add(delta)
	}

	if err := s.accountRepo.ApplyBalanceChanges(ctx, deltas, userID, now); err != nil {
		return fmt.Errorf("failed to apply balance changes: %w", err)
	}
	return nil
}

// CreateEntry validates and persists a new DRAFT entry with its lines,
// allocating the next entry number inside the insert transaction.
func (s *journalService) CreateEntry(ctx context.Context, associationID string, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, lines, err := s.buildEntry(ctx, associationID, req, creatorUserID)
	if err != nil {
		return nil, err
	}

	err = s.journalRepo.RunInTx(ctx, func(ctx context.Context) error {
		seq, err := s.journalRepo.NextEntryNumber(ctx, associationID)
		if err != nil {
			return fmt.Errorf("failed to allocate entry number: %w", err)
		}
		entry.EntryNumber = fmt.Sprintf("JE-%06d", seq)
		return s.journalRepo.SaveEntry(ctx, *entry, lines)
	})
	if err != nil {
		logger.Error("Failed to create journal entry", slog.String("error", err.Error()), slog.String("association_id", associationID))
		return nil, err
	}

	entry.Lines = lines
	logger.Info("Journal entry created", slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	return entry, nil
}

// SubmitEntry moves a DRAFT entry to PENDING_APPROVAL.
func (s *journalService) SubmitEntry(ctx context.Context, associationID string, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, associationID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.EntryDraft {
		return nil, apperrors.NewConflictError(fmt.Sprintf("entry %s cannot be submitted from status %s", entry.EntryNumber, entry.Status))
	}

	now := time.Now()
	if err := s.journalRepo.UpdateEntryStatus(ctx, entryID, domain.EntryPendingApproval, now, requestingUserID); err != nil {
		logger.Error("Failed to submit entry for approval", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}

	entry.Status = domain.EntryPendingApproval
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = requestingUserID
	logger.Info("Journal entry submitted for approval", slog.String("entry_id", entryID))
	return entry, nil
}

// PostEntry posts a DRAFT or PENDING_APPROVAL entry, applying its balance
// changes. Everything happens in one transaction; a failure anywhere leaves
// the entry and all balances untouched.
func (s *journalService) PostEntry(ctx context.Context, associationID string, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var posted *domain.JournalEntry
	err := s.journalRepo.RunInTx(ctx, func(ctx context.Context) error {
		entry, err := s.journalRepo.FindEntryByID(ctx, associationID, entryID)
		if err != nil {
			return err
		}
		if !entry.Postable() {
			return apperrors.NewConflictError(fmt.Sprintf("entry %s cannot be posted from status %s", entry.EntryNumber, entry.Status))
		}

		lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
		if err != nil {
			return fmt.Errorf("failed to load entry lines: %w", err)
		}

		now := time.Now()
		if err := s.applyPosting(ctx, lines, requestingUserID, now); err != nil {
			return err
		}
		if err := s.journalRepo.UpdateEntryStatus(ctx, entryID, domain.EntryPosted, now, requestingUserID); err != nil {
			return err
		}

		entry.Status = domain.EntryPosted
		entry.PostedAt = &now
		entry.LastUpdatedAt = now
		entry.LastUpdatedBy = requestingUserID
		entry.Lines = lines
		posted = entry
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to post journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}

	obsmetrics.IncEntryPosted(string(posted.SourceType))
	logger.Info("Journal entry posted", slog.String("entry_id", entryID), slog.String("entry_number", posted.EntryNumber))
	return posted, nil
}

// ReverseEntry creates and posts a reversal of a POSTED entry: a new entry
// with every line's debit and credit swapped, the original flipped to
// REVERSED, and the balances restored — all in one transaction.
func (s *journalService) ReverseEntry(ctx context.Context, associationID string, entryID string, req dto.ReverseEntryRequest, requestingUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var reversal *domain.JournalEntry
	err := s.journalRepo.RunInTx(ctx, func(ctx context.Context) error {
		original, err := s.journalRepo.FindEntryByID(ctx, associationID, entryID)
		if err != nil {
			return err
		}
		if original.IsReversal {
			return apperrors.NewConflictError(fmt.Sprintf("entry %s is itself a reversal and cannot be reversed", original.EntryNumber))
		}
		if original.Status != domain.EntryPosted {
			return apperrors.NewConflictError(fmt.Sprintf("entry %s cannot be reversed from status %s", original.EntryNumber, original.Status))
		}

		originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
		if err != nil {
			return fmt.Errorf("failed to load entry lines: %w", err)
		}

		now := time.Now()
		reversalDate := now
		if req.ReversalDate != nil {
			reversalDate = *req.ReversalDate
		}

		seq, err := s.journalRepo.NextEntryNumber(ctx, associationID)
		if err != nil {
			return fmt.Errorf("failed to allocate entry number: %w", err)
		}

		description := fmt.Sprintf("Reversal of %s", original.EntryNumber)
		if strings.TrimSpace(req.Reason) != "" {
			description = fmt.Sprintf("%s: %s", description, strings.TrimSpace(req.Reason))
		}

		audit := domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		}
		rev := &domain.JournalEntry{
			EntryID:         uuid.NewString(),
			AssociationID:   associationID,
			EntryNumber:     fmt.Sprintf("JE-%06d", seq),
			EntryDate:       reversalDate,
			Description:     description,
			Status:          domain.EntryPosted,
			IsReversal:      true,
			ReversedEntryID: &original.EntryID,
			SourceType:      original.SourceType,
			SourceID:        original.SourceID,
			PostedAt:        &now,
			AuditFields:     audit,
		}

		// Swapping each line's sides makes posting the reversal apply exactly
		// the inverse balance deltas of the original.
		revLines := make([]domain.JournalLine, len(originalLines))
		for i, line := range originalLines {
			revLines[i] = domain.JournalLine{
				LineID:      uuid.NewString(),
				EntryID:     rev.EntryID,
				AccountID:   line.AccountID,
				LineNumber:  line.LineNumber,
				Debit:       line.Credit,
				Credit:      line.Debit,
				Memo:        line.Memo,
				AuditFields: audit,
			}
		}

		if err := s.journalRepo.SaveEntry(ctx, *rev, revLines); err != nil {
			return fmt.Errorf("failed to save reversal entry: %w", err)
		}
		if err := s.applyPosting(ctx, revLines, requestingUserID, now); err != nil {
			return err
		}
		if err := s.journalRepo.UpdateEntryStatus(ctx, original.EntryID, domain.EntryReversed, now, requestingUserID); err != nil {
			return err
		}

		rev.Lines = revLines
		reversal = rev
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrConflict) {
			logger.Error("Failed to reverse journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}

	obsmetrics.IncEntryReversed()
	logger.Info("Journal entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_entry_id", reversal.EntryID),
		slog.String("reversal_entry_number", reversal.EntryNumber))
	return reversal, nil
}

// PostSourcedEntry creates and immediately posts a balanced entry linked to
// the charge or payment that produced it. Used by the outbox dispatcher.
func (s *journalService) PostSourcedEntry(ctx context.Context, associationID string, req dto.CreateEntryRequest, source domain.SourceType, sourceID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, lines, err := s.buildEntry(ctx, associationID, req, userID)
	if err != nil {
		return nil, err
	}
	entry.SourceType = source
	entry.SourceID = &sourceID

	err = s.journalRepo.RunInTx(ctx, func(ctx context.Context) error {
		seq, err := s.journalRepo.NextEntryNumber(ctx, associationID)
		if err != nil {
			return fmt.Errorf("failed to allocate entry number: %w", err)
		}
		now := time.Now()
		entry.EntryNumber = fmt.Sprintf("JE-%06d", seq)
		entry.Status = domain.EntryPosted
		entry.PostedAt = &now

		if err := s.journalRepo.SaveEntry(ctx, *entry, lines); err != nil {
			return err
		}
		return s.applyPosting(ctx, lines, userID, now)
	})
	if err != nil {
		logger.Error("Failed to post sourced journal entry",
			slog.String("error", err.Error()),
			slog.String("source_type", string(source)),
			slog.String("source_id", sourceID))
		return nil, err
	}

	entry.Lines = lines
	obsmetrics.IncEntryPosted(string(source))
	logger.Info("Sourced journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("source_type", string(source)),
		slog.String("source_id", sourceID))
	return entry, nil
}

// GetEntryByID retrieves a specific entry, lines included.
func (s *journalService) GetEntryByID(ctx context.Context, associationID string, entryID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, associationID, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find entry by ID", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		logger.Error("Failed to load entry lines", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to load entry lines: %w", err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a paginated list of entries, lines attached.
func (s *journalService) ListEntries(ctx context.Context, associationID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = defaultListEntriesLimit
	}
	if limit > maxListEntriesLimit {
		limit = maxListEntriesLimit
	}

	filter := portsrepo.EntryListFilter{ExcludeReversals: params.ExcludeReversals}
	if params.Status != nil && *params.Status != "" {
		status := domain.EntryStatus(*params.Status)
		switch status {
		case domain.EntryDraft, domain.EntryPendingApproval, domain.EntryPosted, domain.EntryReversed:
			filter.Status = &status
		default:
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid entry status %q", *params.Status))
		}
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, associationID, filter, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list journal entries", slog.String("error", err.Error()), slog.String("association_id", associationID))
		return nil, err
	}

	entryIDs := make([]string, len(entries))
	for i := range entries {
		entryIDs[i] = entries[i].EntryID
	}
	linesByEntry, err := s.journalRepo.FindLinesByEntryIDs(ctx, entryIDs)
	if err != nil {
		logger.Error("Failed to load lines for listed entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load entry lines: %w", err)
	}

	responses := make([]dto.JournalEntryResponse, len(entries))
	for i := range entries {
		entries[i].Lines = linesByEntry[entries[i].EntryID]
		responses[i] = dto.ToJournalEntryResponse(&entries[i])
	}

	return &dto.ListEntriesResponse{
		Entries:   responses,
		NextToken: nextToken,
	}, nil
}
