package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fintrak/fintrak/internal/apperrors"
	"github.com/fintrak/fintrak/internal/core/domain"
	portsrepo "github.com/fintrak/fintrak/internal/core/ports/repositories"
	portssvc "github.com/fintrak/fintrak/internal/core/ports/services"
	"github.com/fintrak/fintrak/internal/dto"
	"github.com/fintrak/fintrak/internal/middleware"
	"github.com/fintrak/fintrak/internal/utils/accounting"
)

var (
	ErrEntryUnbalanced    = errors.New("journal lines do not balance")
	ErrEntryMinLines      = errors.New("journal entry must have at least two lines")
	ErrEntryMinAccounts   = errors.New("journal entry must affect at least two different accounts")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrCurrencyMismatch   = errors.New("lines must hit accounts of a single currency")
	ErrEntryNotDraft      = errors.New("only draft entries can be posted")
	ErrEntryNotPosted     = errors.New("only posted entries can be reversed")
	ErrEntryReversed      = errors.New("entry has already been reversed")
	ErrDescriptionMissing = errors.New("entry description is required")
)

// journalService provides journal entry creation, posting and reversal.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryWithTx
	accountRepo portsrepo.AccountRepositoryWithTx
	publisher   portssvc.EventPublisher
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryWithTx, accountRepo portsrepo.AccountRepositoryWithTx, publisher portssvc.EventPublisher) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		publisher:   publisher,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validateLineShape runs the structural checks shared by every entry path.
func (s *journalService) validateLineShape(lines []domain.JournalLine) error {
	if len(lines) < 2 {
		return ErrEntryMinLines
	}
	accountSet := make(map[string]bool, len(lines))
	for _, line := range lines {
		accountSet[line.AccountID] = true
	}
	if len(accountSet) < 2 {
		return ErrEntryMinAccounts
	}
	if err := accounting.ValidateBalanced(lines); err != nil {
		return fmt.Errorf("%w: %v", ErrEntryUnbalanced, err)
	}
	return nil
}

// checkAccounts verifies that every line hits a known, active account of a
// single currency and returns the account types for balance math.
func (s *journalService) checkAccounts(lines []domain.JournalLine, accounts map[string]domain.Account) (map[string]domain.AccountType, error) {
	accountTypes := make(map[string]domain.AccountType, len(accounts))
	currency := ""
	for _, line := range lines {
		acc, found := accounts[line.AccountID]
		if !found {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, line.AccountID)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrAccountInactive, line.AccountID)
		}
		if currency == "" {
			currency = acc.CurrencyCode
		} else if acc.CurrencyCode != currency {
			return nil, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, acc.CurrencyCode, currency)
		}
		accountTypes[line.AccountID] = acc.AccountType
	}
	return accountTypes, nil
}

func lineAccountIDs(lines []domain.JournalLine) []string {
	seen := make(map[string]bool, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if !seen[line.AccountID] {
			seen[line.AccountID] = true
			ids = append(ids, line.AccountID)
		}
	}
	return ids
}

// applyBalancesInTx locks the affected accounts, re-validates them against
// the locked rows and applies the signed balance deltas.
func (s *journalService) applyBalancesInTx(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine, userID string, now time.Time) error {
	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, lineAccountIDs(lines))
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	accountTypes, err := s.checkAccounts(lines, accounts)
	if err != nil {
		return err
	}
	balanceChanges, err := accounting.BalanceChanges(lines, accountTypes)
	if err != nil {
		return fmt.Errorf("failed to compute balance changes: %w", err)
	}
	if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return fmt.Errorf("failed to apply balance changes: %w", err)
	}
	return nil
}

// buildLines converts request lines into domain lines owned by entryID.
func buildLines(reqLines []dto.CreateLineRequest, entryID string, audit domain.AuditFields) []domain.JournalLine {
	lines := make([]domain.JournalLine, len(reqLines))
	for i, lr := range reqLines {
		lines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountID:    lr.AccountID,
			DebitAmount:  lr.DebitAmount,
			CreditAmount: lr.CreditAmount,
			Notes:        lr.Notes,
			AuditFields:  audit,
		}
	}
	return lines
}

// CreateEntry validates and persists a new journal entry, optionally posting
// it in the same transaction.
func (s *journalService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Description == "" {
		return nil, ErrDescriptionMissing
	}
	reference := domain.EntryReference{Type: req.Reference.Type, ID: req.Reference.ID}
	if err := reference.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorID,
	}
	lines := buildLines(req.Lines, entryID, audit)

	if err := s.validateLineShape(lines); err != nil {
		return nil, err
	}

	// Validate accounts before opening a transaction; posting re-checks
	// against locked rows.
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, lineAccountIDs(lines))
	if err != nil {
		logger.Error("Failed to fetch accounts for entry creation", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	if _, err := s.checkAccounts(lines, accounts); err != nil {
		return nil, err
	}

	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.journalRepo.Rollback(ctx, tx)

	entryNumber, err := s.journalRepo.NextEntryNumberInTx(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve entry number: %w", err)
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryNumber: entryNumber,
		EntryDate:   req.EntryDate,
		Description: req.Description,
		Reference:   reference,
		Status:      domain.Draft,
		Lines:       lines,
		AuditFields: audit,
	}

	if err := s.journalRepo.InsertEntryInTx(ctx, tx, entry, lines); err != nil {
		logger.Error("Failed to insert journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}

	if req.Post {
		ok, err := s.journalRepo.MarkPostedInTx(ctx, tx, entryID, creatorID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to post entry: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("entry %s: %w", entryID, apperrors.ErrConflict)
		}
		if err := s.applyBalancesInTx(ctx, tx, lines, creatorID, now); err != nil {
			return nil, err
		}
		entry.Status = domain.Posted
		entry.PostedAt = &now
		entry.PostedBy = &creatorID
	}

	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit entry: %w", err)
	}

	logger.Info("Journal entry created", slog.String("entry_id", entryID), slog.String("entry_number", entryNumber), slog.String("status", string(entry.Status)))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "journal_entry", EntityID: entryID, Action: "created", ActorID: creatorID})
	}
	return &entry, nil
}

// PostEntry transitions a draft entry to posted and applies its balances.
func (s *journalService) PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.journalRepo.Rollback(ctx, tx)

	entry, err := s.journalRepo.FindEntryByIDForUpdate(ctx, tx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s is %s", ErrEntryNotDraft, entryID, entry.Status)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}

	ok, err := s.journalRepo.MarkPostedInTx(ctx, tx, entryID, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to post entry: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: entry %s", ErrEntryNotDraft, entryID)
	}
	if err := s.applyBalancesInTx(ctx, tx, lines, userID, now); err != nil {
		return nil, err
	}

	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit posting: %w", err)
	}

	entry.Status = domain.Posted
	entry.PostedAt = &now
	entry.PostedBy = &userID
	entry.Lines = lines

	logger.Info("Journal entry posted", slog.String("entry_id", entryID), slog.String("entry_number", entry.EntryNumber))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "journal_entry", EntityID: entryID, Action: "posted", ActorID: userID})
	}
	return entry, nil
}

// ReverseEntry posts a mirror-image entry and marks the original reversed.
// The pair nets to zero on every account the original touched.
func (s *journalService) ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now().UTC()

	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.journalRepo.Rollback(ctx, tx)

	original, err := s.journalRepo.FindEntryByIDForUpdate(ctx, tx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	switch original.Status {
	case domain.Posted:
	case domain.Reversed:
		return nil, fmt.Errorf("%w: entry %s", ErrEntryReversed, entryID)
	default:
		return nil, fmt.Errorf("%w: entry %s is %s", ErrEntryNotPosted, entryID, original.Status)
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, err)
	}

	reversalID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	reversalLines := make([]domain.JournalLine, len(originalLines))
	for i, line := range originalLines {
		reversalLines[i] = domain.JournalLine{
			LineID:       uuid.NewString(),
			EntryID:      reversalID,
			AccountID:    line.AccountID,
			DebitAmount:  line.CreditAmount,
			CreditAmount: line.DebitAmount,
			Notes:        line.Notes,
			AuditFields:  audit,
		}
	}

	reversalNumber, err := s.journalRepo.NextEntryNumberInTx(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve entry number: %w", err)
	}

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		EntryNumber:     reversalNumber,
		EntryDate:       now,
		Description:     fmt.Sprintf("Reversal of %s", original.EntryNumber),
		Reference:       original.Reference,
		Status:          domain.Posted,
		PostedAt:        &now,
		PostedBy:        &userID,
		ReversalEntryID: &original.EntryID,
		Lines:           reversalLines,
		AuditFields:     audit,
	}

	if err := s.journalRepo.InsertEntryInTx(ctx, tx, reversal, reversalLines); err != nil {
		logger.Error("Failed to insert reversal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to insert reversal: %w", err)
	}

	ok, err := s.journalRepo.MarkReversedInTx(ctx, tx, entryID, reversalID, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark entry reversed: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: entry %s", ErrEntryNotPosted, entryID)
	}

	if err := s.applyBalancesInTx(ctx, tx, reversalLines, userID, now); err != nil {
		return nil, err
	}

	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit reversal: %w", err)
	}

	logger.Info("Journal entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_entry_id", reversalID))
	if s.publisher != nil {
		s.publisher.Publish(ctx, portssvc.Event{Entity: "journal_entry", EntityID: entryID, Action: "reversed", ActorID: userID})
	}
	return &reversal, nil
}

// CreatePostedEntryInTx validates, persists and posts an entry within a
// caller-owned transaction.
func (s *journalService) CreatePostedEntryInTx(ctx context.Context, tx pgx.Tx, spec dto.PostedEntrySpec, creatorID string) (*domain.JournalEntry, error) {
	if spec.Description == "" {
		return nil, ErrDescriptionMissing
	}
	if err := spec.Reference.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorID,
	}
	lines := make([]domain.JournalLine, len(spec.Lines))
	for i, line := range spec.Lines {
		line.LineID = uuid.NewString()
		line.EntryID = entryID
		line.AuditFields = audit
		lines[i] = line
	}

	if err := s.validateLineShape(lines); err != nil {
		return nil, err
	}

	entryNumber, err := s.journalRepo.NextEntryNumberInTx(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve entry number: %w", err)
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryNumber: entryNumber,
		EntryDate:   spec.EntryDate,
		Description: spec.Description,
		Reference:   spec.Reference,
		Status:      domain.Posted,
		PostedAt:    &now,
		PostedBy:    &creatorID,
		Lines:       lines,
		AuditFields: audit,
	}

	if err := s.journalRepo.InsertEntryInTx(ctx, tx, entry, lines); err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}
	if err := s.applyBalancesInTx(ctx, tx, lines, creatorID, now); err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetEntryByID retrieves an entry with its lines.
func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find entry by ID", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		logger.Error("Failed to fetch lines for entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to fetch lines for entry %s: %w", entryID, apperrors.ErrInternal)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a page of entries with token-based pagination.
func (s *journalService) ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) (*dto.ListEntriesResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	entries, token, err := s.journalRepo.ListEntries(ctx, limit, nextToken, includeReversals)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: token,
	}, nil
}

// ListLinesByAccount retrieves the posted lines touching one account.
func (s *journalService) ListLinesByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	lines, token, err := s.journalRepo.ListLinesByAccountID(ctx, accountID, limit, nextToken)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list lines for account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, nil, fmt.Errorf("failed to list lines: %w", err)
	}
	return lines, token, nil
}
