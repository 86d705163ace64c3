package repositories

import (
	"context"
	"time"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// JournalEntryReader defines read operations for journal entries.
type JournalEntryReader interface {
	// FindEntryByID retrieves a journal entry header by its identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines of one entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// ListEntries retrieves a page of entries using token-based pagination.
	ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error)

	// ListLinesByAccountID retrieves a page of posted lines hitting one account.
	ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)
}

// JournalEntryWriter defines write operations for journal entries. All
// writers take a caller-owned transaction: posting is never a lone write.
type JournalEntryWriter interface {
	// InsertEntryInTx inserts an entry header and its lines within tx.
	InsertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine) error

	// MarkPostedInTx transitions DRAFT -> POSTED with a conditional update.
	// Returns false when the entry was not in DRAFT (the caller maps this to
	// a state conflict).
	MarkPostedInTx(ctx context.Context, tx pgx.Tx, entryID string, postedBy string, now time.Time) (bool, error)

	// MarkReversedInTx transitions POSTED -> REVERSED and records the
	// reversing entry on the original. Returns false when the entry was not
	// in POSTED.
	MarkReversedInTx(ctx context.Context, tx pgx.Tx, entryID string, reversalEntryID string, reversedBy string, now time.Time) (bool, error)

	// NextEntryNumberInTx reserves the next entry number from the DB sequence.
	NextEntryNumberInTx(ctx context.Context, tx pgx.Tx) (string, error)
}

// JournalEntryLockSupport locks entry rows for the duration of a transaction.
type JournalEntryLockSupport interface {
	// FindEntryByIDForUpdate retrieves an entry and locks its row within tx.
	FindEntryByIDForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (*domain.JournalEntry, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalEntryReader
	JournalEntryWriter
	JournalEntryLockSupport
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction
// capabilities.
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
