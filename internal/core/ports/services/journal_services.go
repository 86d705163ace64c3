package services

import (
	"context"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/fintrak/fintrak/internal/dto"
	"github.com/jackc/pgx/v5"
)

// JournalReaderSvc defines read operations for journal entries.
type JournalReaderSvc interface {
	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries ordered by entry date
	// descending. Reversal pairs are hidden unless includeReversals is set.
	ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) (*dto.ListEntriesResponse, error)

	// ListLinesByAccount retrieves the posted lines touching one account.
	ListLinesByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)
}

// JournalWriterSvc defines write operations for journal entries.
type JournalWriterSvc interface {
	// CreateEntry validates and persists a new entry. The entry is created
	// as a draft unless req.Post is set.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorID string) (*domain.JournalEntry, error)

	// PostEntry transitions a draft entry to posted and applies its lines
	// to the account balances.
	PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// ReverseEntry posts a mirror-image entry and marks the original
	// reversed. Only posted entries can be reversed, and only once.
	ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)
}

// JournalTransactionSupport exposes entry creation inside a caller-owned
// transaction so that upstream services can flip source documents, resolve
// accounts and post the resulting entry atomically.
type JournalTransactionSupport interface {
	// CreatePostedEntryInTx validates, persists and posts an entry within tx,
	// including balance application.
	CreatePostedEntryInTx(ctx context.Context, tx pgx.Tx, spec dto.PostedEntrySpec, creatorID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal service interfaces.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalTransactionSupport
}
