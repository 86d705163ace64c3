package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fintrak/fintrak/internal/apperrors"
	"github.com/fintrak/fintrak/internal/core/domain"
	portsrepo "github.com/fintrak/fintrak/internal/core/ports/repositories"
	"github.com/fintrak/fintrak/internal/models"
	"github.com/fintrak/fintrak/internal/utils/mapping"
	"github.com/fintrak/fintrak/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxJournalRepository persists journal entries and their lines.
type PgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_number, entry_date, description, reference_type, reference_id, status, posted_at, posted_by, reversed_at, reversed_by, reversal_entry_id, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row rowScanner) (domain.JournalEntry, error) {
	var modelEntry models.JournalEntry
	err := row.Scan(
		&modelEntry.EntryID,
		&modelEntry.EntryNumber,
		&modelEntry.EntryDate,
		&modelEntry.Description,
		&modelEntry.ReferenceType,
		&modelEntry.ReferenceID,
		&modelEntry.Status,
		&modelEntry.PostedAt,
		&modelEntry.PostedBy,
		&modelEntry.ReversedAt,
		&modelEntry.ReversedBy,
		&modelEntry.ReversalEntryID,
		&modelEntry.CreatedAt,
		&modelEntry.CreatedBy,
		&modelEntry.LastUpdatedAt,
		&modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	return mapping.ToDomainJournalEntry(modelEntry), nil
}

const lineColumns = `line_id, entry_id, account_id, debit_amount, credit_amount, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanLine(row rowScanner) (domain.JournalLine, error) {
	var modelLine models.JournalLine
	err := row.Scan(
		&modelLine.LineID,
		&modelLine.EntryID,
		&modelLine.AccountID,
		&modelLine.DebitAmount,
		&modelLine.CreditAmount,
		&modelLine.Notes,
		&modelLine.CreatedAt,
		&modelLine.CreatedBy,
		&modelLine.LastUpdatedAt,
		&modelLine.LastUpdatedBy,
	)
	if err != nil {
		return domain.JournalLine{}, err
	}
	return mapping.ToDomainJournalLine(modelLine), nil
}

// FindEntryByID retrieves an entry header by its identifier.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1`

	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}
	return &entry, nil
}

// FindEntryByIDForUpdate retrieves an entry and locks its row within tx.
func (r *PgxJournalRepository) FindEntryByIDForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1 FOR UPDATE`

	entry, err := scanEntry(tx.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock entry %s: %w", entryID, err)
	}
	return &entry, nil
}

// FindLinesByEntryID retrieves all lines of one entry.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 ORDER BY line_id`

	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}
	return lines, nil
}

// ListEntries retrieves a page of entries ordered by entry date descending
// with creation time as tie-breaker, using token-based pagination. Unless
// includeReversals is set, reversal entries and the entries they reverse are
// filtered out.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	args := []any{}
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE 1=1`

	if !includeReversals {
		query += ` AND reversal_entry_id IS NULL`
	}

	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, entryDate, createdAt)
		query += fmt.Sprintf(` AND (entry_date, created_at) < ($%d, $%d)`, len(args)-1, len(args))
	}

	// Fetch one extra row to know whether another page exists.
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY entry_date DESC, created_at DESC LIMIT $%d`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		token = &t
	}
	return entries, token, nil
}

// ListLinesByAccountID retrieves a page of lines on posted entries hitting
// one account, newest entry first.
func (r *PgxJournalRepository) ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	args := []any{accountID}
	query := `
		SELECT l.line_id, l.entry_id, l.account_id, l.debit_amount, l.credit_amount, l.notes, l.created_at, l.created_by, l.last_updated_at, l.last_updated_by
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_id = $1 AND e.status <> 'DRAFT'`

	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, entryDate, createdAt)
		query += fmt.Sprintf(` AND (e.entry_date, l.created_at) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY e.entry_date DESC, l.created_at DESC LIMIT $%d`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query lines for account %s: %w", accountID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating line rows: %w", err)
	}

	var token *string
	if len(lines) > limit {
		lines = lines[:limit]
		last := lines[len(lines)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.CreatedAt)
		token = &t
	}
	return lines, token, nil
}

// InsertEntryInTx inserts an entry header and its lines within tx.
func (r *PgxJournalRepository) InsertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine) error {
	modelEntry := mapping.ToModelJournalEntry(entry)

	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := tx.Exec(ctx, entryQuery,
		modelEntry.EntryID,
		modelEntry.EntryNumber,
		modelEntry.EntryDate,
		modelEntry.Description,
		modelEntry.ReferenceType,
		modelEntry.ReferenceID,
		modelEntry.Status,
		modelEntry.PostedAt,
		modelEntry.PostedBy,
		modelEntry.ReversedAt,
		modelEntry.ReversedBy,
		modelEntry.ReversalEntryID,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: entry %s", apperrors.ErrDuplicate, modelEntry.EntryID)
		}
		return fmt.Errorf("failed to insert entry %s: %w", modelEntry.EntryID, err)
	}

	lineQuery := `
		INSERT INTO journal_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	batch := &pgx.Batch{}
	for _, line := range lines {
		modelLine := mapping.ToModelJournalLine(line)
		batch.Queue(lineQuery,
			modelLine.LineID,
			modelLine.EntryID,
			modelLine.AccountID,
			modelLine.DebitAmount,
			modelLine.CreditAmount,
			modelLine.Notes,
			modelLine.CreatedAt,
			modelLine.CreatedBy,
			modelLine.LastUpdatedAt,
			modelLine.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert lines for entry %s: %w", modelEntry.EntryID, err)
	}
	return nil
}

// MarkPostedInTx transitions DRAFT -> POSTED with a conditional update.
func (r *PgxJournalRepository) MarkPostedInTx(ctx context.Context, tx pgx.Tx, entryID string, postedBy string, now time.Time) (bool, error) {
	query := `
		UPDATE journal_entries
		SET status = 'POSTED', posted_at = $2, posted_by = $3, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND status = 'DRAFT'`

	cmdTag, err := tx.Exec(ctx, query, entryID, now, postedBy)
	if err != nil {
		return false, fmt.Errorf("failed to mark entry %s posted: %w", entryID, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// MarkReversedInTx transitions POSTED -> REVERSED and links the reversing
// entry.
func (r *PgxJournalRepository) MarkReversedInTx(ctx context.Context, tx pgx.Tx, entryID string, reversalEntryID string, reversedBy string, now time.Time) (bool, error) {
	query := `
		UPDATE journal_entries
		SET status = 'REVERSED', reversed_at = $2, reversed_by = $3, reversal_entry_id = $4, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND status = 'POSTED'`

	cmdTag, err := tx.Exec(ctx, query, entryID, now, reversedBy, reversalEntryID)
	if err != nil {
		return false, fmt.Errorf("failed to mark entry %s reversed: %w", entryID, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// NextEntryNumberInTx reserves the next entry number from the DB sequence.
func (r *PgxJournalRepository) NextEntryNumberInTx(ctx context.Context, tx pgx.Tx) (string, error) {
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('journal_entry_number_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to reserve entry number: %w", err)
	}
	return fmt.Sprintf("JE-%06d", seq), nil
}
