package repository

import (
	"context"
	"time"

	"keiriflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type JournalEntryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewJournalEntryRepository(db *pgxpool.Pool, logger *zap.Logger) *JournalEntryRepository {
	return &JournalEntryRepository{
		db:     db,
		logger: logger,
	}
}

var journalEntryColumns = []string{
	"id", "tenant_id", "entry_date", "description",
	"debit_account", "credit_account", "amount", "currency", "reference",
	"created_at", "updated_at",
}

func (r *JournalEntryRepository) Create(ctx context.Context, e *models.JournalEntry) error {
	query := squirrel.Insert("journal_entries").
		Columns(journalEntryColumns...).
		Values(e.ID, e.TenantID, e.EntryDate, e.Description,
			e.DebitAccount, e.CreditAccount, e.Amount, e.Currency, e.Reference,
			e.CreatedAt, e.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *JournalEntryRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.JournalEntry, error) {
	query := squirrel.Select(journalEntryColumns...).
		From("journal_entries").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var e models.JournalEntry
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&e.ID, &e.TenantID, &e.EntryDate, &e.Description,
		&e.DebitAccount, &e.CreditAccount, &e.Amount, &e.Currency, &e.Reference,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &e, nil
}

// List returns entries in a date range, newest first. Zero time bounds
// are ignored.
func (r *JournalEntryRepository) List(ctx context.Context, tenantID uuid.UUID, from, to time.Time, limit, offset int) ([]*models.JournalEntry, error) {
	builder := squirrel.Select(journalEntryColumns...).
		From("journal_entries").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("entry_date DESC", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	if !from.IsZero() {
		builder = builder.Where(squirrel.GtOrEq{"entry_date": from})
	}
	if !to.IsZero() {
		builder = builder.Where(squirrel.LtOrEq{"entry_date": to})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.JournalEntry
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.EntryDate, &e.Description,
			&e.DebitAccount, &e.CreditAccount, &e.Amount, &e.Currency, &e.Reference,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}

	return entries, nil
}
