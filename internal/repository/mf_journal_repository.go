package repository

import (
	"context"
	"time"

	"keiriflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type MfJournalRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMfJournalRepository(db *pgxpool.Pool, logger *zap.Logger) *MfJournalRepository {
	return &MfJournalRepository{
		db:     db,
		logger: logger,
	}
}

var mfJournalColumns = []string{
	"id", "tenant_id", "claude_prediction_id",
	"transaction_date", "transaction_type", "income_amount", "expense_amount",
	"account_subject", "matched_account_id", "matched_account_code",
	"vendor", "matched_vendor_id", "matched_vendor_code",
	"description", "account_book", "tax_category", "memo", "tag_names",
	"csv_exported", "csv_exported_at", "mf_imported", "mf_imported_at", "mf_journal_id",
	"status", "error_message",
	"created_at", "updated_at",
}

func mfJournalValues(e *models.MfJournalEntry) []interface{} {
	return []interface{}{
		e.ID, e.TenantID, e.ClaudePredictionID,
		e.TransactionDate, e.TransactionType, e.IncomeAmount, e.ExpenseAmount,
		e.AccountSubject, e.MatchedAccountID, e.MatchedAccountCode,
		e.Vendor, e.MatchedVendorID, e.MatchedVendorCode,
		e.Description, e.AccountBook, e.TaxCategory, e.Memo, e.TagNames,
		e.CsvExported, e.CsvExportedAt, e.MfImported, e.MfImportedAt, e.MfJournalID,
		e.Status, e.ErrorMessage,
		e.CreatedAt, e.UpdatedAt,
	}
}

func scanMfJournal(row pgx.Row) (*models.MfJournalEntry, error) {
	var e models.MfJournalEntry
	err := row.Scan(
		&e.ID, &e.TenantID, &e.ClaudePredictionID,
		&e.TransactionDate, &e.TransactionType, &e.IncomeAmount, &e.ExpenseAmount,
		&e.AccountSubject, &e.MatchedAccountID, &e.MatchedAccountCode,
		&e.Vendor, &e.MatchedVendorID, &e.MatchedVendorCode,
		&e.Description, &e.AccountBook, &e.TaxCategory, &e.Memo, &e.TagNames,
		&e.CsvExported, &e.CsvExportedAt, &e.MfImported, &e.MfImportedAt, &e.MfJournalID,
		&e.Status, &e.ErrorMessage,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *MfJournalRepository) Create(ctx context.Context, e *models.MfJournalEntry) error {
	query := squirrel.Insert("mf_journal_entries").
		Columns(mfJournalColumns...).
		Values(mfJournalValues(e)...).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *MfJournalRepository) CreateBatch(ctx context.Context, entries []*models.MfJournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	builder := squirrel.Insert("mf_journal_entries").
		Columns(mfJournalColumns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, e := range entries {
		builder = builder.Values(mfJournalValues(e)...)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *MfJournalRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.MfJournalEntry, error) {
	query := squirrel.Select(mfJournalColumns...).
		From("mf_journal_entries").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	e, err := scanMfJournal(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return e, nil
}

// List filters by status when one is given; empty status lists all.
func (r *MfJournalRepository) List(ctx context.Context, tenantID uuid.UUID, status models.JournalStatus, limit, offset int) ([]*models.MfJournalEntry, error) {
	builder := squirrel.Select(mfJournalColumns...).
		From("mf_journal_entries").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("transaction_date DESC", "created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	if status != "" {
		builder = builder.Where(squirrel.Eq{"status": status})
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

	var entries []*models.MfJournalEntry
	for rows.Next() {
		e, err := scanMfJournal(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func (r *MfJournalRepository) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*models.MfJournalEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := squirrel.Select(mfJournalColumns...).
		From("mf_journal_entries").
		Where(squirrel.Eq{"id": ids, "tenant_id": tenantID}).
		OrderBy("transaction_date ASC", "created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.MfJournalEntry
	for rows.Next() {
		e, err := scanMfJournal(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// MarkExported stamps a batch as written to CSV. COALESCE keeps the
// first export timestamp on re-export, and the status CASE only moves
// draft rows forward.
func (r *MfJournalRepository) MarkExported(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, exportedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query := squirrel.Update("mf_journal_entries").
		Set("csv_exported", true).
		Set("csv_exported_at", squirrel.Expr("COALESCE(csv_exported_at, ?)", exportedAt)).
		Set("status", squirrel.Expr("CASE WHEN status = 'draft' THEN 'exported' ELSE status END")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// SaveImport persists the fields ConfirmImport set in memory.
func (r *MfJournalRepository) SaveImport(ctx context.Context, e *models.MfJournalEntry) error {
	query := squirrel.Update("mf_journal_entries").
		Set("mf_imported", e.MfImported).
		Set("mf_imported_at", e.MfImportedAt).
		Set("mf_journal_id", e.MfJournalID).
		Set("status", e.Status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": e.ID, "tenant_id": e.TenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MfJournalRepository) SetError(ctx context.Context, tenantID, id uuid.UUID, message string) error {
	query := squirrel.Update("mf_journal_entries").
		Set("status", models.JournalStatusError).
		Set("error_message", message).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
