package repository

import (
	"context"

	"keiriflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ReconciliationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReconciliationRepository(db *pgxpool.Pool, logger *zap.Logger) *ReconciliationRepository {
	return &ReconciliationRepository{
		db:     db,
		logger: logger,
	}
}

var reconciliationColumns = []string{
	"id", "tenant_id", "chat_file_id", "journal_entry_id", "mf_journal_entry_id",
	"status", "notes", "created_at", "updated_at",
}

func (r *ReconciliationRepository) Create(ctx context.Context, rec *models.Reconciliation) error {
	query := squirrel.Insert("reconciliations").
		Columns(reconciliationColumns...).
		Values(rec.ID, rec.TenantID, rec.ChatFileID, rec.JournalEntryID, rec.MfJournalEntryID,
			rec.Status, rec.Notes, rec.CreatedAt, rec.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ReconciliationRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Reconciliation, error) {
	query := squirrel.Select(reconciliationColumns...).
		From("reconciliations").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var rec models.Reconciliation
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&rec.ID, &rec.TenantID, &rec.ChatFileID, &rec.JournalEntryID, &rec.MfJournalEntryID,
		&rec.Status, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &rec, nil
}

func (r *ReconciliationRepository) List(ctx context.Context, tenantID uuid.UUID, status models.ReconciliationStatus, limit, offset int) ([]*models.Reconciliation, error) {
	builder := squirrel.Select(reconciliationColumns...).
		From("reconciliations").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC").
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

	var recs []*models.Reconciliation
	for rows.Next() {
		var rec models.Reconciliation
		if err := rows.Scan(
			&rec.ID, &rec.TenantID, &rec.ChatFileID, &rec.JournalEntryID, &rec.MfJournalEntryID,
			&rec.Status, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}

	return recs, nil
}

// UpdateStatusIf moves a reconciliation forward only when it is still
// in the expected state, mirroring the optimistic update the file
// pipeline uses.
func (r *ReconciliationRepository) UpdateStatusIf(ctx context.Context, tenantID, id uuid.UUID, from, to models.ReconciliationStatus, notes *string) (bool, error) {
	query := squirrel.Update("reconciliations").
		Set("status", to).
		Set("notes", notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID, "status": from}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
