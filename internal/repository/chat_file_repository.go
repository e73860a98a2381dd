package repository

import (
	"context"
	"time"

	"keiriflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ChatFileRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChatFileRepository(db *pgxpool.Pool, logger *zap.Logger) *ChatFileRepository {
	return &ChatFileRepository{
		db:     db,
		logger: logger,
	}
}

var chatFileColumns = []string{
	"id", "tenant_id", "chat_session_id", "dify_id",
	"file_name", "file_url", "file_size", "mime_type",
	"extracted_amount", "extracted_date",
	"status", "error_message", "processed_at",
	"created_at", "updated_at",
}

func (r *ChatFileRepository) Create(ctx context.Context, f *models.ChatFile) error {
	query := squirrel.Insert("chat_files").
		Columns(chatFileColumns...).
		Values(f.ID, f.TenantID, f.ChatSessionID, f.DifyID,
			f.FileName, f.FileURL, f.FileSize, f.MimeType,
			f.ExtractedAmount, f.ExtractedDate,
			f.Status, f.ErrorMessage, f.ProcessedAt,
			f.CreatedAt, f.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ChatFileRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ChatFile, error) {
	query := squirrel.Select(chatFileColumns...).
		From("chat_files").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var f models.ChatFile
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&f.ID, &f.TenantID, &f.ChatSessionID, &f.DifyID,
		&f.FileName, &f.FileURL, &f.FileSize, &f.MimeType,
		&f.ExtractedAmount, &f.ExtractedDate,
		&f.Status, &f.ErrorMessage, &f.ProcessedAt,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &f, nil
}

func (r *ChatFileRepository) ListBySession(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*models.ChatFile, error) {
	query := squirrel.Select(chatFileColumns...).
		From("chat_files").
		Where(squirrel.Eq{"chat_session_id": sessionID, "tenant_id": tenantID}).
		OrderBy("created_at DESC").
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

	var files []*models.ChatFile
	for rows.Next() {
		var f models.ChatFile
		if err := rows.Scan(
			&f.ID, &f.TenantID, &f.ChatSessionID, &f.DifyID,
			&f.FileName, &f.FileURL, &f.FileSize, &f.MimeType,
			&f.ExtractedAmount, &f.ExtractedDate,
			&f.Status, &f.ErrorMessage, &f.ProcessedAt,
			&f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}

	return files, nil
}

// UpdateStatusIf flips the file status only when the row is still in
// the expected state. The rows-affected count makes the check-then-set
// atomic, so two workers racing on the same file cannot both win.
func (r *ChatFileRepository) UpdateStatusIf(ctx context.Context, tenantID, id uuid.UUID, from, to models.FileStatus) (bool, error) {
	query := squirrel.Update("chat_files").
		Set("status", to).
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

// SetCompleted records the denormalized extraction summary alongside
// the terminal status.
func (r *ChatFileRepository) SetCompleted(ctx context.Context, tenantID, id uuid.UUID, amount *decimal.Decimal, date *time.Time) error {
	query := squirrel.Update("chat_files").
		Set("status", models.FileStatusCompleted).
		Set("extracted_amount", amount).
		Set("extracted_date", date).
		Set("error_message", nil).
		Set("processed_at", squirrel.Expr("NOW()")).
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

func (r *ChatFileRepository) SetError(ctx context.Context, tenantID, id uuid.UUID, message string) error {
	query := squirrel.Update("chat_files").
		Set("status", models.FileStatusError).
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
