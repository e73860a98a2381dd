package repository

import (
	"context"

	"keiriflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type OcrResultRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewOcrResultRepository(db *pgxpool.Pool, logger *zap.Logger) *OcrResultRepository {
	return &OcrResultRepository{
		db:     db,
		logger: logger,
	}
}

var ocrResultColumns = []string{
	"id", "tenant_id", "chat_file_id", "file_name", "ocr_text", "confidence",
	"status", "error_message", "created_at", "updated_at",
}

func (r *OcrResultRepository) Create(ctx context.Context, res *models.OcrResult) error {
	query := squirrel.Insert("ocr_results").
		Columns(ocrResultColumns...).
		Values(res.ID, res.TenantID, res.ChatFileID, res.FileName, res.OcrText, res.Confidence,
			res.Status, res.ErrorMessage, res.CreatedAt, res.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *OcrResultRepository) Complete(ctx context.Context, tenantID, id uuid.UUID, text string, confidence float64) error {
	query := squirrel.Update("ocr_results").
		Set("status", models.OcrStatusCompleted).
		Set("ocr_text", text).
		Set("confidence", confidence).
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

func (r *OcrResultRepository) Fail(ctx context.Context, tenantID, id uuid.UUID, message string) error {
	query := squirrel.Update("ocr_results").
		Set("status", models.OcrStatusError).
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

// LatestCompletedByChatFile returns the newest successful extraction
// attempt for a file. Retries append rows rather than overwrite, so
// the most recent completed row is the authoritative text.
func (r *OcrResultRepository) LatestCompletedByChatFile(ctx context.Context, tenantID, chatFileID uuid.UUID) (*models.OcrResult, error) {
	query := squirrel.Select(ocrResultColumns...).
		From("ocr_results").
		Where(squirrel.Eq{
			"chat_file_id": chatFileID,
			"tenant_id":    tenantID,
			"status":       models.OcrStatusCompleted,
		}).
		OrderBy("created_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var res models.OcrResult
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&res.ID, &res.TenantID, &res.ChatFileID, &res.FileName, &res.OcrText, &res.Confidence,
		&res.Status, &res.ErrorMessage, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &res, nil
}

func (r *OcrResultRepository) ListByChatFile(ctx context.Context, tenantID, chatFileID uuid.UUID) ([]*models.OcrResult, error) {
	query := squirrel.Select(ocrResultColumns...).
		From("ocr_results").
		Where(squirrel.Eq{"chat_file_id": chatFileID, "tenant_id": tenantID}).
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

	var results []*models.OcrResult
	for rows.Next() {
		var res models.OcrResult
		if err := rows.Scan(
			&res.ID, &res.TenantID, &res.ChatFileID, &res.FileName, &res.OcrText, &res.Confidence,
			&res.Status, &res.ErrorMessage, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, &res)
	}

	return results, nil
}
