package repository

import (
	"context"

	"keiriflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AiResultRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAiResultRepository(db *pgxpool.Pool, logger *zap.Logger) *AiResultRepository {
	return &AiResultRepository{
		db:     db,
		logger: logger,
	}
}

var aiResultColumns = []string{
	"id", "tenant_id", "chat_file_id", "result", "model", "tokens_used",
	"status", "error_message", "created_at", "updated_at",
}

func (r *AiResultRepository) Create(ctx context.Context, res *models.AiResult) error {
	query := squirrel.Insert("ai_results").
		Columns(aiResultColumns...).
		Values(res.ID, res.TenantID, res.ChatFileID, res.Result, res.Model, res.TokensUsed,
			res.Status, res.ErrorMessage, res.CreatedAt, res.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *AiResultRepository) Complete(ctx context.Context, tenantID, id uuid.UUID, result, model string, tokensUsed int) error {
	query := squirrel.Update("ai_results").
		Set("status", models.AiStatusCompleted).
		Set("result", result).
		Set("model", model).
		Set("tokens_used", tokensUsed).
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

func (r *AiResultRepository) Fail(ctx context.Context, tenantID, id uuid.UUID, message string) error {
	query := squirrel.Update("ai_results").
		Set("status", models.AiStatusError).
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

func (r *AiResultRepository) LatestByChatFile(ctx context.Context, tenantID, chatFileID uuid.UUID) (*models.AiResult, error) {
	query := squirrel.Select(aiResultColumns...).
		From("ai_results").
		Where(squirrel.Eq{"chat_file_id": chatFileID, "tenant_id": tenantID}).
		OrderBy("created_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var res models.AiResult
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&res.ID, &res.TenantID, &res.ChatFileID, &res.Result, &res.Model, &res.TokensUsed,
		&res.Status, &res.ErrorMessage, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &res, nil
}
