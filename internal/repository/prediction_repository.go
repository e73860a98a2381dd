package repository

import (
	"context"

	"keiriflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PredictionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPredictionRepository(db *pgxpool.Pool, logger *zap.Logger) *PredictionRepository {
	return &PredictionRepository{
		db:     db,
		logger: logger,
	}
}

var predictionColumns = []string{
	"id", "tenant_id", "chat_file_id", "ai_result_id",
	"input_vendor", "input_description", "input_amount", "input_direction", "input_date",
	"predicted_account", "account_confidence", "reasoning",
	"matched_vendor_id", "matched_vendor_code", "matched_vendor_name", "vendor_confidence",
	"matched_account_id", "matched_account_code", "matched_account_name",
	"claude_model", "tokens_used", "raw_response",
	"status", "error_message", "superseded_by",
	"created_at", "updated_at",
}

func predictionValues(p *models.ClaudePrediction) []interface{} {
	return []interface{}{
		p.ID, p.TenantID, p.ChatFileID, p.AiResultID,
		p.InputVendor, p.InputDescription, p.InputAmount, p.InputDirection, p.InputDate,
		p.PredictedAccount, p.AccountConfidence, p.Reasoning,
		p.MatchedVendorID, p.MatchedVendorCode, p.MatchedVendorName, p.VendorConfidence,
		p.MatchedAccountID, p.MatchedAccountCode, p.MatchedAccountName,
		p.ClaudeModel, p.TokensUsed, p.RawResponse,
		p.Status, p.ErrorMessage, p.SupersededBy,
		p.CreatedAt, p.UpdatedAt,
	}
}

func scanPrediction(row pgx.Row) (*models.ClaudePrediction, error) {
	var p models.ClaudePrediction
	err := row.Scan(
		&p.ID, &p.TenantID, &p.ChatFileID, &p.AiResultID,
		&p.InputVendor, &p.InputDescription, &p.InputAmount, &p.InputDirection, &p.InputDate,
		&p.PredictedAccount, &p.AccountConfidence, &p.Reasoning,
		&p.MatchedVendorID, &p.MatchedVendorCode, &p.MatchedVendorName, &p.VendorConfidence,
		&p.MatchedAccountID, &p.MatchedAccountCode, &p.MatchedAccountName,
		&p.ClaudeModel, &p.TokensUsed, &p.RawResponse,
		&p.Status, &p.ErrorMessage, &p.SupersededBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PredictionRepository) Create(ctx context.Context, p *models.ClaudePrediction) error {
	query := squirrel.Insert("claude_predictions").
		Columns(predictionColumns...).
		Values(predictionValues(p)...).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PredictionRepository) CreateBatch(ctx context.Context, predictions []*models.ClaudePrediction) error {
	if len(predictions) == 0 {
		return nil
	}

	builder := squirrel.Insert("claude_predictions").
		Columns(predictionColumns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, p := range predictions {
		builder = builder.Values(predictionValues(p)...)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PredictionRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ClaudePrediction, error) {
	query := squirrel.Select(predictionColumns...).
		From("claude_predictions").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scanPrediction(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return p, nil
}

// ListByChatFile returns the predictions for a document, newest first.
// Superseded rows are excluded unless includeSuperseded is set.
func (r *PredictionRepository) ListByChatFile(ctx context.Context, tenantID, chatFileID uuid.UUID, includeSuperseded bool) ([]*models.ClaudePrediction, error) {
	builder := squirrel.Select(predictionColumns...).
		From("claude_predictions").
		Where(squirrel.Eq{"chat_file_id": chatFileID, "tenant_id": tenantID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if !includeSuperseded {
		builder = builder.Where(squirrel.Eq{"superseded_by": nil})
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

	var predictions []*models.ClaudePrediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}

	return predictions, nil
}

// MarkSuperseded points an old prediction at the row replacing it.
func (r *PredictionRepository) MarkSuperseded(ctx context.Context, tenantID, id, successorID uuid.UUID) error {
	query := squirrel.Update("claude_predictions").
		Set("superseded_by", successorID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID, "superseded_by": nil}).
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
