package repository

import (
	"context"

	"keiriflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ChatSessionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChatSessionRepository(db *pgxpool.Pool, logger *zap.Logger) *ChatSessionRepository {
	return &ChatSessionRepository{
		db:     db,
		logger: logger,
	}
}

var chatSessionColumns = []string{
	"id", "tenant_id", "user_id", "dify_id", "title", "pinned",
	"created_at", "updated_at",
}

func (r *ChatSessionRepository) Create(ctx context.Context, s *models.ChatSession) error {
	query := squirrel.Insert("chat_sessions").
		Columns(chatSessionColumns...).
		Values(s.ID, s.TenantID, s.UserID, s.DifyID, s.Title, s.Pinned,
			s.CreatedAt, s.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ChatSessionRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ChatSession, error) {
	query := squirrel.Select(chatSessionColumns...).
		From("chat_sessions").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var s models.ChatSession
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.TenantID, &s.UserID, &s.DifyID, &s.Title, &s.Pinned,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &s, nil
}

// GetByDifyID finds a session by its external chat id, used to attach
// uploads arriving from the chat frontend to an existing session.
func (r *ChatSessionRepository) GetByDifyID(ctx context.Context, tenantID uuid.UUID, difyID string) (*models.ChatSession, error) {
	query := squirrel.Select(chatSessionColumns...).
		From("chat_sessions").
		Where(squirrel.Eq{"dify_id": difyID, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var s models.ChatSession
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.TenantID, &s.UserID, &s.DifyID, &s.Title, &s.Pinned,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &s, nil
}

func (r *ChatSessionRepository) ListByUser(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.ChatSession, error) {
	query := squirrel.Select(chatSessionColumns...).
		From("chat_sessions").
		Where(squirrel.Eq{"tenant_id": tenantID, "user_id": userID}).
		OrderBy("pinned DESC", "updated_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
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

	var sessions []*models.ChatSession
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(
			&s.ID, &s.TenantID, &s.UserID, &s.DifyID, &s.Title, &s.Pinned,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, &s)
	}

	return sessions, nil
}

func (r *ChatSessionRepository) SetPinned(ctx context.Context, tenantID, id uuid.UUID, pinned bool) error {
	query := squirrel.Update("chat_sessions").
		Set("pinned", pinned).
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
