package repository

import (
	"context"

	"keiriflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TenantRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTenantRepository(db *pgxpool.Pool, logger *zap.Logger) *TenantRepository {
	return &TenantRepository{
		db:     db,
		logger: logger,
	}
}

var tenantColumns = []string{
	"id", "code", "name", "country_code",
	"match_threshold", "reconcile_tolerance", "reconcile_date_window_days",
	"created_at", "updated_at",
}

func (r *TenantRepository) Create(ctx context.Context, t *models.Tenant) error {
	query := squirrel.Insert("tenants").
		Columns(tenantColumns...).
		Values(t.ID, t.Code, t.Name, t.CountryCode,
			t.MatchThreshold, t.ReconcileTolerance, t.ReconcileDateWindowDays,
			t.CreatedAt, t.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := squirrel.Select(tenantColumns...).
		From("tenants").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var t models.Tenant
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&t.ID, &t.Code, &t.Name, &t.CountryCode,
		&t.MatchThreshold, &t.ReconcileTolerance, &t.ReconcileDateWindowDays,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &t, nil
}

func (r *TenantRepository) GetByCode(ctx context.Context, code string) (*models.Tenant, error) {
	query := squirrel.Select(tenantColumns...).
		From("tenants").
		Where(squirrel.Eq{"code": code}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var t models.Tenant
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&t.ID, &t.Code, &t.Name, &t.CountryCode,
		&t.MatchThreshold, &t.ReconcileTolerance, &t.ReconcileDateWindowDays,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return &t, nil
}
