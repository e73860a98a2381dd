package repository

import (
	"context"

	"keiriflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// MasterRepository serves the tenant registries: the chart of accounts
// and the vendor list the matching engine resolves against.
type MasterRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewMasterRepository(db *pgxpool.Pool, logger *zap.Logger) *MasterRepository {
	return &MasterRepository{
		db:     db,
		logger: logger,
	}
}

var accountMasterColumns = []string{
	"id", "tenant_id", "code", "name", "account_type", "last_used_at",
	"created_at", "updated_at",
}

var vendorMasterColumns = []string{
	"id", "tenant_id", "code", "name", "active", "last_used_at",
	"created_at", "updated_at",
}

func (r *MasterRepository) CreateAccount(ctx context.Context, a *models.AccountMaster) error {
	query := squirrel.Insert("account_masters").
		Columns(accountMasterColumns...).
		Values(a.ID, a.TenantID, a.Code, a.Name, a.AccountType, a.LastUsedAt,
			a.CreatedAt, a.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *MasterRepository) CreateVendor(ctx context.Context, v *models.VendorMaster) error {
	query := squirrel.Insert("vendor_masters").
		Columns(vendorMasterColumns...).
		Values(v.ID, v.TenantID, v.Code, v.Name, v.Active, v.LastUsedAt,
			v.CreatedAt, v.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *MasterRepository) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]*models.AccountMaster, error) {
	query := squirrel.Select(accountMasterColumns...).
		From("account_masters").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("code ASC").
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

	var accounts []*models.AccountMaster
	for rows.Next() {
		var a models.AccountMaster
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.Code, &a.Name, &a.AccountType, &a.LastUsedAt,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, &a)
	}

	return accounts, nil
}

func (r *MasterRepository) ListVendors(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*models.VendorMaster, error) {
	builder := squirrel.Select(vendorMasterColumns...).
		From("vendor_masters").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("code ASC").
		PlaceholderFormat(squirrel.Dollar)

	if activeOnly {
		builder = builder.Where(squirrel.Eq{"active": true})
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

	var vendors []*models.VendorMaster
	for rows.Next() {
		var v models.VendorMaster
		if err := rows.Scan(
			&v.ID, &v.TenantID, &v.Code, &v.Name, &v.Active, &v.LastUsedAt,
			&v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		vendors = append(vendors, &v)
	}

	return vendors, nil
}

// TouchAccountUsed bumps the recency marker the matcher uses for
// tie-breaking.
func (r *MasterRepository) TouchAccountUsed(ctx context.Context, tenantID, id uuid.UUID) error {
	query := squirrel.Update("account_masters").
		Set("last_used_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *MasterRepository) TouchVendorUsed(ctx context.Context, tenantID, id uuid.UUID) error {
	query := squirrel.Update("vendor_masters").
		Set("last_used_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *MasterRepository) SetVendorActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error {
	query := squirrel.Update("vendor_masters").
		Set("active", active).
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
