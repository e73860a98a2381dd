package main

import (
	"context"
	"log"
	"time"

	"keiriflow/internal/models"
	"keiriflow/internal/repository"
	"keiriflow/pkg/auth"
	"keiriflow/pkg/config"
	"keiriflow/pkg/logger"
	"keiriflow/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Seeds a demo tenant with users and the Japanese master registries the
// matcher resolves against. Re-running against a seeded database is a
// no-op.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	tenantRepo := repository.NewTenantRepository(db, appLogger)
	userRepo := repository.NewUserRepository(db, appLogger)
	masterRepo := repository.NewMasterRepository(db, appLogger)

	appLogger.Info("Starting database seeding...")

	tenant, err := seedTenant(ctx, tenantRepo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed tenant", zap.Error(err))
	}
	if err := seedUsers(ctx, userRepo, tenant, appLogger); err != nil {
		appLogger.Fatal("Failed to seed users", zap.Error(err))
	}
	if err := seedMasters(ctx, masterRepo, tenant, appLogger); err != nil {
		appLogger.Fatal("Failed to seed masters", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

func seedTenant(ctx context.Context, repo *repository.TenantRepository, logger *zap.Logger) (*models.Tenant, error) {
	if tenant, err := repo.GetByCode(ctx, "demo"); err == nil {
		logger.Info("Tenant already exists, skipping", zap.String("code", tenant.Code))
		return tenant, nil
	}

	now := time.Now()
	tenant := &models.Tenant{
		ID:          uuid.New(),
		Code:        "demo",
		Name:        "デモ商事株式会社",
		CountryCode: "JP",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	logger.Info("Tenant created", zap.String("code", tenant.Code))
	return tenant, nil
}

func seedUsers(ctx context.Context, repo *repository.UserRepository, tenant *models.Tenant, logger *zap.Logger) error {
	users := []struct {
		username string
		email    string
		password string
		role     models.UserRole
	}{
		{"admin", "admin@example.com", "admin12345", models.RoleAdmin},
		{"keiri", "keiri@example.com", "keiri12345", models.RoleMember},
	}

	now := time.Now()
	for _, u := range users {
		if existing, _ := repo.GetByEmail(ctx, u.email); existing != nil {
			logger.Info("User already exists, skipping", zap.String("email", u.email))
			continue
		}

		hashed, err := auth.HashPassword(u.password)
		if err != nil {
			return err
		}
		tenantID := tenant.ID
		if err := repo.Create(ctx, &models.User{
			ID:        uuid.New(),
			TenantID:  &tenantID,
			Username:  u.username,
			Email:     u.email,
			Password:  hashed,
			Role:      u.role,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		logger.Info("User created", zap.String("email", u.email), zap.String("role", string(u.role)))
	}
	return nil
}

func seedMasters(ctx context.Context, repo *repository.MasterRepository, tenant *models.Tenant, logger *zap.Logger) error {
	existing, err := repo.ListAccounts(ctx, tenant.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("Account registry already seeded, skipping", zap.Int("accounts", len(existing)))
		return nil
	}

	now := time.Now()

	accounts := []struct {
		code        string
		name        string
		accountType string
	}{
		{"4110", "売上高", "income"},
		{"4210", "雑収入", "income"},
		{"5110", "仕入高", "expense"},
		{"5210", "水道光熱費", "expense"},
		{"5220", "通信費", "expense"},
		{"5230", "旅費交通費", "expense"},
		{"5240", "消耗品費", "expense"},
		{"5250", "外注費", "expense"},
		{"5260", "地代家賃", "expense"},
		{"5270", "会議費", "expense"},
		{"5280", "接待交際費", "expense"},
		{"5290", "広告宣伝費", "expense"},
		{"5990", "雑費", "expense"},
		{"1110", "現金", "asset"},
		{"1120", "普通預金", "asset"},
		{"2110", "買掛金", "liability"},
		{"2120", "未払金", "liability"},
	}
	for _, a := range accounts {
		if err := repo.CreateAccount(ctx, &models.AccountMaster{
			ID:          uuid.New(),
			TenantID:    tenant.ID,
			Code:        a.code,
			Name:        a.name,
			AccountType: a.accountType,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return err
		}
	}
	logger.Info("Account registry seeded", zap.Int("accounts", len(accounts)))

	vendors := []struct {
		code string
		name string
	}{
		{"V001", "ABC商事"},
		{"V002", "東京電力"},
		{"V003", "NTTドコモ"},
		{"V004", "JR東日本"},
		{"V005", "アスクル"},
		{"V006", "Amazon"},
		{"V007", "山田商店"},
		{"V008", "ヤマト運輸"},
	}
	for _, v := range vendors {
		if err := repo.CreateVendor(ctx, &models.VendorMaster{
			ID:        uuid.New(),
			TenantID:  tenant.ID,
			Code:      v.code,
			Name:      v.name,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
	}
	logger.Info("Vendor registry seeded", zap.Int("vendors", len(vendors)))

	return nil
}
