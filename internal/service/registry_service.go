package service

import (
	"context"
	"time"

	"keiriflow/internal/models"
	"keiriflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegistryService maintains the tenant registries the matcher resolves
// against: the chart of accounts and the vendor list.
type RegistryService struct {
	masterRepo *repository.MasterRepository
	logger     *zap.Logger
}

func NewRegistryService(masterRepo *repository.MasterRepository, logger *zap.Logger) *RegistryService {
	return &RegistryService{
		masterRepo: masterRepo,
		logger:     logger,
	}
}

func (s *RegistryService) CreateAccount(ctx context.Context, tenantID uuid.UUID, code, name, accountType string) (*models.AccountMaster, error) {
	now := time.Now()
	account := &models.AccountMaster{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Code:        code,
		Name:        name,
		AccountType: accountType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.masterRepo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *RegistryService) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]*models.AccountMaster, error) {
	return s.masterRepo.ListAccounts(ctx, tenantID)
}

func (s *RegistryService) CreateVendor(ctx context.Context, tenantID uuid.UUID, code, name string) (*models.VendorMaster, error) {
	now := time.Now()
	vendor := &models.VendorMaster{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Code:      code,
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.masterRepo.CreateVendor(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *RegistryService) ListVendors(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*models.VendorMaster, error) {
	return s.masterRepo.ListVendors(ctx, tenantID, activeOnly)
}

// SetVendorActive deactivates (or restores) a vendor. Inactive vendors
// stay in the table for history but are excluded from matching.
func (s *RegistryService) SetVendorActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error {
	return s.masterRepo.SetVendorActive(ctx, tenantID, id, active)
}
