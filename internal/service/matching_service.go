package service

import (
	"context"
	"fmt"

	"keiriflow/internal/matching"
	"keiriflow/internal/models"
	"keiriflow/internal/repository"
	"keiriflow/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MatchingService resolves predicted vendor and account names against
// the tenant registries. Registry load failures are reported as errors
// rather than silently recorded as "no match", so a flaky database
// never poisons predictions with false negatives.
type MatchingService struct {
	masterRepo *repository.MasterRepository
	tenantRepo *repository.TenantRepository
	cfg        *config.MatchingConfig
	logger     *zap.Logger
}

func NewMatchingService(
	masterRepo *repository.MasterRepository,
	tenantRepo *repository.TenantRepository,
	cfg *config.MatchingConfig,
	logger *zap.Logger,
) *MatchingService {
	return &MatchingService{
		masterRepo: masterRepo,
		tenantRepo: tenantRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// RegistrySnapshot is one consistent read of both registries, shared
// across all line items of a document so a mid-run registry edit
// cannot make the same input resolve two different ways.
type RegistrySnapshot struct {
	Accounts  []matching.Candidate
	Vendors   []matching.Candidate
	Threshold float64
}

func (s *MatchingService) Snapshot(ctx context.Context, tenantID uuid.UUID) (*RegistrySnapshot, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	accounts, err := s.masterRepo.ListAccounts(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account registry: %w", err)
	}
	vendors, err := s.masterRepo.ListVendors(ctx, tenantID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor registry: %w", err)
	}

	snap := &RegistrySnapshot{
		Accounts:  make([]matching.Candidate, 0, len(accounts)),
		Vendors:   make([]matching.Candidate, 0, len(vendors)),
		Threshold: s.cfg.MinSimilarity,
	}
	if tenant.MatchThreshold != nil {
		snap.Threshold = *tenant.MatchThreshold
	}
	for _, a := range accounts {
		snap.Accounts = append(snap.Accounts, matching.Candidate{
			ID: a.ID, Code: a.Code, Name: a.Name, LastUsedAt: a.LastUsedAt,
		})
	}
	for _, v := range vendors {
		snap.Vendors = append(snap.Vendors, matching.Candidate{
			ID: v.ID, Code: v.Code, Name: v.Name, LastUsedAt: v.LastUsedAt,
		})
	}
	return snap, nil
}

func (snap *RegistrySnapshot) ResolveAccount(name string) (matching.Match, bool) {
	return matching.Resolve(name, snap.Accounts, snap.Threshold)
}

func (snap *RegistrySnapshot) ResolveVendor(name string) (matching.Match, bool) {
	return matching.Resolve(name, snap.Vendors, snap.Threshold)
}

// TouchUsed bumps recency markers for the masters a prediction
// resolved to. Failures only cost future tie-break quality, so they
// are logged and swallowed.
func (s *MatchingService) TouchUsed(ctx context.Context, tenantID uuid.UUID, p *models.ClaudePrediction) {
	if p.MatchedAccountID != nil {
		if err := s.masterRepo.TouchAccountUsed(ctx, tenantID, *p.MatchedAccountID); err != nil {
			s.logger.Warn("Failed to touch account recency", zap.Error(err))
		}
	}
	if p.MatchedVendorID != nil {
		if err := s.masterRepo.TouchVendorUsed(ctx, tenantID, *p.MatchedVendorID); err != nil {
			s.logger.Warn("Failed to touch vendor recency", zap.Error(err))
		}
	}
}
