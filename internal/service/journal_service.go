package service

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"keiriflow/internal/mfcsv"
	"keiriflow/internal/models"
	"keiriflow/internal/repository"
	"keiriflow/pkg/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// JournalService manages draft ledger entries, their CSV export and
// the import confirmation handshake. Export batches are serialized per
// tenant so two operators cannot interleave a batch.
type JournalService struct {
	mfRepo      *repository.MfJournalRepository
	entryRepo   *repository.JournalEntryRepository
	predRepo    *repository.PredictionRepository
	store       *ExportStore
	logger      *zap.Logger
	exportMu    sync.Mutex
	tenantLocks map[uuid.UUID]*sync.Mutex
}

func NewJournalService(
	mfRepo *repository.MfJournalRepository,
	entryRepo *repository.JournalEntryRepository,
	predRepo *repository.PredictionRepository,
	cfg *config.ExportConfig,
	logger *zap.Logger,
) *JournalService {
	return &JournalService{
		mfRepo:      mfRepo,
		entryRepo:   entryRepo,
		predRepo:    predRepo,
		store:       NewExportStore(cfg.TTL),
		logger:      logger,
		tenantLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *JournalService) tenantLock(tenantID uuid.UUID) *sync.Mutex {
	s.exportMu.Lock()
	defer s.exportMu.Unlock()
	lock, ok := s.tenantLocks[tenantID]
	if !ok {
		lock = &sync.Mutex{}
		s.tenantLocks[tenantID] = lock
	}
	return lock
}

// CreateFromPrediction drafts a ledger entry from a completed
// prediction.
func (s *JournalService) CreateFromPrediction(ctx context.Context, tenantID, predictionID uuid.UUID) (*models.MfJournalEntry, error) {
	prediction, err := s.predRepo.GetByID(ctx, tenantID, predictionID)
	if err != nil {
		return nil, err
	}
	if prediction.Status != models.PredictionStatusCompleted {
		return nil, fmt.Errorf("prediction %s is not completed", predictionID)
	}

	entry := BuildMfJournalEntry(prediction, time.Now())
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.mfRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create journal draft: %w", err)
	}

	s.logger.Info("Journal draft created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("prediction_id", predictionID.String()),
		zap.String("account", entry.AccountSubject),
	)
	return entry, nil
}

// ExportBatch renders the selected entries as 仕訳帳 CSV, marks them
// exported and parks the file behind a download token. Entries already
// exported are skipped unless force is set, so a re-selected batch
// cannot produce duplicate submissions.
func (s *JournalService) ExportBatch(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, force bool) (*Export, error) {
	lock := s.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	entries, err := s.mfRepo.GetByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	exportedAt := time.Now()
	exportable := selectExportable(entries, exportedAt, force)
	if len(exportable) == 0 {
		return nil, ErrNothingToExport
	}

	// MF Cloud's importer expects Shift_JIS.
	var buf bytes.Buffer
	if err := mfcsv.WriteShiftJIS(&buf, exportable); err != nil {
		return nil, fmt.Errorf("failed to render CSV: %w", err)
	}

	exportedIDs := make([]uuid.UUID, 0, len(exportable))
	entryIDs := make([]string, 0, len(exportable))
	for _, e := range exportable {
		exportedIDs = append(exportedIDs, e.ID)
		entryIDs = append(entryIDs, e.ID.String())
	}
	if err := s.mfRepo.MarkExported(ctx, tenantID, exportedIDs, exportedAt); err != nil {
		return nil, fmt.Errorf("failed to mark entries exported: %w", err)
	}

	fileName := fmt.Sprintf("mf_journal_%s.csv", exportedAt.Format("20060102_150405"))
	export := s.store.Put(fileName, buf.Bytes(), entryIDs)

	s.logger.Info("Export batch created",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("entries", len(exportable)),
		zap.String("token", export.Token),
	)
	return export, nil
}

// selectExportable picks the entries a batch may render: errored
// entries never export, and already-exported entries only re-export
// under force. Selected entries are marked exported in place; the
// first export timestamp survives a forced re-export.
func selectExportable(entries []*models.MfJournalEntry, now time.Time, force bool) []*models.MfJournalEntry {
	exportable := make([]*models.MfJournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status == models.JournalStatusError {
			continue
		}
		if !e.MarkExported(now, force) {
			continue
		}
		exportable = append(exportable, e)
	}
	return exportable
}

// GetExport fetches a parked CSV by its download token.
func (s *JournalService) GetExport(token string) (*Export, error) {
	export := s.store.Get(token)
	if export == nil {
		return nil, ErrExportExpired
	}
	return export, nil
}

// ConfirmImport records that the external bookkeeping system accepted
// an exported entry and assigned it an id. Importing an entry that was
// never exported fails with models.ErrExportSequence; confirming the
// same id twice is a no-op.
func (s *JournalService) ConfirmImport(ctx context.Context, tenantID, entryID uuid.UUID, mfJournalID string) (*models.MfJournalEntry, error) {
	entry, err := s.mfRepo.GetByID(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}

	if err := entry.ConfirmImport(mfJournalID, time.Now()); err != nil {
		return nil, err
	}

	if err := s.mfRepo.SaveImport(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Import confirmed",
		zap.String("entry_id", entryID.String()),
		zap.String("mf_journal_id", mfJournalID),
	)
	return entry, nil
}

func (s *JournalService) GetEntry(ctx context.Context, tenantID, id uuid.UUID) (*models.MfJournalEntry, error) {
	return s.mfRepo.GetByID(ctx, tenantID, id)
}

func (s *JournalService) ListEntries(ctx context.Context, tenantID uuid.UUID, status models.JournalStatus, limit, offset int) ([]*models.MfJournalEntry, error) {
	return s.mfRepo.List(ctx, tenantID, status, limit, offset)
}

// CreateJournalEntry records an authoritative double-entry line (bank
// feed or manual input) used by reconciliation.
func (s *JournalService) CreateJournalEntry(ctx context.Context, tenantID uuid.UUID, entryDate time.Time, description, debitAccount, creditAccount string, amount decimal.Decimal, currency string, reference *string) (*models.JournalEntry, error) {
	if currency == "" {
		currency = "JPY"
	}

	now := time.Now()
	entry := &models.JournalEntry{
		ID:            uuid.New(),
		TenantID:      tenantID,
		EntryDate:     entryDate,
		Description:   description,
		DebitAccount:  debitAccount,
		CreditAccount: creditAccount,
		Amount:        amount,
		Currency:      currency,
		Reference:     reference,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *JournalService) GetJournalEntry(ctx context.Context, tenantID, id uuid.UUID) (*models.JournalEntry, error) {
	return s.entryRepo.GetByID(ctx, tenantID, id)
}

func (s *JournalService) ListJournalEntries(ctx context.Context, tenantID uuid.UUID, from, to time.Time, limit, offset int) ([]*models.JournalEntry, error) {
	return s.entryRepo.List(ctx, tenantID, from, to, limit, offset)
}
