package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"keiriflow/internal/models"
	"keiriflow/internal/repository"
	"keiriflow/pkg/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReconciliationService asserts agreement between draft entries and
// the authoritative ledger. Evaluation is re-runnable: matched rows may
// be re-evaluated into discrepancy when underlying data changes, but a
// resolved row never moves again.
type ReconciliationService struct {
	recRepo    *repository.ReconciliationRepository
	entryRepo  *repository.JournalEntryRepository
	mfRepo     *repository.MfJournalRepository
	fileRepo   *repository.ChatFileRepository
	tenantRepo *repository.TenantRepository
	cfg        *config.ReconcileConfig
	logger     *zap.Logger
}

func NewReconciliationService(
	recRepo *repository.ReconciliationRepository,
	entryRepo *repository.JournalEntryRepository,
	mfRepo *repository.MfJournalRepository,
	fileRepo *repository.ChatFileRepository,
	tenantRepo *repository.TenantRepository,
	cfg *config.ReconcileConfig,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		recRepo:    recRepo,
		entryRepo:  entryRepo,
		mfRepo:     mfRepo,
		fileRepo:   fileRepo,
		tenantRepo: tenantRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *ReconciliationService) Create(ctx context.Context, tenantID uuid.UUID, journalEntryID uuid.UUID, mfJournalEntryID, chatFileID *uuid.UUID) (*models.Reconciliation, error) {
	if _, err := s.entryRepo.GetByID(ctx, tenantID, journalEntryID); err != nil {
		return nil, err
	}
	if mfJournalEntryID != nil {
		if _, err := s.mfRepo.GetByID(ctx, tenantID, *mfJournalEntryID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	rec := &models.Reconciliation{
		ID:               uuid.New(),
		TenantID:         tenantID,
		ChatFileID:       chatFileID,
		JournalEntryID:   journalEntryID,
		MfJournalEntryID: mfJournalEntryID,
		Status:           models.ReconciliationStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.recRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Evaluate compares the ledger entry against its counterpart under the
// tenant's tolerances and moves the reconciliation to matched or
// discrepancy. A linked draft entry is the counterpart when present;
// otherwise the document's extracted totals stand in. Resolved rows
// are terminal and left untouched.
func (s *ReconciliationService) Evaluate(ctx context.Context, tenantID, id uuid.UUID) (*models.Reconciliation, error) {
	rec, err := s.recRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == models.ReconciliationStatusResolved {
		return rec, nil
	}

	entry, err := s.entryRepo.GetByID(ctx, tenantID, rec.JournalEntryID)
	if err != nil {
		return nil, err
	}
	tolerance, window, err := s.thresholds(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var status models.ReconciliationStatus
	var note *string
	switch {
	case rec.MfJournalEntryID != nil:
		draft, err := s.mfRepo.GetByID(ctx, tenantID, *rec.MfJournalEntryID)
		if err != nil {
			return nil, err
		}
		status, note = evaluatePair(entry, draft, tolerance, window)
	case rec.ChatFileID != nil:
		file, err := s.fileRepo.GetByID(ctx, tenantID, *rec.ChatFileID)
		if err != nil {
			return nil, err
		}
		status, note = evaluateDocument(entry, file, tolerance, window)
	default:
		msg := "照合対象の仕訳ドラフトも書類も指定されていません"
		status, note = models.ReconciliationStatusDiscrepancy, &msg
	}
	return s.transition(ctx, rec, status, note)
}

// evaluatePair applies the three agreement checks: amount within
// tolerance, dates within the window, and the draft's account present
// on either side of the double entry.
func evaluatePair(entry *models.JournalEntry, draft *models.MfJournalEntry, tolerance decimal.Decimal, windowDays int) (models.ReconciliationStatus, *string) {
	var problems []string

	diff := entry.Amount.Sub(draft.Amount()).Abs()
	if diff.GreaterThan(tolerance) {
		problems = append(problems, fmt.Sprintf(
			"金額不一致: 台帳 %s / ドラフト %s (差額 %s)",
			entry.Amount.String(), draft.Amount().String(), diff.String()))
	}

	dayDiff := entry.EntryDate.Sub(draft.TransactionDate)
	if dayDiff < 0 {
		dayDiff = -dayDiff
	}
	if dayDiff > time.Duration(windowDays)*24*time.Hour {
		problems = append(problems, fmt.Sprintf(
			"日付乖離: 台帳 %s / ドラフト %s (許容 %d日)",
			entry.EntryDate.Format("2006-01-02"),
			draft.TransactionDate.Format("2006-01-02"), windowDays))
	}

	if draft.AccountSubject != entry.DebitAccount && draft.AccountSubject != entry.CreditAccount {
		problems = append(problems, fmt.Sprintf(
			"勘定科目不一致: ドラフト %s は借方 %s / 貸方 %s のいずれとも一致しません",
			draft.AccountSubject, entry.DebitAccount, entry.CreditAccount))
	}

	if len(problems) == 0 {
		return models.ReconciliationStatusMatched, nil
	}
	note := strings.Join(problems, "; ")
	return models.ReconciliationStatusDiscrepancy, &note
}

// evaluateDocument compares the ledger entry against the totals the
// pipeline cached on the document: amount within tolerance and, when
// the document carries a date, dates within the window. Documents have
// no account subject, so there is no account check on this path.
func evaluateDocument(entry *models.JournalEntry, file *models.ChatFile, tolerance decimal.Decimal, windowDays int) (models.ReconciliationStatus, *string) {
	if file.ExtractedAmount == nil {
		note := "書類から金額が抽出されていません"
		return models.ReconciliationStatusDiscrepancy, &note
	}

	var problems []string

	diff := entry.Amount.Sub(*file.ExtractedAmount).Abs()
	if diff.GreaterThan(tolerance) {
		problems = append(problems, fmt.Sprintf(
			"金額不一致: 台帳 %s / 書類 %s (差額 %s)",
			entry.Amount.String(), file.ExtractedAmount.String(), diff.String()))
	}

	if file.ExtractedDate != nil {
		dayDiff := entry.EntryDate.Sub(*file.ExtractedDate)
		if dayDiff < 0 {
			dayDiff = -dayDiff
		}
		if dayDiff > time.Duration(windowDays)*24*time.Hour {
			problems = append(problems, fmt.Sprintf(
				"日付乖離: 台帳 %s / 書類 %s (許容 %d日)",
				entry.EntryDate.Format("2006-01-02"),
				file.ExtractedDate.Format("2006-01-02"), windowDays))
		}
	}

	if len(problems) == 0 {
		return models.ReconciliationStatusMatched, nil
	}
	note := strings.Join(problems, "; ")
	return models.ReconciliationStatusDiscrepancy, &note
}

// Resolve closes a discrepancy with an operator note. The note is
// mandatory: an unexplained resolution is indistinguishable from a
// swallowed error.
func (s *ReconciliationService) Resolve(ctx context.Context, tenantID, id uuid.UUID, note string) (*models.Reconciliation, error) {
	if strings.TrimSpace(note) == "" {
		return nil, ErrEmptyNote
	}

	rec, err := s.recRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.ReconciliationStatusDiscrepancy {
		return nil, ErrNotDiscrepancy
	}

	resolved := strings.TrimSpace(note)
	return s.transition(ctx, rec, models.ReconciliationStatusResolved, &resolved)
}

func (s *ReconciliationService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Reconciliation, error) {
	return s.recRepo.GetByID(ctx, tenantID, id)
}

func (s *ReconciliationService) List(ctx context.Context, tenantID uuid.UUID, status models.ReconciliationStatus, limit, offset int) ([]*models.Reconciliation, error) {
	return s.recRepo.List(ctx, tenantID, status, limit, offset)
}

func (s *ReconciliationService) transition(ctx context.Context, rec *models.Reconciliation, to models.ReconciliationStatus, note *string) (*models.Reconciliation, error) {
	if !rec.Status.CanTransition(to) {
		return nil, models.ErrIllegalTransition
	}

	ok, err := s.recRepo.UpdateStatusIf(ctx, rec.TenantID, rec.ID, rec.Status, to, note)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with a concurrent evaluation; reload and report.
		return s.recRepo.GetByID(ctx, rec.TenantID, rec.ID)
	}

	rec.Status = to
	rec.Notes = note
	return rec, nil
}

func (s *ReconciliationService) thresholds(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, int, error) {
	toleranceStr := s.cfg.Tolerance
	window := s.cfg.DateWindowDays

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return decimal.Zero, 0, err
	}
	if tenant.ReconcileTolerance != nil {
		toleranceStr = *tenant.ReconcileTolerance
	}
	if tenant.ReconcileDateWindowDays != nil {
		window = *tenant.ReconcileDateWindowDays
	}

	tolerance, err := decimal.NewFromString(toleranceStr)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("invalid reconcile tolerance %q: %w", toleranceStr, err)
	}
	return tolerance, window, nil
}
