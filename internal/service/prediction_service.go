package service

import (
	"context"
	"fmt"
	"time"

	"keiriflow/internal/models"
	"keiriflow/internal/provider"
	"keiriflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PredictionService turns extracted text into classified accounting
// lines: one language-model pass per document, then registry matching
// per line. Malformed lines become error rows instead of sinking the
// batch.
type PredictionService struct {
	fileRepo   *repository.ChatFileRepository
	aiRepo     *repository.AiResultRepository
	predRepo   *repository.PredictionRepository
	extraction *ExtractionService
	matching   *MatchingService
	predictor  provider.Predictor
	logger     *zap.Logger
}

func NewPredictionService(
	fileRepo *repository.ChatFileRepository,
	aiRepo *repository.AiResultRepository,
	predRepo *repository.PredictionRepository,
	extraction *ExtractionService,
	matching *MatchingService,
	predictor provider.Predictor,
	logger *zap.Logger,
) *PredictionService {
	return &PredictionService{
		fileRepo:   fileRepo,
		aiRepo:     aiRepo,
		predRepo:   predRepo,
		extraction: extraction,
		matching:   matching,
		predictor:  predictor,
		logger:     logger,
	}
}

// Predict classifies the latest extracted text of a file and persists
// the resulting prediction rows.
func (s *PredictionService) Predict(ctx context.Context, tenantID, fileID uuid.UUID) ([]*models.ClaudePrediction, error) {
	ocr, err := s.extraction.LatestText(ctx, tenantID, fileID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	aiResult := &models.AiResult{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ChatFileID: fileID,
		Status:     models.AiStatusProcessing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.aiRepo.Create(ctx, aiResult); err != nil {
		return nil, fmt.Errorf("failed to record prediction pass: %w", err)
	}

	prediction, err := s.predictor.Predict(ctx, ocr.OcrText)
	if err != nil {
		if ferr := s.aiRepo.Fail(ctx, tenantID, aiResult.ID, err.Error()); ferr != nil {
			s.logger.Warn("Failed to record prediction failure", zap.Error(ferr))
		}
		s.failFile(ctx, tenantID, fileID, err.Error())
		return nil, err
	}

	if err := s.aiRepo.Complete(ctx, tenantID, aiResult.ID, prediction.Raw, prediction.Model, prediction.TokensUsed); err != nil {
		return nil, err
	}

	snap, err := s.matching.Snapshot(ctx, tenantID)
	if err != nil {
		// Registry unavailable: the model output is already saved, so
		// the caller can re-run matching without a second API call.
		return nil, err
	}

	prior, err := s.predRepo.ListByChatFile(ctx, tenantID, fileID, false)
	if err != nil {
		return nil, err
	}

	rows := s.buildRows(tenantID, fileID, aiResult.ID, prediction, snap)
	if err := s.predRepo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to save predictions: %w", err)
	}

	// A committed pass retires the previous one, keeping a single
	// authoritative set of rows per document.
	if successor, replaced, ok := supersededIDs(prior, rows); ok {
		for _, oldID := range replaced {
			if err := s.predRepo.MarkSuperseded(ctx, tenantID, oldID, successor); err != nil {
				s.logger.Warn("Failed to supersede prior prediction",
					zap.String("prediction_id", oldID.String()),
					zap.Error(err))
			}
		}
	}

	for _, p := range rows {
		if p.Status == models.PredictionStatusCompleted {
			s.matching.TouchUsed(ctx, tenantID, p)
		}
	}

	s.completeFile(ctx, tenantID, fileID, rows)
	return rows, nil
}

// Process is the full pipeline for one file: extract then predict.
func (s *PredictionService) Process(ctx context.Context, tenantID, fileID uuid.UUID, force bool) ([]*models.ClaudePrediction, error) {
	if _, err := s.extraction.Extract(ctx, tenantID, fileID, force); err != nil {
		return nil, err
	}
	return s.Predict(ctx, tenantID, fileID)
}

func (s *PredictionService) ListByFile(ctx context.Context, tenantID, fileID uuid.UUID) ([]*models.ClaudePrediction, error) {
	return s.predRepo.ListByChatFile(ctx, tenantID, fileID, false)
}

func (s *PredictionService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ClaudePrediction, error) {
	return s.predRepo.GetByID(ctx, tenantID, id)
}

func (s *PredictionService) buildRows(tenantID, fileID, aiResultID uuid.UUID, prediction *provider.Prediction, snap *RegistrySnapshot) []*models.ClaudePrediction {
	now := time.Now()
	rows := make([]*models.ClaudePrediction, 0, len(prediction.Proposals)+len(prediction.ItemErrors))

	for _, proposal := range prediction.Proposals {
		p := &models.ClaudePrediction{
			ID:                uuid.New(),
			TenantID:          tenantID,
			ChatFileID:        fileID,
			AiResultID:        &aiResultID,
			InputVendor:       proposal.Vendor,
			InputDescription:  proposal.Description,
			InputAmount:       proposal.Amount,
			InputDirection:    proposal.Direction,
			PredictedAccount:  proposal.Account,
			AccountConfidence: proposal.Confidence,
			ClaudeModel:       prediction.Model,
			TokensUsed:        &prediction.TokensUsed,
			RawResponse:       &prediction.Raw,
			Status:            models.PredictionStatusCompleted,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if proposal.Reasoning != "" {
			reasoning := proposal.Reasoning
			p.Reasoning = &reasoning
		}
		if proposal.Date != "" {
			if date, err := time.Parse("2006-01-02", proposal.Date); err == nil {
				p.InputDate = &date
			}
		}

		if match, ok := snap.ResolveAccount(proposal.Account); ok {
			id, code, name := match.ID, match.Code, match.Name
			p.MatchedAccountID = &id
			p.MatchedAccountCode = &code
			p.MatchedAccountName = &name
		}
		if match, ok := snap.ResolveVendor(proposal.Vendor); ok {
			id, code, name, conf := match.ID, match.Code, match.Name, match.Confidence
			p.MatchedVendorID = &id
			p.MatchedVendorCode = &code
			p.MatchedVendorName = &name
			p.VendorConfidence = &conf
		}

		rows = append(rows, p)
	}

	for _, itemErr := range prediction.ItemErrors {
		message := fmt.Sprintf("item %d: %s", itemErr.Index, itemErr.Message)
		rows = append(rows, &models.ClaudePrediction{
			ID:           uuid.New(),
			TenantID:     tenantID,
			ChatFileID:   fileID,
			AiResultID:   &aiResultID,
			ClaudeModel:  prediction.Model,
			RawResponse:  &prediction.Raw,
			Status:       models.PredictionStatusError,
			ErrorMessage: &message,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	return rows
}

// completeFile settles the file status from the batch outcome. The
// file may only complete when the pass produced at least one completed
// row; an empty or all-malformed batch lands it in error instead.
func (s *PredictionService) completeFile(ctx context.Context, tenantID, fileID uuid.UUID, rows []*models.ClaudePrediction) {
	amount, earliest, ok := summarizePredictions(rows)
	if !ok {
		s.failFile(ctx, tenantID, fileID, batchFailureMessage(rows))
		return
	}
	if err := s.fileRepo.SetCompleted(ctx, tenantID, fileID, amount, earliest); err != nil {
		s.logger.Warn("Failed to cache extraction summary", zap.Error(err))
	}
}

// summarizePredictions reduces a batch to the totals cached on the
// ChatFile row: the sum of completed amounts and the earliest
// transaction date. ok is false when no row completed.
func summarizePredictions(rows []*models.ClaudePrediction) (*decimal.Decimal, *time.Time, bool) {
	var total decimal.Decimal
	var earliest *time.Time
	seen := false
	for _, p := range rows {
		if p.Status != models.PredictionStatusCompleted {
			continue
		}
		total = total.Add(p.InputAmount)
		seen = true
		if p.InputDate != nil && (earliest == nil || p.InputDate.Before(*earliest)) {
			earliest = p.InputDate
		}
	}
	if !seen {
		return nil, nil, false
	}
	return &total, earliest, true
}

func batchFailureMessage(rows []*models.ClaudePrediction) string {
	errored := 0
	for _, p := range rows {
		if p.Status == models.PredictionStatusError {
			errored++
		}
	}
	if errored == 0 {
		return "classification produced no transaction lines"
	}
	return fmt.Sprintf("classification produced no usable lines (%d malformed)", errored)
}

// supersededIDs lists the prior-pass rows a committed new pass
// replaces, and the row they should point at. An empty new pass
// replaces nothing: when re-classification produces no rows at all the
// prior pass stays authoritative.
func supersededIDs(prior, next []*models.ClaudePrediction) (uuid.UUID, []uuid.UUID, bool) {
	if len(next) == 0 || len(prior) == 0 {
		return uuid.Nil, nil, false
	}
	replaced := make([]uuid.UUID, 0, len(prior))
	for _, p := range prior {
		replaced = append(replaced, p.ID)
	}
	return next[0].ID, replaced, true
}

func (s *PredictionService) failFile(ctx context.Context, tenantID, fileID uuid.UUID, message string) {
	if err := s.fileRepo.SetError(ctx, tenantID, fileID, message); err != nil {
		s.logger.Warn("Failed to mark file errored", zap.Error(err))
	}
}
