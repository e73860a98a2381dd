package service

import (
	"context"
	"fmt"
	"time"

	"keiriflow/internal/models"
	"keiriflow/internal/provider"
	"keiriflow/internal/repository"
	"keiriflow/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExtractionService runs OCR/text extraction for uploaded files. Each
// attempt is recorded as its own OcrResult row; the file status moves
// pending -> processing -> completed/error with optimistic updates so
// concurrent triggers cannot double-process a file.
type ExtractionService struct {
	fileRepo  *repository.ChatFileRepository
	ocrRepo   *repository.OcrResultRepository
	ingestion *IngestionService
	extractor provider.TextExtractor
	cfg       *config.PipelineConfig
	logger    *zap.Logger
}

func NewExtractionService(
	fileRepo *repository.ChatFileRepository,
	ocrRepo *repository.OcrResultRepository,
	ingestion *IngestionService,
	extractor provider.TextExtractor,
	cfg *config.PipelineConfig,
	logger *zap.Logger,
) *ExtractionService {
	return &ExtractionService{
		fileRepo:  fileRepo,
		ocrRepo:   ocrRepo,
		ingestion: ingestion,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
	}
}

// Extract runs text extraction for a file. Completed files are a no-op
// unless force is set; a file already held by another worker returns
// ErrFileBusy. Transient provider failures are retried with backoff up
// to the configured attempt budget.
func (s *ExtractionService) Extract(ctx context.Context, tenantID, fileID uuid.UUID, force bool) (*models.OcrResult, error) {
	file, err := s.fileRepo.GetByID(ctx, tenantID, fileID)
	if err != nil {
		return nil, err
	}

	if file.Status == models.FileStatusCompleted && !force {
		return s.ocrRepo.LatestCompletedByChatFile(ctx, tenantID, fileID)
	}

	if err := s.claim(ctx, tenantID, file); err != nil {
		return nil, err
	}

	data, err := s.ingestion.ReadFile(file)
	if err != nil {
		s.failFile(ctx, tenantID, fileID, err.Error())
		return nil, err
	}

	result, err := s.runExtraction(ctx, tenantID, file, data)
	if err != nil {
		s.failFile(ctx, tenantID, fileID, err.Error())
		return nil, err
	}
	return result, nil
}

// claim moves the file into processing with a conditional update on
// its current status. A completed file may only be reclaimed by a
// forced re-extraction, which callers gate before reaching here. Losing
// the race means someone else is processing the file.
func (s *ExtractionService) claim(ctx context.Context, tenantID uuid.UUID, file *models.ChatFile) error {
	if file.Status == models.FileStatusProcessing {
		return ErrFileBusy
	}
	ok, err := s.fileRepo.UpdateStatusIf(ctx, tenantID, file.ID, file.Status, models.FileStatusProcessing)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFileBusy
	}
	return nil
}

func (s *ExtractionService) runExtraction(ctx context.Context, tenantID uuid.UUID, file *models.ChatFile, data []byte) (*models.OcrResult, error) {
	now := time.Now()
	attempt := &models.OcrResult{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ChatFileID: file.ID,
		FileName:   file.FileName,
		Status:     models.OcrStatusProcessing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.ocrRepo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to record extraction attempt: %w", err)
	}

	var extraction *provider.Extraction
	var err error
	for try := 1; try <= s.cfg.MaxAttempts; try++ {
		extraction, err = s.extractor.ExtractText(ctx, data, file.MimeType)
		if err == nil || !provider.IsTransient(err) {
			break
		}
		s.logger.Warn("Transient extraction failure, retrying",
			zap.String("file_id", file.ID.String()),
			zap.Int("attempt", try),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(s.cfg.RetryBackoff * time.Duration(try)):
			continue
		}
		break
	}
	if err != nil {
		if ferr := s.ocrRepo.Fail(ctx, tenantID, attempt.ID, err.Error()); ferr != nil {
			s.logger.Warn("Failed to record extraction failure", zap.Error(ferr))
		}
		return nil, err
	}

	if err := s.ocrRepo.Complete(ctx, tenantID, attempt.ID, extraction.Text, extraction.Confidence); err != nil {
		return nil, err
	}

	attempt.OcrText = extraction.Text
	attempt.Confidence = extraction.Confidence
	attempt.Status = models.OcrStatusCompleted

	s.logger.Info("Extraction completed",
		zap.String("file_id", file.ID.String()),
		zap.Int("text_length", len(extraction.Text)),
		zap.Float64("confidence", extraction.Confidence),
	)
	return attempt, nil
}

func (s *ExtractionService) failFile(ctx context.Context, tenantID, fileID uuid.UUID, message string) {
	if err := s.fileRepo.SetError(ctx, tenantID, fileID, message); err != nil {
		s.logger.Warn("Failed to mark file errored", zap.Error(err))
	}
}

// LatestText returns the authoritative extracted text for a file.
func (s *ExtractionService) LatestText(ctx context.Context, tenantID, fileID uuid.UUID) (*models.OcrResult, error) {
	res, err := s.ocrRepo.LatestCompletedByChatFile(ctx, tenantID, fileID)
	if err == repository.ErrNotFound {
		return nil, ErrNoExtraction
	}
	return res, err
}
