package handlers

import (
	"errors"

	"keiriflow/internal/dto"
	"keiriflow/internal/models"
	"keiriflow/internal/repository"
	"keiriflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	ingestion   *service.IngestionService
	extraction  *service.ExtractionService
	predictions *service.PredictionService
	logger      *zap.Logger
}

func NewDocumentHandler(
	ingestion *service.IngestionService,
	extraction *service.ExtractionService,
	predictions *service.PredictionService,
	logger *zap.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		ingestion:   ingestion,
		extraction:  extraction,
		predictions: predictions,
		logger:      logger,
	}
}

// UploadDocument accepts a multipart upload from the chat frontend and
// registers it as a pending document.
func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	user, err := userID(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	session, err := h.ingestion.EnsureSession(c.Context(), tenant, user, c.FormValue("chat_id"), c.FormValue("title"))
	if err != nil {
		h.logger.Error("Failed to resolve chat session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve chat session",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	chatFile, err := h.ingestion.UploadFile(c.Context(), tenant, session, src, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Error("Failed to upload document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload document",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toChatFileResponse(chatFile))
}

func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	fileID, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID",
		})
	}

	file, err := h.ingestion.GetFile(c.Context(), tenant, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Document not found",
			})
		}
		h.logger.Error("Failed to load document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load document",
		})
	}

	return c.JSON(toChatFileResponse(file))
}

func (h *DocumentHandler) ListSessionDocuments(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	sessionID, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	files, err := h.ingestion.ListSessionFiles(c.Context(), tenant, sessionID)
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list documents",
		})
	}

	resp := make([]dto.ChatFileResponse, 0, len(files))
	for _, f := range files {
		resp = append(resp, toChatFileResponse(f))
	}
	return c.JSON(resp)
}

// ExtractDocument runs text extraction. A file already completed is a
// no-op unless force is set.
func (h *DocumentHandler) ExtractDocument(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	fileID, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID",
		})
	}

	var req dto.ExtractRequest
	_ = c.BodyParser(&req) // body is optional

	result, err := h.extraction.Extract(c.Context(), tenant, fileID, req.Force)
	if err != nil {
		return h.pipelineError(c, err, "Extraction failed")
	}

	return c.JSON(toOcrResultResponse(result))
}

func (h *DocumentHandler) PredictDocument(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	fileID, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID",
		})
	}

	predictions, err := h.predictions.Predict(c.Context(), tenant, fileID)
	if err != nil {
		return h.pipelineError(c, err, "Prediction failed")
	}

	return c.JSON(toPredictionResponses(predictions))
}

// ProcessDocument runs the full pipeline: extract, then classify and
// match.
func (h *DocumentHandler) ProcessDocument(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	fileID, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID",
		})
	}

	var req dto.ExtractRequest
	_ = c.BodyParser(&req)

	predictions, err := h.predictions.Process(c.Context(), tenant, fileID, req.Force)
	if err != nil {
		return h.pipelineError(c, err, "Processing failed")
	}

	file, err := h.ingestion.GetFile(c.Context(), tenant, fileID)
	if err != nil {
		h.logger.Error("Failed to reload document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Processing finished but document reload failed",
		})
	}

	resp := dto.ProcessDocumentResponse{
		File:        toChatFileResponse(file),
		Predictions: toPredictionResponses(predictions),
	}
	if ocr, err := h.extraction.LatestText(c.Context(), tenant, fileID); err == nil {
		r := toOcrResultResponse(ocr)
		resp.OcrResult = &r
	}
	return c.JSON(resp)
}

func (h *DocumentHandler) ListPredictions(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	fileID, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID",
		})
	}

	predictions, err := h.predictions.ListByFile(c.Context(), tenant, fileID)
	if err != nil {
		h.logger.Error("Failed to list predictions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list predictions",
		})
	}

	return c.JSON(toPredictionResponses(predictions))
}

func (h *DocumentHandler) pipelineError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
		})
	case errors.Is(err, service.ErrFileBusy):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Document is already being processed",
		})
	case errors.Is(err, service.ErrNoExtraction):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Document has no completed extraction",
		})
	}
	h.logger.Error(fallback, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}

func toChatFileResponse(f *models.ChatFile) dto.ChatFileResponse {
	resp := dto.ChatFileResponse{
		ID:            f.ID.String(),
		ChatSessionID: f.ChatSessionID.String(),
		FileName:      f.FileName,
		FileSize:      f.FileSize,
		FileURL:       f.FileURL,
		MimeType:      f.MimeType,
		Status:        string(f.Status),
		ErrorMessage:  derefStr(f.ErrorMessage),
		ExtractedDate: formatDatePtr(f.ExtractedDate),
		ProcessedAt:   formatTimePtr(f.ProcessedAt),
		CreatedAt:     formatTime(f.CreatedAt),
	}
	if f.ExtractedAmount != nil {
		resp.ExtractedAmount = f.ExtractedAmount.String()
	}
	return resp
}

func toOcrResultResponse(r *models.OcrResult) dto.OcrResultResponse {
	return dto.OcrResultResponse{
		ID:         r.ID.String(),
		ChatFileID: r.ChatFileID.String(),
		OcrText:    r.OcrText,
		Confidence: r.Confidence,
		Status:     string(r.Status),
		CreatedAt:  formatTime(r.CreatedAt),
	}
}

func toPredictionResponse(p *models.ClaudePrediction) dto.PredictionResponse {
	resp := dto.PredictionResponse{
		ID:                 p.ID.String(),
		ChatFileID:         p.ChatFileID.String(),
		Vendor:             p.InputVendor,
		Description:        p.InputDescription,
		Amount:             p.InputAmount.String(),
		Direction:          string(p.InputDirection),
		Date:               formatDatePtr(p.InputDate),
		PredictedAccount:   p.PredictedAccount,
		AccountConfidence:  p.AccountConfidence,
		Reasoning:          derefStr(p.Reasoning),
		MatchedVendorCode:  derefStr(p.MatchedVendorCode),
		MatchedVendorName:  derefStr(p.MatchedVendorName),
		MatchedAccountCode: derefStr(p.MatchedAccountCode),
		MatchedAccountName: derefStr(p.MatchedAccountName),
		Status:             string(p.Status),
		ErrorMessage:       derefStr(p.ErrorMessage),
		CreatedAt:          formatTime(p.CreatedAt),
	}
	if p.VendorConfidence != nil {
		resp.VendorConfidence = *p.VendorConfidence
	}
	return resp
}

func toPredictionResponses(predictions []*models.ClaudePrediction) []dto.PredictionResponse {
	resp := make([]dto.PredictionResponse, 0, len(predictions))
	for _, p := range predictions {
		resp = append(resp, toPredictionResponse(p))
	}
	return resp
}
