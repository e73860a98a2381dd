package handlers

import (
	"errors"
	"time"

	"keiriflow/internal/dto"
	"keiriflow/internal/models"
	"keiriflow/internal/repository"
	"keiriflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type JournalHandler struct {
	journal *service.JournalService
	logger  *zap.Logger
}

func NewJournalHandler(journal *service.JournalService, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{
		journal: journal,
		logger:  logger,
	}
}

// CreateDraft drafts a 仕訳帳 entry from a completed prediction.
func (h *JournalHandler) CreateDraft(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req dto.CreateMfJournalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	predictionID, err := uuid.Parse(req.PredictionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid prediction ID",
		})
	}

	entry, err := h.journal.CreateFromPrediction(c.Context(), tenant, predictionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Prediction not found",
			})
		}
		h.logger.Error("Failed to create journal draft", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toMfJournalResponse(entry))
}

func (h *JournalHandler) GetDraft(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	entryID, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry ID",
		})
	}

	entry, err := h.journal.GetEntry(c.Context(), tenant, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Entry not found",
			})
		}
		h.logger.Error("Failed to load entry", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load entry",
		})
	}

	return c.JSON(toMfJournalResponse(entry))
}

func (h *JournalHandler) ListDrafts(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	status := models.JournalStatus(c.Query("status"))
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	entries, err := h.journal.ListEntries(c.Context(), tenant, status, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list entries", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list entries",
		})
	}

	resp := make([]dto.MfJournalEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toMfJournalResponse(e))
	}
	return c.JSON(resp)
}

// Export renders the selected drafts as MF Cloud import CSV and returns
// a short-lived download token.
func (h *JournalHandler) Export(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req dto.ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	ids := make([]uuid.UUID, 0, len(req.EntryIDs))
	for _, raw := range req.EntryIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid entry ID " + raw,
			})
		}
		ids = append(ids, id)
	}

	export, err := h.journal.ExportBatch(c.Context(), tenant, ids, req.Force)
	if err != nil {
		if errors.Is(err, service.ErrNothingToExport) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No exportable entries in selection",
			})
		}
		h.logger.Error("Export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Export failed",
		})
	}

	return c.JSON(dto.ExportResponse{
		Token:       export.Token,
		DownloadURL: "/exports/" + export.Token,
		ExpiresAt:   formatTime(export.ExpiresAt),
		EntryIDs:    export.EntryIDs,
		RowCount:    len(export.EntryIDs),
	})
}

// Download streams a parked export CSV. The unguessable token is the
// credential here: the chat frontend hands the URL straight to the
// browser, which carries no Authorization header.
func (h *JournalHandler) Download(c *fiber.Ctx) error {
	export, err := h.journal.GetExport(c.Params("token"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Export not found or expired",
		})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=Shift_JIS")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.FileName+`"`)
	return c.Send(export.Data)
}

// ConfirmImport records the MF Cloud journal number assigned to an
// exported entry.
func (h *JournalHandler) ConfirmImport(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req dto.ConfirmImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	entryID, err := uuid.Parse(req.EntryID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry ID",
		})
	}

	entry, err := h.journal.ConfirmImport(c.Context(), tenant, entryID, req.MfJournalID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Entry not found",
			})
		case errors.Is(err, models.ErrExportSequence):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Entry has not been exported yet",
			})
		case errors.Is(err, models.ErrImportConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Entry already imported under a different MF journal ID",
			})
		case errors.Is(err, models.ErrEmptyExternalID):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "MF journal ID is required",
			})
		case errors.Is(err, models.ErrIllegalTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Entry cannot be imported in its current status",
			})
		}
		h.logger.Error("Import confirmation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Import confirmation failed",
		})
	}

	return c.JSON(toMfJournalResponse(entry))
}

// CreateEntry records an authoritative double-entry ledger line.
func (h *JournalHandler) CreateEntry(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req dto.CreateJournalEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry date, expected YYYY-MM-DD",
		})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid amount",
		})
	}

	var reference *string
	if req.Reference != "" {
		reference = &req.Reference
	}

	entry, err := h.journal.CreateJournalEntry(c.Context(), tenant, entryDate,
		req.Description, req.DebitAccount, req.CreditAccount, amount, req.Currency, reference)
	if err != nil {
		h.logger.Error("Failed to create ledger entry", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create ledger entry",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toJournalEntryResponse(entry))
}

func (h *JournalHandler) GetEntry(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	entryID, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry ID",
		})
	}

	entry, err := h.journal.GetJournalEntry(c.Context(), tenant, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Entry not found",
			})
		}
		h.logger.Error("Failed to load ledger entry", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load ledger entry",
		})
	}

	return c.JSON(toJournalEntryResponse(entry))
}

func (h *JournalHandler) ListEntries(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse("2006-01-02", raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid from date, expected YYYY-MM-DD",
			})
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse("2006-01-02", raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid to date, expected YYYY-MM-DD",
			})
		}
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	entries, err := h.journal.ListJournalEntries(c.Context(), tenant, from, to, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list ledger entries", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list ledger entries",
		})
	}

	resp := make([]dto.JournalEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toJournalEntryResponse(e))
	}
	return c.JSON(resp)
}

func toMfJournalResponse(e *models.MfJournalEntry) dto.MfJournalEntryResponse {
	resp := dto.MfJournalEntryResponse{
		ID:                 e.ID.String(),
		TransactionDate:    e.TransactionDate.Format("2006-01-02"),
		TransactionType:    string(e.TransactionType),
		AccountSubject:     e.AccountSubject,
		MatchedAccountCode: derefStr(e.MatchedAccountCode),
		Vendor:             derefStr(e.Vendor),
		MatchedVendorCode:  derefStr(e.MatchedVendorCode),
		Description:        derefStr(e.Description),
		AccountBook:        e.AccountBook,
		TaxCategory:        e.TaxCategory,
		Memo:               derefStr(e.Memo),
		TagNames:           e.TagNames,
		CsvExported:        e.CsvExported,
		CsvExportedAt:      formatTimePtr(e.CsvExportedAt),
		MfImported:         e.MfImported,
		MfImportedAt:       formatTimePtr(e.MfImportedAt),
		MfJournalID:        derefStr(e.MfJournalID),
		Status:             string(e.Status),
		ErrorMessage:       derefStr(e.ErrorMessage),
		CreatedAt:          formatTime(e.CreatedAt),
	}
	if e.IncomeAmount != nil {
		resp.IncomeAmount = e.IncomeAmount.String()
	}
	if e.ExpenseAmount != nil {
		resp.ExpenseAmount = e.ExpenseAmount.String()
	}
	return resp
}

func toJournalEntryResponse(e *models.JournalEntry) dto.JournalEntryResponse {
	return dto.JournalEntryResponse{
		ID:            e.ID.String(),
		EntryDate:     e.EntryDate.Format("2006-01-02"),
		Description:   e.Description,
		DebitAccount:  e.DebitAccount,
		CreditAccount: e.CreditAccount,
		Amount:        e.Amount.String(),
		Currency:      e.Currency,
		Reference:     derefStr(e.Reference),
		CreatedAt:     formatTime(e.CreatedAt),
	}
}
