package handlers

import (
	"errors"

	"keiriflow/internal/dto"
	"keiriflow/internal/models"
	"keiriflow/internal/repository"
	"keiriflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReconciliationHandler struct {
	reconciliation *service.ReconciliationService
	logger         *zap.Logger
}

func NewReconciliationHandler(reconciliation *service.ReconciliationService, logger *zap.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliation: reconciliation,
		logger:         logger,
	}
}

func (h *ReconciliationHandler) Create(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req dto.CreateReconciliationRequest
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

	journalEntryID, err := uuid.Parse(req.JournalEntryID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid journal entry ID",
		})
	}
	var mfEntryID, chatFileID *uuid.UUID
	if req.MfJournalEntryID != "" {
		id, err := uuid.Parse(req.MfJournalEntryID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid MF journal entry ID",
			})
		}
		mfEntryID = &id
	}
	if req.ChatFileID != "" {
		id, err := uuid.Parse(req.ChatFileID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid chat file ID",
			})
		}
		chatFileID = &id
	}

	rec, err := h.reconciliation.Create(c.Context(), tenant, journalEntryID, mfEntryID, chatFileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Referenced entry not found",
			})
		}
		h.logger.Error("Failed to create reconciliation", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create reconciliation",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toReconciliationResponse(rec))
}

func (h *ReconciliationHandler) Get(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid reconciliation ID",
		})
	}

	rec, err := h.reconciliation.GetByID(c.Context(), tenant, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Reconciliation not found",
			})
		}
		h.logger.Error("Failed to load reconciliation", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load reconciliation",
		})
	}

	return c.JSON(toReconciliationResponse(rec))
}

func (h *ReconciliationHandler) List(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	status := models.ReconciliationStatus(c.Query("status"))
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	recs, err := h.reconciliation.List(c.Context(), tenant, status, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list reconciliations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list reconciliations",
		})
	}

	resp := make([]dto.ReconciliationResponse, 0, len(recs))
	for _, r := range recs {
		resp = append(resp, toReconciliationResponse(r))
	}
	return c.JSON(resp)
}

// Evaluate re-runs the agreement checks for a reconciliation.
func (h *ReconciliationHandler) Evaluate(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid reconciliation ID",
		})
	}

	rec, err := h.reconciliation.Evaluate(c.Context(), tenant, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Reconciliation not found",
			})
		case errors.Is(err, models.ErrIllegalTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Reconciliation cannot change status",
			})
		}
		h.logger.Error("Evaluation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Evaluation failed",
		})
	}

	return c.JSON(toReconciliationResponse(rec))
}

// Resolve closes a discrepancy with an operator note.
func (h *ReconciliationHandler) Resolve(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid reconciliation ID",
		})
	}

	var req dto.ResolveReconciliationRequest
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

	rec, err := h.reconciliation.Resolve(c.Context(), tenant, id, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Reconciliation not found",
			})
		case errors.Is(err, service.ErrEmptyNote):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Resolution note is required",
			})
		case errors.Is(err, service.ErrNotDiscrepancy):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Only discrepancy reconciliations can be resolved",
			})
		}
		h.logger.Error("Resolution failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Resolution failed",
		})
	}

	return c.JSON(toReconciliationResponse(rec))
}

func toReconciliationResponse(r *models.Reconciliation) dto.ReconciliationResponse {
	resp := dto.ReconciliationResponse{
		ID:             r.ID.String(),
		JournalEntryID: r.JournalEntryID.String(),
		Status:         string(r.Status),
		Notes:          derefStr(r.Notes),
		CreatedAt:      formatTime(r.CreatedAt),
		UpdatedAt:      formatTime(r.UpdatedAt),
	}
	if r.ChatFileID != nil {
		resp.ChatFileID = r.ChatFileID.String()
	}
	if r.MfJournalEntryID != nil {
		resp.MfJournalEntryID = r.MfJournalEntryID.String()
	}
	return resp
}
