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

type RegistryHandler struct {
	registry *service.RegistryService
	logger   *zap.Logger
}

func NewRegistryHandler(registry *service.RegistryService, logger *zap.Logger) *RegistryHandler {
	return &RegistryHandler{
		registry: registry,
		logger:   logger,
	}
}

func (h *RegistryHandler) CreateAccount(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req dto.CreateAccountRequest
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

	account, err := h.registry.CreateAccount(c.Context(), tenant, req.Code, req.Name, req.AccountType)
	if err != nil {
		h.logger.Error("Failed to create account", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create account",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toAccountResponse(account))
}

func (h *RegistryHandler) ListAccounts(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	accounts, err := h.registry.ListAccounts(c.Context(), tenant)
	if err != nil {
		h.logger.Error("Failed to list accounts", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list accounts",
		})
	}

	resp := make([]dto.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, toAccountResponse(a))
	}
	return c.JSON(resp)
}

func (h *RegistryHandler) CreateVendor(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	var req dto.CreateVendorRequest
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

	vendor, err := h.registry.CreateVendor(c.Context(), tenant, req.Code, req.Name)
	if err != nil {
		h.logger.Error("Failed to create vendor", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create vendor",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toVendorResponse(vendor))
}

func (h *RegistryHandler) ListVendors(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}

	activeOnly := c.QueryBool("active", false)

	vendors, err := h.registry.ListVendors(c.Context(), tenant, activeOnly)
	if err != nil {
		h.logger.Error("Failed to list vendors", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list vendors",
		})
	}

	resp := make([]dto.VendorResponse, 0, len(vendors))
	for _, v := range vendors {
		resp = append(resp, toVendorResponse(v))
	}
	return c.JSON(resp)
}

// SetVendorActive flips a vendor in or out of the matching pool.
func (h *RegistryHandler) SetVendorActive(c *fiber.Ctx) error {
	tenant, err := tenantID(c)
	if err != nil {
		return err
	}
	vendorID, err := paramUUID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid vendor ID",
		})
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.registry.SetVendorActive(c.Context(), tenant, vendorID, req.Active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Vendor not found",
			})
		}
		h.logger.Error("Failed to update vendor", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update vendor",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func toAccountResponse(a *models.AccountMaster) dto.AccountResponse {
	return dto.AccountResponse{
		ID:          a.ID.String(),
		Code:        a.Code,
		Name:        a.Name,
		AccountType: a.AccountType,
		LastUsedAt:  formatTimePtr(a.LastUsedAt),
		CreatedAt:   formatTime(a.CreatedAt),
	}
}

func toVendorResponse(v *models.VendorMaster) dto.VendorResponse {
	return dto.VendorResponse{
		ID:         v.ID.String(),
		Code:       v.Code,
		Name:       v.Name,
		Active:     v.Active,
		LastUsedAt: formatTimePtr(v.LastUsedAt),
		CreatedAt:  formatTime(v.CreatedAt),
	}
}
