package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/flota-pro/internal/application/billing"
	"github.com/tu-usuario/flota-pro/internal/application/dto"
)

// SettlementHandler maneja las peticiones HTTP de liquidaciones de retiro.
type SettlementHandler struct {
	uc *billing.SettlementUseCase
}

// NewSettlementHandler construye el handler.
func NewSettlementHandler(uc *billing.SettlementUseCase) *SettlementHandler {
	return &SettlementHandler{uc: uc}
}

// Create calcula y guarda la liquidación en borrador.
// POST /api/settlements
func (h *SettlementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSettlementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Create(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID obtiene una liquidación.
// GET /api/settlements/:id
func (h *SettlementHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	resp, err := h.uc.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Approve confirma la liquidación; la operación es terminal.
// POST /api/settlements/:id/approve
func (h *SettlementHandler) Approve(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	resp, err := h.uc.Approve(c.Context(), id, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
