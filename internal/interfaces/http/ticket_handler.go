package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/flota-pro/internal/application/billing"
	"github.com/tu-usuario/flota-pro/internal/application/dto"
)

// TicketHandler maneja las peticiones HTTP de tickets a favor.
type TicketHandler struct {
	uc *billing.TicketUseCase
}

// NewTicketHandler construye el handler.
func NewTicketHandler(uc *billing.TicketUseCase) *TicketHandler {
	return &TicketHandler{uc: uc}
}

// Create registra un ticket en revisión.
// POST /api/tickets
func (h *TicketHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTicketRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Create(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Approve aprueba un ticket pendiente.
// POST /api/tickets/:id/approve
func (h *TicketHandler) Approve(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	resp, err := h.uc.Approve(id, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Reject rechaza un ticket pendiente.
// POST /api/tickets/:id/reject
func (h *TicketHandler) Reject(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	resp, err := h.uc.Reject(id, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListByDriver devuelve el historial de tickets de un conductor.
// GET /api/drivers/:driverId/tickets
func (h *TicketHandler) ListByDriver(c *fiber.Ctx) error {
	driverID := c.Params("driverId")
	if driverID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "driverId requerido"})
	}
	resp, err := h.uc.ListByDriver(driverID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
