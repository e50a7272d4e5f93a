package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/flota-pro/internal/application/billing"
	"github.com/tu-usuario/flota-pro/internal/application/dto"
)

// KmExcessHandler maneja las peticiones HTTP de excesos de kilometraje.
type KmExcessHandler struct {
	uc *billing.KmExcessUseCase
}

// NewKmExcessHandler construye el handler.
func NewKmExcessHandler(uc *billing.KmExcessUseCase) *KmExcessHandler {
	return &KmExcessHandler{uc: uc}
}

// Create tarifica y registra un exceso de odómetro.
// POST /api/km-excess
func (h *KmExcessHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateKmExcessRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Create(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Update retarifica un registro aún no facturado.
// PUT /api/km-excess/:id
func (h *KmExcessHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.CreateKmExcessRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Update(id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Delete elimina un registro aún no facturado.
// DELETE /api/km-excess/:id
func (h *KmExcessHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	if err := h.uc.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListByDriver devuelve el historial de excesos de un conductor.
// GET /api/drivers/:driverId/km-excess
func (h *KmExcessHandler) ListByDriver(c *fiber.Ctx) error {
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
