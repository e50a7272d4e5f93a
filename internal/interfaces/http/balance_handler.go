package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/flota-pro/internal/application/billing"
	"github.com/tu-usuario/flota-pro/internal/application/dto"
)

// BalanceHandler maneja las peticiones HTTP del libro de saldos.
type BalanceHandler struct {
	uc *billing.BalanceUseCase
}

// NewBalanceHandler construye el handler.
func NewBalanceHandler(uc *billing.BalanceUseCase) *BalanceHandler {
	return &BalanceHandler{uc: uc}
}

// Get devuelve el saldo corriente de un conductor.
// GET /api/drivers/:driverId/balance
func (h *BalanceHandler) Get(c *fiber.Ctx) error {
	driverID := c.Params("driverId")
	if driverID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "driverId requerido"})
	}
	resp, err := h.uc.Get(driverID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Movements devuelve el rastro de movimientos de un conductor.
// GET /api/drivers/:driverId/balance/movements
func (h *BalanceHandler) Movements(c *fiber.Ctx) error {
	driverID := c.Params("driverId")
	if driverID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "driverId requerido"})
	}
	resp, err := h.uc.Movements(driverID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Adjust aplica un ajuste manual (cargo o abono) al saldo.
// POST /api/drivers/:driverId/balance/adjustments
func (h *BalanceHandler) Adjust(c *fiber.Ctx) error {
	driverID := c.Params("driverId")
	if driverID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "driverId requerido"})
	}
	var in dto.CreateAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.Adjust(c.Context(), driverID, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
