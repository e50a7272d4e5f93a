package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/flota-pro/internal/application/billing"
	"github.com/tu-usuario/flota-pro/internal/application/dto"
)

// TariffHandler maneja las peticiones HTTP del catálogo de tarifas.
type TariffHandler struct {
	uc *billing.TariffUseCase
}

// NewTariffHandler construye el handler.
func NewTariffHandler(uc *billing.TariffUseCase) *TariffHandler {
	return &TariffHandler{uc: uc}
}

// ListConcepts devuelve el catálogo de conceptos tarifados.
// GET /api/tariffs/concepts
func (h *TariffHandler) ListConcepts(c *fiber.Ctx) error {
	concepts, err := h.uc.ListConcepts()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(concepts)
}

// UpsertConcept crea o actualiza un concepto tarifado.
// PUT /api/tariffs/concepts
func (h *TariffHandler) UpsertConcept(c *fiber.Ctx) error {
	var in dto.TariffConceptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.UpsertConcept(in, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListTiers devuelve la tabla de bandas de exceso de km.
// GET /api/tariffs/km-tiers
func (h *TariffHandler) ListTiers(c *fiber.Ctx) error {
	tiers, err := h.uc.ListTiers()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tiers)
}

// ReplaceTiers reemplaza la tabla de bandas completa.
// PUT /api/tariffs/km-tiers
func (h *TariffHandler) ReplaceTiers(c *fiber.Ctx) error {
	var in []dto.KmTierRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.ReplaceTiers(in, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
