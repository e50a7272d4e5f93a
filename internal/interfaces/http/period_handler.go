package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/flota-pro/internal/application/billing"
	"github.com/tu-usuario/flota-pro/internal/application/dto"
)

// PeriodHandler maneja las peticiones HTTP del ciclo de facturación semanal.
type PeriodHandler struct {
	gen     *billing.GeneratePeriodUseCase
	periods *billing.PeriodUseCase
}

// NewPeriodHandler construye el handler.
func NewPeriodHandler(gen *billing.GeneratePeriodUseCase, periods *billing.PeriodUseCase) *PeriodHandler {
	return &PeriodHandler{gen: gen, periods: periods}
}

// Generate corre la facturación de una semana y confirma al libro de saldos.
// POST /api/billing/periods/generate
func (h *PeriodHandler) Generate(c *fiber.Ctx) error {
	var in dto.PeriodRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	report, err := h.gen.Generate(c.Context(), in.Week, in.Year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// Preview proyecta la semana sin persistir nada.
// POST /api/billing/periods/preview
func (h *PeriodHandler) Preview(c *fiber.Ctx) error {
	var in dto.PeriodRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.gen.Preview(c.Context(), in.Week, in.Year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// GetByWeek devuelve la cabecera del periodo de una semana.
// GET /api/billing/periods/:year/:week
func (h *PeriodHandler) GetByWeek(c *fiber.Ctx) error {
	year, err := c.ParamsInt("year")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "año inválido"})
	}
	week, err := c.ParamsInt("week")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "semana inválida"})
	}
	resp, err := h.periods.GetByWeek(week, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Lines devuelve las facturas del periodo con sus detalles.
// GET /api/billing/periods/:id/lines
func (h *PeriodHandler) Lines(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	lines, err := h.periods.Lines(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lines)
}

// Close cierra un periodo OPEN.
// POST /api/billing/periods/:id/close
func (h *PeriodHandler) Close(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	resp, err := h.periods.Close(id, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Reopen reabre un periodo CLOSED para correcciones.
// POST /api/billing/periods/:id/reopen
func (h *PeriodHandler) Reopen(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	resp, err := h.periods.Reopen(id, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
