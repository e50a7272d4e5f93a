package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/flota-pro/internal/application/dto"
	"github.com/tu-usuario/flota-pro/internal/domain"
)

// respondError traduce los errores de dominio a respuestas HTTP uniformes.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrPeriodLocked):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PERIOD_LOCKED", Message: "el periodo está siendo procesado por otra corrida"})
	case errors.Is(err, domain.ErrPeriodClosed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PERIOD_CLOSED", Message: "el periodo está cerrado; reabrir antes de regenerar"})
	case errors.Is(err, domain.ErrRecordApplied):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RECORD_APPLIED", Message: "el registro ya fue facturado y es inmutable"})
	case errors.Is(err, domain.ErrSettlementApproved):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SETTLEMENT_APPROVED", Message: "la liquidación ya fue aprobada"})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrTariffUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "TARIFF_UNAVAILABLE", Message: "catálogo de tarifas no disponible"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
