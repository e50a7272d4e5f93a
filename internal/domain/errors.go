package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrPeriodLocked       = errors.New("el periodo está en procesamiento")
	ErrPeriodClosed       = errors.New("el periodo está cerrado")
	ErrRecordApplied      = errors.New("el registro ya fue aplicado en una factura")
	ErrTariffUnavailable  = errors.New("catálogo de tarifas no disponible")
	ErrSettlementApproved = errors.New("la liquidación ya fue aprobada")
)
