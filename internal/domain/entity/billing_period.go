package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del periodo de facturación semanal.
// NOT_GENERATED es sintético: no existe fila hasta la primera generación.
const (
	PeriodStatusNotGenerated = "NOT_GENERATED"
	PeriodStatusProcessing   = "PROCESSING"
	PeriodStatusOpen         = "OPEN"
	PeriodStatusClosed       = "CLOSED"
)

// BillingPeriod representa el ciclo de facturación de una semana calendario.
// Único por (week_number, year); creado perezosamente en la primera corrida.
type BillingPeriod struct {
	ID           string
	WeekNumber   int
	Year         int
	StartDate    time.Time // lunes
	EndDate      time.Time // domingo
	Status       string
	DriverCount  int
	TotalCharges decimal.Decimal
	TotalCredits decimal.Decimal
	TotalNet     decimal.Decimal
	ClosedAt     *time.Time
	ClosedBy     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsClosed indica si el periodo está cerrado (sus facturas son inmutables).
func (p *BillingPeriod) IsClosed() bool {
	return p.Status == PeriodStatusClosed
}
