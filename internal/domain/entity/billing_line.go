package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modalidades de renta de un conductor.
const (
	ModalityFixedFee   = "FIXED_FEE"   // tarifa semanal fija
	ModalityShiftBased = "SHIFT_BASED" // por turnos
)

// Estados de una factura de conductor.
const (
	BillingLineStatusGenerated = "GENERATED"
	BillingLineStatusSettled   = "SETTLED" // proviene de una liquidación
)

// BillingLine es la factura semanal de un conductor (cabecera).
// Única por (period_id, driver_id); la regeneración borra y reinserta.
type BillingLine struct {
	ID              string
	PeriodID        string
	DriverID        string
	Modality        string
	DaysBilled      int             // 0..7
	ProratedFactor  decimal.Decimal // DaysBilled / 7
	RentAmount      decimal.Decimal
	GuaranteeAmount decimal.Decimal
	KmExcessAmount  decimal.Decimal
	GrossCharges    decimal.Decimal
	Credits         decimal.Decimal
	NetCharges      decimal.Decimal // GrossCharges - Credits
	PriorBalance    decimal.Decimal
	MoraDays        int
	MoraAmount      decimal.Decimal
	TotalDue        decimal.Decimal // NetCharges + PriorBalance + MoraAmount
	Estimated       bool            // algún concepto se calculó con tarifa de respaldo
	NeedsReview     bool            // modalidad ausente, se asumió la más económica
	Status          string
	CreatedAt       time.Time
}
