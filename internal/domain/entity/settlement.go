package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una liquidación de retiro.
const (
	SettlementStatusDraft    = "DRAFT"
	SettlementStatusApproved = "APPROVED"
)

// TerminationSettlement (liquidación) es la corrida única de facturación al
// retiro de un conductor: misma aritmética que la factura semanal pero con
// ventana hasta una fecha de corte arbitraria, más la devolución de garantía.
// Aprobarla es terminal: desactiva al conductor y no es reversible.
type TerminationSettlement struct {
	ID              string
	DriverID        string
	PeriodID        string // periodo de la semana del corte, si existe
	CutoffDate      time.Time
	Modality        string
	DaysBilled      int
	RentAmount      decimal.Decimal
	GuaranteeAmount decimal.Decimal
	KmExcessAmount  decimal.Decimal
	Credits         decimal.Decimal
	PriorBalance    decimal.Decimal
	MoraAmount      decimal.Decimal
	TotalDue        decimal.Decimal
	GuaranteeRefund decimal.Decimal
	Status          string
	ApprovedAt      *time.Time
	ApprovedBy      string
	CreatedAt       time.Time
}
