package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la cuenta de garantía (depósito).
const (
	GuaranteeStatusInProgress = "IN_PROGRESS"
	GuaranteeStatusCompleted  = "COMPLETED"
)

// GuaranteeAccount acumula las cuotas semanales del depósito de garantía.
// Se crea en la primera semana facturable y se completa al alcanzar el objetivo.
type GuaranteeAccount struct {
	DriverID          string
	Modality          string
	TotalInstallments int
	InstallmentsPaid  int
	AmountPaid        decimal.Decimal
	Status            string
	UpdatedAt         time.Time
}

// Target devuelve el monto objetivo del depósito: cuotas totales × valor de cuota.
func (g *GuaranteeAccount) Target(quota decimal.Decimal) decimal.Decimal {
	return quota.Mul(decimal.NewFromInt(int64(g.TotalInstallments)))
}

// Completed indica si no deben generarse más cargos de garantía.
func (g *GuaranteeAccount) Completed() bool {
	return g.Status == GuaranteeStatusCompleted
}
