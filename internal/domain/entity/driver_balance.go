package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de saldo.
const (
	MovementCharge = "CARGO" // aumenta la deuda
	MovementCredit = "ABONO" // disminuye la deuda
)

// DriverBalance es la cabecera del libro de saldos: una fila por conductor.
// CurrentBalance positivo = deuda del conductor; negativo = saldo a favor.
// Debe ser siempre igual a la suma con signo de sus BalanceMovement.
type DriverBalance struct {
	DriverID          string
	CurrentBalance    decimal.Decimal
	MoraDays          int
	AccruedMoraAmount decimal.Decimal
	UpdatedAt         time.Time
}

// BalanceMovement es el rastro auditable, solo-inserción, de cada variación de saldo.
type BalanceMovement struct {
	ID         string
	DriverID   string
	Type       string // MovementCharge | MovementCredit
	Amount     decimal.Decimal
	Concept    string
	Reference  string // ej. ID de la factura o liquidación que lo originó
	WeekNumber *int
	Year       *int
	OccurredAt time.Time
}

// Signed devuelve el monto con signo según el tipo de movimiento.
func (m *BalanceMovement) Signed() decimal.Decimal {
	if m.Type == MovementCredit {
		return m.Amount.Neg()
	}
	return m.Amount
}
