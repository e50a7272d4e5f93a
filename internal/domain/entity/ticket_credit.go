package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un ticket a favor del conductor.
const (
	TicketStatusPending  = "PENDING"
	TicketStatusApproved = "APPROVED"
	TicketStatusRejected = "REJECTED"
	TicketStatusApplied  = "APPLIED"
)

// TicketCredit es un crédito a favor del conductor (ej. peaje reembolsable,
// reparación asumida por la empresa). Solo los APPROVED son elegibles; al
// consumirse pasan a APPLIED con el periodo que los tomó.
type TicketCredit struct {
	ID          string
	DriverID    string
	Amount      decimal.Decimal
	Description string
	Status      string
	PeriodID    string // periodo consumidor; vacío hasta APPLIED
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
