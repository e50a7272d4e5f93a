package repository

import "github.com/tu-usuario/flota-pro/internal/domain/entity"

// TicketCreditRepository define el puerto de los tickets a favor.
type TicketCreditRepository interface {
	Create(t *entity.TicketCredit) error
	GetByID(id string) (*entity.TicketCredit, error)
	// SetStatus cambia PENDING -> APPROVED/REJECTED de forma condicional;
	// devuelve false si el ticket no estaba PENDING.
	SetStatus(id, status string) (bool, error)
	ListApprovedByDriver(driverID string) ([]*entity.TicketCredit, error)
	ListByDriver(driverID string) ([]*entity.TicketCredit, error)
	// MarkApplied pasa APPROVED -> APPLIED estampando el periodo consumidor,
	// solo si seguía APPROVED. Devuelve si el flip ocurrió.
	MarkApplied(id, periodID string) (bool, error)
}
