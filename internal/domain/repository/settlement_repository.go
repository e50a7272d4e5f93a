package repository

import (
	"time"

	"github.com/tu-usuario/flota-pro/internal/domain/entity"
)

// SettlementRepository define el puerto de las liquidaciones de retiro.
type SettlementRepository interface {
	Create(s *entity.TerminationSettlement) error
	GetByID(id string) (*entity.TerminationSettlement, error)
	// Approve pasa DRAFT -> APPROVED de forma condicional (aprobar es terminal).
	// Devuelve false si ya estaba aprobada.
	Approve(id, actor string, at time.Time) (bool, error)
}
