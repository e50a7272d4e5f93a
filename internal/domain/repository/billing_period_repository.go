package repository

import (
	"time"

	"github.com/tu-usuario/flota-pro/internal/domain/entity"
)

// BillingPeriodRepository define el puerto de persistencia del periodo semanal.
// El campo status es la única compuerta de concurrencia de la generación:
// CreateProcessing y TryMarkProcessing son test-and-set atómicos en DB.
type BillingPeriodRepository interface {
	GetByID(id string) (*entity.BillingPeriod, error)
	GetByWeekYear(week, year int) (*entity.BillingPeriod, error)
	// CreateProcessing inserta el periodo en PROCESSING si no existe la fila
	// (week, year). Devuelve false si otra corrida ya la creó.
	CreateProcessing(p *entity.BillingPeriod) (bool, error)
	// TryMarkProcessing pasa OPEN -> PROCESSING de forma condicional.
	// Devuelve false si el periodo no estaba OPEN (ya bloqueado o cerrado).
	TryMarkProcessing(id string) (bool, error)
	// MarkOpen finaliza la corrida: status OPEN y totales del periodo.
	MarkOpen(p *entity.BillingPeriod) error
	// Close pasa OPEN -> CLOSED estampando actor y fecha. Devuelve false si no
	// estaba OPEN.
	Close(id, actor string, at time.Time) (bool, error)
	// Reopen pasa CLOSED -> OPEN limpiando actor y fecha. Devuelve false si no
	// estaba CLOSED.
	Reopen(id string) (bool, error)
}
