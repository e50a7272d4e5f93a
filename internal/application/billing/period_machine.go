package billing

import (
	"github.com/qmuntal/stateless"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
)

// Disparadores del ciclo de vida del periodo.
const (
	triggerGenerate = "GENERATE" // inicia una corrida (o recálculo)
	triggerFinish   = "FINISH"   // corrida terminada
	triggerClose    = "CLOSE"
	triggerReopen   = "REOPEN"
)

// newPeriodMachine modela las transiciones legales del periodo:
//
//	NOT_GENERATED -> PROCESSING -> OPEN <-> CLOSED
//	            OPEN -> PROCESSING (recálculo)
//
// La máquina decide qué es legal; la atomicidad del candado la da el
// test-and-set condicional sobre billing_periods.status en la DB.
func newPeriodMachine(status string) *stateless.StateMachine {
	m := stateless.NewStateMachine(status)
	m.Configure(entity.PeriodStatusNotGenerated).
		Permit(triggerGenerate, entity.PeriodStatusProcessing)
	m.Configure(entity.PeriodStatusProcessing).
		Permit(triggerFinish, entity.PeriodStatusOpen)
	m.Configure(entity.PeriodStatusOpen).
		Permit(triggerGenerate, entity.PeriodStatusProcessing).
		Permit(triggerClose, entity.PeriodStatusClosed)
	m.Configure(entity.PeriodStatusClosed).
		Permit(triggerReopen, entity.PeriodStatusOpen)
	return m
}

func canFire(status, trigger string) bool {
	ok, err := newPeriodMachine(status).CanFire(trigger)
	return err == nil && ok
}

// CanGenerate indica si un periodo en el estado dado admite (re)generación.
// Desde CLOSED se exige reabrir primero; desde PROCESSING queda bloqueado.
func CanGenerate(status string) bool { return canFire(status, triggerGenerate) }

// CanClose indica si el periodo puede cerrarse.
func CanClose(status string) bool { return canFire(status, triggerClose) }

// CanReopen indica si el periodo puede reabrirse.
func CanReopen(status string) bool { return canFire(status, triggerReopen) }
