package repository

import "github.com/tu-usuario/flota-pro/internal/domain/entity"

// KmExcessRepository define el puerto de los registros de exceso de km.
// MarkApplied es condicional (WHERE applied = false) para cerrar la carrera de
// consumo doble: si devuelve false, otro proceso ya lo facturó y se omite.
type KmExcessRepository interface {
	Create(rec *entity.KmExcessRecord) error
	GetByID(id string) (*entity.KmExcessRecord, error)
	// Update rechaza registros ya aplicados (domain.ErrRecordApplied en el caso de uso).
	Update(rec *entity.KmExcessRecord) error
	// Delete borra solo si applied = false; devuelve false si no borró.
	Delete(id string) (bool, error)
	ListUnappliedByDriver(driverID string) ([]*entity.KmExcessRecord, error)
	ListByDriver(driverID string) ([]*entity.KmExcessRecord, error)
	// MarkApplied fija applied = true y el periodo consumidor, solo si seguía
	// sin aplicar. Devuelve si el flip ocurrió.
	MarkApplied(id, periodID string) (bool, error)
}
