package repository

import (
	"time"

	"github.com/tu-usuario/flota-pro/internal/domain/entity"
)

// DriverWeekSource resuelve qué conductores son facturables en una semana y
// bajo qué modalidad y rango de fechas. Hay una implementación por estrategia
// (asignaciones vivas o tabla de control semanal), elegida por configuración.
type DriverWeekSource interface {
	EligibleDrivers(week, year int, periodStart, periodEnd time.Time) ([]*entity.DriverAssignment, error)
}

// DriverRepository define el puerto de lectura/escritura mínima del maestro de
// conductores (el CRUD completo vive en el back office).
type DriverRepository interface {
	GetByID(id string) (*entity.Driver, error)
	GetActiveAssignment(driverID string) (*entity.DriverAssignment, error)
	// Deactivate marca al conductor INACTIVE (aprobación de liquidación).
	Deactivate(driverID string) error
	// DeactivateAssignments cierra las asignaciones activas del conductor a la
	// fecha de corte.
	DeactivateAssignments(driverID string, endDate time.Time) error
}
