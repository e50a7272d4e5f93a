package entity

import "time"

// Estados de un conductor.
const (
	DriverStatusActive   = "ACTIVE"
	DriverStatusInactive = "INACTIVE"
)

// Driver representa un conductor de la flota (modelo mínimo de lectura;
// el maestro de conductores vive en el back office).
type Driver struct {
	ID        string
	Name      string
	Document  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DriverAssignment es la asignación vigente conductor-vehículo, fuente de
// verdad de qué conductor es facturable y bajo qué modalidad.
type DriverAssignment struct {
	ID           string
	DriverID     string
	VehiclePlate string
	Modality     string // ModalityFixedFee | ModalityShiftBased | "" (requiere revisión)
	StartDate    *time.Time
	EndDate      *time.Time
	Active       bool
}

// RosterEntry es la fila de la tabla de control semanal (estrategia alterna
// de selección de conductores facturables).
type RosterEntry struct {
	ID           string
	WeekNumber   int
	Year         int
	DriverID     string
	VehiclePlate string
	Modality     string
	StartDate    *time.Time
	EndDate      *time.Time
}
