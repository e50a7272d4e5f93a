package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
)

var _ repository.DriverRepository = (*DriverRepo)(nil)

// DriverRepo implementación de DriverRepository sobre PostgreSQL.
type DriverRepo struct {
	q Querier
}

// NewDriverRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDriverRepository(q Querier) *DriverRepo {
	return &DriverRepo{q: q}
}

// GetByID obtiene un conductor por ID, nil si no existe.
func (r *DriverRepo) GetByID(id string) (*entity.Driver, error) {
	query := `
		SELECT id, name, document, status, created_at, updated_at
		FROM drivers WHERE id = $1`
	var d entity.Driver
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&d.ID, &d.Name, &d.Document, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get driver: %w", err)
	}
	return &d, nil
}

// GetActiveAssignment obtiene la asignación activa del conductor, nil si no tiene.
func (r *DriverRepo) GetActiveAssignment(driverID string) (*entity.DriverAssignment, error) {
	query := `
		SELECT id, driver_id, vehicle_plate, COALESCE(modality, ''), start_date, end_date, active
		FROM driver_assignments
		WHERE driver_id = $1 AND active = true
		ORDER BY start_date DESC
		LIMIT 1`
	var a entity.DriverAssignment
	err := r.q.QueryRow(context.Background(), query, driverID).Scan(
		&a.ID, &a.DriverID, &a.VehiclePlate, &a.Modality, &a.StartDate, &a.EndDate, &a.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}

// Deactivate marca al conductor INACTIVE.
func (r *DriverRepo) Deactivate(driverID string) error {
	query := `UPDATE drivers SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, driverID, entity.DriverStatusInactive)
	if err != nil {
		return fmt.Errorf("deactivate driver: %w", err)
	}
	return nil
}

// DeactivateAssignments cierra las asignaciones activas del conductor a la fecha de corte.
func (r *DriverRepo) DeactivateAssignments(driverID string, endDate time.Time) error {
	query := `
		UPDATE driver_assignments SET active = false, end_date = $2
		WHERE driver_id = $1 AND active = true`
	_, err := r.q.Exec(context.Background(), query, driverID, endDate)
	if err != nil {
		return fmt.Errorf("deactivate assignments: %w", err)
	}
	return nil
}

var _ repository.DriverWeekSource = (*AssignmentWeekSource)(nil)
var _ repository.DriverWeekSource = (*RosterWeekSource)(nil)

// AssignmentWeekSource lista conductores facturables desde las asignaciones
// conductor-vehículo: toda asignación cuyo rango intersecta la semana.
type AssignmentWeekSource struct {
	q Querier
}

// NewAssignmentWeekSource construye la fuente por asignaciones.
func NewAssignmentWeekSource(q Querier) *AssignmentWeekSource {
	return &AssignmentWeekSource{q: q}
}

// EligibleDrivers devuelve las asignaciones que intersectan la ventana del periodo.
func (s *AssignmentWeekSource) EligibleDrivers(week, year int, periodStart, periodEnd time.Time) ([]*entity.DriverAssignment, error) {
	query := `
		SELECT a.id, a.driver_id, a.vehicle_plate, COALESCE(a.modality, ''), a.start_date, a.end_date, a.active
		FROM driver_assignments a
		JOIN drivers d ON d.id = a.driver_id
		WHERE d.status = $3
		  AND (a.start_date IS NULL OR a.start_date <= $2)
		  AND (a.end_date IS NULL OR a.end_date >= $1)
		ORDER BY a.driver_id`
	rows, err := s.q.Query(context.Background(), query, periodStart, periodEnd, entity.DriverStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list eligible assignments: %w", err)
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// RosterWeekSource lista conductores facturables desde la tabla de control
// semanal: la planeación carga explícitamente quién factura cada semana.
type RosterWeekSource struct {
	q Querier
}

// NewRosterWeekSource construye la fuente por tabla de control.
func NewRosterWeekSource(q Querier) *RosterWeekSource {
	return &RosterWeekSource{q: q}
}

// EligibleDrivers devuelve las filas de la tabla de control de la semana.
func (s *RosterWeekSource) EligibleDrivers(week, year int, periodStart, periodEnd time.Time) ([]*entity.DriverAssignment, error) {
	query := `
		SELECT r.id, r.driver_id, r.vehicle_plate, COALESCE(r.modality, ''), r.start_date, r.end_date, true
		FROM weekly_roster r
		WHERE r.week_number = $1 AND r.year = $2
		ORDER BY r.driver_id`
	rows, err := s.q.Query(context.Background(), query, week, year)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	defer rows.Close()
	return scanAssignments(rows)
}

func scanAssignments(rows pgx.Rows) ([]*entity.DriverAssignment, error) {
	var out []*entity.DriverAssignment
	for rows.Next() {
		var a entity.DriverAssignment
		err := rows.Scan(&a.ID, &a.DriverID, &a.VehiclePlate, &a.Modality, &a.StartDate, &a.EndDate, &a.Active)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
