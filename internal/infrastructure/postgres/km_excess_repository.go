package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
)

var _ repository.KmExcessRepository = (*KmExcessRepo)(nil)

// KmExcessRepo implementación de KmExcessRepository sobre PostgreSQL.
type KmExcessRepo struct {
	q Querier
}

// NewKmExcessRepository construye el adaptador. Pasar pool o tx (Querier).
func NewKmExcessRepository(q Querier) *KmExcessRepo {
	return &KmExcessRepo{q: q}
}

const kmColumns = `
	id, driver_id, COALESCE(period_id::text, ''), km_over, bracket, percentage,
	base_amount, tax_amount, total_amount, applied, created_at, updated_at`

func scanKmRecord(row pgx.Row) (*entity.KmExcessRecord, error) {
	var rec entity.KmExcessRecord
	err := row.Scan(
		&rec.ID, &rec.DriverID, &rec.PeriodID, &rec.KmOver, &rec.Bracket, &rec.Percentage,
		&rec.BaseAmount, &rec.TaxAmount, &rec.TotalAmount, &rec.Applied, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserta un registro ya tarificado.
func (r *KmExcessRepo) Create(rec *entity.KmExcessRecord) error {
	query := `
		INSERT INTO km_excess_records
			(id, driver_id, km_over, bracket, percentage, base_amount, tax_amount, total_amount, applied, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, now(), now())`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.DriverID, rec.KmOver, rec.Bracket, rec.Percentage,
		rec.BaseAmount, rec.TaxAmount, rec.TotalAmount)
	if err != nil {
		return fmt.Errorf("create km excess: %w", err)
	}
	return nil
}

// GetByID obtiene un registro por ID, nil si no existe.
func (r *KmExcessRepo) GetByID(id string) (*entity.KmExcessRecord, error) {
	query := `SELECT` + kmColumns + ` FROM km_excess_records WHERE id = $1`
	rec, err := scanKmRecord(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get km excess: %w", err)
	}
	return rec, nil
}

// Update retarifica un registro sin aplicar.
func (r *KmExcessRepo) Update(rec *entity.KmExcessRecord) error {
	query := `
		UPDATE km_excess_records
		SET km_over = $2, bracket = $3, percentage = $4, base_amount = $5,
		    tax_amount = $6, total_amount = $7, updated_at = now()
		WHERE id = $1 AND applied = false`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.KmOver, rec.Bracket, rec.Percentage, rec.BaseAmount, rec.TaxAmount, rec.TotalAmount)
	if err != nil {
		return fmt.Errorf("update km excess: %w", err)
	}
	return nil
}

// Delete borra solo registros sin aplicar; devuelve si borró.
func (r *KmExcessRepo) Delete(id string) (bool, error) {
	tag, err := r.q.Exec(context.Background(),
		`DELETE FROM km_excess_records WHERE id = $1 AND applied = false`, id)
	if err != nil {
		return false, fmt.Errorf("delete km excess: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListUnappliedByDriver lista los registros facturables del conductor.
func (r *KmExcessRepo) ListUnappliedByDriver(driverID string) ([]*entity.KmExcessRecord, error) {
	query := `SELECT` + kmColumns + ` FROM km_excess_records
		WHERE driver_id = $1 AND applied = false ORDER BY created_at`
	return r.list(query, driverID)
}

// ListByDriver lista el historial completo del conductor.
func (r *KmExcessRepo) ListByDriver(driverID string) ([]*entity.KmExcessRecord, error) {
	query := `SELECT` + kmColumns + ` FROM km_excess_records
		WHERE driver_id = $1 ORDER BY created_at`
	return r.list(query, driverID)
}

func (r *KmExcessRepo) list(query, driverID string) ([]*entity.KmExcessRecord, error) {
	rows, err := r.q.Query(context.Background(), query, driverID)
	if err != nil {
		return nil, fmt.Errorf("list km excess: %w", err)
	}
	defer rows.Close()

	var out []*entity.KmExcessRecord
	for rows.Next() {
		rec, err := scanKmRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan km excess: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkApplied fija applied y el periodo consumidor solo si seguía sin aplicar.
func (r *KmExcessRepo) MarkApplied(id, periodID string) (bool, error) {
	query := `
		UPDATE km_excess_records
		SET applied = true, period_id = NULLIF($2, '')::uuid, updated_at = now()
		WHERE id = $1 AND applied = false`
	tag, err := r.q.Exec(context.Background(), query, id, periodID)
	if err != nil {
		return false, fmt.Errorf("mark km excess applied: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
