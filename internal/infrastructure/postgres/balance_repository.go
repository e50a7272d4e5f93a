package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// GetByDriver obtiene la cabecera de saldo del conductor, nil si no existe.
func (r *BalanceRepo) GetByDriver(driverID string) (*entity.DriverBalance, error) {
	query := `
		SELECT driver_id, current_balance, mora_days, accrued_mora_amount, updated_at
		FROM driver_balances WHERE driver_id = $1`
	var b entity.DriverBalance
	err := r.q.QueryRow(context.Background(), query, driverID).Scan(
		&b.DriverID, &b.CurrentBalance, &b.MoraDays, &b.AccruedMoraAmount, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// Upsert inserta o actualiza la cabecera de saldo.
func (r *BalanceRepo) Upsert(b *entity.DriverBalance) error {
	query := `
		INSERT INTO driver_balances (driver_id, current_balance, mora_days, accrued_mora_amount, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (driver_id)
		DO UPDATE SET current_balance = EXCLUDED.current_balance,
		              mora_days = EXCLUDED.mora_days,
		              accrued_mora_amount = EXCLUDED.accrued_mora_amount,
		              updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		b.DriverID, b.CurrentBalance, b.MoraDays, b.AccruedMoraAmount)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// AppendMovement agrega un movimiento al rastro auditable (solo inserción).
func (r *BalanceRepo) AppendMovement(m *entity.BalanceMovement) error {
	query := `
		INSERT INTO balance_movements
			(id, driver_id, type, amount, concept, reference, week_number, year, occurred_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.DriverID, m.Type, m.Amount, m.Concept, m.Reference, m.WeekNumber, m.Year, m.OccurredAt)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// ListMovements lista los movimientos del conductor del más reciente al más antiguo.
func (r *BalanceRepo) ListMovements(driverID string) ([]*entity.BalanceMovement, error) {
	query := `
		SELECT id, driver_id, type, amount, concept, COALESCE(reference, ''), week_number, year, occurred_at
		FROM balance_movements WHERE driver_id = $1 ORDER BY occurred_at DESC`
	rows, err := r.q.Query(context.Background(), query, driverID)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.BalanceMovement
	for rows.Next() {
		var m entity.BalanceMovement
		err := rows.Scan(&m.ID, &m.DriverID, &m.Type, &m.Amount, &m.Concept, &m.Reference,
			&m.WeekNumber, &m.Year, &m.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
