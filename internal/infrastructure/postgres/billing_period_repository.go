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

var _ repository.BillingPeriodRepository = (*BillingPeriodRepo)(nil)

// BillingPeriodRepo implementación de BillingPeriodRepository sobre PostgreSQL.
// Las transiciones de status son UPDATEs condicionales: la fila es la compuerta
// de concurrencia de la corrida.
type BillingPeriodRepo struct {
	q Querier
}

// NewBillingPeriodRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillingPeriodRepository(q Querier) *BillingPeriodRepo {
	return &BillingPeriodRepo{q: q}
}

const periodColumns = `
	id, week_number, year, start_date, end_date, status,
	driver_count, total_charges, total_credits, total_net,
	closed_at, closed_by, created_at, updated_at`

func scanPeriod(row pgx.Row) (*entity.BillingPeriod, error) {
	var p entity.BillingPeriod
	var closedBy *string
	err := row.Scan(
		&p.ID, &p.WeekNumber, &p.Year, &p.StartDate, &p.EndDate, &p.Status,
		&p.DriverCount, &p.TotalCharges, &p.TotalCredits, &p.TotalNet,
		&p.ClosedAt, &closedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if closedBy != nil {
		p.ClosedBy = *closedBy
	}
	return &p, nil
}

// GetByID obtiene un periodo por ID, nil si no existe.
func (r *BillingPeriodRepo) GetByID(id string) (*entity.BillingPeriod, error) {
	query := `SELECT` + periodColumns + ` FROM billing_periods WHERE id = $1`
	p, err := scanPeriod(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get period: %w", err)
	}
	return p, nil
}

// GetByWeekYear obtiene el periodo de una semana, nil si nunca se ha generado.
func (r *BillingPeriodRepo) GetByWeekYear(week, year int) (*entity.BillingPeriod, error) {
	query := `SELECT` + periodColumns + ` FROM billing_periods WHERE week_number = $1 AND year = $2`
	p, err := scanPeriod(r.q.QueryRow(context.Background(), query, week, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get period by week: %w", err)
	}
	return p, nil
}

// CreateProcessing inserta el periodo en PROCESSING; la restricción única de
// (week_number, year) decide el ganador cuando dos corridas llegan a la vez.
func (r *BillingPeriodRepo) CreateProcessing(p *entity.BillingPeriod) (bool, error) {
	query := `
		INSERT INTO billing_periods (id, week_number, year, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (week_number, year) DO NOTHING`
	tag, err := r.q.Exec(context.Background(), query,
		p.ID, p.WeekNumber, p.Year, p.StartDate, p.EndDate, entity.PeriodStatusProcessing)
	if err != nil {
		return false, fmt.Errorf("create period: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// TryMarkProcessing pasa OPEN -> PROCESSING de forma condicional.
func (r *BillingPeriodRepo) TryMarkProcessing(id string) (bool, error) {
	query := `
		UPDATE billing_periods SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`
	tag, err := r.q.Exec(context.Background(), query,
		id, entity.PeriodStatusProcessing, entity.PeriodStatusOpen)
	if err != nil {
		return false, fmt.Errorf("lock period: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkOpen finaliza la corrida: deja el periodo OPEN con sus totales.
func (r *BillingPeriodRepo) MarkOpen(p *entity.BillingPeriod) error {
	query := `
		UPDATE billing_periods
		SET status = $2, driver_count = $3, total_charges = $4,
		    total_credits = $5, total_net = $6, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, entity.PeriodStatusOpen, p.DriverCount, p.TotalCharges, p.TotalCredits, p.TotalNet)
	if err != nil {
		return fmt.Errorf("open period: %w", err)
	}
	return nil
}

// Close pasa OPEN -> CLOSED estampando actor y fecha.
func (r *BillingPeriodRepo) Close(id, actor string, at time.Time) (bool, error) {
	query := `
		UPDATE billing_periods
		SET status = $2, closed_at = $3, closed_by = $4, updated_at = now()
		WHERE id = $1 AND status = $5`
	tag, err := r.q.Exec(context.Background(), query,
		id, entity.PeriodStatusClosed, at, actor, entity.PeriodStatusOpen)
	if err != nil {
		return false, fmt.Errorf("close period: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Reopen pasa CLOSED -> OPEN limpiando actor y fecha de cierre.
func (r *BillingPeriodRepo) Reopen(id string) (bool, error) {
	query := `
		UPDATE billing_periods
		SET status = $2, closed_at = NULL, closed_by = NULL, updated_at = now()
		WHERE id = $1 AND status = $3`
	tag, err := r.q.Exec(context.Background(), query,
		id, entity.PeriodStatusOpen, entity.PeriodStatusClosed)
	if err != nil {
		return false, fmt.Errorf("reopen period: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
