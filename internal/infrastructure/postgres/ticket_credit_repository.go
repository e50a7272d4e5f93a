package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
)

var _ repository.TicketCreditRepository = (*TicketCreditRepo)(nil)

// TicketCreditRepo implementación de TicketCreditRepository sobre PostgreSQL.
type TicketCreditRepo struct {
	q Querier
}

// NewTicketCreditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTicketCreditRepository(q Querier) *TicketCreditRepo {
	return &TicketCreditRepo{q: q}
}

const ticketColumns = `
	id, driver_id, amount, description, status, COALESCE(period_id::text, ''), created_at, updated_at`

func scanTicket(row pgx.Row) (*entity.TicketCredit, error) {
	var t entity.TicketCredit
	err := row.Scan(
		&t.ID, &t.DriverID, &t.Amount, &t.Description, &t.Status, &t.PeriodID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserta un ticket en PENDING.
func (r *TicketCreditRepo) Create(t *entity.TicketCredit) error {
	query := `
		INSERT INTO ticket_credits (id, driver_id, amount, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.DriverID, t.Amount, t.Description, t.Status)
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

// GetByID obtiene un ticket por ID, nil si no existe.
func (r *TicketCreditRepo) GetByID(id string) (*entity.TicketCredit, error) {
	query := `SELECT` + ticketColumns + ` FROM ticket_credits WHERE id = $1`
	t, err := scanTicket(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// SetStatus cambia PENDING -> APPROVED/REJECTED de forma condicional.
func (r *TicketCreditRepo) SetStatus(id, status string) (bool, error) {
	query := `
		UPDATE ticket_credits SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`
	tag, err := r.q.Exec(context.Background(), query, id, status, entity.TicketStatusPending)
	if err != nil {
		return false, fmt.Errorf("set ticket status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListApprovedByDriver lista los tickets elegibles para facturación.
func (r *TicketCreditRepo) ListApprovedByDriver(driverID string) ([]*entity.TicketCredit, error) {
	query := `SELECT` + ticketColumns + ` FROM ticket_credits
		WHERE driver_id = $1 AND status = $2 ORDER BY created_at`
	return r.list(query, driverID, entity.TicketStatusApproved)
}

// ListByDriver lista el historial completo del conductor.
func (r *TicketCreditRepo) ListByDriver(driverID string) ([]*entity.TicketCredit, error) {
	query := `SELECT` + ticketColumns + ` FROM ticket_credits
		WHERE driver_id = $1 ORDER BY created_at`
	return r.list(query, driverID)
}

func (r *TicketCreditRepo) list(query string, args ...any) ([]*entity.TicketCredit, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var out []*entity.TicketCredit
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkApplied pasa APPROVED -> APPLIED estampando el periodo consumidor.
func (r *TicketCreditRepo) MarkApplied(id, periodID string) (bool, error) {
	query := `
		UPDATE ticket_credits
		SET status = $2, period_id = NULLIF($3, '')::uuid, updated_at = now()
		WHERE id = $1 AND status = $4`
	tag, err := r.q.Exec(context.Background(), query,
		id, entity.TicketStatusApplied, periodID, entity.TicketStatusApproved)
	if err != nil {
		return false, fmt.Errorf("mark ticket applied: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
