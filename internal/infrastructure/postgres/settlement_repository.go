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

var _ repository.SettlementRepository = (*SettlementRepo)(nil)

// SettlementRepo implementación de SettlementRepository sobre PostgreSQL.
type SettlementRepo struct {
	q Querier
}

// NewSettlementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSettlementRepository(q Querier) *SettlementRepo {
	return &SettlementRepo{q: q}
}

// Create inserta la liquidación en DRAFT.
func (r *SettlementRepo) Create(s *entity.TerminationSettlement) error {
	query := `
		INSERT INTO termination_settlements
			(id, driver_id, period_id, cutoff_date, modality, days_billed,
			 rent_amount, guarantee_amount, km_excess_amount, credits,
			 prior_balance, mora_amount, total_due, guarantee_refund, status, created_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.DriverID, s.PeriodID, s.CutoffDate, s.Modality, s.DaysBilled,
		s.RentAmount, s.GuaranteeAmount, s.KmExcessAmount, s.Credits,
		s.PriorBalance, s.MoraAmount, s.TotalDue, s.GuaranteeRefund, s.Status)
	if err != nil {
		return fmt.Errorf("create settlement: %w", err)
	}
	return nil
}

// GetByID obtiene una liquidación por ID, nil si no existe.
func (r *SettlementRepo) GetByID(id string) (*entity.TerminationSettlement, error) {
	query := `
		SELECT id, driver_id, COALESCE(period_id::text, ''), cutoff_date, modality, days_billed,
		       rent_amount, guarantee_amount, km_excess_amount, credits,
		       prior_balance, mora_amount, total_due, guarantee_refund, status,
		       approved_at, COALESCE(approved_by, ''), created_at
		FROM termination_settlements WHERE id = $1`
	var s entity.TerminationSettlement
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.DriverID, &s.PeriodID, &s.CutoffDate, &s.Modality, &s.DaysBilled,
		&s.RentAmount, &s.GuaranteeAmount, &s.KmExcessAmount, &s.Credits,
		&s.PriorBalance, &s.MoraAmount, &s.TotalDue, &s.GuaranteeRefund, &s.Status,
		&s.ApprovedAt, &s.ApprovedBy, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settlement: %w", err)
	}
	return &s, nil
}

// Approve pasa DRAFT -> APPROVED de forma condicional; aprobar es terminal.
func (r *SettlementRepo) Approve(id, actor string, at time.Time) (bool, error) {
	query := `
		UPDATE termination_settlements
		SET status = $2, approved_at = $3, approved_by = $4
		WHERE id = $1 AND status = $5`
	tag, err := r.q.Exec(context.Background(), query,
		id, entity.SettlementStatusApproved, at, actor, entity.SettlementStatusDraft)
	if err != nil {
		return false, fmt.Errorf("approve settlement: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
