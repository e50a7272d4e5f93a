package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
)

var _ repository.GuaranteeRepository = (*GuaranteeRepo)(nil)

// GuaranteeRepo implementación de GuaranteeRepository sobre PostgreSQL.
type GuaranteeRepo struct {
	q Querier
}

// NewGuaranteeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGuaranteeRepository(q Querier) *GuaranteeRepo {
	return &GuaranteeRepo{q: q}
}

// GetByDriver obtiene la cuenta de garantía del conductor, nil si no existe.
func (r *GuaranteeRepo) GetByDriver(driverID string) (*entity.GuaranteeAccount, error) {
	query := `
		SELECT driver_id, modality, total_installments, installments_paid, amount_paid, status, updated_at
		FROM guarantee_accounts WHERE driver_id = $1`
	var g entity.GuaranteeAccount
	err := r.q.QueryRow(context.Background(), query, driverID).Scan(
		&g.DriverID, &g.Modality, &g.TotalInstallments, &g.InstallmentsPaid,
		&g.AmountPaid, &g.Status, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get guarantee: %w", err)
	}
	return &g, nil
}

// Save inserta o actualiza la cuenta (una fila por conductor).
func (r *GuaranteeRepo) Save(acc *entity.GuaranteeAccount) error {
	query := `
		INSERT INTO guarantee_accounts
			(driver_id, modality, total_installments, installments_paid, amount_paid, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (driver_id)
		DO UPDATE SET modality = EXCLUDED.modality,
		              total_installments = EXCLUDED.total_installments,
		              installments_paid = EXCLUDED.installments_paid,
		              amount_paid = EXCLUDED.amount_paid,
		              status = EXCLUDED.status,
		              updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		acc.DriverID, acc.Modality, acc.TotalInstallments, acc.InstallmentsPaid, acc.AmountPaid, acc.Status)
	if err != nil {
		return fmt.Errorf("save guarantee: %w", err)
	}
	return nil
}
