package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/flota-pro/internal/application/billing"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
)

var _ billing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunDriverBilling inicia la transacción de facturación de un conductor:
// repos atados a la tx, Commit al final o Rollback ante cualquier error.
func (r *TxRunner) RunDriverBilling(ctx context.Context, fn func(
	lineRepo repository.BillingLineRepository,
	kmRepo repository.KmExcessRepository,
	ticketRepo repository.TicketCreditRepository,
	guaranteeRepo repository.GuaranteeRepository,
	balanceRepo repository.BalanceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lineRepo := NewBillingLineRepository(tx)
	kmRepo := NewKmExcessRepository(tx)
	ticketRepo := NewTicketCreditRepository(tx)
	guaranteeRepo := NewGuaranteeRepository(tx)
	balanceRepo := NewBalanceRepository(tx)

	if err := fn(lineRepo, kmRepo, ticketRepo, guaranteeRepo, balanceRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSettlement inicia la transacción de aprobación de una liquidación.
func (r *TxRunner) RunSettlement(ctx context.Context, fn func(
	settlementRepo repository.SettlementRepository,
	kmRepo repository.KmExcessRepository,
	ticketRepo repository.TicketCreditRepository,
	guaranteeRepo repository.GuaranteeRepository,
	balanceRepo repository.BalanceRepository,
	driverRepo repository.DriverRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	settlementRepo := NewSettlementRepository(tx)
	kmRepo := NewKmExcessRepository(tx)
	ticketRepo := NewTicketCreditRepository(tx)
	guaranteeRepo := NewGuaranteeRepository(tx)
	balanceRepo := NewBalanceRepository(tx)
	driverRepo := NewDriverRepository(tx)

	if err := fn(settlementRepo, kmRepo, ticketRepo, guaranteeRepo, balanceRepo, driverRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
