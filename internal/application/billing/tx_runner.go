package billing

import (
	"context"

	"github.com/tu-usuario/flota-pro/internal/domain/repository"
)

// TxRunner ejecuta callbacks dentro de una transacción con repos atados a ella.
// La unidad atómica de la generación es UN conductor: borrar su línea anterior,
// reinsertar, consumir hechos, avanzar garantía y mover saldo, todo o nada.
type TxRunner interface {
	// RunDriverBilling transacción de facturación de un conductor.
	RunDriverBilling(ctx context.Context, fn func(
		lineRepo repository.BillingLineRepository,
		kmRepo repository.KmExcessRepository,
		ticketRepo repository.TicketCreditRepository,
		guaranteeRepo repository.GuaranteeRepository,
		balanceRepo repository.BalanceRepository,
	) error) error

	// RunSettlement transacción de aprobación de liquidación (consume hechos,
	// mueve saldo, devuelve garantía y desactiva al conductor).
	RunSettlement(ctx context.Context, fn func(
		settlementRepo repository.SettlementRepository,
		kmRepo repository.KmExcessRepository,
		ticketRepo repository.TicketCreditRepository,
		guaranteeRepo repository.GuaranteeRepository,
		balanceRepo repository.BalanceRepository,
		driverRepo repository.DriverRepository,
	) error) error
}
