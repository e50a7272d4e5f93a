package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/flota-pro/internal/application/dto"
	"github.com/tu-usuario/flota-pro/internal/domain"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
	"github.com/tu-usuario/flota-pro/pkg/logger"
)

// BalanceUseCase consulta el libro de saldos y aplica ajustes manuales.
// Un ajuste mueve cabecera y rastro en una sola transacción para conservar la
// igualdad saldo = suma de movimientos.
type BalanceUseCase struct {
	balanceRepo repository.BalanceRepository
	driverRepo  repository.DriverRepository
	txRunner    TxRunner
	log         *logger.Logger
}

// NewBalanceUseCase construye el caso de uso.
func NewBalanceUseCase(balanceRepo repository.BalanceRepository, driverRepo repository.DriverRepository, txRunner TxRunner, log *logger.Logger) *BalanceUseCase {
	return &BalanceUseCase{balanceRepo: balanceRepo, driverRepo: driverRepo, txRunner: txRunner, log: log}
}

// Get devuelve el saldo corriente del conductor; un conductor sin historia
// responde saldo cero, no 404.
func (uc *BalanceUseCase) Get(driverID string) (*dto.BalanceResponse, error) {
	driver, err := uc.driverRepo.GetByID(driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, domain.ErrNotFound
	}
	bal, err := uc.balanceRepo.GetByDriver(driverID)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return &dto.BalanceResponse{
			DriverID:          driverID,
			CurrentBalance:    decimal.Zero,
			AccruedMoraAmount: decimal.Zero,
		}, nil
	}
	return &dto.BalanceResponse{
		DriverID:          bal.DriverID,
		CurrentBalance:    bal.CurrentBalance,
		MoraDays:          bal.MoraDays,
		AccruedMoraAmount: bal.AccruedMoraAmount,
	}, nil
}

// Movements devuelve el rastro de movimientos del conductor.
func (uc *BalanceUseCase) Movements(driverID string) ([]dto.MovementResponse, error) {
	movements, err := uc.balanceRepo.ListMovements(driverID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementResponse{
			ID:         m.ID,
			Type:       m.Type,
			Amount:     m.Amount,
			Concept:    m.Concept,
			Reference:  m.Reference,
			Week:       m.WeekNumber,
			Year:       m.Year,
			OccurredAt: m.OccurredAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// Adjust aplica un ajuste manual (cargo o abono) al saldo del conductor.
func (uc *BalanceUseCase) Adjust(ctx context.Context, driverID, actor string, req dto.CreateAdjustmentRequest) (*dto.BalanceResponse, error) {
	if req.Type != entity.MovementCharge && req.Type != entity.MovementCredit {
		return nil, domain.ErrInvalidInput
	}
	if !req.Amount.IsPositive() || req.Concept == "" {
		return nil, domain.ErrInvalidInput
	}
	driver, err := uc.driverRepo.GetByID(driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, domain.ErrNotFound
	}

	var out *dto.BalanceResponse
	err = uc.txRunner.RunDriverBilling(ctx, func(
		_ repository.BillingLineRepository,
		_ repository.KmExcessRepository,
		_ repository.TicketCreditRepository,
		_ repository.GuaranteeRepository,
		balanceRepo repository.BalanceRepository,
	) error {
		now := time.Now()
		m := &entity.BalanceMovement{
			ID:         uuid.New().String(),
			DriverID:   driverID,
			Type:       req.Type,
			Amount:     req.Amount,
			Concept:    req.Concept,
			OccurredAt: now,
		}
		if err := balanceRepo.AppendMovement(m); err != nil {
			return err
		}

		bal, err := balanceRepo.GetByDriver(driverID)
		if err != nil {
			return err
		}
		if bal == nil {
			bal = &entity.DriverBalance{
				DriverID:          driverID,
				CurrentBalance:    decimal.Zero,
				AccruedMoraAmount: decimal.Zero,
			}
		}
		bal.CurrentBalance = bal.CurrentBalance.Add(m.Signed())
		bal.UpdatedAt = now
		if err := balanceRepo.Upsert(bal); err != nil {
			return err
		}
		out = &dto.BalanceResponse{
			DriverID:          bal.DriverID,
			CurrentBalance:    bal.CurrentBalance,
			MoraDays:          bal.MoraDays,
			AccruedMoraAmount: bal.AccruedMoraAmount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("driver_id", driverID).Str("actor", actor).
		Str("type", req.Type).Str("amount", req.Amount.String()).Msg("ajuste manual de saldo")
	return out, nil
}
