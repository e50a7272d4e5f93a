package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/flota-pro/internal/application/dto"
	"github.com/tu-usuario/flota-pro/internal/domain"
	domainbilling "github.com/tu-usuario/flota-pro/internal/domain/billing"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
	"github.com/tu-usuario/flota-pro/pkg/config"
	"github.com/tu-usuario/flota-pro/pkg/logger"
)

// SettlementUseCase liquida el retiro de un conductor: una corrida de
// facturación única con ventana recortada a la fecha de corte, más la
// devolución de garantía. El borrador no consume hechos ni mueve saldo;
// todo efecto ocurre al aprobar, y aprobar es terminal.
type SettlementUseCase struct {
	settlementRepo repository.SettlementRepository
	driverRepo     repository.DriverRepository
	periodRepo     repository.BillingPeriodRepository
	tariffs        *TariffReader
	kmRepo         repository.KmExcessRepository
	ticketRepo     repository.TicketCreditRepository
	guaranteeRepo  repository.GuaranteeRepository
	balanceRepo    repository.BalanceRepository
	txRunner       TxRunner
	cfg            config.BillingConfig
	log            *logger.Logger
}

// NewSettlementUseCase construye el caso de uso.
func NewSettlementUseCase(
	settlementRepo repository.SettlementRepository,
	driverRepo repository.DriverRepository,
	periodRepo repository.BillingPeriodRepository,
	tariffs *TariffReader,
	kmRepo repository.KmExcessRepository,
	ticketRepo repository.TicketCreditRepository,
	guaranteeRepo repository.GuaranteeRepository,
	balanceRepo repository.BalanceRepository,
	txRunner TxRunner,
	cfg config.BillingConfig,
	log *logger.Logger,
) *SettlementUseCase {
	return &SettlementUseCase{
		settlementRepo: settlementRepo,
		driverRepo:     driverRepo,
		periodRepo:     periodRepo,
		tariffs:        tariffs,
		kmRepo:         kmRepo,
		ticketRepo:     ticketRepo,
		guaranteeRepo:  guaranteeRepo,
		balanceRepo:    balanceRepo,
		txRunner:       txRunner,
		cfg:            cfg,
		log:            log,
	}
}

// Create calcula y guarda la liquidación en DRAFT. El borrador es una foto:
// puede recrearse cuantas veces haga falta mientras no se apruebe.
func (uc *SettlementUseCase) Create(req dto.CreateSettlementRequest) (*dto.SettlementResponse, error) {
	cutoff, err := time.Parse("2006-01-02", req.CutoffDate)
	if err != nil || req.DriverID == "" {
		return nil, domain.ErrInvalidInput
	}

	driver, err := uc.driverRepo.GetByID(req.DriverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, domain.ErrNotFound
	}
	if driver.Status != entity.DriverStatusActive {
		return nil, fmt.Errorf("conductor %s ya retirado: %w", req.DriverID, domain.ErrConflict)
	}

	assignment, err := uc.driverRepo.GetActiveAssignment(req.DriverID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, fmt.Errorf("conductor %s sin asignación activa: %w", req.DriverID, domain.ErrConflict)
	}

	facts, _, err := uc.buildSettlementFacts(assignment, cutoff)
	if err != nil {
		return nil, err
	}
	res, err := domainbilling.CalculateDriverWeek(*facts)
	if err != nil {
		return nil, err
	}

	amountPaid := decimal.Zero
	if facts.Guarantee != nil {
		amountPaid = facts.Guarantee.AmountPaid
	}
	// La cuota del ciclo de corte cuenta como pagada para la devolución.
	amountPaid = amountPaid.Add(res.GuaranteeCharge)
	refund := domainbilling.GuaranteeRefund(res.Line.TotalDue, amountPaid)

	year, week := cutoff.ISOWeek()
	periodID := ""
	if period, err := uc.periodRepo.GetByWeekYear(week, year); err == nil && period != nil {
		periodID = period.ID
	}

	settlement := &entity.TerminationSettlement{
		ID:              uuid.New().String(),
		DriverID:        req.DriverID,
		PeriodID:        periodID,
		CutoffDate:      cutoff,
		Modality:        facts.Modality,
		DaysBilled:      res.Line.DaysBilled,
		RentAmount:      res.Line.RentAmount,
		GuaranteeAmount: res.Line.GuaranteeAmount,
		KmExcessAmount:  res.Line.KmExcessAmount,
		Credits:         res.Line.Credits,
		PriorBalance:    res.Line.PriorBalance,
		MoraAmount:      res.Line.MoraAmount,
		TotalDue:        res.Line.TotalDue,
		GuaranteeRefund: refund,
		Status:          entity.SettlementStatusDraft,
		CreatedAt:       time.Now(),
	}
	if err := uc.settlementRepo.Create(settlement); err != nil {
		return nil, err
	}
	uc.log.Info().Str("settlement_id", settlement.ID).Str("driver_id", req.DriverID).
		Str("total_due", settlement.TotalDue.String()).
		Str("guarantee_refund", refund.String()).
		Msg("liquidación en borrador creada")
	return toSettlementResponse(settlement), nil
}

// Get devuelve una liquidación por ID.
func (uc *SettlementUseCase) Get(id string) (*dto.SettlementResponse, error) {
	s, err := uc.settlementRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return toSettlementResponse(s), nil
}

// Approve confirma la liquidación: consume los hechos vivos del conductor,
// liquida el saldo, devuelve la garantía y desactiva al conductor, todo en una
// transacción. Aprobar dos veces falla con domain.ErrSettlementApproved.
func (uc *SettlementUseCase) Approve(ctx context.Context, id, actor string) (*dto.SettlementResponse, error) {
	settlement, err := uc.settlementRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, domain.ErrNotFound
	}
	if settlement.Status == entity.SettlementStatusApproved {
		return nil, domain.ErrSettlementApproved
	}

	now := time.Now()
	err = uc.txRunner.RunSettlement(ctx, func(
		settlementRepo repository.SettlementRepository,
		kmRepo repository.KmExcessRepository,
		ticketRepo repository.TicketCreditRepository,
		guaranteeRepo repository.GuaranteeRepository,
		balanceRepo repository.BalanceRepository,
		driverRepo repository.DriverRepository,
	) error {
		// Los hechos vivos deben ser los mismos que vio el borrador: si entró un
		// exceso o un ticket después del corte de foto, aprobarlo consumiría
		// valor nunca facturado. Se rechaza y el borrador se recrea.
		kmRecords, err := kmRepo.ListUnappliedByDriver(settlement.DriverID)
		if err != nil {
			return err
		}
		kmTotal := decimal.Zero
		for _, rec := range kmRecords {
			kmTotal = kmTotal.Add(rec.TotalAmount)
		}
		tickets, err := ticketRepo.ListApprovedByDriver(settlement.DriverID)
		if err != nil {
			return err
		}
		credits := decimal.Zero
		for _, t := range tickets {
			credits = credits.Add(t.Amount)
		}
		if !kmTotal.Equal(settlement.KmExcessAmount) || !credits.Equal(settlement.Credits) {
			return fmt.Errorf("los hechos del conductor cambiaron desde el borrador: %w", domain.ErrConflict)
		}

		approved, err := settlementRepo.Approve(id, actor, now)
		if err != nil {
			return err
		}
		if !approved {
			return domain.ErrSettlementApproved
		}

		// Consumir los hechos del conductor: tras la liquidación no deben
		// quedar excedentes ni tickets facturables.
		for _, rec := range kmRecords {
			if _, err := kmRepo.MarkApplied(rec.ID, settlement.PeriodID); err != nil {
				return err
			}
		}
		for _, t := range tickets {
			if _, err := ticketRepo.MarkApplied(t.ID, settlement.PeriodID); err != nil {
				return err
			}
		}

		// Garantía: la cuota del corte entra a la cuenta y la devolución sale
		// del saldo como abono.
		if settlement.DaysBilled > 0 && settlement.GuaranteeAmount.IsPositive() {
			acc, err := guaranteeRepo.GetByDriver(settlement.DriverID)
			if err != nil {
				return err
			}
			if acc != nil && !acc.Completed() {
				acc.AmountPaid = acc.AmountPaid.Add(settlement.GuaranteeAmount)
				acc.InstallmentsPaid++
				acc.UpdatedAt = now
				if err := guaranteeRepo.Save(acc); err != nil {
					return err
				}
			}
		}

		if err := uc.settleBalance(balanceRepo, settlement, now); err != nil {
			return err
		}

		// El retiro es terminal: conductor inactivo y asignaciones cerradas.
		if err := driverRepo.Deactivate(settlement.DriverID); err != nil {
			return err
		}
		return driverRepo.DeactivateAssignments(settlement.DriverID, settlement.CutoffDate)
	})
	if err != nil {
		return nil, err
	}

	settlement.Status = entity.SettlementStatusApproved
	settlement.ApprovedAt = &now
	settlement.ApprovedBy = actor
	uc.log.Info().Str("settlement_id", id).Str("actor", actor).Msg("liquidación aprobada")
	return toSettlementResponse(settlement), nil
}

// settleBalance deja el saldo del conductor en su posición final de retiro:
// totalDue menos la devolución de garantía, con el rastro de ambos movimientos.
func (uc *SettlementUseCase) settleBalance(balanceRepo repository.BalanceRepository, s *entity.TerminationSettlement, now time.Time) error {
	charge := s.TotalDue.Sub(s.PriorBalance)
	movType := entity.MovementCharge
	amount := charge
	if amount.IsNegative() {
		movType = entity.MovementCredit
		amount = amount.Neg()
	}
	if !amount.IsZero() {
		if err := balanceRepo.AppendMovement(&entity.BalanceMovement{
			ID:         uuid.New().String(),
			DriverID:   s.DriverID,
			Type:       movType,
			Amount:     amount,
			Concept:    "Liquidación de retiro",
			Reference:  s.ID,
			OccurredAt: now,
		}); err != nil {
			return err
		}
	}
	if s.GuaranteeRefund.IsPositive() {
		if err := balanceRepo.AppendMovement(&entity.BalanceMovement{
			ID:         uuid.New().String(),
			DriverID:   s.DriverID,
			Type:       entity.MovementCredit,
			Amount:     s.GuaranteeRefund,
			Concept:    "Devolución de garantía",
			Reference:  s.ID,
			OccurredAt: now,
		}); err != nil {
			return err
		}
	}
	bal := &entity.DriverBalance{
		DriverID:       s.DriverID,
		CurrentBalance: s.TotalDue.Sub(s.GuaranteeRefund),
		MoraDays:       0,
		UpdatedAt:      now,
	}
	if prev, err := balanceRepo.GetByDriver(s.DriverID); err != nil {
		return err
	} else if prev != nil {
		bal.AccruedMoraAmount = prev.AccruedMoraAmount.Add(s.MoraAmount)
	} else {
		bal.AccruedMoraAmount = s.MoraAmount
	}
	return balanceRepo.Upsert(bal)
}

// buildSettlementFacts arma el snapshot con la ventana recortada: desde el
// lunes de la semana del corte hasta la fecha de corte inclusive.
func (uc *SettlementUseCase) buildSettlementFacts(a *entity.DriverAssignment, cutoff time.Time) (*domainbilling.DriverWeekFacts, *ResolvedTariffs, error) {
	year, week := cutoff.ISOWeek()
	start, _ := domainbilling.WeekWindow(year, week)

	modality := a.Modality
	assumed := false
	if modality == "" {
		cheaper, err := uc.tariffs.CheaperModality()
		if err != nil {
			return nil, nil, err
		}
		modality = cheaper
		assumed = true
	}
	tariffs, err := uc.tariffs.ResolveForModality(modality)
	if err != nil {
		return nil, nil, err
	}

	acc, err := uc.guaranteeRepo.GetByDriver(a.DriverID)
	if err != nil {
		return nil, nil, err
	}
	kmRecords, err := uc.kmRepo.ListUnappliedByDriver(a.DriverID)
	if err != nil {
		return nil, nil, err
	}
	tickets, err := uc.ticketRepo.ListApprovedByDriver(a.DriverID)
	if err != nil {
		return nil, nil, err
	}

	priorBalance := decimal.Zero
	moraDays := 0
	if bal, err := uc.balanceRepo.GetByDriver(a.DriverID); err != nil {
		return nil, nil, err
	} else if bal != nil {
		priorBalance = bal.CurrentBalance
		moraDays = bal.MoraDays
	}

	return &domainbilling.DriverWeekFacts{
		DriverID:              a.DriverID,
		Modality:              modality,
		ModalityAssumed:       assumed,
		AssignmentStart:       a.StartDate,
		AssignmentEnd:         a.EndDate,
		PeriodStart:           start,
		PeriodEnd:             cutoff,
		WeeklyRent:            tariffs.WeeklyRent,
		RentEstimated:         tariffs.RentEstimated,
		GuaranteeQuota:        tariffs.GuaranteeQuota,
		GuaranteeEstimated:    tariffs.GuaranteeEstimated,
		Guarantee:             acc,
		GuaranteeInstallments: tariffs.TotalInstallments,
		KmExcess:              kmRecords,
		Tickets:               tickets,
		PriorBalance:          priorBalance,
		MoraDays:              moraDays,
		MoraRate:              tariffs.MoraRate,
		MoraMaxDays:           uc.cfg.MoraMaxDays,
	}, tariffs, nil
}

func toSettlementResponse(s *entity.TerminationSettlement) *dto.SettlementResponse {
	resp := &dto.SettlementResponse{
		ID:              s.ID,
		DriverID:        s.DriverID,
		CutoffDate:      s.CutoffDate.Format("2006-01-02"),
		Modality:        s.Modality,
		DaysBilled:      s.DaysBilled,
		RentAmount:      s.RentAmount,
		KmExcessAmount:  s.KmExcessAmount,
		Credits:         s.Credits,
		PriorBalance:    s.PriorBalance,
		MoraAmount:      s.MoraAmount,
		TotalDue:        s.TotalDue,
		GuaranteeRefund: s.GuaranteeRefund,
		Status:          s.Status,
		ApprovedBy:      s.ApprovedBy,
	}
	if s.ApprovedAt != nil {
		resp.ApprovedAt = s.ApprovedAt.Format(time.RFC3339)
	}
	return resp
}
