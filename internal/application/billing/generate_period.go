package billing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tu-usuario/flota-pro/internal/application/dto"
	"github.com/tu-usuario/flota-pro/internal/domain"
	domainbilling "github.com/tu-usuario/flota-pro/internal/domain/billing"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
	"github.com/tu-usuario/flota-pro/pkg/config"
	"github.com/tu-usuario/flota-pro/pkg/logger"
)

// GeneratePeriodUseCase ejecuta la corrida semanal de facturación: calcula la
// factura de cada conductor elegible y la confirma al libro de saldos, o la
// proyecta sin persistir (vista previa). Ambos caminos usan el mismo cálculo
// puro; solo difieren en si escriben.
type GeneratePeriodUseCase struct {
	periodRepo   repository.BillingPeriodRepository
	lineRepo     repository.BillingLineRepository
	driverSource repository.DriverWeekSource
	tariffs      *TariffReader
	kmRepo       repository.KmExcessRepository
	ticketRepo   repository.TicketCreditRepository
	guaranteeRepo repository.GuaranteeRepository
	balanceRepo  repository.BalanceRepository
	txRunner     TxRunner
	cfg          config.BillingConfig
	log          *logger.Logger
}

// NewGeneratePeriodUseCase construye el caso de uso.
func NewGeneratePeriodUseCase(
	periodRepo repository.BillingPeriodRepository,
	lineRepo repository.BillingLineRepository,
	driverSource repository.DriverWeekSource,
	tariffs *TariffReader,
	kmRepo repository.KmExcessRepository,
	ticketRepo repository.TicketCreditRepository,
	guaranteeRepo repository.GuaranteeRepository,
	balanceRepo repository.BalanceRepository,
	txRunner TxRunner,
	cfg config.BillingConfig,
	log *logger.Logger,
) *GeneratePeriodUseCase {
	return &GeneratePeriodUseCase{
		periodRepo:    periodRepo,
		lineRepo:      lineRepo,
		driverSource:  driverSource,
		tariffs:       tariffs,
		kmRepo:        kmRepo,
		ticketRepo:    ticketRepo,
		guaranteeRepo: guaranteeRepo,
		balanceRepo:   balanceRepo,
		txRunner:      txRunner,
		cfg:           cfg,
		log:           log,
	}
}

// driverOutcome resultado del procesamiento de un conductor.
type driverOutcome struct {
	driverID string
	line     *entity.BillingLine
	err      error
}

// Generate corre la facturación de la semana indicada. La corrida adquiere el
// candado PROCESSING, procesa conductores en paralelo acotado (cada uno en su
// propia transacción) y deja el periodo OPEN con totales, incluso con fallas
// parciales. Solo el candado o un catálogo de tarifas caído fallan la corrida
// completa.
func (uc *GeneratePeriodUseCase) Generate(ctx context.Context, week, year int) (*dto.GenerationReport, error) {
	if week < 1 || week > 53 || year < 2000 {
		return nil, domain.ErrInvalidInput
	}

	// Tarifas primero: si el catálogo está caído no se toma el candado.
	tariffsByModality, err := uc.resolveTariffs()
	if err != nil {
		return nil, err
	}

	start, end := domainbilling.WeekWindow(year, week)
	period, err := uc.acquirePeriod(week, year, start, end)
	if err != nil {
		return nil, err
	}

	assignments, err := uc.driverSource.EligibleDrivers(week, year, start, end)
	if err != nil {
		// Nunca dejar el periodo atascado en PROCESSING: queda OPEN vacío.
		period.Status = entity.PeriodStatusOpen
		_ = uc.periodRepo.MarkOpen(period)
		return nil, fmt.Errorf("listar conductores elegibles: %w", err)
	}

	outcomes := make([]driverOutcome, len(assignments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.parallelism())
	for i, a := range assignments {
		g.Go(func() error {
			line, err := uc.processDriver(gctx, period, a, tariffsByModality)
			outcomes[i] = driverOutcome{driverID: a.DriverID, line: line, err: err}
			return nil // las fallas por conductor no cancelan el grupo
		})
	}
	_ = g.Wait()

	report := uc.closeRun(period, week, year, outcomes)
	return report, nil
}

// closeRun acumula totales, deja el periodo OPEN y arma el reporte parcial.
// Los totales se suman desde las líneas persistidas: en una regeneración con
// fallas parciales sobreviven líneas de la corrida anterior y la cabecera debe
// cuadrar con lo almacenado, no solo con lo procesado en esta corrida.
func (uc *GeneratePeriodUseCase) closeRun(period *entity.BillingPeriod, week, year int, outcomes []driverOutcome) *dto.GenerationReport {
	report := &dto.GenerationReport{
		PeriodID:     period.ID,
		Week:         week,
		Year:         year,
		TotalCharges: decimal.Zero,
		TotalCredits: decimal.Zero,
		TotalNet:     decimal.Zero,
	}
	var runErrs *multierror.Error
	for _, o := range outcomes {
		if o.err != nil {
			runErrs = multierror.Append(runErrs, fmt.Errorf("conductor %s: %w", o.driverID, o.err))
			report.DriversSkipped = append(report.DriversSkipped, dto.SkippedDriver{
				DriverID: o.driverID,
				Reason:   o.err.Error(),
			})
			continue
		}
		report.DriversProcessed++
	}

	lines, err := uc.lineRepo.ListByPeriod(period.ID)
	if err != nil {
		runErrs = multierror.Append(runErrs, fmt.Errorf("listar líneas del periodo: %w", err))
	}
	for _, l := range lines {
		report.TotalCharges = report.TotalCharges.Add(l.GrossCharges).Add(l.MoraAmount)
		report.TotalCredits = report.TotalCredits.Add(l.Credits)
	}
	report.TotalNet = report.TotalCharges.Sub(report.TotalCredits)

	period.Status = entity.PeriodStatusOpen
	period.DriverCount = len(lines)
	period.TotalCharges = report.TotalCharges
	period.TotalCredits = report.TotalCredits
	period.TotalNet = report.TotalNet
	if err := uc.periodRepo.MarkOpen(period); err != nil {
		runErrs = multierror.Append(runErrs, fmt.Errorf("abrir periodo: %w", err))
	}

	ev := uc.log.Info()
	if runErrs.ErrorOrNil() != nil {
		ev = uc.log.Warn().Err(runErrs.ErrorOrNil())
	}
	ev.Int("week", week).Int("year", year).
		Int("processed", report.DriversProcessed).
		Int("skipped", len(report.DriversSkipped)).
		Str("total_net", report.TotalNet.String()).
		Msg("corrida de facturación terminada")
	return report
}

// acquirePeriod toma el candado PROCESSING: inserta el periodo si no existe
// (semana sintética NOT_GENERATED) o hace el test-and-set OPEN -> PROCESSING.
func (uc *GeneratePeriodUseCase) acquirePeriod(week, year int, start, end time.Time) (*entity.BillingPeriod, error) {
	period, err := uc.periodRepo.GetByWeekYear(week, year)
	if err != nil {
		return nil, fmt.Errorf("consultar periodo: %w", err)
	}
	if period == nil {
		period = &entity.BillingPeriod{
			ID:         uuid.New().String(),
			WeekNumber: week,
			Year:       year,
			StartDate:  start,
			EndDate:    end,
			Status:     entity.PeriodStatusProcessing,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		created, err := uc.periodRepo.CreateProcessing(period)
		if err != nil {
			return nil, fmt.Errorf("crear periodo: %w", err)
		}
		if !created {
			// Otra corrida ganó la inserción de (semana, año).
			return nil, domain.ErrPeriodLocked
		}
		return period, nil
	}

	if !CanGenerate(period.Status) {
		if period.Status == entity.PeriodStatusClosed {
			return nil, domain.ErrPeriodClosed
		}
		return nil, domain.ErrPeriodLocked
	}
	locked, err := uc.periodRepo.TryMarkProcessing(period.ID)
	if err != nil {
		return nil, fmt.Errorf("bloquear periodo: %w", err)
	}
	if !locked {
		return nil, domain.ErrPeriodLocked
	}
	period.Status = entity.PeriodStatusProcessing
	return period, nil
}

// processDriver arma el snapshot de hechos, calcula y confirma la factura del
// conductor en una sola transacción: borrar línea previa, consumir hechos con
// re-chequeo, reinsertar, avanzar garantía y mover saldo.
func (uc *GeneratePeriodUseCase) processDriver(
	ctx context.Context,
	period *entity.BillingPeriod,
	a *entity.DriverAssignment,
	tariffsByModality map[string]*ResolvedTariffs,
) (*entity.BillingLine, error) {
	facts, tariffs, err := uc.buildFacts(a, period.StartDate, period.EndDate, tariffsByModality)
	if err != nil {
		return nil, err
	}

	// Regeneración: descontar del snapshot lo que la corrida anterior de esta
	// misma semana ya aportó al saldo y a la garantía, para no duplicarlo.
	existing, err := uc.lineRepo.GetByPeriodAndDriver(period.ID, a.DriverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		rollbackPriorRun(facts, existing)
	}

	// Cálculo previo fuera de la transacción: valida el snapshot y descarta
	// conductores con violaciones de invariante sin abrir tx.
	if _, err := domainbilling.CalculateDriverWeek(*facts); err != nil {
		return nil, err
	}

	var line *entity.BillingLine
	err = uc.txRunner.RunDriverBilling(ctx, func(
		lineRepo repository.BillingLineRepository,
		kmRepo repository.KmExcessRepository,
		ticketRepo repository.TicketCreditRepository,
		guaranteeRepo repository.GuaranteeRepository,
		balanceRepo repository.BalanceRepository,
	) error {
		// (a) Regeneración idempotente: borrar-y-reinsertar la línea del conductor.
		if err := lineRepo.DeleteByPeriodAndDriver(period.ID, a.DriverID); err != nil {
			return err
		}
		if existing != nil {
			if err := uc.reverseMovement(balanceRepo, existing, period); err != nil {
				return err
			}
		}

		// (c) Consumo con re-chequeo dentro de la transacción: se relistan los
		// hechos vivos (el borrado liberó los de la corrida anterior) y el flip
		// condicional descarta los que otro proceso consumió entretanto.
		liveKm, err := kmRepo.ListUnappliedByDriver(a.DriverID)
		if err != nil {
			return err
		}
		var keptKm []*entity.KmExcessRecord
		for _, rec := range liveKm {
			ok, err := kmRepo.MarkApplied(rec.ID, period.ID)
			if err != nil {
				return err
			}
			if ok {
				keptKm = append(keptKm, rec)
			}
		}
		liveTickets, err := ticketRepo.ListApprovedByDriver(a.DriverID)
		if err != nil {
			return err
		}
		var keptTickets []*entity.TicketCredit
		for _, t := range liveTickets {
			ok, err := ticketRepo.MarkApplied(t.ID, period.ID)
			if err != nil {
				return err
			}
			if ok {
				keptTickets = append(keptTickets, t)
			}
		}
		facts.KmExcess = keptKm
		facts.Tickets = keptTickets

		// (b) Cálculo definitivo con los hechos confirmados.
		res, err := domainbilling.CalculateDriverWeek(*facts)
		if err != nil {
			return err
		}
		line = res.Line
		line.ID = uuid.New().String()
		line.PeriodID = period.ID
		line.CreatedAt = time.Now()
		if err := lineRepo.Create(line); err != nil {
			return err
		}
		for _, d := range res.Details {
			d.ID = uuid.New().String()
			d.BillingLineID = line.ID
			if err := lineRepo.CreateDetail(d); err != nil {
				return err
			}
		}

		// (d) Avance de garantía: solo con semana facturable y cuenta abierta.
		if line.DaysBilled > 0 {
			acc := facts.Guarantee
			if acc == nil {
				acc = domainbilling.NewGuaranteeAccount(a.DriverID, facts.Modality, tariffs.TotalInstallments)
			}
			if !acc.Completed() {
				domainbilling.AdvanceGuarantee(acc, res.GuaranteeCharge, tariffs.GuaranteeQuota)
			}
			if err := guaranteeRepo.Save(acc); err != nil {
				return err
			}
		}

		// (e) Saldo: el nuevo saldo corriente ES el totalDue de la línea (el
		// saldo anterior ya viene dentro); el movimiento registra solo el
		// cargo neto nuevo para que el rastro sume al saldo.
		return uc.applyToBalance(balanceRepo, line, existing, period)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// rollbackPriorRun descuenta del snapshot el aporte de la línea que esta misma
// corrida va a reemplazar: saldo arrastrado y avance de garantía.
func rollbackPriorRun(facts *domainbilling.DriverWeekFacts, existing *entity.BillingLine) {
	facts.PriorBalance = facts.PriorBalance.Sub(existing.NetCharges).Sub(existing.MoraAmount)
	if facts.Guarantee == nil {
		return
	}
	// Solo se revierte si la línea reemplazada avanzó la cuenta de verdad; una
	// cuenta ya completada que cobró cero debe seguir completada.
	if existing.GuaranteeAmount.IsPositive() {
		facts.Guarantee.AmountPaid = facts.Guarantee.AmountPaid.Sub(existing.GuaranteeAmount)
		if facts.Guarantee.InstallmentsPaid > 0 {
			facts.Guarantee.InstallmentsPaid--
		}
		facts.Guarantee.Status = entity.GuaranteeStatusInProgress
	}
}

// reverseMovement agrega al rastro el contraasiento de la línea reemplazada,
// para que la suma de movimientos siga igualando la cabecera.
func (uc *GeneratePeriodUseCase) reverseMovement(balanceRepo repository.BalanceRepository, existing *entity.BillingLine, period *entity.BillingPeriod) error {
	delta := existing.NetCharges.Add(existing.MoraAmount)
	if delta.IsZero() {
		return nil
	}
	movType := entity.MovementCredit
	if delta.IsNegative() {
		movType = entity.MovementCharge
		delta = delta.Neg()
	}
	week, year := period.WeekNumber, period.Year
	return balanceRepo.AppendMovement(&entity.BalanceMovement{
		ID:         uuid.New().String(),
		DriverID:   existing.DriverID,
		Type:       movType,
		Amount:     delta,
		Concept:    fmt.Sprintf("Reversión facturación semana %d/%d", week, year),
		Reference:  existing.ID,
		WeekNumber: &week,
		Year:       &year,
		OccurredAt: time.Now(),
	})
}

// applyToBalance actualiza la cabecera de saldo y agrega el movimiento del
// cargo neto del ciclo (netCharges + mora).
func (uc *GeneratePeriodUseCase) applyToBalance(balanceRepo repository.BalanceRepository, line, existing *entity.BillingLine, period *entity.BillingPeriod) error {
	now := time.Now()
	bal := &entity.DriverBalance{
		DriverID:          line.DriverID,
		CurrentBalance:    line.TotalDue,
		MoraDays:          line.MoraDays,
		AccruedMoraAmount: line.MoraAmount,
		UpdatedAt:         now,
	}
	if prev, err := balanceRepo.GetByDriver(line.DriverID); err != nil {
		return err
	} else if prev != nil {
		bal.AccruedMoraAmount = prev.AccruedMoraAmount.Add(line.MoraAmount)
		if existing != nil {
			bal.AccruedMoraAmount = bal.AccruedMoraAmount.Sub(existing.MoraAmount)
		}
	}
	if err := balanceRepo.Upsert(bal); err != nil {
		return err
	}

	delta := line.NetCharges.Add(line.MoraAmount)
	movType := entity.MovementCharge
	if delta.IsNegative() {
		movType = entity.MovementCredit
		delta = delta.Neg()
	}
	week, year := period.WeekNumber, period.Year
	return balanceRepo.AppendMovement(&entity.BalanceMovement{
		ID:         uuid.New().String(),
		DriverID:   line.DriverID,
		Type:       movType,
		Amount:     delta,
		Concept:    fmt.Sprintf("Facturación semana %d/%d", week, year),
		Reference:  line.ID,
		WeekNumber: &week,
		Year:       &year,
		OccurredAt: now,
	})
}

// Preview proyecta la semana con los hechos vivos, sin persistir nada ni
// marcar consumos. Usa exactamente el mismo cálculo que Generate.
func (uc *GeneratePeriodUseCase) Preview(ctx context.Context, week, year int) (*dto.PreviewResponse, error) {
	if week < 1 || week > 53 || year < 2000 {
		return nil, domain.ErrInvalidInput
	}
	tariffsByModality, err := uc.resolveTariffs()
	if err != nil {
		return nil, err
	}
	start, end := domainbilling.WeekWindow(year, week)

	assignments, err := uc.driverSource.EligibleDrivers(week, year, start, end)
	if err != nil {
		return nil, fmt.Errorf("listar conductores elegibles: %w", err)
	}

	resp := &dto.PreviewResponse{
		Week:         week,
		Year:         year,
		StartDate:    start.Format("2006-01-02"),
		EndDate:      end.Format("2006-01-02"),
		TotalCharges: decimal.Zero,
		TotalCredits: decimal.Zero,
		TotalNet:     decimal.Zero,
	}
	for _, a := range assignments {
		facts, _, err := uc.buildFacts(a, start, end, tariffsByModality)
		if err != nil {
			resp.Skipped = append(resp.Skipped, dto.SkippedDriver{DriverID: a.DriverID, Reason: err.Error()})
			continue
		}
		res, err := domainbilling.CalculateDriverWeek(*facts)
		if err != nil {
			resp.Skipped = append(resp.Skipped, dto.SkippedDriver{DriverID: a.DriverID, Reason: err.Error()})
			continue
		}
		resp.Lines = append(resp.Lines, toLineResponse(res.Line, res.Details))
		resp.TotalCharges = resp.TotalCharges.Add(res.Line.GrossCharges).Add(res.Line.MoraAmount)
		resp.TotalCredits = resp.TotalCredits.Add(res.Line.Credits)
	}
	resp.TotalNet = resp.TotalCharges.Sub(resp.TotalCredits)
	sort.Slice(resp.Lines, func(i, j int) bool { return resp.Lines[i].DriverID < resp.Lines[j].DriverID })
	return resp, nil
}

// buildFacts arma el snapshot inmutable de hechos de un conductor.
func (uc *GeneratePeriodUseCase) buildFacts(
	a *entity.DriverAssignment,
	periodStart, periodEnd time.Time,
	tariffsByModality map[string]*ResolvedTariffs,
) (*domainbilling.DriverWeekFacts, *ResolvedTariffs, error) {
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
	tariffs, ok := tariffsByModality[modality]
	if !ok {
		return nil, nil, fmt.Errorf("modalidad desconocida %q", modality)
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
		PeriodStart:           periodStart,
		PeriodEnd:             periodEnd,
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

func (uc *GeneratePeriodUseCase) resolveTariffs() (map[string]*ResolvedTariffs, error) {
	fixed, err := uc.tariffs.ResolveForModality(entity.ModalityFixedFee)
	if err != nil {
		return nil, err
	}
	shift, err := uc.tariffs.ResolveForModality(entity.ModalityShiftBased)
	if err != nil {
		return nil, err
	}
	return map[string]*ResolvedTariffs{
		entity.ModalityFixedFee:   fixed,
		entity.ModalityShiftBased: shift,
	}, nil
}

func (uc *GeneratePeriodUseCase) parallelism() int {
	if uc.cfg.Parallelism > 0 {
		return uc.cfg.Parallelism
	}
	return 1
}
