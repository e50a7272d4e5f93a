package billing

import (
	"time"

	"github.com/tu-usuario/flota-pro/internal/application/dto"
	"github.com/tu-usuario/flota-pro/internal/domain"
	domainbilling "github.com/tu-usuario/flota-pro/internal/domain/billing"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
	"github.com/tu-usuario/flota-pro/pkg/logger"
)

// PeriodUseCase consultas y ciclo de vida del periodo (cierre y reapertura).
type PeriodUseCase struct {
	periodRepo repository.BillingPeriodRepository
	lineRepo   repository.BillingLineRepository
	log        *logger.Logger
}

// NewPeriodUseCase construye el caso de uso.
func NewPeriodUseCase(periodRepo repository.BillingPeriodRepository, lineRepo repository.BillingLineRepository, log *logger.Logger) *PeriodUseCase {
	return &PeriodUseCase{periodRepo: periodRepo, lineRepo: lineRepo, log: log}
}

// GetByWeek devuelve la cabecera del periodo de la semana, o un periodo
// sintético NOT_GENERATED si nunca se ha corrido.
func (uc *PeriodUseCase) GetByWeek(week, year int) (*dto.PeriodResponse, error) {
	if week < 1 || week > 53 {
		return nil, domain.ErrInvalidInput
	}
	period, err := uc.periodRepo.GetByWeekYear(week, year)
	if err != nil {
		return nil, err
	}
	if period == nil {
		resp := syntheticPeriod(week, year)
		return resp, nil
	}
	return toPeriodResponse(period), nil
}

// Lines devuelve las facturas del periodo con sus detalles.
func (uc *PeriodUseCase) Lines(periodID string) ([]dto.BillingLineResponse, error) {
	period, err := uc.periodRepo.GetByID(periodID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.lineRepo.ListByPeriod(periodID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BillingLineResponse, 0, len(lines))
	for _, line := range lines {
		details, err := uc.lineRepo.GetDetails(line.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toLineResponse(line, details))
	}
	return out, nil
}

// Close cierra un periodo OPEN. El cierre es un test-and-set: dos cierres
// simultáneos dejan exactamente un ganador.
func (uc *PeriodUseCase) Close(periodID, actor string) (*dto.PeriodResponse, error) {
	period, err := uc.periodRepo.GetByID(periodID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, domain.ErrNotFound
	}
	if !CanClose(period.Status) {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	closed, err := uc.periodRepo.Close(periodID, actor, now)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, domain.ErrConflict
	}
	period.Status = entity.PeriodStatusClosed
	period.ClosedAt = &now
	period.ClosedBy = actor
	uc.log.Info().Str("period_id", periodID).Str("actor", actor).Msg("periodo cerrado")
	return toPeriodResponse(period), nil
}

// Reopen reabre un periodo CLOSED para correcciones.
func (uc *PeriodUseCase) Reopen(periodID, actor string) (*dto.PeriodResponse, error) {
	period, err := uc.periodRepo.GetByID(periodID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, domain.ErrNotFound
	}
	if !CanReopen(period.Status) {
		return nil, domain.ErrConflict
	}
	reopened, err := uc.periodRepo.Reopen(periodID)
	if err != nil {
		return nil, err
	}
	if !reopened {
		return nil, domain.ErrConflict
	}
	period.Status = entity.PeriodStatusOpen
	period.ClosedAt = nil
	period.ClosedBy = ""
	uc.log.Info().Str("period_id", periodID).Str("actor", actor).Msg("periodo reabierto")
	return toPeriodResponse(period), nil
}

func syntheticPeriod(week, year int) *dto.PeriodResponse {
	start, end := domainbilling.WeekWindow(year, week)
	return &dto.PeriodResponse{
		Week:      week,
		Year:      year,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Status:    entity.PeriodStatusNotGenerated,
	}
}

func toPeriodResponse(p *entity.BillingPeriod) *dto.PeriodResponse {
	resp := &dto.PeriodResponse{
		ID:           p.ID,
		Week:         p.WeekNumber,
		Year:         p.Year,
		StartDate:    p.StartDate.Format("2006-01-02"),
		EndDate:      p.EndDate.Format("2006-01-02"),
		Status:       p.Status,
		DriverCount:  p.DriverCount,
		TotalCharges: p.TotalCharges,
		TotalCredits: p.TotalCredits,
		TotalNet:     p.TotalNet,
		ClosedBy:     p.ClosedBy,
	}
	if p.ClosedAt != nil {
		resp.ClosedAt = p.ClosedAt.Format(time.RFC3339)
	}
	return resp
}

func toLineResponse(line *entity.BillingLine, details []*entity.BillingLineDetail) dto.BillingLineResponse {
	resp := dto.BillingLineResponse{
		ID:              line.ID,
		DriverID:        line.DriverID,
		Modality:        line.Modality,
		DaysBilled:      line.DaysBilled,
		ProratedFactor:  line.ProratedFactor,
		RentAmount:      line.RentAmount,
		GuaranteeAmount: line.GuaranteeAmount,
		KmExcessAmount:  line.KmExcessAmount,
		GrossCharges:    line.GrossCharges,
		Credits:         line.Credits,
		NetCharges:      line.NetCharges,
		PriorBalance:    line.PriorBalance,
		MoraDays:        line.MoraDays,
		MoraAmount:      line.MoraAmount,
		TotalDue:        line.TotalDue,
		Estimated:       line.Estimated,
		NeedsReview:     line.NeedsReview,
	}
	for _, d := range details {
		resp.Details = append(resp.Details, dto.LineDetailResponse{
			ConceptCode: d.ConceptCode,
			Description: d.Description,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			Subtotal:    d.Subtotal,
			Total:       d.Total,
			IsCredit:    d.IsCredit,
		})
	}
	return resp
}
