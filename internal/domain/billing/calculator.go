package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
)

// ErrNegativeAmount señala una violación de invariante de programación: ningún
// componente calculado puede ser negativo. Aborta la línea de ese conductor sin
// abortar la corrida completa.
var ErrNegativeAmount = errors.New("monto calculado negativo")

// DriverWeekFacts es el snapshot inmutable de hechos de un conductor para una
// ventana de facturación. El mismo snapshot produce siempre la misma línea:
// los caminos de vista previa, generación y liquidación usan este único cálculo.
type DriverWeekFacts struct {
	DriverID string
	Modality string

	// ModalityAssumed indica que la asignación no traía modalidad y el lector
	// asumió la de menor costo; la línea queda marcada para revisión manual.
	ModalityAssumed bool

	AssignmentStart *time.Time
	AssignmentEnd   *time.Time
	PeriodStart     time.Time
	PeriodEnd       time.Time

	// Tarifas resueltas para la modalidad. *Estimated marca que se usó el
	// valor de respaldo por ausencia del concepto en el catálogo.
	WeeklyRent         decimal.Decimal
	RentEstimated      bool
	GuaranteeQuota     decimal.Decimal
	GuaranteeEstimated bool

	// Guarantee nil = primera semana facturable (cuenta aún no creada).
	// GuaranteeInstallments trae el total de cuotas de la modalidad, para que
	// la primera semana cobre contra el objetivo completo y no contra cero.
	Guarantee             *entity.GuaranteeAccount
	GuaranteeInstallments int

	KmExcess []*entity.KmExcessRecord // solo registros sin aplicar
	Tickets  []*entity.TicketCredit   // solo tickets aprobados

	PriorBalance decimal.Decimal
	MoraDays     int
	MoraRate     decimal.Decimal
	MoraMaxDays  int
}

// Result es la salida pura del cálculo: la línea con sus detalles y los IDs de
// los hechos que el camino de commit debe marcar como consumidos.
type Result struct {
	Line             *entity.BillingLine
	Details          []*entity.BillingLineDetail
	ConsumedKmExcess []string
	ConsumedTickets  []string
	// GuaranteeCharge es el abono que el commit debe aplicar a la cuenta.
	GuaranteeCharge decimal.Decimal
}

// CalculateDriverWeek computa todos los cargos y abonos de un conductor para la
// ventana dada. Función pura: no lee ni escribe estado; el llamador arma el
// snapshot y decide si persiste.
func CalculateDriverWeek(f DriverWeekFacts) (*Result, error) {
	days := DaysBilled(f.AssignmentStart, f.AssignmentEnd, f.PeriodStart, f.PeriodEnd)
	factor := Factor(days)

	rent := Prorate(f.WeeklyRent, days)
	if rent.IsNegative() {
		return nil, fmt.Errorf("renta de %s: %w", f.DriverID, ErrNegativeAmount)
	}

	acc := f.Guarantee
	if acc == nil {
		acc = &entity.GuaranteeAccount{
			Status:            entity.GuaranteeStatusInProgress,
			TotalInstallments: f.GuaranteeInstallments,
		}
	}
	guarantee := GuaranteeCharge(acc, f.GuaranteeQuota, days)
	if guarantee.IsNegative() {
		return nil, fmt.Errorf("garantía de %s: %w", f.DriverID, ErrNegativeAmount)
	}

	kmTotal := decimal.Zero
	for _, rec := range f.KmExcess {
		if rec.Applied {
			continue
		}
		if rec.TotalAmount.IsNegative() {
			return nil, fmt.Errorf("exceso km %s de %s: %w", rec.ID, f.DriverID, ErrNegativeAmount)
		}
		kmTotal = kmTotal.Add(rec.TotalAmount)
	}

	credits := decimal.Zero
	for _, t := range f.Tickets {
		if t.Status != entity.TicketStatusApproved {
			continue
		}
		if t.Amount.IsNegative() {
			return nil, fmt.Errorf("ticket %s de %s: %w", t.ID, f.DriverID, ErrNegativeAmount)
		}
		credits = credits.Add(t.Amount)
	}

	mora := MoraCharge(f.PriorBalance, f.MoraRate, f.MoraDays, f.MoraMaxDays)
	if mora.IsNegative() {
		return nil, fmt.Errorf("mora de %s: %w", f.DriverID, ErrNegativeAmount)
	}

	gross := rent.Add(guarantee).Add(kmTotal)
	net := gross.Sub(credits)
	totalDue := net.Add(f.PriorBalance).Add(mora)

	line := &entity.BillingLine{
		DriverID:        f.DriverID,
		Modality:        f.Modality,
		DaysBilled:      days,
		ProratedFactor:  factor,
		RentAmount:      rent,
		GuaranteeAmount: guarantee,
		KmExcessAmount:  kmTotal,
		GrossCharges:    gross,
		Credits:         credits,
		NetCharges:      net,
		PriorBalance:    f.PriorBalance,
		MoraDays:        f.MoraDays,
		MoraAmount:      mora,
		TotalDue:        totalDue,
		Estimated:       f.RentEstimated || f.GuaranteeEstimated,
		NeedsReview:     f.ModalityAssumed,
		Status:          entity.BillingLineStatusGenerated,
	}

	res := &Result{Line: line, GuaranteeCharge: guarantee}
	res.buildDetails(f, acc, days)
	return res, nil
}

// buildDetails emite una línea de detalle por concepto no nulo. La garantía de
// una cuenta completada se emite en cero con anotación, para que los reportes
// muestren el progreso acumulado.
func (r *Result) buildDetails(f DriverWeekFacts, acc *entity.GuaranteeAccount, days int) {
	line := r.Line

	if line.RentAmount.IsPositive() {
		r.Details = append(r.Details, &entity.BillingLineDetail{
			ConceptCode: entity.ConceptRent,
			Description: fmt.Sprintf("Renta semanal %s (%d/7 días)", modalityLabel(f.Modality), days),
			Quantity:    decimal.NewFromInt(int64(days)),
			UnitPrice:   f.WeeklyRent,
			Subtotal:    line.RentAmount,
			Total:       line.RentAmount,
		})
	}

	if acc.Completed() {
		r.Details = append(r.Details, &entity.BillingLineDetail{
			ConceptCode: entity.ConceptGuarantee,
			Description: fmt.Sprintf("Garantía completada (%d/%d cuotas)", acc.InstallmentsPaid, acc.TotalInstallments),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.Zero,
			Subtotal:    decimal.Zero,
			Total:       decimal.Zero,
		})
	} else if line.GuaranteeAmount.IsPositive() {
		r.Details = append(r.Details, &entity.BillingLineDetail{
			ConceptCode: entity.ConceptGuarantee,
			Description: fmt.Sprintf("Cuota de garantía %d de %d", acc.InstallmentsPaid+1, acc.TotalInstallments),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   f.GuaranteeQuota,
			Subtotal:    line.GuaranteeAmount,
			Total:       line.GuaranteeAmount,
		})
	}

	for _, rec := range f.KmExcess {
		if rec.Applied {
			continue
		}
		r.Details = append(r.Details, &entity.BillingLineDetail{
			ConceptCode:   entity.ConceptKmExcess,
			Description:   fmt.Sprintf("Exceso de km banda %s (%s km)", rec.Bracket, rec.KmOver),
			Quantity:      decimal.NewFromInt(1),
			UnitPrice:     rec.TotalAmount,
			Subtotal:      rec.BaseAmount,
			Total:         rec.TotalAmount,
			SourceRefID:   rec.ID,
			SourceRefType: entity.SourceRefKmExcess,
		})
		r.ConsumedKmExcess = append(r.ConsumedKmExcess, rec.ID)
	}

	for _, t := range f.Tickets {
		if t.Status != entity.TicketStatusApproved {
			continue
		}
		r.Details = append(r.Details, &entity.BillingLineDetail{
			ConceptCode:   entity.ConceptTicketCredit,
			Description:   "Ticket a favor: " + t.Description,
			Quantity:      decimal.NewFromInt(1),
			UnitPrice:     t.Amount,
			Subtotal:      t.Amount,
			Total:         t.Amount,
			IsCredit:      true,
			SourceRefID:   t.ID,
			SourceRefType: entity.SourceRefTicket,
		})
		r.ConsumedTickets = append(r.ConsumedTickets, t.ID)
	}

	if line.MoraAmount.IsPositive() {
		cappedDays := f.MoraDays
		if f.MoraMaxDays > 0 && cappedDays > f.MoraMaxDays {
			cappedDays = f.MoraMaxDays
		}
		r.Details = append(r.Details, &entity.BillingLineDetail{
			ConceptCode: entity.ConceptMora,
			Description: fmt.Sprintf("Mora sobre saldo anterior (%d días)", cappedDays),
			Quantity:    decimal.NewFromInt(int64(cappedDays)),
			UnitPrice:   f.PriorBalance.Mul(f.MoraRate).Round(0),
			Subtotal:    line.MoraAmount,
			Total:       line.MoraAmount,
		})
	}
}

func modalityLabel(m string) string {
	switch m {
	case entity.ModalityFixedFee:
		return "tarifa fija"
	case entity.ModalityShiftBased:
		return "por turnos"
	default:
		return "sin modalidad"
	}
}
