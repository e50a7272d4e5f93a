package billing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
)

// NewGuaranteeAccount crea la cuenta de garantía de un conductor en su primera
// semana facturable.
func NewGuaranteeAccount(driverID, modality string, totalInstallments int) *entity.GuaranteeAccount {
	return &entity.GuaranteeAccount{
		DriverID:          driverID,
		Modality:          modality,
		TotalInstallments: totalInstallments,
		InstallmentsPaid:  0,
		AmountPaid:        decimal.Zero,
		Status:            entity.GuaranteeStatusInProgress,
		UpdatedAt:         time.Now(),
	}
}

// GuaranteeCharge calcula la cuota de garantía de la semana: la cuota
// prorrateada, topada al remanente del objetivo para nunca sobrepasarlo.
// Una cuenta COMPLETED siempre cobra cero.
func GuaranteeCharge(acc *entity.GuaranteeAccount, quota decimal.Decimal, days int) decimal.Decimal {
	if acc.Completed() {
		return decimal.Zero
	}
	remaining := acc.Target(quota).Sub(acc.AmountPaid)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	charge := Prorate(quota, days)
	if charge.GreaterThan(remaining) {
		charge = remaining
	}
	return charge
}

// AdvanceGuarantee avanza la cuenta tras una corrida exitosa: suma el cargo,
// incrementa el contador de cuotas y pasa a COMPLETED si se alcanzó el objetivo
// por monto O por número de cuotas, lo que ocurra primero.
func AdvanceGuarantee(acc *entity.GuaranteeAccount, charge, quota decimal.Decimal) {
	if acc.Completed() {
		return
	}
	acc.AmountPaid = acc.AmountPaid.Add(charge)
	acc.InstallmentsPaid++
	if acc.AmountPaid.GreaterThanOrEqual(acc.Target(quota)) || acc.InstallmentsPaid >= acc.TotalInstallments {
		acc.Status = entity.GuaranteeStatusCompleted
	}
	acc.UpdatedAt = time.Now()
}

// GuaranteeRefund calcula la devolución de garantía en una liquidación:
//   - totalDue < 0 (saldo a favor): devolver min(amountPaid, |totalDue|)
//   - totalDue > 0 y amountPaid > totalDue: devolver el excedente
//
// Nunca negativa ni mayor a lo acumulado.
func GuaranteeRefund(totalDue, amountPaid decimal.Decimal) decimal.Decimal {
	if amountPaid.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if totalDue.IsNegative() {
		credit := totalDue.Neg()
		if credit.GreaterThan(amountPaid) {
			return amountPaid
		}
		return credit
	}
	if amountPaid.GreaterThan(totalDue) {
		return amountPaid.Sub(totalDue)
	}
	return decimal.Zero
}
