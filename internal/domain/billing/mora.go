package billing

import "github.com/shopspring/decimal"

// MoraCharge calcula el interés de mora sobre el saldo arrastrado:
// round(saldo × tasa × días), con los días topados a capDays.
// Solo aplica con saldo deudor y al menos un día de mora; el significado exacto
// de MoraDays (cuándo se reinicia el contador) lo define el subsistema de
// pagos, no este motor.
func MoraCharge(priorBalance, rate decimal.Decimal, moraDays, capDays int) decimal.Decimal {
	if !priorBalance.IsPositive() || moraDays <= 0 {
		return decimal.Zero
	}
	days := moraDays
	if capDays > 0 && days > capDays {
		days = capDays
	}
	return priorBalance.Mul(rate).Mul(decimal.NewFromInt(int64(days))).Round(0)
}
