package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// SelectTier elige la banda de exceso de kilometraje dado el exceso absoluto y
// el kilometraje base contractual. Las bandas se expresan en porcentaje de
// exceso sobre la base: MinPct inclusivo, MaxPct exclusivo (cero = sin tope).
func SelectTier(tiers []*entity.KmExcessTier, kmOver, baseKm decimal.Decimal) (*entity.KmExcessTier, error) {
	if baseKm.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("kilometraje base inválido: %s", baseKm)
	}
	if kmOver.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("exceso de kilometraje no positivo: %s", kmOver)
	}
	pct := kmOver.Div(baseKm).Mul(hundred)
	for _, t := range tiers {
		if pct.LessThan(t.MinPct) {
			continue
		}
		if t.MaxPct.IsZero() || pct.LessThan(t.MaxPct) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("sin banda para %s%% de exceso", pct.Round(2))
}

// ExcessPrice es el precio fijado a un registro de exceso en su creación.
type ExcessPrice struct {
	BaseAmount decimal.Decimal
	TaxAmount  decimal.Decimal
	Total      decimal.Decimal
}

// PriceExcess calcula el cargo de una banda: porcentaje de la renta semanal de
// la modalidad, más IVA. Percentage viene en puntos porcentuales, igual que
// MinPct/MaxPct. baseAmount = round(renta × pct/100); tax = round(base × iva).
func PriceExcess(weeklyRent decimal.Decimal, tier *entity.KmExcessTier, vatRate decimal.Decimal) ExcessPrice {
	base := weeklyRent.Mul(tier.Percentage).Div(hundred).Round(0)
	tax := base.Mul(vatRate).Round(0)
	return ExcessPrice{
		BaseAmount: base,
		TaxAmount:  tax,
		Total:      base.Add(tax),
	}
}
