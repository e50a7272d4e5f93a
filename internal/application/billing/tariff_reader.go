package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/flota-pro/internal/domain"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
	"github.com/tu-usuario/flota-pro/pkg/config"
)

// ResolvedTariffs es el snapshot de tarifas de una modalidad para una corrida.
// Los campos *Estimated marcan que el concepto faltaba en el catálogo y se usó
// el valor de respaldo documentado en configuración.
type ResolvedTariffs struct {
	Modality           string
	WeeklyRent         decimal.Decimal
	RentEstimated      bool
	GuaranteeQuota     decimal.Decimal
	GuaranteeEstimated bool
	TotalInstallments  int
	MoraRate           decimal.Decimal
	VatRate            decimal.Decimal
}

// TariffReader resuelve los conceptos tarifados vigentes con sus respaldos.
type TariffReader struct {
	repo repository.TariffRepository
	cfg  config.BillingConfig
}

// NewTariffReader construye el lector del catálogo.
func NewTariffReader(repo repository.TariffRepository, cfg config.BillingConfig) *TariffReader {
	return &TariffReader{repo: repo, cfg: cfg}
}

// ResolveForModality arma el snapshot de tarifas de la modalidad. Un concepto
// ausente usa el respaldo y marca la estimación; un error de lectura del
// catálogo es falla dura (domain.ErrTariffUnavailable).
func (r *TariffReader) ResolveForModality(modality string) (*ResolvedTariffs, error) {
	out := &ResolvedTariffs{Modality: modality}

	rent, err := r.repo.GetConcept(entity.TariffRent, modality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTariffUnavailable, err)
	}
	if rent != nil {
		out.WeeklyRent = rent.Price
	} else {
		out.WeeklyRent = r.fallbackRent(modality)
		out.RentEstimated = true
	}

	quota, err := r.repo.GetConcept(entity.TariffGuaranteeQuota, modality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTariffUnavailable, err)
	}
	if quota != nil {
		out.GuaranteeQuota = quota.Price
	} else {
		out.GuaranteeQuota = r.cfg.FallbackGuaranteeQuota
		out.GuaranteeEstimated = true
	}

	mora, err := r.repo.GetConcept(entity.TariffMoraRate, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTariffUnavailable, err)
	}
	if mora != nil {
		out.MoraRate = mora.Price
	} else {
		out.MoraRate = r.cfg.MoraRate
	}

	vat, err := r.repo.GetConcept(entity.TariffKmExcessVat, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTariffUnavailable, err)
	}
	if vat != nil {
		out.VatRate = vat.Price
	} else {
		out.VatRate = r.cfg.FallbackKmExcessVatRate
	}

	switch modality {
	case entity.ModalityShiftBased:
		out.TotalInstallments = r.cfg.GuaranteeInstallmentsShiftBased
	default:
		out.TotalInstallments = r.cfg.GuaranteeInstallmentsFixedFee
	}
	return out, nil
}

// CheaperModality devuelve la modalidad de menor renta semanal; se usa cuando
// la asignación llega sin modalidad y la línea queda para revisión manual.
func (r *TariffReader) CheaperModality() (string, error) {
	fixed, err := r.ResolveForModality(entity.ModalityFixedFee)
	if err != nil {
		return "", err
	}
	shift, err := r.ResolveForModality(entity.ModalityShiftBased)
	if err != nil {
		return "", err
	}
	if shift.WeeklyRent.LessThan(fixed.WeeklyRent) {
		return entity.ModalityShiftBased, nil
	}
	return entity.ModalityFixedFee, nil
}

func (r *TariffReader) fallbackRent(modality string) decimal.Decimal {
	if modality == entity.ModalityShiftBased {
		return r.cfg.FallbackRentShiftBased
	}
	return r.cfg.FallbackRentFixedFee
}
