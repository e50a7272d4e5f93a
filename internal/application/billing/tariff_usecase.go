package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/flota-pro/internal/application/dto"
	"github.com/tu-usuario/flota-pro/internal/domain"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
	"github.com/tu-usuario/flota-pro/pkg/logger"
)

// TariffUseCase administra el catálogo de conceptos tarifados y la tabla de
// bandas de exceso de km.
type TariffUseCase struct {
	tariffRepo repository.TariffRepository
	tierRepo   repository.KmExcessTierRepository
	log        *logger.Logger
}

// NewTariffUseCase construye el caso de uso.
func NewTariffUseCase(tariffRepo repository.TariffRepository, tierRepo repository.KmExcessTierRepository, log *logger.Logger) *TariffUseCase {
	return &TariffUseCase{tariffRepo: tariffRepo, tierRepo: tierRepo, log: log}
}

// ListConcepts devuelve el catálogo completo.
func (uc *TariffUseCase) ListConcepts() ([]*entity.TariffConcept, error) {
	return uc.tariffRepo.List()
}

// UpsertConcept crea o actualiza un concepto del catálogo.
func (uc *TariffUseCase) UpsertConcept(req dto.TariffConceptRequest, actor string) (*entity.TariffConcept, error) {
	switch req.Code {
	case entity.TariffRent, entity.TariffGuaranteeQuota:
		if req.Modality != entity.ModalityFixedFee && req.Modality != entity.ModalityShiftBased {
			return nil, fmt.Errorf("concepto %s requiere modalidad: %w", req.Code, domain.ErrInvalidInput)
		}
	case entity.TariffMoraRate, entity.TariffKmExcessVat:
		if req.Modality != "" {
			return nil, fmt.Errorf("concepto %s no admite modalidad: %w", req.Code, domain.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("código de concepto desconocido %q: %w", req.Code, domain.ErrInvalidInput)
	}
	if req.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	c := &entity.TariffConcept{
		Code:      req.Code,
		Modality:  req.Modality,
		Name:      req.Name,
		Price:     req.Price,
		UpdatedAt: time.Now(),
	}
	if err := uc.tariffRepo.Upsert(c); err != nil {
		return nil, err
	}
	uc.log.Info().Str("code", c.Code).Str("modality", c.Modality).
		Str("price", c.Price.String()).Str("actor", actor).Msg("concepto tarifado actualizado")
	return c, nil
}

// ListTiers devuelve la tabla de bandas vigente.
func (uc *TariffUseCase) ListTiers() ([]*entity.KmExcessTier, error) {
	return uc.tierRepo.ListOrdered()
}

// ReplaceTiers reemplaza la tabla de bandas completa. Las bandas deben venir
// ordenadas, sin solapes ni huecos desde 0%, y solo la última puede ser abierta
// (MaxPct = 0).
func (uc *TariffUseCase) ReplaceTiers(reqs []dto.KmTierRequest, actor string) ([]*entity.KmExcessTier, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	tiers := make([]*entity.KmExcessTier, 0, len(reqs))
	prevMax := decimal.Zero
	for i, r := range reqs {
		if r.Bracket == "" || r.Percentage.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if !r.MinPct.Equal(prevMax) {
			return nil, fmt.Errorf("banda %s no empalma con la anterior: %w", r.Bracket, domain.ErrInvalidInput)
		}
		open := r.MaxPct.IsZero()
		if open && i != len(reqs)-1 {
			return nil, fmt.Errorf("solo la última banda puede ser abierta: %w", domain.ErrInvalidInput)
		}
		if !open && r.MaxPct.LessThanOrEqual(r.MinPct) {
			return nil, fmt.Errorf("banda %s con rango inválido: %w", r.Bracket, domain.ErrInvalidInput)
		}
		tiers = append(tiers, &entity.KmExcessTier{
			ID:         uuid.New().String(),
			Bracket:    r.Bracket,
			MinPct:     r.MinPct,
			MaxPct:     r.MaxPct,
			Percentage: r.Percentage,
		})
		prevMax = r.MaxPct
	}
	if err := uc.tierRepo.Replace(tiers); err != nil {
		return nil, err
	}
	uc.log.Info().Int("tiers", len(tiers)).Str("actor", actor).Msg("tabla de bandas reemplazada")
	return tiers, nil
}
