package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/flota-pro/internal/application/dto"
	"github.com/tu-usuario/flota-pro/internal/domain"
	domainbilling "github.com/tu-usuario/flota-pro/internal/domain/billing"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
	"github.com/tu-usuario/flota-pro/pkg/logger"
)

// KmExcessUseCase registra y administra los cargos por exceso de kilometraje.
// El precio se fija en la creación con la tabla de bandas vigente; una vez
// consumido por una corrida el registro es inmutable.
type KmExcessUseCase struct {
	kmRepo     repository.KmExcessRepository
	tierRepo   repository.KmExcessTierRepository
	driverRepo repository.DriverRepository
	tariffs    *TariffReader
	log        *logger.Logger
}

// NewKmExcessUseCase construye el caso de uso.
func NewKmExcessUseCase(
	kmRepo repository.KmExcessRepository,
	tierRepo repository.KmExcessTierRepository,
	driverRepo repository.DriverRepository,
	tariffs *TariffReader,
	log *logger.Logger,
) *KmExcessUseCase {
	return &KmExcessUseCase{kmRepo: kmRepo, tierRepo: tierRepo, driverRepo: driverRepo, tariffs: tariffs, log: log}
}

// Create tarifica y guarda un exceso de odómetro. La banda se elige por el
// porcentaje de exceso sobre el kilometraje base y el monto sale de la renta
// semanal de la modalidad, más IVA.
func (uc *KmExcessUseCase) Create(req dto.CreateKmExcessRequest) (*dto.KmExcessResponse, error) {
	if req.DriverID == "" || !req.KmOver.IsPositive() || !req.BaseKm.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	driver, err := uc.driverRepo.GetByID(req.DriverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, domain.ErrNotFound
	}

	modality, err := uc.resolveModality(req.DriverID, req.Modality)
	if err != nil {
		return nil, err
	}

	tariffs, err := uc.tariffs.ResolveForModality(modality)
	if err != nil {
		return nil, err
	}
	tiers, err := uc.tierRepo.ListOrdered()
	if err != nil {
		return nil, err
	}
	tier, err := domainbilling.SelectTier(tiers, req.KmOver, req.BaseKm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	price := domainbilling.PriceExcess(tariffs.WeeklyRent, tier, tariffs.VatRate)

	now := time.Now()
	rec := &entity.KmExcessRecord{
		ID:          uuid.New().String(),
		DriverID:    req.DriverID,
		KmOver:      req.KmOver,
		Bracket:     tier.Bracket,
		Percentage:  tier.Percentage,
		BaseAmount:  price.BaseAmount,
		TaxAmount:   price.TaxAmount,
		TotalAmount: price.Total,
		Applied:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.kmRepo.Create(rec); err != nil {
		return nil, err
	}
	uc.log.Info().Str("driver_id", req.DriverID).Str("bracket", tier.Bracket).
		Str("total", price.Total.String()).Msg("exceso de km registrado")
	return toKmExcessResponse(rec), nil
}

// Update retarifica un registro aún no consumido.
func (uc *KmExcessUseCase) Update(id string, req dto.CreateKmExcessRequest) (*dto.KmExcessResponse, error) {
	rec, err := uc.kmRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	if rec.Applied {
		return nil, domain.ErrRecordApplied
	}
	if !req.KmOver.IsPositive() || !req.BaseKm.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	modality, err := uc.resolveModality(rec.DriverID, req.Modality)
	if err != nil {
		return nil, err
	}
	tariffs, err := uc.tariffs.ResolveForModality(modality)
	if err != nil {
		return nil, err
	}
	tiers, err := uc.tierRepo.ListOrdered()
	if err != nil {
		return nil, err
	}
	tier, err := domainbilling.SelectTier(tiers, req.KmOver, req.BaseKm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	price := domainbilling.PriceExcess(tariffs.WeeklyRent, tier, tariffs.VatRate)

	rec.KmOver = req.KmOver
	rec.Bracket = tier.Bracket
	rec.Percentage = tier.Percentage
	rec.BaseAmount = price.BaseAmount
	rec.TaxAmount = price.TaxAmount
	rec.TotalAmount = price.Total
	rec.UpdatedAt = time.Now()
	if err := uc.kmRepo.Update(rec); err != nil {
		return nil, err
	}
	return toKmExcessResponse(rec), nil
}

// resolveModality toma la modalidad pedida o, en su defecto, la de la
// asignación activa del conductor. Crear y retarificar usan la misma regla
// para que una actualización no cambie la base tarifaria en silencio.
func (uc *KmExcessUseCase) resolveModality(driverID, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	a, err := uc.driverRepo.GetActiveAssignment(driverID)
	if err != nil {
		return "", err
	}
	if a != nil && a.Modality != "" {
		return a.Modality, nil
	}
	return entity.ModalityFixedFee, nil
}

// Delete elimina un registro aún no consumido.
func (uc *KmExcessUseCase) Delete(id string) error {
	rec, err := uc.kmRepo.GetByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	deleted, err := uc.kmRepo.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrRecordApplied
	}
	return nil
}

// ListByDriver devuelve el historial de excesos del conductor.
func (uc *KmExcessUseCase) ListByDriver(driverID string) ([]dto.KmExcessResponse, error) {
	records, err := uc.kmRepo.ListByDriver(driverID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.KmExcessResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, *toKmExcessResponse(rec))
	}
	return out, nil
}

func toKmExcessResponse(rec *entity.KmExcessRecord) *dto.KmExcessResponse {
	return &dto.KmExcessResponse{
		ID:          rec.ID,
		DriverID:    rec.DriverID,
		KmOver:      rec.KmOver,
		Bracket:     rec.Bracket,
		Percentage:  rec.Percentage,
		BaseAmount:  rec.BaseAmount,
		TaxAmount:   rec.TaxAmount,
		TotalAmount: rec.TotalAmount,
		Applied:     rec.Applied,
		PeriodID:    rec.PeriodID,
	}
}
