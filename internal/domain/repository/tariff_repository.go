package repository

import "github.com/tu-usuario/flota-pro/internal/domain/entity"

// TariffRepository define el puerto del catálogo de conceptos tarifados.
type TariffRepository interface {
	// GetConcept devuelve el concepto vigente por código y modalidad
	// (modalidad vacía para conceptos globales). nil si no existe.
	GetConcept(code, modality string) (*entity.TariffConcept, error)
	List() ([]*entity.TariffConcept, error)
	Upsert(c *entity.TariffConcept) error
}

// KmExcessTierRepository define el puerto de la tabla de bandas de exceso de km.
type KmExcessTierRepository interface {
	// ListOrdered devuelve las bandas ordenadas por MinPct ascendente.
	ListOrdered() ([]*entity.KmExcessTier, error)
	// Replace reemplaza la tabla completa (configuración externa).
	Replace(tiers []*entity.KmExcessTier) error
}
