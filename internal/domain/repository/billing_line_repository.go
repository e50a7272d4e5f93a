package repository

import "github.com/tu-usuario/flota-pro/internal/domain/entity"

// BillingLineRepository define el puerto de persistencia de las facturas de
// conductor y sus detalles. La regeneración es borrar-y-reinsertar por
// conductor, dentro de la transacción de ese conductor.
type BillingLineRepository interface {
	Create(line *entity.BillingLine) error
	CreateDetail(detail *entity.BillingLineDetail) error
	// DeleteByPeriodAndDriver borra la línea del conductor en el periodo con
	// sus detalles y libera los hechos que esa línea consumió, para que la
	// regeneración los vuelva a tomar.
	DeleteByPeriodAndDriver(periodID, driverID string) error
	GetByPeriodAndDriver(periodID, driverID string) (*entity.BillingLine, error)
	ListByPeriod(periodID string) ([]*entity.BillingLine, error)
	GetDetails(billingLineID string) ([]*entity.BillingLineDetail, error)
}
