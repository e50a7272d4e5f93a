package repository

import "github.com/tu-usuario/flota-pro/internal/domain/entity"

// GuaranteeRepository define el puerto de las cuentas de garantía.
type GuaranteeRepository interface {
	// GetByDriver devuelve la cuenta del conductor o nil si aún no existe.
	GetByDriver(driverID string) (*entity.GuaranteeAccount, error)
	// Save inserta o actualiza la cuenta (una fila por conductor).
	Save(acc *entity.GuaranteeAccount) error
}
