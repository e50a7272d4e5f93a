package repository

import "github.com/tu-usuario/flota-pro/internal/domain/entity"

// BalanceRepository define el puerto del libro de saldos por conductor.
// El saldo es una cabecera mutable más un rastro de movimientos solo-inserción;
// por convención CurrentBalance = suma con signo de los movimientos.
type BalanceRepository interface {
	// GetByDriver devuelve el saldo del conductor o nil si aún no existe.
	GetByDriver(driverID string) (*entity.DriverBalance, error)
	// Upsert inserta o actualiza la cabecera de saldo.
	Upsert(b *entity.DriverBalance) error
	// AppendMovement agrega un movimiento al rastro auditable.
	AppendMovement(m *entity.BalanceMovement) error
	ListMovements(driverID string) ([]*entity.BalanceMovement, error)
}
