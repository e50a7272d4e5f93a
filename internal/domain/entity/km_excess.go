package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// KmExcessRecord es el cargo por exceder el kilometraje semanal contractual.
// Lo crea el proceso de lectura de odómetros; su precio (banda, porcentaje,
// base, IVA) queda fijado en la creación. El motor de facturación solo consume
// registros con Applied=false y los marca aplicados.
type KmExcessRecord struct {
	ID         string
	DriverID   string
	PeriodID   string // periodo que lo consumió; vacío mientras Applied=false
	KmOver     decimal.Decimal
	Bracket    string // etiqueta de la banda (ej. "A", "B", "C")
	Percentage decimal.Decimal
	BaseAmount decimal.Decimal
	TaxAmount  decimal.Decimal
	TotalAmount decimal.Decimal
	Applied    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// KmExcessTier es una banda de la tabla ordenada y no solapada de precios por
// porcentaje de exceso sobre el kilometraje base (configuración externa).
type KmExcessTier struct {
	ID         string
	Bracket    string
	MinPct     decimal.Decimal // porcentaje de exceso inclusive
	MaxPct     decimal.Decimal // exclusivo; cero = sin tope (última banda)
	Percentage decimal.Decimal // puntos porcentuales de la renta semanal a cobrar
}
