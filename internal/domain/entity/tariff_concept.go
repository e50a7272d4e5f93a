package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Códigos del catálogo de conceptos tarifados.
const (
	TariffRent           = "RENT"            // renta semanal, por modalidad
	TariffGuaranteeQuota = "GUARANTEE_QUOTA" // cuota semanal de garantía, por modalidad
	TariffMoraRate       = "MORA_RATE"       // tasa diaria de mora (sin modalidad)
	TariffKmExcessVat    = "KM_EXCESS_VAT"   // IVA del cargo por exceso de km (sin modalidad)
)

// TariffConcept es una entrada del catálogo de conceptos con precio vigente.
// Modality vacía = el concepto no distingue modalidad.
type TariffConcept struct {
	Code      string
	Modality  string
	Name      string
	Price     decimal.Decimal
	UpdatedAt time.Time
}
