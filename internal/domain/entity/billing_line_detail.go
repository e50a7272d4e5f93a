package entity

import "github.com/shopspring/decimal"

// Códigos de concepto de las líneas de detalle.
const (
	ConceptRent         = "RENT"
	ConceptGuarantee    = "GUARANTEE"
	ConceptKmExcess     = "KM_EXCESS"
	ConceptTicketCredit = "TICKET_CREDIT"
	ConceptMora         = "MORA"
	ConceptAdjustment   = "ADJUSTMENT"
)

// Tipos de referencia de origen de una línea de detalle.
const (
	SourceRefKmExcess = "KM_EXCESS_RECORD"
	SourceRefTicket   = "TICKET_CREDIT"
)

// BillingLineDetail es una línea de detalle de la factura: un renglón por concepto no nulo.
type BillingLineDetail struct {
	ID            string
	BillingLineID string
	ConceptCode   string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
	Total         decimal.Decimal
	IsCredit      bool
	SourceRefID   string // ID del hecho consumido (excedente, ticket), si aplica
	SourceRefType string
}
