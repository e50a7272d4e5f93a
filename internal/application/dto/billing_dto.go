package dto

import "github.com/shopspring/decimal"

// PeriodRequest identifica la semana objetivo de una generación o vista previa.
type PeriodRequest struct {
	Week int `json:"week"`
	Year int `json:"year"`
}

// PeriodResponse cabecera del periodo con totales.
type PeriodResponse struct {
	ID           string          `json:"id"`
	Week         int             `json:"week"`
	Year         int             `json:"year"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	Status       string          `json:"status"`
	DriverCount  int             `json:"driverCount"`
	TotalCharges decimal.Decimal `json:"totalCharges"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
	TotalNet     decimal.Decimal `json:"totalNet"`
	ClosedAt     string          `json:"closedAt,omitempty"`
	ClosedBy     string          `json:"closedBy,omitempty"`
}

// BillingLineResponse factura semanal de un conductor.
type BillingLineResponse struct {
	ID              string                `json:"id,omitempty"`
	DriverID        string                `json:"driverId"`
	Modality        string                `json:"modality"`
	DaysBilled      int                   `json:"daysBilled"`
	ProratedFactor  decimal.Decimal       `json:"proratedFactor"`
	RentAmount      decimal.Decimal       `json:"rentAmount"`
	GuaranteeAmount decimal.Decimal       `json:"guaranteeAmount"`
	KmExcessAmount  decimal.Decimal       `json:"kmExcessAmount"`
	GrossCharges    decimal.Decimal       `json:"grossCharges"`
	Credits         decimal.Decimal       `json:"credits"`
	NetCharges      decimal.Decimal       `json:"netCharges"`
	PriorBalance    decimal.Decimal       `json:"priorBalance"`
	MoraDays        int                   `json:"moraDays"`
	MoraAmount      decimal.Decimal       `json:"moraAmount"`
	TotalDue        decimal.Decimal       `json:"totalDue"`
	Estimated       bool                  `json:"estimated,omitempty"`
	NeedsReview     bool                  `json:"needsReview,omitempty"`
	Details         []LineDetailResponse  `json:"details,omitempty"`
}

// LineDetailResponse renglón de concepto de una factura.
type LineDetailResponse struct {
	ConceptCode string          `json:"conceptCode"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Total       decimal.Decimal `json:"total"`
	IsCredit    bool            `json:"isCredit,omitempty"`
}

// SkippedDriver conductor excluido de la corrida con su motivo.
type SkippedDriver struct {
	DriverID string `json:"driverId"`
	Reason   string `json:"reason"`
}

// GenerationReport resultado de una corrida de generación: la corrida nunca
// falla completa por errores de un conductor, reporta parciales.
type GenerationReport struct {
	PeriodID         string          `json:"periodId"`
	Week             int             `json:"week"`
	Year             int             `json:"year"`
	DriversProcessed int             `json:"driversProcessed"`
	DriversSkipped   []SkippedDriver `json:"driversSkipped,omitempty"`
	TotalCharges     decimal.Decimal `json:"totalCharges"`
	TotalCredits     decimal.Decimal `json:"totalCredits"`
	TotalNet         decimal.Decimal `json:"totalNet"`
}

// PreviewResponse proyección de la semana sin persistir nada.
type PreviewResponse struct {
	Week         int                   `json:"week"`
	Year         int                   `json:"year"`
	StartDate    string                `json:"startDate"`
	EndDate      string                `json:"endDate"`
	Lines        []BillingLineResponse `json:"lines"`
	Skipped      []SkippedDriver       `json:"skipped,omitempty"`
	TotalCharges decimal.Decimal       `json:"totalCharges"`
	TotalCredits decimal.Decimal       `json:"totalCredits"`
	TotalNet     decimal.Decimal       `json:"totalNet"`
}

// CreateSettlementRequest solicitud de liquidación de retiro.
type CreateSettlementRequest struct {
	DriverID   string `json:"driverId"`
	CutoffDate string `json:"cutoffDate"` // YYYY-MM-DD
}

// SettlementResponse liquidación calculada o aprobada.
type SettlementResponse struct {
	ID              string          `json:"id"`
	DriverID        string          `json:"driverId"`
	CutoffDate      string          `json:"cutoffDate"`
	Modality        string          `json:"modality"`
	DaysBilled      int             `json:"daysBilled"`
	RentAmount      decimal.Decimal `json:"rentAmount"`
	KmExcessAmount  decimal.Decimal `json:"kmExcessAmount"`
	Credits         decimal.Decimal `json:"credits"`
	PriorBalance    decimal.Decimal `json:"priorBalance"`
	MoraAmount      decimal.Decimal `json:"moraAmount"`
	TotalDue        decimal.Decimal `json:"totalDue"`
	GuaranteeRefund decimal.Decimal `json:"guaranteeRefund"`
	Status          string          `json:"status"`
	ApprovedAt      string          `json:"approvedAt,omitempty"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
}

// CreateKmExcessRequest registro de exceso de odómetro a tarificar.
type CreateKmExcessRequest struct {
	DriverID string          `json:"driverId"`
	KmOver   decimal.Decimal `json:"kmOver"`
	BaseKm   decimal.Decimal `json:"baseKm"`
	Modality string          `json:"modality"`
}

// KmExcessResponse registro tarificado.
type KmExcessResponse struct {
	ID          string          `json:"id"`
	DriverID    string          `json:"driverId"`
	KmOver      decimal.Decimal `json:"kmOver"`
	Bracket     string          `json:"bracket"`
	Percentage  decimal.Decimal `json:"percentage"`
	BaseAmount  decimal.Decimal `json:"baseAmount"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Applied     bool            `json:"applied"`
	PeriodID    string          `json:"periodId,omitempty"`
}

// CreateTicketRequest ticket a favor del conductor.
type CreateTicketRequest struct {
	DriverID    string          `json:"driverId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// TicketResponse ticket con su estado.
type TicketResponse struct {
	ID          string          `json:"id"`
	DriverID    string          `json:"driverId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	PeriodID    string          `json:"periodId,omitempty"`
}

// BalanceResponse saldo corriente de un conductor.
type BalanceResponse struct {
	DriverID          string          `json:"driverId"`
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	MoraDays          int             `json:"moraDays"`
	AccruedMoraAmount decimal.Decimal `json:"accruedMoraAmount"`
}

// MovementResponse movimiento del rastro de saldo.
type MovementResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Concept    string          `json:"concept"`
	Reference  string          `json:"reference,omitempty"`
	Week       *int            `json:"week,omitempty"`
	Year       *int            `json:"year,omitempty"`
	OccurredAt string          `json:"occurredAt"`
}

// CreateAdjustmentRequest ajuste manual de saldo (cargo o abono).
type CreateAdjustmentRequest struct {
	Type    string          `json:"type"` // CARGO | ABONO
	Amount  decimal.Decimal `json:"amount"`
	Concept string          `json:"concept"`
}

// TariffConceptRequest alta/actualización de un concepto tarifado.
type TariffConceptRequest struct {
	Code     string          `json:"code"`
	Modality string          `json:"modality,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
}

// KmTierRequest banda de la tabla de excesos.
type KmTierRequest struct {
	Bracket    string          `json:"bracket"`
	MinPct     decimal.Decimal `json:"minPct"`
	MaxPct     decimal.Decimal `json:"maxPct"`
	Percentage decimal.Decimal `json:"percentage"`
}
