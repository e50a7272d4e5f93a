package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/flota-pro/internal/application/dto"
	"github.com/tu-usuario/flota-pro/internal/domain"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
	"github.com/tu-usuario/flota-pro/pkg/logger"
)

// TicketUseCase administra los tickets a favor del conductor. El ciclo es
// PENDING -> APPROVED/REJECTED por un supervisor; solo los APPROVED entran a
// la facturación y al consumirse quedan APPLIED.
type TicketUseCase struct {
	ticketRepo repository.TicketCreditRepository
	driverRepo repository.DriverRepository
	log        *logger.Logger
}

// NewTicketUseCase construye el caso de uso.
func NewTicketUseCase(ticketRepo repository.TicketCreditRepository, driverRepo repository.DriverRepository, log *logger.Logger) *TicketUseCase {
	return &TicketUseCase{ticketRepo: ticketRepo, driverRepo: driverRepo, log: log}
}

// Create registra un ticket en PENDING.
func (uc *TicketUseCase) Create(req dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	if req.DriverID == "" || !req.Amount.IsPositive() || req.Description == "" {
		return nil, domain.ErrInvalidInput
	}
	driver, err := uc.driverRepo.GetByID(req.DriverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	t := &entity.TicketCredit{
		ID:          uuid.New().String(),
		DriverID:    req.DriverID,
		Amount:      req.Amount,
		Description: req.Description,
		Status:      entity.TicketStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.ticketRepo.Create(t); err != nil {
		return nil, err
	}
	return toTicketResponse(t), nil
}

// Approve pasa un ticket PENDING a APPROVED.
func (uc *TicketUseCase) Approve(id, actor string) (*dto.TicketResponse, error) {
	return uc.setStatus(id, actor, entity.TicketStatusApproved)
}

// Reject pasa un ticket PENDING a REJECTED.
func (uc *TicketUseCase) Reject(id, actor string) (*dto.TicketResponse, error) {
	return uc.setStatus(id, actor, entity.TicketStatusRejected)
}

func (uc *TicketUseCase) setStatus(id, actor, status string) (*dto.TicketResponse, error) {
	t, err := uc.ticketRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	changed, err := uc.ticketRepo.SetStatus(id, status)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Ya no estaba PENDING: aprobado, rechazado o consumido entretanto.
		return nil, domain.ErrConflict
	}
	t.Status = status
	uc.log.Info().Str("ticket_id", id).Str("actor", actor).Str("status", status).Msg("ticket revisado")
	return toTicketResponse(t), nil
}

// ListByDriver devuelve el historial de tickets del conductor.
func (uc *TicketUseCase) ListByDriver(driverID string) ([]dto.TicketResponse, error) {
	tickets, err := uc.ticketRepo.ListByDriver(driverID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, *toTicketResponse(t))
	}
	return out, nil
}

func toTicketResponse(t *entity.TicketCredit) *dto.TicketResponse {
	return &dto.TicketResponse{
		ID:          t.ID,
		DriverID:    t.DriverID,
		Amount:      t.Amount,
		Description: t.Description,
		Status:      t.Status,
		PeriodID:    t.PeriodID,
	}
}
