package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/flota-pro/internal/application/billing"
	"github.com/tu-usuario/flota-pro/internal/application/dto"
	"github.com/tu-usuario/flota-pro/internal/domain"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
)

func TestPeriodTransitions(t *testing.T) {
	cases := []struct {
		status                  string
		generate, close, reopen bool
	}{
		{entity.PeriodStatusNotGenerated, true, false, false},
		{entity.PeriodStatusProcessing, false, false, false},
		{entity.PeriodStatusOpen, true, true, false},
		{entity.PeriodStatusClosed, false, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			assert.Equal(t, tc.generate, billing.CanGenerate(tc.status))
			assert.Equal(t, tc.close, billing.CanClose(tc.status))
			assert.Equal(t, tc.reopen, billing.CanReopen(tc.status))
		})
	}
}

func TestCloseAndReopenPeriod(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))

	report, err := env.gen.Generate(context.Background(), testWeek, testYear)
	require.NoError(t, err)

	closed, err := env.periods.Close(report.PeriodID, "supervisor-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PeriodStatusClosed, closed.Status)
	assert.Equal(t, "supervisor-1", closed.ClosedBy)
	assert.NotEmpty(t, closed.ClosedAt)

	// Cerrar dos veces no es legal.
	_, err = env.periods.Close(report.PeriodID, "supervisor-2")
	assert.ErrorIs(t, err, domain.ErrConflict)

	reopened, err := env.periods.Reopen(report.PeriodID, "supervisor-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PeriodStatusOpen, reopened.Status)
	assert.Empty(t, reopened.ClosedBy)

	// Reabierto, el periodo vuelve a admitir regeneración.
	_, err = env.gen.Generate(context.Background(), testWeek, testYear)
	assert.NoError(t, err)
}

func TestGetByWeekSynthetic(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.periods.GetByWeek(testWeek, testYear)
	require.NoError(t, err)
	assert.Equal(t, entity.PeriodStatusNotGenerated, resp.Status)
	assert.Equal(t, "2025-08-04", resp.StartDate)
	assert.Empty(t, resp.ID)
}

func TestPeriodLines(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))
	env.addDriver("d2", entity.ModalityShiftBased, aug(1))

	report, err := env.gen.Generate(context.Background(), testWeek, testYear)
	require.NoError(t, err)

	lines, err := env.periods.Lines(report.PeriodID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "d1", lines[0].DriverID)
	assert.NotEmpty(t, lines[0].Details, "las líneas cargan sus detalles")

	_, err = env.periods.Lines("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettlementDraftThenApprove(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))
	// Garantía ya completa: al retiro se devuelve lo que exceda la deuda.
	env.store.guarantees["d1"] = &entity.GuaranteeAccount{
		DriverID: "d1", Modality: entity.ModalityFixedFee,
		TotalInstallments: 10, InstallmentsPaid: 10,
		AmountPaid: dec("500000"), Status: entity.GuaranteeStatusCompleted,
	}

	// Corte el miércoles 6: lunes a miércoles son 3 días.
	draft, err := env.settlements.Create(dto.CreateSettlementRequest{DriverID: "d1", CutoffDate: "2025-08-06"})
	require.NoError(t, err)
	assert.Equal(t, entity.SettlementStatusDraft, draft.Status)
	assert.Equal(t, 3, draft.DaysBilled)
	assert.True(t, draft.RentAmount.Equal(dec("192857")), "renta: %s", draft.RentAmount)
	assert.True(t, draft.TotalDue.Equal(dec("192857")), "garantía completa ya no cobra cuota")
	assert.True(t, draft.GuaranteeRefund.Equal(dec("307143")), "devolución: %s", draft.GuaranteeRefund)

	// El borrador no toca nada.
	assert.Equal(t, entity.DriverStatusActive, env.store.drivers["d1"].Status)
	assert.Empty(t, env.store.movements)

	approved, err := env.settlements.Approve(context.Background(), draft.ID, "supervisor-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SettlementStatusApproved, approved.Status)
	assert.Equal(t, "supervisor-1", approved.ApprovedBy)

	// Aprobar es terminal.
	assert.Equal(t, entity.DriverStatusInactive, env.store.drivers["d1"].Status)
	assert.False(t, env.store.assignments["d1"].Active)

	// Saldo final: deuda menos devolución (queda a favor del conductor).
	bal := env.store.balances["d1"]
	require.NotNil(t, bal)
	assert.True(t, bal.CurrentBalance.Equal(dec("-114286")), "saldo final: %s", bal.CurrentBalance)

	// Doble aprobación rechazada.
	_, err = env.settlements.Approve(context.Background(), draft.ID, "supervisor-2")
	assert.ErrorIs(t, err, domain.ErrSettlementApproved)
}

func TestSettlementConsumesPendingFacts(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))
	env.store.kmRecords["km1"] = &entity.KmExcessRecord{
		ID: "km1", DriverID: "d1", KmOver: dec("50"), Bracket: "A",
		Percentage: dec("5"), BaseAmount: dec("22500"), TaxAmount: dec("4275"), TotalAmount: dec("26775"),
	}
	env.store.tickets["tk1"] = &entity.TicketCredit{
		ID: "tk1", DriverID: "d1", Amount: dec("30000"),
		Description: "Peaje", Status: entity.TicketStatusApproved,
	}

	draft, err := env.settlements.Create(dto.CreateSettlementRequest{DriverID: "d1", CutoffDate: "2025-08-06"})
	require.NoError(t, err)
	assert.True(t, draft.KmExcessAmount.Equal(dec("26775")))
	assert.True(t, draft.Credits.Equal(dec("30000")))

	_, err = env.settlements.Approve(context.Background(), draft.ID, "supervisor-1")
	require.NoError(t, err)

	assert.True(t, env.store.kmRecords["km1"].Applied, "tras la liquidación no quedan hechos facturables")
	assert.Equal(t, entity.TicketStatusApplied, env.store.tickets["tk1"].Status)
}

func TestSettlementApproveRejectsDriftedFacts(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))
	env.store.tickets["tk1"] = &entity.TicketCredit{
		ID: "tk1", DriverID: "d1", Amount: dec("30000"),
		Description: "Peaje", Status: entity.TicketStatusApproved,
	}

	draft, err := env.settlements.Create(dto.CreateSettlementRequest{DriverID: "d1", CutoffDate: "2025-08-06"})
	require.NoError(t, err)
	assert.True(t, draft.Credits.Equal(dec("30000")))

	// Entra un ticket nuevo después del borrador: aprobar con la foto vieja
	// consumiría valor nunca liquidado.
	env.store.tickets["tk2"] = &entity.TicketCredit{
		ID: "tk2", DriverID: "d1", Amount: dec("20000"),
		Description: "Lavado", Status: entity.TicketStatusApproved,
	}
	_, err = env.settlements.Approve(context.Background(), draft.ID, "supervisor-1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	// El rechazo no deja efectos: borrador intacto, conductor activo y los
	// tickets siguen facturables.
	assert.Equal(t, entity.SettlementStatusDraft, env.store.settlements[draft.ID].Status)
	assert.Equal(t, entity.DriverStatusActive, env.store.drivers["d1"].Status)
	assert.Equal(t, entity.TicketStatusApproved, env.store.tickets["tk1"].Status)
	assert.Equal(t, entity.TicketStatusApproved, env.store.tickets["tk2"].Status)
	assert.Empty(t, env.store.movements)

	// Un borrador fresco ve los hechos actuales y ya puede aprobarse.
	draft2, err := env.settlements.Create(dto.CreateSettlementRequest{DriverID: "d1", CutoffDate: "2025-08-06"})
	require.NoError(t, err)
	assert.True(t, draft2.Credits.Equal(dec("50000")))

	_, err = env.settlements.Approve(context.Background(), draft2.ID, "supervisor-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusApplied, env.store.tickets["tk1"].Status)
	assert.Equal(t, entity.TicketStatusApplied, env.store.tickets["tk2"].Status)
}

func TestSettlementRejectsInactiveDriver(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))
	env.store.drivers["d1"].Status = entity.DriverStatusInactive

	_, err := env.settlements.Create(dto.CreateSettlementRequest{DriverID: "d1", CutoffDate: "2025-08-06"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSettlementUnknownDriver(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.settlements.Create(dto.CreateSettlementRequest{DriverID: "nadie", CutoffDate: "2025-08-06"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
