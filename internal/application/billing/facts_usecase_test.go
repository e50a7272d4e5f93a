package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/flota-pro/internal/application/dto"
	"github.com/tu-usuario/flota-pro/internal/domain"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
)

func TestKmExcessCreatePricesFromTierTable(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))

	// 50 km sobre 1000 base = 5% de exceso: banda A al 5% de la renta.
	resp, err := env.km.Create(dto.CreateKmExcessRequest{
		DriverID: "d1", KmOver: dec("50"), BaseKm: dec("1000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "A", resp.Bracket)
	assert.True(t, resp.BaseAmount.Equal(dec("22500")), "base: %s", resp.BaseAmount)
	assert.True(t, resp.TaxAmount.Equal(dec("4275")), "IVA 19%%: %s", resp.TaxAmount)
	assert.True(t, resp.TotalAmount.Equal(dec("26775")))
	assert.False(t, resp.Applied)

	// 300 sobre 1000 = 30%: banda abierta C.
	resp, err = env.km.Create(dto.CreateKmExcessRequest{
		DriverID: "d1", KmOver: dec("300"), BaseKm: dec("1000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "C", resp.Bracket)
}

func TestKmExcessUpdateKeepsAssignmentModality(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityShiftBased, aug(1))

	// Sin modalidad explícita se tarifica con la de la asignación activa.
	created, err := env.km.Create(dto.CreateKmExcessRequest{
		DriverID: "d1", KmOver: dec("50"), BaseKm: dec("1000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "A", created.Bracket)
	assert.True(t, created.BaseAmount.Equal(dec("19000")), "base sobre renta SHIFT_BASED: %s", created.BaseAmount)
	assert.True(t, created.TotalAmount.Equal(dec("22610")))

	// Retarificar sin modalidad explícita conserva la misma base.
	updated, err := env.km.Update(created.ID, dto.CreateKmExcessRequest{
		DriverID: "d1", KmOver: dec("50"), BaseKm: dec("1000"),
	})
	require.NoError(t, err)
	assert.True(t, updated.BaseAmount.Equal(dec("19000")), "base tras actualizar: %s", updated.BaseAmount)
	assert.True(t, updated.TaxAmount.Equal(dec("3610")))
	assert.True(t, updated.TotalAmount.Equal(dec("22610")))
}

func TestKmExcessImmutableOnceApplied(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))

	created, err := env.km.Create(dto.CreateKmExcessRequest{
		DriverID: "d1", KmOver: dec("50"), BaseKm: dec("1000"),
	})
	require.NoError(t, err)

	_, err = env.gen.Generate(context.Background(), testWeek, testYear)
	require.NoError(t, err)
	require.True(t, env.store.kmRecords[created.ID].Applied)

	_, err = env.km.Update(created.ID, dto.CreateKmExcessRequest{
		DriverID: "d1", KmOver: dec("80"), BaseKm: dec("1000"),
	})
	assert.ErrorIs(t, err, domain.ErrRecordApplied)

	err = env.km.Delete(created.ID)
	assert.ErrorIs(t, err, domain.ErrRecordApplied)
}

func TestKmExcessDeleteUnapplied(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))

	created, err := env.km.Create(dto.CreateKmExcessRequest{
		DriverID: "d1", KmOver: dec("50"), BaseKm: dec("1000"),
	})
	require.NoError(t, err)
	require.NoError(t, env.km.Delete(created.ID))
	assert.ErrorIs(t, env.km.Delete(created.ID), domain.ErrNotFound)
}

func TestTicketLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))

	created, err := env.tickets.Create(dto.CreateTicketRequest{
		DriverID: "d1", Amount: dec("30000"), Description: "Peaje",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusPending, created.Status)

	approved, err := env.tickets.Approve(created.ID, "supervisor-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusApproved, approved.Status)

	// La revisión es única: ya no está PENDING.
	_, err = env.tickets.Reject(created.ID, "supervisor-2")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTicketRejectedNeverBilled(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))

	created, err := env.tickets.Create(dto.CreateTicketRequest{
		DriverID: "d1", Amount: dec("30000"), Description: "Peaje",
	})
	require.NoError(t, err)
	_, err = env.tickets.Reject(created.ID, "supervisor-1")
	require.NoError(t, err)

	_, err = env.gen.Generate(context.Background(), testWeek, testYear)
	require.NoError(t, err)

	line := env.line("d1")
	require.NotNil(t, line)
	assert.True(t, line.Credits.IsZero())
	assert.Equal(t, entity.TicketStatusRejected, env.store.tickets[created.ID].Status)
}

func TestBalanceAdjustKeepsTrailConsistent(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))

	_, err := env.balances.Adjust(context.Background(), "d1", "cajero-1", dto.CreateAdjustmentRequest{
		Type: entity.MovementCharge, Amount: dec("80000"), Concept: "Daño de espejo",
	})
	require.NoError(t, err)
	resp, err := env.balances.Adjust(context.Background(), "d1", "cajero-1", dto.CreateAdjustmentRequest{
		Type: entity.MovementCredit, Amount: dec("30000"), Concept: "Abono en caja",
	})
	require.NoError(t, err)
	assert.True(t, resp.CurrentBalance.Equal(dec("50000")))

	movements, err := env.balances.Movements("d1")
	require.NoError(t, err)
	require.Len(t, movements, 2)
}

func TestBalanceAdjustValidation(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))

	_, err := env.balances.Adjust(context.Background(), "d1", "cajero-1", dto.CreateAdjustmentRequest{
		Type: "OTRO", Amount: dec("100"), Concept: "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.balances.Adjust(context.Background(), "d1", "cajero-1", dto.CreateAdjustmentRequest{
		Type: entity.MovementCharge, Amount: dec("-100"), Concept: "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBalanceGetZeroForNewDriver(t *testing.T) {
	env := newTestEnv(t)
	env.addDriver("d1", entity.ModalityFixedFee, aug(1))

	resp, err := env.balances.Get("d1")
	require.NoError(t, err)
	assert.True(t, resp.CurrentBalance.IsZero())

	_, err = env.balances.Get("nadie")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTariffUpsertValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tariffs.UpsertConcept(dto.TariffConceptRequest{
		Code: entity.TariffRent, Name: "Renta", Price: dec("460000"),
	}, "admin")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "RENT exige modalidad")

	_, err = env.tariffs.UpsertConcept(dto.TariffConceptRequest{
		Code: entity.TariffMoraRate, Modality: entity.ModalityFixedFee, Name: "Mora", Price: dec("0.01"),
	}, "admin")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "MORA_RATE es global")

	c, err := env.tariffs.UpsertConcept(dto.TariffConceptRequest{
		Code: entity.TariffRent, Modality: entity.ModalityFixedFee, Name: "Renta", Price: dec("460000"),
	}, "admin")
	require.NoError(t, err)
	assert.True(t, c.Price.Equal(dec("460000")))
}

func TestReplaceTiersValidation(t *testing.T) {
	env := newTestEnv(t)

	// Hueco entre bandas.
	_, err := env.tariffs.ReplaceTiers([]dto.KmTierRequest{
		{Bracket: "A", MinPct: dec("0"), MaxPct: dec("10"), Percentage: dec("5")},
		{Bracket: "B", MinPct: dec("15"), MaxPct: dec("0"), Percentage: dec("10")},
	}, "admin")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Banda abierta en medio.
	_, err = env.tariffs.ReplaceTiers([]dto.KmTierRequest{
		{Bracket: "A", MinPct: dec("0"), MaxPct: dec("0"), Percentage: dec("5")},
		{Bracket: "B", MinPct: dec("0"), MaxPct: dec("10"), Percentage: dec("10")},
	}, "admin")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	tiers, err := env.tariffs.ReplaceTiers([]dto.KmTierRequest{
		{Bracket: "A", MinPct: dec("0"), MaxPct: dec("20"), Percentage: dec("7")},
		{Bracket: "B", MinPct: dec("20"), MaxPct: dec("0"), Percentage: dec("12")},
	}, "admin")
	require.NoError(t, err)
	assert.Len(t, tiers, 2)

	stored, err := env.tariffs.ListTiers()
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "A", stored[0].Bracket)
}
