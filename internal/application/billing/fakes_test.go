package billing_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tu-usuario/flota-pro/internal/application/billing"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
)

// memStore es el backend en memoria compartido por todos los fakes de un test.
type memStore struct {
	mu sync.Mutex

	periods     map[string]*entity.BillingPeriod
	lines       map[string]*entity.BillingLine
	details     map[string][]*entity.BillingLineDetail
	drivers     map[string]*entity.Driver
	assignments map[string]*entity.DriverAssignment
	guarantees  map[string]*entity.GuaranteeAccount
	kmRecords   map[string]*entity.KmExcessRecord
	tickets     map[string]*entity.TicketCredit
	balances    map[string]*entity.DriverBalance
	movements   []*entity.BalanceMovement
	settlements map[string]*entity.TerminationSettlement
	concepts    map[string]*entity.TariffConcept
	tiers       []*entity.KmExcessTier
}

func newMemStore() *memStore {
	return &memStore{
		periods:     map[string]*entity.BillingPeriod{},
		lines:       map[string]*entity.BillingLine{},
		details:     map[string][]*entity.BillingLineDetail{},
		drivers:     map[string]*entity.Driver{},
		assignments: map[string]*entity.DriverAssignment{},
		guarantees:  map[string]*entity.GuaranteeAccount{},
		kmRecords:   map[string]*entity.KmExcessRecord{},
		tickets:     map[string]*entity.TicketCredit{},
		balances:    map[string]*entity.DriverBalance{},
		settlements: map[string]*entity.TerminationSettlement{},
		concepts:    map[string]*entity.TariffConcept{},
	}
}

func conceptKey(code, modality string) string { return code + "|" + modality }

// --- periodos ---

type memPeriodRepo struct{ s *memStore }

func (r *memPeriodRepo) GetByID(id string) (*entity.BillingPeriod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.periods[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *memPeriodRepo) GetByWeekYear(week, year int) (*entity.BillingPeriod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.periods {
		if p.WeekNumber == week && p.Year == year {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPeriodRepo) CreateProcessing(p *entity.BillingPeriod) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.periods {
		if existing.WeekNumber == p.WeekNumber && existing.Year == p.Year {
			return false, nil
		}
	}
	cp := *p
	r.s.periods[p.ID] = &cp
	return true, nil
}

func (r *memPeriodRepo) TryMarkProcessing(id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok || p.Status != entity.PeriodStatusOpen {
		return false, nil
	}
	p.Status = entity.PeriodStatusProcessing
	return true, nil
}

func (r *memPeriodRepo) MarkOpen(p *entity.BillingPeriod) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.periods[p.ID]
	if !ok {
		cp := *p
		r.s.periods[p.ID] = &cp
		stored = &cp
	}
	stored.Status = entity.PeriodStatusOpen
	stored.DriverCount = p.DriverCount
	stored.TotalCharges = p.TotalCharges
	stored.TotalCredits = p.TotalCredits
	stored.TotalNet = p.TotalNet
	return nil
}

func (r *memPeriodRepo) Close(id, actor string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok || p.Status != entity.PeriodStatusOpen {
		return false, nil
	}
	p.Status = entity.PeriodStatusClosed
	p.ClosedAt = &at
	p.ClosedBy = actor
	return true, nil
}

func (r *memPeriodRepo) Reopen(id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok || p.Status != entity.PeriodStatusClosed {
		return false, nil
	}
	p.Status = entity.PeriodStatusOpen
	p.ClosedAt = nil
	p.ClosedBy = ""
	return true, nil
}

// --- líneas ---

type memLineRepo struct{ s *memStore }

func lineKey(periodID, driverID string) string { return periodID + "|" + driverID }

func (r *memLineRepo) Create(line *entity.BillingLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *line
	r.s.lines[lineKey(line.PeriodID, line.DriverID)] = &cp
	return nil
}

func (r *memLineRepo) CreateDetail(d *entity.BillingLineDetail) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *d
	r.s.details[d.BillingLineID] = append(r.s.details[d.BillingLineID], &cp)
	return nil
}

func (r *memLineRepo) DeleteByPeriodAndDriver(periodID, driverID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := lineKey(periodID, driverID)
	if line, ok := r.s.lines[key]; ok {
		delete(r.s.details, line.ID)
		delete(r.s.lines, key)
	}
	// Liberar los hechos consumidos por la línea borrada.
	for _, rec := range r.s.kmRecords {
		if rec.DriverID == driverID && rec.Applied && rec.PeriodID == periodID {
			rec.Applied = false
			rec.PeriodID = ""
		}
	}
	for _, t := range r.s.tickets {
		if t.DriverID == driverID && t.Status == entity.TicketStatusApplied && t.PeriodID == periodID {
			t.Status = entity.TicketStatusApproved
			t.PeriodID = ""
		}
	}
	return nil
}

func (r *memLineRepo) GetByPeriodAndDriver(periodID, driverID string) (*entity.BillingLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if line, ok := r.s.lines[lineKey(periodID, driverID)]; ok {
		cp := *line
		return &cp, nil
	}
	return nil, nil
}

func (r *memLineRepo) ListByPeriod(periodID string) ([]*entity.BillingLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.BillingLine
	for _, line := range r.s.lines {
		if line.PeriodID == periodID {
			cp := *line
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out, nil
}

func (r *memLineRepo) GetDetails(billingLineID string) ([]*entity.BillingLineDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*entity.BillingLineDetail(nil), r.s.details[billingLineID]...), nil
}

// --- conductores ---

type memDriverRepo struct{ s *memStore }

func (r *memDriverRepo) GetByID(id string) (*entity.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.s.drivers[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (r *memDriverRepo) GetActiveAssignment(driverID string) (*entity.DriverAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.assignments[driverID]; ok && a.Active {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *memDriverRepo) Deactivate(driverID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.s.drivers[driverID]; ok {
		d.Status = entity.DriverStatusInactive
	}
	return nil
}

func (r *memDriverRepo) DeactivateAssignments(driverID string, endDate time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.assignments[driverID]; ok {
		a.Active = false
		a.EndDate = &endDate
	}
	return nil
}

// memDriverSource lista las asignaciones activas (estrategia "assignments").
type memDriverSource struct{ s *memStore }

func (r *memDriverSource) EligibleDrivers(week, year int, periodStart, periodEnd time.Time) ([]*entity.DriverAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.DriverAssignment
	for _, a := range r.s.assignments {
		if a.Active {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out, nil
}

// --- garantías ---

type memGuaranteeRepo struct{ s *memStore }

func (r *memGuaranteeRepo) GetByDriver(driverID string) (*entity.GuaranteeAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if g, ok := r.s.guarantees[driverID]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, nil
}

func (r *memGuaranteeRepo) Save(acc *entity.GuaranteeAccount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *acc
	r.s.guarantees[acc.DriverID] = &cp
	return nil
}

// --- excesos de km ---

type memKmRepo struct{ s *memStore }

func (r *memKmRepo) Create(rec *entity.KmExcessRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rec
	r.s.kmRecords[rec.ID] = &cp
	return nil
}

func (r *memKmRepo) GetByID(id string) (*entity.KmExcessRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rec, ok := r.s.kmRecords[id]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (r *memKmRepo) Update(rec *entity.KmExcessRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rec
	r.s.kmRecords[rec.ID] = &cp
	return nil
}

func (r *memKmRepo) Delete(id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.kmRecords[id]
	if !ok || rec.Applied {
		return false, nil
	}
	delete(r.s.kmRecords, id)
	return true, nil
}

func (r *memKmRepo) ListUnappliedByDriver(driverID string) ([]*entity.KmExcessRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.KmExcessRecord
	for _, rec := range r.s.kmRecords {
		if rec.DriverID == driverID && !rec.Applied {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memKmRepo) ListByDriver(driverID string) ([]*entity.KmExcessRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.KmExcessRecord
	for _, rec := range r.s.kmRecords {
		if rec.DriverID == driverID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memKmRepo) MarkApplied(id, periodID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.kmRecords[id]
	if !ok || rec.Applied {
		return false, nil
	}
	rec.Applied = true
	rec.PeriodID = periodID
	return true, nil
}

// --- tickets ---

type memTicketRepo struct{ s *memStore }

func (r *memTicketRepo) Create(t *entity.TicketCredit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.tickets[t.ID] = &cp
	return nil
}

func (r *memTicketRepo) GetByID(id string) (*entity.TicketCredit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tickets[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *memTicketRepo) SetStatus(id, status string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok || t.Status != entity.TicketStatusPending {
		return false, nil
	}
	t.Status = status
	return true, nil
}

func (r *memTicketRepo) ListApprovedByDriver(driverID string) ([]*entity.TicketCredit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.TicketCredit
	for _, t := range r.s.tickets {
		if t.DriverID == driverID && t.Status == entity.TicketStatusApproved {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTicketRepo) ListByDriver(driverID string) ([]*entity.TicketCredit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.TicketCredit
	for _, t := range r.s.tickets {
		if t.DriverID == driverID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTicketRepo) MarkApplied(id, periodID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok || t.Status != entity.TicketStatusApproved {
		return false, nil
	}
	t.Status = entity.TicketStatusApplied
	t.PeriodID = periodID
	return true, nil
}

// --- saldos ---

type memBalanceRepo struct{ s *memStore }

func (r *memBalanceRepo) GetByDriver(driverID string) (*entity.DriverBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.balances[driverID]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r *memBalanceRepo) Upsert(b *entity.DriverBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *b
	r.s.balances[b.DriverID] = &cp
	return nil
}

func (r *memBalanceRepo) AppendMovement(m *entity.BalanceMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *memBalanceRepo) ListMovements(driverID string) ([]*entity.BalanceMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.BalanceMovement
	for _, m := range r.s.movements {
		if m.DriverID == driverID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- liquidaciones ---

type memSettlementRepo struct{ s *memStore }

func (r *memSettlementRepo) Create(st *entity.TerminationSettlement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *st
	r.s.settlements[st.ID] = &cp
	return nil
}

func (r *memSettlementRepo) GetByID(id string) (*entity.TerminationSettlement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st, ok := r.s.settlements[id]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, nil
}

func (r *memSettlementRepo) Approve(id, actor string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.settlements[id]
	if !ok || st.Status != entity.SettlementStatusDraft {
		return false, nil
	}
	st.Status = entity.SettlementStatusApproved
	st.ApprovedAt = &at
	st.ApprovedBy = actor
	return true, nil
}

// --- tarifas ---

type memTariffRepo struct{ s *memStore }

func (r *memTariffRepo) GetConcept(code, modality string) (*entity.TariffConcept, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.concepts[conceptKey(code, modality)]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *memTariffRepo) List() ([]*entity.TariffConcept, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.TariffConcept
	for _, c := range r.s.concepts {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memTariffRepo) Upsert(c *entity.TariffConcept) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.concepts[conceptKey(c.Code, c.Modality)] = &cp
	return nil
}

type memTierRepo struct{ s *memStore }

func (r *memTierRepo) ListOrdered() ([]*entity.KmExcessTier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.KmExcessTier, 0, len(r.s.tiers))
	for _, t := range r.s.tiers {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinPct.LessThan(out[j].MinPct) })
	return out, nil
}

func (r *memTierRepo) Replace(tiers []*entity.KmExcessTier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tiers = nil
	for _, t := range tiers {
		cp := *t
		r.s.tiers = append(r.s.tiers, &cp)
	}
	return nil
}

// memTxRunner ejecuta el callback directo sobre el mismo backend: suficiente
// para verificar semántica; la atomicidad real la prueban los repos de pgx.
type memTxRunner struct{ s *memStore }

func (tx *memTxRunner) RunDriverBilling(ctx context.Context, fn func(
	repository.BillingLineRepository,
	repository.KmExcessRepository,
	repository.TicketCreditRepository,
	repository.GuaranteeRepository,
	repository.BalanceRepository,
) error) error {
	return fn(&memLineRepo{tx.s}, &memKmRepo{tx.s}, &memTicketRepo{tx.s}, &memGuaranteeRepo{tx.s}, &memBalanceRepo{tx.s})
}

func (tx *memTxRunner) RunSettlement(ctx context.Context, fn func(
	repository.SettlementRepository,
	repository.KmExcessRepository,
	repository.TicketCreditRepository,
	repository.GuaranteeRepository,
	repository.BalanceRepository,
	repository.DriverRepository,
) error) error {
	return fn(&memSettlementRepo{tx.s}, &memKmRepo{tx.s}, &memTicketRepo{tx.s}, &memGuaranteeRepo{tx.s}, &memBalanceRepo{tx.s}, &memDriverRepo{tx.s})
}

var (
	_ repository.BillingPeriodRepository = (*memPeriodRepo)(nil)
	_ repository.BillingLineRepository   = (*memLineRepo)(nil)
	_ repository.DriverRepository        = (*memDriverRepo)(nil)
	_ repository.DriverWeekSource        = (*memDriverSource)(nil)
	_ repository.GuaranteeRepository     = (*memGuaranteeRepo)(nil)
	_ repository.KmExcessRepository      = (*memKmRepo)(nil)
	_ repository.TicketCreditRepository  = (*memTicketRepo)(nil)
	_ repository.BalanceRepository       = (*memBalanceRepo)(nil)
	_ repository.SettlementRepository    = (*memSettlementRepo)(nil)
	_ repository.TariffRepository        = (*memTariffRepo)(nil)
	_ repository.KmExcessTierRepository  = (*memTierRepo)(nil)
	_ billing.TxRunner                   = (*memTxRunner)(nil)
)
