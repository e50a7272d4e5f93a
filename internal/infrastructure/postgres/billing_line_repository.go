package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
)

var _ repository.BillingLineRepository = (*BillingLineRepo)(nil)

// BillingLineRepo implementación de BillingLineRepository sobre PostgreSQL.
type BillingLineRepo struct {
	q Querier
}

// NewBillingLineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillingLineRepository(q Querier) *BillingLineRepo {
	return &BillingLineRepo{q: q}
}

const lineColumns = `
	id, period_id, driver_id, modality, days_billed, prorated_factor,
	rent_amount, guarantee_amount, km_excess_amount, gross_charges,
	credits, net_charges, prior_balance, mora_days, mora_amount, total_due,
	estimated, needs_review, status, created_at`

func scanLine(row pgx.Row) (*entity.BillingLine, error) {
	var l entity.BillingLine
	err := row.Scan(
		&l.ID, &l.PeriodID, &l.DriverID, &l.Modality, &l.DaysBilled, &l.ProratedFactor,
		&l.RentAmount, &l.GuaranteeAmount, &l.KmExcessAmount, &l.GrossCharges,
		&l.Credits, &l.NetCharges, &l.PriorBalance, &l.MoraDays, &l.MoraAmount, &l.TotalDue,
		&l.Estimated, &l.NeedsReview, &l.Status, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserta la factura del conductor.
func (r *BillingLineRepo) Create(line *entity.BillingLine) error {
	query := `
		INSERT INTO billing_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, now())`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.PeriodID, line.DriverID, line.Modality, line.DaysBilled, line.ProratedFactor,
		line.RentAmount, line.GuaranteeAmount, line.KmExcessAmount, line.GrossCharges,
		line.Credits, line.NetCharges, line.PriorBalance, line.MoraDays, line.MoraAmount, line.TotalDue,
		line.Estimated, line.NeedsReview, line.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("línea duplicada para conductor %s: %w", line.DriverID, err)
		}
		return fmt.Errorf("create billing line: %w", err)
	}
	return nil
}

// CreateDetail inserta un renglón de detalle.
func (r *BillingLineRepo) CreateDetail(d *entity.BillingLineDetail) error {
	query := `
		INSERT INTO billing_line_details
			(id, billing_line_id, concept_code, description, quantity, unit_price,
			 subtotal, total, is_credit, source_ref_id, source_ref_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''))`
	_, err := r.q.Exec(context.Background(), query,
		d.ID, d.BillingLineID, d.ConceptCode, d.Description, d.Quantity, d.UnitPrice,
		d.Subtotal, d.Total, d.IsCredit, d.SourceRefID, d.SourceRefType)
	if err != nil {
		return fmt.Errorf("create line detail: %w", err)
	}
	return nil
}

// DeleteByPeriodAndDriver borra la línea del conductor en el periodo y libera
// los hechos que esa línea tenía consumidos, para que la regeneración los
// vuelva a tomar. Los detalles caen por cascada.
func (r *BillingLineRepo) DeleteByPeriodAndDriver(periodID, driverID string) error {
	ctx := context.Background()
	release := `
		UPDATE km_excess_records SET applied = false, period_id = NULL, updated_at = now()
		WHERE driver_id = $2 AND applied = true AND period_id = $1`
	if _, err := r.q.Exec(ctx, release, periodID, driverID); err != nil {
		return fmt.Errorf("release km excess: %w", err)
	}
	release = `
		UPDATE ticket_credits SET status = $3, period_id = NULL, updated_at = now()
		WHERE driver_id = $2 AND status = $4 AND period_id = $1`
	if _, err := r.q.Exec(ctx, release, periodID, driverID,
		entity.TicketStatusApproved, entity.TicketStatusApplied); err != nil {
		return fmt.Errorf("release tickets: %w", err)
	}
	_, err := r.q.Exec(ctx,
		`DELETE FROM billing_lines WHERE period_id = $1 AND driver_id = $2`, periodID, driverID)
	if err != nil {
		return fmt.Errorf("delete billing line: %w", err)
	}
	return nil
}

// GetByPeriodAndDriver obtiene la línea del conductor en el periodo, nil si no hay.
func (r *BillingLineRepo) GetByPeriodAndDriver(periodID, driverID string) (*entity.BillingLine, error) {
	query := `SELECT` + lineColumns + ` FROM billing_lines WHERE period_id = $1 AND driver_id = $2`
	l, err := scanLine(r.q.QueryRow(context.Background(), query, periodID, driverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get billing line: %w", err)
	}
	return l, nil
}

// ListByPeriod lista las facturas del periodo ordenadas por conductor.
func (r *BillingLineRepo) ListByPeriod(periodID string) ([]*entity.BillingLine, error) {
	query := `SELECT` + lineColumns + ` FROM billing_lines WHERE period_id = $1 ORDER BY driver_id`
	rows, err := r.q.Query(context.Background(), query, periodID)
	if err != nil {
		return nil, fmt.Errorf("list billing lines: %w", err)
	}
	defer rows.Close()

	var out []*entity.BillingLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan billing line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetDetails lista los renglones de una factura en orden de inserción.
func (r *BillingLineRepo) GetDetails(billingLineID string) ([]*entity.BillingLineDetail, error) {
	query := `
		SELECT id, billing_line_id, concept_code, description, quantity, unit_price,
		       subtotal, total, is_credit, COALESCE(source_ref_id, ''), COALESCE(source_ref_type, '')
		FROM billing_line_details WHERE billing_line_id = $1 ORDER BY concept_code`
	rows, err := r.q.Query(context.Background(), query, billingLineID)
	if err != nil {
		return nil, fmt.Errorf("list line details: %w", err)
	}
	defer rows.Close()

	var out []*entity.BillingLineDetail
	for rows.Next() {
		var d entity.BillingLineDetail
		err := rows.Scan(
			&d.ID, &d.BillingLineID, &d.ConceptCode, &d.Description, &d.Quantity, &d.UnitPrice,
			&d.Subtotal, &d.Total, &d.IsCredit, &d.SourceRefID, &d.SourceRefType,
		)
		if err != nil {
			return nil, fmt.Errorf("scan line detail: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
