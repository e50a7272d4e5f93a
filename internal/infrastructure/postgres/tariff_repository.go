package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/flota-pro/internal/domain/entity"
	"github.com/tu-usuario/flota-pro/internal/domain/repository"
)

var _ repository.TariffRepository = (*TariffRepo)(nil)

// TariffRepo implementación de TariffRepository sobre PostgreSQL.
// La clave del catálogo es (code, modality); la modalidad vacía se guarda como
// cadena vacía para que el UNIQUE la cubra.
type TariffRepo struct {
	q Querier
}

// NewTariffRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTariffRepository(q Querier) *TariffRepo {
	return &TariffRepo{q: q}
}

// GetConcept obtiene el concepto vigente por código y modalidad, nil si falta.
func (r *TariffRepo) GetConcept(code, modality string) (*entity.TariffConcept, error) {
	query := `
		SELECT code, modality, name, price, updated_at
		FROM tariff_concepts WHERE code = $1 AND modality = $2`
	var c entity.TariffConcept
	err := r.q.QueryRow(context.Background(), query, code, modality).Scan(
		&c.Code, &c.Modality, &c.Name, &c.Price, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tariff concept: %w", err)
	}
	return &c, nil
}

// List devuelve el catálogo completo ordenado por código y modalidad.
func (r *TariffRepo) List() ([]*entity.TariffConcept, error) {
	query := `
		SELECT code, modality, name, price, updated_at
		FROM tariff_concepts ORDER BY code, modality`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list tariff concepts: %w", err)
	}
	defer rows.Close()

	var out []*entity.TariffConcept
	for rows.Next() {
		var c entity.TariffConcept
		if err := rows.Scan(&c.Code, &c.Modality, &c.Name, &c.Price, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tariff concept: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Upsert crea o actualiza un concepto por (code, modality).
func (r *TariffRepo) Upsert(c *entity.TariffConcept) error {
	query := `
		INSERT INTO tariff_concepts (code, modality, name, price, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (code, modality)
		DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, c.Code, c.Modality, c.Name, c.Price)
	if err != nil {
		return fmt.Errorf("upsert tariff concept: %w", err)
	}
	return nil
}

var _ repository.KmExcessTierRepository = (*KmExcessTierRepo)(nil)

// KmExcessTierRepo implementación de KmExcessTierRepository sobre PostgreSQL.
type KmExcessTierRepo struct {
	q Querier
}

// NewKmExcessTierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewKmExcessTierRepository(q Querier) *KmExcessTierRepo {
	return &KmExcessTierRepo{q: q}
}

// ListOrdered devuelve las bandas ordenadas por porcentaje mínimo.
func (r *KmExcessTierRepo) ListOrdered() ([]*entity.KmExcessTier, error) {
	query := `
		SELECT id, bracket, min_pct, max_pct, percentage
		FROM km_excess_tiers ORDER BY min_pct`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list km tiers: %w", err)
	}
	defer rows.Close()

	var out []*entity.KmExcessTier
	for rows.Next() {
		var t entity.KmExcessTier
		if err := rows.Scan(&t.ID, &t.Bracket, &t.MinPct, &t.MaxPct, &t.Percentage); err != nil {
			return nil, fmt.Errorf("scan km tier: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// Replace reemplaza la tabla completa de bandas.
func (r *KmExcessTierRepo) Replace(tiers []*entity.KmExcessTier) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM km_excess_tiers`); err != nil {
		return fmt.Errorf("clear km tiers: %w", err)
	}
	query := `
		INSERT INTO km_excess_tiers (id, bracket, min_pct, max_pct, percentage)
		VALUES ($1, $2, $3, $4, $5)`
	for _, t := range tiers {
		if _, err := r.q.Exec(ctx, query, t.ID, t.Bracket, t.MinPct, t.MaxPct, t.Percentage); err != nil {
			return fmt.Errorf("insert km tier %s: %w", t.Bracket, err)
		}
	}
	return nil
}
