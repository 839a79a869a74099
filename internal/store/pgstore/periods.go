package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/indicators/internal/core"
)

// ReplaceAll swaps the period registry for periods inside one transaction.
func (s *Store) ReplaceAll(ctx context.Context, periods []core.Period) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if _, err := tx.Exec(ctx, `DELETE FROM periods`); err != nil {
		return fmt.Errorf("failed to clear periods: %w", err)
	}

	rows := make([][]any, len(periods))
	for i, p := range periods {
		rows[i] = []any{p.Year, p.Enabled}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"periods"},
		[]string{"year", "enabled"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("failed to insert periods: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) ListPeriods(ctx context.Context) ([]core.Period, error) {
	rows, err := s.pool.Query(ctx, `SELECT year, enabled FROM periods ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Period, error) {
		var p core.Period
		err := row.Scan(&p.Year, &p.Enabled)
		return p, err
	})
}

func (s *Store) SetPeriodEnabled(ctx context.Context, year int, enabled bool) (core.Period, error) {
	var p core.Period
	err := s.pool.QueryRow(ctx, `
		INSERT INTO periods (year, enabled) VALUES ($1, $2)
		ON CONFLICT (year) DO UPDATE SET enabled = EXCLUDED.enabled
		RETURNING year, enabled`, year, enabled).Scan(&p.Year, &p.Enabled)
	if err != nil {
		return core.Period{}, fmt.Errorf("failed to set period %d: %w", year, err)
	}
	return p, nil
}
