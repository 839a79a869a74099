package pgstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/indicators/internal/core"
)

const upsertObservationSQL = `
	INSERT INTO observations (series_id, entity_id, period_values, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (series_id, entity_id)
	DO UPDATE SET period_values = EXCLUDED.period_values, updated_at = now()`

// BulkUpsert writes every instruction in one transaction. Any failure rolls
// the whole set back.
func (s *Store) BulkUpsert(ctx context.Context, instructions []core.UpsertInstruction) error {
	if len(instructions) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, in := range instructions {
		values, err := encodeValues(in.Values)
		if err != nil {
			return err
		}
		batch.Queue(upsertObservationSQL, in.SeriesID, in.EntityID, values)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	results := tx.SendBatch(ctx, batch)
	for i := range instructions {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("upsert instruction %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) FindBySeries(ctx context.Context, seriesID uuid.UUID) ([]core.Observation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT series_id, entity_id, period_values
		FROM observations
		WHERE series_id = $1
		ORDER BY entity_id`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Observation, error) {
		var (
			o   core.Observation
			raw []byte
		)
		if err := row.Scan(&o.SeriesID, &o.EntityID, &raw); err != nil {
			return o, err
		}
		values, err := decodeValues(raw)
		if err != nil {
			return o, err
		}
		o.Values = values
		return o, nil
	})
}

func (s *Store) SeriesWithData(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id
		FROM series s
		WHERE EXISTS (SELECT 1 FROM observations o WHERE o.series_id = s.id)
		ORDER BY s.code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query series with data: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func (s *Store) DeletePeriodValues(ctx context.Context, year int) (int64, error) {
	key := strconv.Itoa(year)
	tag, err := s.pool.Exec(ctx, `
		UPDATE observations
		SET period_values = period_values - $1::text, updated_at = now()
		WHERE period_values ? $1::text`, key)
	if err != nil {
		return 0, fmt.Errorf("failed to delete period %d values: %w", year, err)
	}
	return tag.RowsAffected(), nil
}
