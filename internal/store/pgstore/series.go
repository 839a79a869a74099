package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/indicators/internal/core"
)

const seriesColumns = `id, code, name, decimal_precision, invert_scale, mode, ranges`

func (s *Store) ListEntities(ctx context.Context) ([]core.Entity, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM entities ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.Entity, error) {
		var e core.Entity
		err := row.Scan(&e.ID, &e.Name)
		return e, err
	})
}

func scanSeries(row pgx.Row) (*core.Series, error) {
	var (
		series core.Series
		mode   string
		ranges []byte
	)
	if err := row.Scan(
		&series.ID,
		&series.Code,
		&series.Name,
		&series.DecimalPrecision,
		&series.InvertScale,
		&mode,
		&ranges,
	); err != nil {
		return nil, err
	}
	series.Mode = core.ClassificationMode(mode)

	decoded, err := decodeRanges(ranges)
	if err != nil {
		return nil, err
	}
	series.Ranges = decoded
	return &series, nil
}

func (s *Store) FindSeriesByCode(ctx context.Context, code int) (*core.Series, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+seriesColumns+` FROM series WHERE code = $1`, code)
	series, err := scanSeries(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find series %d: %w", code, err)
	}
	return series, nil
}

func (s *Store) GetSeries(ctx context.Context, id uuid.UUID) (*core.Series, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+seriesColumns+` FROM series WHERE id = $1`, id)
	series, err := scanSeries(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrSeriesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get series %s: %w", id, err)
	}
	return series, nil
}

func (s *Store) SaveSeries(ctx context.Context, series core.Series) error {
	ranges, err := encodeRanges(series.Ranges)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE series
		SET name = $2,
		    decimal_precision = $3,
		    invert_scale = $4,
		    mode = $5,
		    ranges = $6,
		    updated_at = now()
		WHERE id = $1`,
		series.ID,
		series.Name,
		series.DecimalPrecision,
		series.InvertScale,
		string(series.Mode),
		ranges,
	)
	if err != nil {
		return fmt.Errorf("failed to save series %s: %w", series.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrSeriesNotFound
	}
	return nil
}
