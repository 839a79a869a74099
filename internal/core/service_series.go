package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/JonMunkholm/indicators/internal/logging"
)

// recalculate classifies series from its stored observations and saves the
// result. Manual series are returned unchanged and not saved.
func (s *Service) recalculate(ctx context.Context, series *Series) ([]Range, error) {
	if series.Mode == ModeManual {
		return series.Ranges, nil
	}

	observations, err := s.store.FindBySeries(ctx, series.ID)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	series.Ranges = Classify(series.Mode, SelectValues(series.Mode, observations), series.InvertScale)
	if err := s.store.SaveSeries(ctx, *series); err != nil {
		return nil, fmt.Errorf("save series: %w", err)
	}
	return series.Ranges, nil
}

// Classify recalculates the ranges of one series and persists them whether
// or not the series was classified before. A non-nil mode replaces the
// stored mode first. Manual mode keeps the stored ranges.
func (s *Service) Classify(ctx context.Context, seriesID uuid.UUID, mode *ClassificationMode) ([]Range, error) {
	series, err := s.store.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	if mode != nil && *mode != series.Mode {
		series.Mode = *mode
		if series.Mode == ModeManual {
			if err := s.store.SaveSeries(ctx, *series); err != nil {
				return nil, fmt.Errorf("save series: %w", err)
			}
		}
	}

	ranges, err := s.recalculate(ctx, series)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordClassification(string(series.Mode), triggerManual)
	s.audit(ctx, AuditEntry{
		Action:   ActionClassify,
		SeriesID: &series.ID,
		Details:  map[string]any{"mode": series.Mode, "ranges": ranges},
	})
	logging.WithFields(ctx, "series_id", series.ID, "series_code", series.Code).
		Info("series classified", "mode", series.Mode)
	return ranges, nil
}

// ClassifyMany recalculates several series with their stored modes. Unknown
// ids are skipped; any other failure stops the run.
func (s *Service) ClassifyMany(ctx context.Context, seriesIDs []uuid.UUID) ([]ClassifyResult, error) {
	results := make([]ClassifyResult, 0, len(seriesIDs))
	for _, id := range seriesIDs {
		ranges, err := s.Classify(ctx, id, nil)
		if errors.Is(err, ErrSeriesNotFound) {
			logging.FromContext(ctx).Debug("classify skipped unknown series", "series_id", id)
			continue
		}
		if err != nil {
			return results, fmt.Errorf("classify %s: %w", id, err)
		}
		results = append(results, ClassifyResult{SeriesID: id, Ranges: ranges})
	}
	return results, nil
}

// SeriesWithData returns the ids of series that have at least one observation.
func (s *Service) SeriesWithData(ctx context.Context) ([]uuid.UUID, error) {
	return s.store.SeriesWithData(ctx)
}

// SeriesObservations returns the observations of a series with entity names
// attached and values rounded to the series' decimal precision, ordered by
// entity name.
func (s *Service) SeriesObservations(ctx context.Context, seriesID uuid.UUID) ([]SeriesObservation, error) {
	series, err := s.store.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	observations, err := s.store.FindBySeries(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	entities, err := s.store.ListEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	names := make(map[uuid.UUID]string, len(entities))
	for _, e := range entities {
		names[e.ID] = e.Name
	}

	out := make([]SeriesObservation, len(observations))
	for i, o := range observations {
		values := make(map[int]*float64, len(o.Values))
		for year, v := range o.Values {
			values[year] = RoundValue(v, series.DecimalPrecision)
		}
		out[i] = SeriesObservation{
			EntityID:   o.EntityID,
			EntityName: names[o.EntityID],
			Values:     values,
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EntityName < out[j].EntityName })
	return out, nil
}
