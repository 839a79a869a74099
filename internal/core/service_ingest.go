package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/indicators/internal/logging"
)

// Ingest validates, plans and commits a batch of files as one unit. Every
// filename, series code, entity name and file body is checked before the
// first write; a batch failing validation returns a *BatchError and leaves
// the store untouched. After the commit the period registry is replaced
// and series that had never been classified are classified.
func (s *Service) Ingest(ctx context.Context, files []UploadedFile) (*IngestResult, error) {
	start := s.now()
	batchID := uuid.NewString()
	ctx = logging.WithBatch(ctx, batchID)
	log := logging.FromContext(ctx)

	if len(files) == 0 {
		s.metrics.RecordBatch(statusRejected, 0, 0, 0)
		return nil, &BatchError{Kind: ErrEmptyFileBatch}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.RecordBatch(statusBusy, len(files), 0, s.now().Sub(start))
		log.Warn("ingest slot unavailable", "files", len(files), "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	log.Info("ingest started", "files", len(files))

	result, err := s.runBatch(ctx, batchID, files)
	elapsed := s.now().Sub(start)
	if err != nil {
		status := statusError
		if IsBatchError(err) {
			status = statusRejected
			log.Warn("ingest rejected", "error", err)
		} else {
			log.Error("ingest failed", "error", err)
		}
		s.metrics.RecordBatch(status, len(files), 0, elapsed)
		return nil, err
	}

	result.Duration = elapsed
	rows := 0
	names := make([]string, len(result.Files))
	for i, f := range result.Files {
		rows += f.RowsProcessed
		names[i] = f.Name
	}
	s.metrics.RecordBatch(statusSuccess, len(result.Files), rows, elapsed)
	s.audit(context.WithoutCancel(ctx), AuditEntry{
		Action:       ActionIngest,
		BatchID:      batchID,
		RowsAffected: int64(rows),
		Details: map[string]any{
			"files":            names,
			"touched_series":   len(result.TouchedSeriesIDs),
			"newly_classified": result.NewlyClassifiedCount,
		},
	})

	log.Info("ingest completed",
		"files", len(result.Files),
		"rows", rows,
		"touched_series", len(result.TouchedSeriesIDs),
		"newly_classified", result.NewlyClassifiedCount,
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

func (s *Service) runBatch(ctx context.Context, batchID string, files []UploadedFile) (*IngestResult, error) {
	// Phase 1: names and codes, before any body is read.
	decoded := make([]DecodedFile, len(files))
	for i, f := range files {
		d, err := DecodeFile(f)
		if err != nil {
			return nil, err
		}
		decoded[i] = d
	}

	seriesByCode := make(map[int]Series)
	for _, d := range decoded {
		if _, ok := seriesByCode[d.Code]; ok {
			continue
		}
		series, err := s.store.FindSeriesByCode(ctx, d.Code)
		if err != nil {
			return nil, fmt.Errorf("find series %03d: %w", d.Code, err)
		}
		if series == nil {
			return nil, &BatchError{Kind: ErrUnknownSeriesCode, File: d.Name, Code: d.Code}
		}
		seriesByCode[d.Code] = *series
	}

	entities, err := s.store.ListEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	if len(entities) == 0 {
		return nil, &BatchError{Kind: ErrNoMatchingEntities}
	}
	resolver := NewResolver(entities)
	logging.FromContext(ctx).Debug("entity registry loaded", "entities", len(entities), "keys", resolver.Len())

	// Phase 2: parse bodies and build every plan. Nothing is written yet.
	tables, err := s.parseAll(ctx, decoded)
	if err != nil {
		return nil, err
	}

	plans := make([]*FilePlan, len(decoded))
	for i, d := range decoded {
		plan, err := PlanFile(d, seriesByCode[d.Code], tables[i], resolver)
		if err != nil {
			return nil, err
		}
		plans[i] = plan
	}

	// Phase 3: one combined write.
	if err := s.store.BulkUpsert(ctx, Instructions(plans)); err != nil {
		return nil, fmt.Errorf("commit observations: %w", err)
	}

	// The observations are committed. A caller deadline must not turn the
	// bookkeeping below into a reported failure.
	ctx = context.WithoutCancel(ctx)

	if err := s.syncPeriods(ctx, plans); err != nil {
		return nil, err
	}

	result := &IngestResult{
		BatchID: batchID,
		Files:   make([]FileResult, len(plans)),
	}
	seen := make(map[uuid.UUID]bool)
	var touched []Series
	for i, p := range plans {
		result.Files[i] = FileResult{
			Name:          p.File,
			SeriesCode:    p.SeriesCode,
			RowsProcessed: p.RowsProcessed,
			Periods:       p.Periods,
		}
		if !seen[p.SeriesID] {
			seen[p.SeriesID] = true
			result.TouchedSeriesIDs = append(result.TouchedSeriesIDs, p.SeriesID)
			touched = append(touched, seriesByCode[p.SeriesCode])
		}
	}

	// The snapshots in touched were read before the commit, so Ranges
	// reflects the state before this batch.
	result.NewlyClassifiedCount = s.classifyFirstTime(ctx, touched)

	return result, nil
}

// parseAll parses every file body with bounded parallelism. Results keep the
// input order and the lowest failing index is reported.
func (s *Service) parseAll(ctx context.Context, files []DecodedFile) ([]*Table, error) {
	tables := make([]*Table, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ParseWorkers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			table, err := ParseTable(f.Data, f.Format)
			if err != nil {
				errs[i] = &BatchError{Kind: ErrUnreadableFile, File: f.Name, Code: f.Code, Err: err}
				return nil
			}
			tables[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// syncPeriods replaces the period registry with the periods of the batch.
// A batch without any period column leaves the registry as it is.
func (s *Service) syncPeriods(ctx context.Context, plans []*FilePlan) error {
	log := logging.FromContext(ctx)

	current, err := s.store.ListPeriods(ctx)
	if err != nil {
		log.Warn("list periods failed, dropped periods will not be reported", "error", err)
		current = nil
	}

	sync := ComputePeriods(plans, current)
	if len(sync.Periods) == 0 {
		log.Info("batch carries no period columns, period registry unchanged")
		return nil
	}
	if len(sync.Dropped) > 0 {
		log.Warn("period registry replace drops periods not in this batch",
			"dropped", sync.Dropped,
		)
	}

	if err := s.store.ReplaceAll(ctx, sync.Periods); err != nil {
		return fmt.Errorf("replace periods: %w", err)
	}
	return nil
}

// classifyFirstTime classifies the series that had no ranges before the
// batch. Failures are logged and skipped; the committed data stays valid and
// an explicit Classify can be run later.
func (s *Service) classifyFirstTime(ctx context.Context, touched []Series) int {
	log := logging.FromContext(ctx)
	count := 0

	for _, series := range touched {
		if series.Classified() || series.Mode == ModeManual {
			continue
		}
		ranges, err := s.recalculate(ctx, &series)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Warn("classification interrupted", "series_code", series.Code, "error", err)
				break
			}
			log.Warn("classification failed", "series_code", series.Code, "error", err)
			continue
		}
		count++
		s.metrics.RecordClassification(string(series.Mode), triggerAuto)
		s.audit(ctx, AuditEntry{
			Action:   ActionAutoClassify,
			BatchID:  logging.BatchID(ctx),
			SeriesID: &series.ID,
			Details:  map[string]any{"mode": series.Mode, "ranges": ranges},
		})
	}
	return count
}
