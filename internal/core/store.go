package core

import (
	"context"

	"github.com/google/uuid"
)

// EntityRegistry lists the canonical entities rows are resolved against.
type EntityRegistry interface {
	ListEntities(ctx context.Context) ([]Entity, error)
}

// SeriesRegistry stores series definitions and their classification.
type SeriesRegistry interface {
	// FindSeriesByCode returns nil, nil when no series has the code.
	FindSeriesByCode(ctx context.Context, code int) (*Series, error)
	// GetSeries returns ErrSeriesNotFound for unknown ids.
	GetSeries(ctx context.Context, id uuid.UUID) (*Series, error)
	SaveSeries(ctx context.Context, series Series) error
}

// ObservationStore holds one values map per (series, entity) pair.
type ObservationStore interface {
	// BulkUpsert applies every instruction or none. Each instruction
	// replaces the values map of its pair.
	BulkUpsert(ctx context.Context, instructions []UpsertInstruction) error
	FindBySeries(ctx context.Context, seriesID uuid.UUID) ([]Observation, error)
	// SeriesWithData returns the ids of series having at least one observation.
	SeriesWithData(ctx context.Context) ([]uuid.UUID, error)
	// DeletePeriodValues removes the year key from every observation and
	// reports how many observations changed.
	DeletePeriodValues(ctx context.Context, year int) (int64, error)
}

// PeriodRegistry is the list of known periods.
type PeriodRegistry interface {
	// ReplaceAll deletes every period and inserts periods in one step.
	ReplaceAll(ctx context.Context, periods []Period) error
	ListPeriods(ctx context.Context) ([]Period, error)
	// SetPeriodEnabled upserts the period row.
	SetPeriodEnabled(ctx context.Context, year int, enabled bool) (Period, error)
}

// AuditLog persists audit entries.
type AuditLog interface {
	RecordAudit(ctx context.Context, entry AuditEntry) error
}

// Store is everything the Service needs from persistence.
type Store interface {
	EntityRegistry
	SeriesRegistry
	ObservationStore
	PeriodRegistry
	AuditLog
}
