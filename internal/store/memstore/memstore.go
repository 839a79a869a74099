// Package memstore provides an in-memory implementation of core.Store. It
// backs the memory store driver and the service tests. All writes happen
// under one lock, so BulkUpsert is atomic.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/indicators/internal/core"
)

type obsKey struct {
	series uuid.UUID
	entity uuid.UUID
}

// Store is a mutex-guarded core.Store.
type Store struct {
	mu           sync.RWMutex
	entities     []core.Entity
	entityIDs    map[uuid.UUID]bool
	series       map[uuid.UUID]core.Series
	observations map[obsKey]core.Observation
	periods      map[int]bool
	audits       []core.AuditEntry

	upserts  int
	bulkFail error
}

var _ core.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		entityIDs:    map[uuid.UUID]bool{},
		series:       map[uuid.UUID]core.Series{},
		observations: map[obsKey]core.Observation{},
		periods:      map[int]bool{},
	}
}

// ----------------------------------------------------------------------------
// Seeding
// ----------------------------------------------------------------------------

// AddEntity registers an entity with a fresh id.
func (s *Store) AddEntity(name string) core.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := core.Entity{ID: uuid.New(), Name: name}
	s.entities = append(s.entities, e)
	s.entityIDs[e.ID] = true
	return e
}

// AddSeries registers a series, assigning an id when it has none.
func (s *Store) AddSeries(series core.Series) core.Series {
	s.mu.Lock()
	defer s.mu.Unlock()

	if series.ID == uuid.Nil {
		series.ID = uuid.New()
	}
	if series.Mode == "" {
		series.Mode = core.ModeEqualCount
	}
	s.series[series.ID] = cloneSeries(series)
	return series
}

// FailBulkUpsert makes every following BulkUpsert return err without
// writing. A nil err restores normal behavior.
func (s *Store) FailBulkUpsert(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkFail = err
}

// UpsertCalls returns how many BulkUpsert calls have been applied.
func (s *Store) UpsertCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.upserts
}

// ObservationCount returns the number of stored observations.
func (s *Store) ObservationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observations)
}

// Observation returns the observation of one (series, entity) pair.
func (s *Store) Observation(seriesID, entityID uuid.UUID) (core.Observation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.observations[obsKey{seriesID, entityID}]
	if !ok {
		return core.Observation{}, false
	}
	return cloneObservation(o), true
}

// Audits returns a copy of the recorded audit entries, oldest first.
func (s *Store) Audits() []core.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.AuditEntry(nil), s.audits...)
}

// ----------------------------------------------------------------------------
// EntityRegistry
// ----------------------------------------------------------------------------

func (s *Store) ListEntities(_ context.Context) ([]core.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Entity(nil), s.entities...), nil
}

// ----------------------------------------------------------------------------
// SeriesRegistry
// ----------------------------------------------------------------------------

func (s *Store) FindSeriesByCode(_ context.Context, code int) (*core.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, series := range s.series {
		if series.Code == code {
			c := cloneSeries(series)
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) GetSeries(_ context.Context, id uuid.UUID) (*core.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series, ok := s.series[id]
	if !ok {
		return nil, core.ErrSeriesNotFound
	}
	c := cloneSeries(series)
	return &c, nil
}

func (s *Store) SaveSeries(_ context.Context, series core.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.series[series.ID]; !ok {
		return core.ErrSeriesNotFound
	}
	s.series[series.ID] = cloneSeries(series)
	return nil
}

// ----------------------------------------------------------------------------
// ObservationStore
// ----------------------------------------------------------------------------

// BulkUpsert checks every instruction before applying any of them.
func (s *Store) BulkUpsert(ctx context.Context, instructions []core.UpsertInstruction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bulkFail != nil {
		return s.bulkFail
	}
	for i, in := range instructions {
		if _, ok := s.series[in.SeriesID]; !ok {
			return fmt.Errorf("instruction %d: unknown series %s", i, in.SeriesID)
		}
		if !s.entityIDs[in.EntityID] {
			return fmt.Errorf("instruction %d: unknown entity %s", i, in.EntityID)
		}
	}

	for _, in := range instructions {
		s.observations[obsKey{in.SeriesID, in.EntityID}] = core.Observation{
			SeriesID: in.SeriesID,
			EntityID: in.EntityID,
			Values:   cloneValues(in.Values),
		}
	}
	s.upserts++
	return nil
}

func (s *Store) FindBySeries(_ context.Context, seriesID uuid.UUID) ([]core.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Observation
	for k, o := range s.observations {
		if k.series == seriesID {
			out = append(out, cloneObservation(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EntityID.String() < out[j].EntityID.String()
	})
	return out, nil
}

func (s *Store) SeriesWithData(_ context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for k := range s.observations {
		if !seen[k.series] {
			seen[k.series] = true
			ids = append(ids, k.series)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.series[ids[i]].Code < s.series[ids[j]].Code
	})
	return ids, nil
}

func (s *Store) DeletePeriodValues(_ context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, o := range s.observations {
		if _, ok := o.Values[year]; !ok {
			continue
		}
		delete(o.Values, year)
		s.observations[k] = o
		n++
	}
	return n, nil
}

// ----------------------------------------------------------------------------
// PeriodRegistry
// ----------------------------------------------------------------------------

func (s *Store) ReplaceAll(_ context.Context, periods []core.Period) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.periods = make(map[int]bool, len(periods))
	for _, p := range periods {
		s.periods[p.Year] = p.Enabled
	}
	return nil
}

func (s *Store) ListPeriods(_ context.Context) ([]core.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Period, 0, len(s.periods))
	for year, enabled := range s.periods {
		out = append(out, core.Period{Year: year, Enabled: enabled})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func (s *Store) SetPeriodEnabled(_ context.Context, year int, enabled bool) (core.Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods[year] = enabled
	return core.Period{Year: year, Enabled: enabled}, nil
}

// ----------------------------------------------------------------------------
// AuditLog
// ----------------------------------------------------------------------------

func (s *Store) RecordAudit(_ context.Context, entry core.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, entry)
	return nil
}

// ----------------------------------------------------------------------------
// Snapshots
// ----------------------------------------------------------------------------

// Snapshot is the serialisable representation of the store contents.
type Snapshot struct {
	Entities     []core.Entity      `json:"entities"`
	Series       []core.Series      `json:"series"`
	Observations []core.Observation `json:"observations"`
	Periods      []core.Period      `json:"periods"`
}

// Snapshot returns a deep copy of the store contents. Audit entries are not
// part of a snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Entities: append([]core.Entity(nil), s.entities...)}
	for _, series := range s.series {
		snap.Series = append(snap.Series, cloneSeries(series))
	}
	sort.Slice(snap.Series, func(i, j int) bool { return snap.Series[i].Code < snap.Series[j].Code })
	for _, o := range s.observations {
		snap.Observations = append(snap.Observations, cloneObservation(o))
	}
	for year, enabled := range s.periods {
		snap.Periods = append(snap.Periods, core.Period{Year: year, Enabled: enabled})
	}
	sort.Slice(snap.Periods, func(i, j int) bool { return snap.Periods[i].Year < snap.Periods[j].Year })
	return snap
}

// FromSnapshot builds a store holding the snapshot contents.
func FromSnapshot(snap Snapshot) *Store {
	s := New()
	for _, e := range snap.Entities {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		s.entities = append(s.entities, e)
		s.entityIDs[e.ID] = true
	}
	for _, series := range snap.Series {
		s.AddSeries(series)
	}
	for _, o := range snap.Observations {
		s.observations[obsKey{o.SeriesID, o.EntityID}] = cloneObservation(o)
	}
	for _, p := range snap.Periods {
		s.periods[p.Year] = p.Enabled
	}
	return s
}

// Load reads a JSON snapshot.
func Load(r io.Reader) (*Store, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return FromSnapshot(snap), nil
}

// LoadFile reads a JSON snapshot from path.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// ----------------------------------------------------------------------------
// Cloning
// ----------------------------------------------------------------------------

func cloneSeries(s core.Series) core.Series {
	if s.Ranges != nil {
		s.Ranges = append([]core.Range(nil), s.Ranges...)
	}
	return s
}

func cloneObservation(o core.Observation) core.Observation {
	o.Values = cloneValues(o.Values)
	return o
}

func cloneValues(values map[int]*float64) map[int]*float64 {
	out := make(map[int]*float64, len(values))
	for k, v := range values {
		if v == nil {
			out[k] = nil
			continue
		}
		f := *v
		out[k] = &f
	}
	return out
}
