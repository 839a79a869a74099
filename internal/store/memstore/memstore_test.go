package memstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/JonMunkholm/indicators/internal/core"
)

func f(v float64) *float64 { return &v }

func TestBulkUpsert_ReplacesValues(t *testing.T) {
	ctx := context.Background()
	s := New()
	e := s.AddEntity("Roma")
	series := s.AddSeries(core.Series{Code: 1, Name: "Pop"})

	first := []core.UpsertInstruction{{SeriesID: series.ID, EntityID: e.ID, Values: map[int]*float64{2020: f(1), 2021: f(2)}}}
	if err := s.BulkUpsert(ctx, first); err != nil {
		t.Fatalf("BulkUpsert: %v", err)
	}
	second := []core.UpsertInstruction{{SeriesID: series.ID, EntityID: e.ID, Values: map[int]*float64{2022: nil}}}
	if err := s.BulkUpsert(ctx, second); err != nil {
		t.Fatalf("BulkUpsert: %v", err)
	}

	o, ok := s.Observation(series.ID, e.ID)
	if !ok {
		t.Fatal("observation missing")
	}
	if len(o.Values) != 1 {
		t.Fatalf("values should be replaced wholesale, got %v", o.Values)
	}
	if v, ok := o.Values[2022]; !ok || v != nil {
		t.Errorf("explicit nil lost: %v", o.Values)
	}
	if s.UpsertCalls() != 2 {
		t.Errorf("UpsertCalls = %d, want 2", s.UpsertCalls())
	}
}

func TestBulkUpsert_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	e := s.AddEntity("Roma")
	series := s.AddSeries(core.Series{Code: 1})

	err := s.BulkUpsert(ctx, []core.UpsertInstruction{
		{SeriesID: series.ID, EntityID: e.ID, Values: map[int]*float64{2020: f(1)}},
		{SeriesID: series.ID, EntityID: uuid.New(), Values: map[int]*float64{2020: f(2)}},
	})
	if err == nil {
		t.Fatal("unknown entity should fail the whole write")
	}
	if s.ObservationCount() != 0 {
		t.Errorf("partial write: %d observations", s.ObservationCount())
	}

	boom := errors.New("boom")
	s.FailBulkUpsert(boom)
	err = s.BulkUpsert(ctx, []core.UpsertInstruction{{SeriesID: series.ID, EntityID: e.ID}})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want injected failure", err)
	}
	if s.ObservationCount() != 0 || s.UpsertCalls() != 0 {
		t.Error("failed upsert must not write")
	}
}

func TestSeriesRegistry(t *testing.T) {
	ctx := context.Background()
	s := New()
	series := s.AddSeries(core.Series{Code: 7, Name: "Verde"})

	got, err := s.FindSeriesByCode(ctx, 7)
	if err != nil || got == nil || got.ID != series.ID {
		t.Fatalf("FindSeriesByCode(7) = %v, %v", got, err)
	}
	if got.Mode != core.ModeEqualCount {
		t.Errorf("default mode = %q", got.Mode)
	}
	if got, err := s.FindSeriesByCode(ctx, 8); got != nil || err != nil {
		t.Errorf("FindSeriesByCode(8) = %v, %v; want nil, nil", got, err)
	}
	if _, err := s.GetSeries(ctx, uuid.New()); !errors.Is(err, core.ErrSeriesNotFound) {
		t.Errorf("GetSeries(unknown) err = %v", err)
	}

	got.Ranges = []core.Range{{Min: 1, Max: 2, Color: core.ColorBest}}
	if err := s.SaveSeries(ctx, *got); err != nil {
		t.Fatalf("SaveSeries: %v", err)
	}
	got.Ranges[0].Max = 99
	stored, _ := s.GetSeries(ctx, series.ID)
	if stored.Ranges[0].Max != 2 {
		t.Error("SaveSeries should store a copy")
	}
	if err := s.SaveSeries(ctx, core.Series{ID: uuid.New()}); !errors.Is(err, core.ErrSeriesNotFound) {
		t.Errorf("SaveSeries(unknown) err = %v", err)
	}
}

func TestPeriods(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.ReplaceAll(ctx, []core.Period{{Year: 2021, Enabled: true}, {Year: 2019, Enabled: true}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetPeriodEnabled(ctx, 2019, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetPeriodEnabled(ctx, 2030, true); err != nil {
		t.Fatal(err)
	}

	got, _ := s.ListPeriods(ctx)
	want := []core.Period{{Year: 2019}, {Year: 2021, Enabled: true}, {Year: 2030, Enabled: true}}
	if len(got) != len(want) {
		t.Fatalf("ListPeriods = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("period %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if err := s.ReplaceAll(ctx, []core.Period{{Year: 2022, Enabled: true}}); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.ListPeriods(ctx); len(got) != 1 || got[0].Year != 2022 {
		t.Errorf("ReplaceAll should drop earlier periods, got %v", got)
	}
}

func TestDeletePeriodValues(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, b := s.AddEntity("A"), s.AddEntity("B")
	series := s.AddSeries(core.Series{Code: 1})

	_ = s.BulkUpsert(ctx, []core.UpsertInstruction{
		{SeriesID: series.ID, EntityID: a.ID, Values: map[int]*float64{2020: f(1), 2021: nil}},
		{SeriesID: series.ID, EntityID: b.ID, Values: map[int]*float64{2021: f(3)}},
	})

	n, err := s.DeletePeriodValues(ctx, 2020)
	if err != nil || n != 1 {
		t.Fatalf("DeletePeriodValues(2020) = %d, %v; want 1", n, err)
	}
	if n, _ := s.DeletePeriodValues(ctx, 2021); n != 2 {
		t.Errorf("null values count as present keys, got %d", n)
	}
	o, _ := s.Observation(series.ID, a.ID)
	if len(o.Values) != 0 {
		t.Errorf("values = %v, want empty", o.Values)
	}
}

func TestSeriesWithData(t *testing.T) {
	ctx := context.Background()
	s := New()
	e := s.AddEntity("A")
	s1 := s.AddSeries(core.Series{Code: 9})
	s2 := s.AddSeries(core.Series{Code: 2})
	s.AddSeries(core.Series{Code: 5})

	_ = s.BulkUpsert(ctx, []core.UpsertInstruction{
		{SeriesID: s1.ID, EntityID: e.ID},
		{SeriesID: s2.ID, EntityID: e.ID},
	})

	ids, _ := s.SeriesWithData(ctx)
	if len(ids) != 2 || ids[0] != s2.ID || ids[1] != s1.ID {
		t.Errorf("SeriesWithData = %v, want [%s %s]", ids, s2.ID, s1.ID)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	e := s.AddEntity("L'Aquila")
	series := s.AddSeries(core.Series{Code: 3, Name: "Aria", DecimalPrecision: 1})
	_ = s.BulkUpsert(ctx, []core.UpsertInstruction{
		{SeriesID: series.ID, EntityID: e.ID, Values: map[int]*float64{2020: f(1.5), 2021: nil}},
	})
	_ = s.ReplaceAll(ctx, []core.Period{{Year: 2020, Enabled: true}, {Year: 2021, Enabled: true}})

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(s.Snapshot()); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	entities, _ := loaded.ListEntities(ctx)
	if len(entities) != 1 || entities[0] != e {
		t.Errorf("entities = %v", entities)
	}
	o, ok := loaded.Observation(series.ID, e.ID)
	if !ok || *o.Values[2020] != 1.5 || o.Values[2021] != nil {
		t.Errorf("observation = %+v", o)
	}
	if periods, _ := loaded.ListPeriods(ctx); len(periods) != 2 {
		t.Errorf("periods = %v", periods)
	}
}

func TestLoad_Invalid(t *testing.T) {
	if _, err := Load(bytes.NewBufferString("{")); err == nil {
		t.Error("Load should fail on malformed JSON")
	}
}
