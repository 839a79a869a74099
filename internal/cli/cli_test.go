package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/indicators/internal/core"
	"github.com/JonMunkholm/indicators/internal/store/memstore"
)

// seedEnv writes a memory store snapshot and points the config at it.
func seedEnv(t *testing.T, st *memstore.Store) {
	t.Helper()
	data, err := json.Marshal(st.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("MEMORY_SEED_FILE", path)
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newSeed() (*memstore.Store, core.Series) {
	st := memstore.New()
	for _, name := range []string{"Roma", "Milano", "Torino", "Napoli"} {
		st.AddEntity(name)
	}
	return st, st.AddSeries(core.Series{Code: 7, Name: "Reddito"})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIngestCommand(t *testing.T) {
	st, _ := newSeed()
	seedEnv(t, st)

	dir := t.TempDir()
	writeFile(t, dir, "007 - Reddito.csv", "Comune,2020\nRoma,1\nMilano,2\nTorino,3\nNapoli,4\n")
	writeFile(t, dir, "notes.txt", "ignored")

	out, err := execute(t, "ingest", "--dir", dir)
	if err != nil {
		t.Fatalf("ingest: %v\n%s", err, out)
	}
	if !strings.Contains(out, "newly classified: 1") {
		t.Errorf("output = %s", out)
	}

	out, err = execute(t, "ingest", "--dir", dir, "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var result core.IngestResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("json output: %v\n%s", err, out)
	}
	if len(result.Files) != 1 || result.Files[0].RowsProcessed != 4 {
		t.Errorf("files = %+v", result.Files)
	}
}

func TestIngestCommand_Errors(t *testing.T) {
	st, _ := newSeed()
	seedEnv(t, st)
	dir := t.TempDir()

	if _, err := execute(t, "ingest"); err == nil {
		t.Error("ingest without files should fail")
	}

	bad := writeFile(t, dir, "007 - Reddito.csv", "Comune,2020\nAtlantide,1\n")
	_, err := execute(t, "ingest", bad)
	if err == nil || !strings.Contains(err.Error(), "Atlantide") {
		t.Errorf("err = %v, want it to name the unresolved entity", err)
	}
	if err != nil && !strings.Contains(err.Error(), "(Code: ING003)") {
		t.Errorf("err = %v, want the support code", err)
	}

	if _, err := execute(t, "ingest", bad, "--format", "yaml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestClassifyCommand(t *testing.T) {
	st, series := newSeed()
	entities, err := st.ListEntities(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var instructions []core.UpsertInstruction
	for i, e := range entities {
		v := float64((i + 1) * 10)
		instructions = append(instructions, core.UpsertInstruction{
			SeriesID: series.ID,
			EntityID: e.ID,
			Values:   map[int]*float64{2020: &v},
		})
	}
	if err := st.BulkUpsert(context.Background(), instructions); err != nil {
		t.Fatal(err)
	}
	seedEnv(t, st)

	out, err := execute(t, "classify", series.ID.String(), "--mode", "equalInterval", "--format", "json")
	if err != nil {
		t.Fatalf("classify: %v\n%s", err, out)
	}
	var result core.ClassifyResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("json output: %v\n%s", err, out)
	}
	if result.SeriesID != series.ID || len(result.Ranges) != 4 {
		t.Errorf("result = %+v", result)
	}
	if result.Ranges[0].Max != 40 || result.Ranges[3].Min != 10 {
		t.Errorf("ranges = %+v, want 10..40 covered", result.Ranges)
	}
}

func TestClassifyCommand_Errors(t *testing.T) {
	st, series := newSeed()
	seedEnv(t, st)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad id", []string{"classify", "nope"}, "invalid series id"},
		{"bad mode", []string{"classify", series.ID.String(), "--mode", "jenks"}, "invalid classification mode"},
		{"unknown series", []string{"classify", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}, "series not found"},
		{"unknown series shows code", []string{"classify", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}, "(Code: ING007)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestMigrateNeedsPostgres(t *testing.T) {
	st, _ := newSeed()
	seedEnv(t, st)

	_, err := execute(t, "migrate")
	if err == nil || !strings.Contains(err.Error(), "STORE_DRIVER=postgres") {
		t.Errorf("err = %v", err)
	}
}

func TestCollectPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.XLSX", "")
	writeFile(t, dir, "a.csv", "")
	writeFile(t, dir, "c.json", "")

	got, err := collectPaths([]string{"x.csv"}, dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"x.csv", filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.XLSX")}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestWithUserMessage(t *testing.T) {
	plain := errors.New("random internal error xyz")
	if got := withUserMessage(plain); got != plain {
		t.Errorf("uncoded error was rewritten: %v", got)
	}

	err := withUserMessage(fmt.Errorf("classify: %w", core.ErrSeriesNotFound))
	if !errors.Is(err, core.ErrSeriesNotFound) {
		t.Error("wrapped error should still match ErrSeriesNotFound")
	}
	if !strings.HasPrefix(err.Error(), core.FormatUserError(core.ErrSeriesNotFound)) {
		t.Errorf("err = %q, want the user message first", err)
	}
}
