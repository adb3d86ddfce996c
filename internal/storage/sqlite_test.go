package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sydleither/spatial-egt/internal/core"
	"github.com/sydleither/spatial-egt/internal/experiment"
	"github.com/sydleither/spatial-egt/internal/sim"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	id, err := store.CreateRun(Run{ExpDir: "games", ExpName: "competition", Dimension: "2D", Rep: "0", NumDays: 10, Game: "sensitive_wins"})
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}
	store.Close()

	// Migrations must be idempotent
	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	run, err := store.RunByID(id)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if run == nil || run.ExpName != "competition" {
		t.Errorf("RunByID() = %+v, expected the competition run", run)
	}
}

func TestCreateAndCompleteRun(t *testing.T) {
	store := openTestStore(t)

	id, err := store.CreateRun(Run{
		ExpDir:    "games",
		ExpName:   "bistability",
		Dimension: "3D",
		Rep:       "4",
		Seed:      1234,
		NumDays:   500,
		Game:      "bistability",
	})
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	run, err := store.RunByID(id)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if run.Completed {
		t.Error("new run should not be completed")
	}
	if run.Seed != 1234 || run.Dimension != "3D" || run.Rep != "4" || run.NumDays != 500 {
		t.Errorf("RunByID() = %+v, fields do not match", run)
	}
	if run.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	if err := store.CompleteRun(id, 1500*time.Millisecond); err != nil {
		t.Fatalf("CompleteRun() failed: %v", err)
	}
	run, _ = store.RunByID(id)
	if !run.Completed || run.Duration != 1500*time.Millisecond {
		t.Errorf("after CompleteRun, run = %+v", run)
	}
}

func TestRunByIDMissing(t *testing.T) {
	store := openTestStore(t)

	run, err := store.RunByID(42)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if run != nil {
		t.Errorf("RunByID() = %+v, expected nil", run)
	}
}

func TestRecentRuns(t *testing.T) {
	store := openTestStore(t)

	for _, name := range []string{"a", "b", "c"} {
		if _, err := store.CreateRun(Run{ExpDir: "d", ExpName: name, Dimension: "WM", Rep: "0", Game: "unknown"}); err != nil {
			t.Fatalf("CreateRun() failed: %v", err)
		}
	}

	runs, err := store.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns(2) returned %d runs", len(runs))
	}
	if runs[0].ExpName != "c" || runs[1].ExpName != "b" {
		t.Errorf("RecentRuns() order = %q, %q, expected c, b", runs[0].ExpName, runs[1].ExpName)
	}
}

func TestRecorderAndSeries(t *testing.T) {
	store := openTestStore(t)

	id, err := store.CreateRun(Run{ExpDir: "d", ExpName: "e", Dimension: "2D", Rep: "0", Game: "coexistence"})
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	rec, err := store.Recorder(id)
	if err != nil {
		t.Fatalf("Recorder() failed: %v", err)
	}
	totals := []int{100, 105, 118, 125, 90}
	var written []experiment.Sample
	for i, total := range totals {
		s := experiment.Sample{Tick: 2 * i}
		s.Counts[sim.PolicyNull] = core.Counts{Sensitive: total, Resistant: 1}
		s.Counts[sim.PolicyAdaptive] = core.Counts{Sensitive: total - 5, Resistant: 5}
		s.Counts[sim.PolicyContinuous] = core.Counts{Sensitive: 50, Resistant: 50}
		if err := rec.Record(s); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
		written = append(written, s)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	series, err := store.Series(id)
	if err != nil {
		t.Fatalf("Series() failed: %v", err)
	}
	if len(series) != len(written) {
		t.Fatalf("Series() returned %d samples, expected %d", len(series), len(written))
	}
	for i := range written {
		if series[i] != written[i] {
			t.Errorf("sample %d = %+v, expected %+v", i, series[i], written[i])
		}
	}

	tick, ok, err := store.ProgressionTime(id, sim.PolicyAdaptive, experiment.ProgressionFactor)
	if err != nil {
		t.Fatalf("ProgressionTime() failed: %v", err)
	}
	if !ok || tick != 6 {
		t.Errorf("ProgressionTime() = (%d, %v), expected (6, true)", tick, ok)
	}

	if _, ok, _ := store.ProgressionTime(id, sim.PolicyContinuous, experiment.ProgressionFactor); ok {
		t.Error("continuous model never grows and should not progress")
	}
}

func TestRunnerWritesToStore(t *testing.T) {
	store := openTestStore(t)
	id, _ := store.CreateRun(Run{ExpDir: "d", ExpName: "e", Dimension: "WM", Rep: "0", Game: "unknown"})

	cfg := testExperiment()
	ms, err := experiment.Build(cfg, "WM", 9)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	rec, err := store.Recorder(id)
	if err != nil {
		t.Fatalf("Recorder() failed: %v", err)
	}
	memory := &experiment.MemoryRecorder{}
	r := experiment.NewRunner(ms, 10, experiment.Options{})
	r.AddRecorder(rec)
	r.AddRecorder(memory)
	if _, err := r.Run(t.Context()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	series, err := store.Series(id)
	if err != nil {
		t.Fatalf("Series() failed: %v", err)
	}
	if len(series) != len(memory.Samples) {
		t.Fatalf("stored %d samples, recorded %d", len(series), len(memory.Samples))
	}
	for i := range series {
		if series[i] != memory.Samples[i] {
			t.Errorf("sample %d differs: %+v vs %+v", i, series[i], memory.Samples[i])
		}
	}
}

func TestRecorderAbort(t *testing.T) {
	store := openTestStore(t)
	id, _ := store.CreateRun(Run{ExpDir: "d", ExpName: "e", Dimension: "2D", Rep: "0", Game: "unknown"})

	rec, err := store.Recorder(id)
	if err != nil {
		t.Fatalf("Recorder() failed: %v", err)
	}
	for tick := 0; tick < 4; tick += 2 {
		if err := rec.Record(experiment.Sample{Tick: tick}); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}
	if err := rec.Abort(); err != nil {
		t.Fatalf("Abort() failed: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Errorf("Close() after Abort() = %v, expected nil", err)
	}

	series, err := store.Series(id)
	if err != nil {
		t.Fatalf("Series() failed: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("aborted recorder left %d samples", len(series))
	}
}

// cancelAt cancels the run once it records tick.
type cancelAt struct {
	tick   int
	cancel context.CancelFunc
}

func (c *cancelAt) Record(s experiment.Sample) error {
	if s.Tick == c.tick {
		c.cancel()
	}
	return nil
}

func (c *cancelAt) Close() error { return nil }

func TestCancelledRunRollsBack(t *testing.T) {
	store := openTestStore(t)
	id, _ := store.CreateRun(Run{ExpDir: "d", ExpName: "e", Dimension: "WM", Rep: "0", Game: "unknown"})

	ms, err := experiment.Build(testExperiment(), "WM", 4)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	rec, err := store.Recorder(id)
	if err != nil {
		t.Fatalf("Recorder() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	r := experiment.NewRunner(ms, 20, experiment.Options{})
	r.AddRecorder(rec)
	r.AddRecorder(&cancelAt{tick: 4, cancel: cancel})
	if _, err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, expected context.Canceled", err)
	}

	series, err := store.Series(id)
	if err != nil {
		t.Fatalf("Series() failed: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("cancelled run committed %d samples", len(series))
	}
}

func TestStoreFailureDoesNotStopRun(t *testing.T) {
	store := openTestStore(t)
	id, _ := store.CreateRun(Run{ExpDir: "d", ExpName: "e", Dimension: "WM", Rep: "0", Game: "unknown"})

	// A row already stored for tick 4 makes the run's insert at tick 4 fail.
	first, err := store.Recorder(id)
	if err != nil {
		t.Fatalf("Recorder() failed: %v", err)
	}
	if err := first.Record(experiment.Sample{Tick: 4}); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	ms, err := experiment.Build(testExperiment(), "WM", 4)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	rec, err := store.Recorder(id)
	if err != nil {
		t.Fatalf("Recorder() failed: %v", err)
	}
	bestEffort := experiment.NewBestEffortRecorder("sqlite", rec, nil)
	memory := &experiment.MemoryRecorder{}

	r := experiment.NewRunner(ms, 10, experiment.Options{})
	r.AddRecorder(bestEffort)
	r.AddRecorder(memory)
	if _, err := r.Run(t.Context()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if !bestEffort.Failed() {
		t.Error("Failed() should report the insert conflict")
	}
	if len(memory.Samples) != 6 {
		t.Errorf("other recorders got %d samples, expected 6", len(memory.Samples))
	}

	series, err := store.Series(id)
	if err != nil {
		t.Fatalf("Series() failed: %v", err)
	}
	if len(series) != 1 || series[0].Tick != 4 {
		t.Errorf("failed recorder should be rolled back, series = %+v", series)
	}
}

func TestDeleteRun(t *testing.T) {
	store := openTestStore(t)
	id, _ := store.CreateRun(Run{ExpDir: "d", ExpName: "e", Dimension: "2D", Rep: "0", Game: "unknown"})
	rec, _ := store.Recorder(id)
	rec.Record(experiment.Sample{Tick: 0})
	rec.Close()

	if err := store.DeleteRun(id); err != nil {
		t.Fatalf("DeleteRun() failed: %v", err)
	}
	if run, _ := store.RunByID(id); run != nil {
		t.Error("run should be gone after DeleteRun")
	}
	if series, _ := store.Series(id); len(series) != 0 {
		t.Errorf("series should be gone after DeleteRun, got %d samples", len(series))
	}
}
