package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/assetworld/internal/engine"
	"github.com/talgya/assetworld/internal/resolve"
	"github.com/talgya/assetworld/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleReports(n int) []engine.Report {
	out := make([]engine.Report, n)
	for i := range out {
		out[i] = engine.Report{
			Tick: uint64(i),
			Indicators: world.Indicators{
				Tick:            uint64(i),
				TotalPopulation: 100 - i,
				AvgHappiness:    0.5 + float64(i)/10,
				TotalAssets:     1000 + i,
				Stats:           world.TickStats{Collected: i, Regenerated: 2 * i, Consumed: 1, Deaths: i % 2},
			},
			Summary: resolve.Summary{Conflicts: 3, Pairs: 4, Reproductions: 1, Duels: 2, Transfers: 1, Draws: 1},
		}
	}
	return out
}

func TestRecorderStoresTicks(t *testing.T) {
	db := openTestDB(t)
	rec, err := NewRecorder(db, 42, "world: {}\n", 3)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	reports := sampleReports(7)
	for _, r := range reports {
		if err := rec.Record(r); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	res := engine.Result{Last: reports[6], Reason: engine.StopMaxTicks}
	if err := rec.Finish(res); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	rows, err := db.TickHistory(rec.RunID())
	if err != nil {
		t.Fatalf("TickHistory: %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("rows = %d, want 7", len(rows))
	}
	for i, row := range rows {
		want := rowFromReport(rec.RunID(), reports[i])
		if row != want {
			t.Fatalf("row %d = %+v, want %+v", i, row, want)
		}
	}

	run, err := db.GetRun(rec.RunID())
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Seed != 42 || run.ConfigYAML != "world: {}\n" {
		t.Fatalf("run = %+v", run)
	}
	if run.StopReason == nil || *run.StopReason != string(engine.StopMaxTicks) {
		t.Fatalf("stop reason = %v", run.StopReason)
	}
	if run.LastTick == nil || *run.LastTick != 6 {
		t.Fatalf("last tick = %v", run.LastTick)
	}
}

func TestRunsAreSeparate(t *testing.T) {
	db := openTestDB(t)
	a, err := db.StartRun(1, "")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	b, err := db.StartRun(2, "")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if a == b {
		t.Fatalf("run IDs collide")
	}
	if err := db.SaveTicks(a, sampleReports(4)); err != nil {
		t.Fatalf("SaveTicks: %v", err)
	}
	if err := db.SaveTicks(b, sampleReports(2)); err != nil {
		t.Fatalf("SaveTicks: %v", err)
	}
	rows, _ := db.TickHistory(b)
	if len(rows) != 2 {
		t.Fatalf("run b rows = %d, want 2", len(rows))
	}
	if err := db.SaveTicks(b, sampleReports(1)); err == nil {
		t.Fatalf("duplicate tick accepted")
	}
}

func TestFinishUnknownRun(t *testing.T) {
	db := openTestDB(t)
	if err := db.FinishRun("nope", engine.Result{}); err == nil {
		t.Fatalf("finishing an unknown run succeeded")
	}
}

func TestTraceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "run.jsonl.zst")
	tw, err := CreateTrace(path)
	if err != nil {
		t.Fatalf("CreateTrace: %v", err)
	}
	reports := sampleReports(50)
	for _, r := range reports {
		if err := tw.Write(r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadTrace(path)
	if err != nil {
		t.Fatalf("ReadTrace: %v", err)
	}
	if len(got) != len(reports) {
		t.Fatalf("read %d reports, want %d", len(got), len(reports))
	}
	for i := range got {
		if got[i] != reports[i] {
			t.Fatalf("report %d = %+v, want %+v", i, got[i], reports[i])
		}
	}
}
