// Package persistence records simulation runs: per-tick indicators in
// SQLite and an optional compressed JSONL trace.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/assetworld/internal/engine"
)

// DB wraps a SQLite connection for run recording.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		stop_reason TEXT,
		last_tick INTEGER,
		config_yaml TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS indicators (
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		population INTEGER NOT NULL,
		avg_happiness REAL NOT NULL,
		total_assets INTEGER NOT NULL,
		collected INTEGER NOT NULL,
		regenerated INTEGER NOT NULL,
		consumed INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		conflicts INTEGER NOT NULL,
		reproductions INTEGER NOT NULL,
		assassinations INTEGER NOT NULL,
		draws INTEGER NOT NULL,
		duels INTEGER NOT NULL,
		transfers INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_indicators_run ON indicators(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one row of the runs table.
type Run struct {
	ID         string  `db:"id"`
	Seed       int64   `db:"seed"`
	StartedAt  string  `db:"started_at"`
	FinishedAt *string `db:"finished_at"`
	StopReason *string `db:"stop_reason"`
	LastTick   *int64  `db:"last_tick"`
	ConfigYAML string  `db:"config_yaml"`
}

// TickRow is one row of the indicators table.
type TickRow struct {
	RunID          string  `db:"run_id"`
	Tick           int64   `db:"tick"`
	Population     int     `db:"population"`
	AvgHappiness   float64 `db:"avg_happiness"`
	TotalAssets    int     `db:"total_assets"`
	Collected      int     `db:"collected"`
	Regenerated    int     `db:"regenerated"`
	Consumed       int     `db:"consumed"`
	Deaths         int     `db:"deaths"`
	Conflicts      int     `db:"conflicts"`
	Reproductions  int     `db:"reproductions"`
	Assassinations int     `db:"assassinations"`
	Draws          int     `db:"draws"`
	Duels          int     `db:"duels"`
	Transfers      int     `db:"transfers"`
}

func rowFromReport(runID string, r engine.Report) TickRow {
	ind, sum := r.Indicators, r.Summary
	return TickRow{
		RunID:          runID,
		Tick:           int64(r.Tick),
		Population:     ind.TotalPopulation,
		AvgHappiness:   ind.AvgHappiness,
		TotalAssets:    ind.TotalAssets,
		Collected:      ind.Stats.Collected,
		Regenerated:    ind.Stats.Regenerated,
		Consumed:       ind.Stats.Consumed,
		Deaths:         ind.Stats.Deaths,
		Conflicts:      sum.Conflicts,
		Reproductions:  sum.Reproductions,
		Assassinations: sum.Assassinations,
		Draws:          sum.Draws,
		Duels:          sum.Duels,
		Transfers:      sum.Transfers,
	}
}

// StartRun registers a new run and returns its ID.
func (db *DB) StartRun(seed int64, configYAML string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, seed, started_at, config_yaml) VALUES (?, ?, ?, ?)",
		id, seed, time.Now().UTC().Format(time.RFC3339), configYAML,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	slog.Debug("run started", "run", id, "seed", seed)
	return id, nil
}

// SaveTicks appends tick rows for a run in one transaction.
func (db *DB) SaveTicks(runID string, reports []engine.Report) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(`INSERT INTO indicators
		(run_id, tick, population, avg_happiness, total_assets,
		 collected, regenerated, consumed, deaths,
		 conflicts, reproductions, assassinations, draws, duels, transfers)
		VALUES (:run_id, :tick, :population, :avg_happiness, :total_assets,
		 :collected, :regenerated, :consumed, :deaths,
		 :conflicts, :reproductions, :assassinations, :draws, :duels, :transfers)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range reports {
		if _, err := stmt.Exec(rowFromReport(runID, r)); err != nil {
			return fmt.Errorf("insert tick %d: %w", r.Tick, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("ticks saved", "run", runID, "count", len(reports))
	return nil
}

// FinishRun stamps a run with its end state.
func (db *DB) FinishRun(runID string, res engine.Result) error {
	out, err := db.conn.Exec(
		"UPDATE runs SET finished_at = ?, stop_reason = ?, last_tick = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), string(res.Reason), int64(res.Last.Tick), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: no run %s", runID)
	}
	return nil
}

// GetRun loads one run.
func (db *DB) GetRun(runID string) (Run, error) {
	var r Run
	err := db.conn.Get(&r, "SELECT * FROM runs WHERE id = ?", runID)
	return r, err
}

// TickHistory returns a run's tick rows in tick order.
func (db *DB) TickHistory(runID string) ([]TickRow, error) {
	var rows []TickRow
	err := db.conn.Select(&rows,
		"SELECT * FROM indicators WHERE run_id = ? ORDER BY tick",
		runID,
	)
	return rows, err
}

// Recorder buffers reports and flushes them in batches. It is meant to be
// used as (part of) an engine OnTick callback.
type Recorder struct {
	db    *DB
	runID string
	batch int
	buf   []engine.Report
}

// NewRecorder starts a run in db and returns a recorder for it.
func NewRecorder(db *DB, seed int64, configYAML string, batch int) (*Recorder, error) {
	id, err := db.StartRun(seed, configYAML)
	if err != nil {
		return nil, err
	}
	if batch < 1 {
		batch = 1
	}
	return &Recorder{db: db, runID: id, batch: batch}, nil
}

// RunID returns the ID of the run being recorded.
func (r *Recorder) RunID() string { return r.runID }

// Record buffers one report, flushing when the batch is full.
func (r *Recorder) Record(rep engine.Report) error {
	r.buf = append(r.buf, rep)
	if len(r.buf) >= r.batch {
		return r.Flush()
	}
	return nil
}

// Flush writes buffered reports.
func (r *Recorder) Flush() error {
	if err := r.db.SaveTicks(r.runID, r.buf); err != nil {
		return err
	}
	r.buf = r.buf[:0]
	return nil
}

// Finish flushes and stamps the run with res.
func (r *Recorder) Finish(res engine.Result) error {
	if err := r.Flush(); err != nil {
		return fmt.Errorf("flush ticks: %w", err)
	}
	return r.db.FinishRun(r.runID, res)
}
