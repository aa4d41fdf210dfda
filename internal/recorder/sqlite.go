package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"KWatch/internal/model"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS refresh_runs (
			id          TEXT PRIMARY KEY,
			source      TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			total       INTEGER,
			failed      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON refresh_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS readings (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			name       TEXT,
			price      REAL,
			k_value    REAL,
			signal     TEXT,
			available  INTEGER NOT NULL,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_symbol_ts ON readings(symbol, timestamp)`,
	}

	return r.execAll(stmts)
}

func (r *SQLiteRecorder) execAll(stmts []string) error {
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:min(40, len(s))], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var finished int64
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.Unix()
	}
	_, err := r.db.Exec(`INSERT INTO refresh_runs
		(id, source, started_at, finished_at, total, failed)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			total = excluded.total,
			failed = excluded.failed`,
		run.ID, run.Trigger, run.StartedAt.Unix(), finished, run.Total, run.Failed,
	)
	return err
}

func (r *SQLiteRecorder) RecordReading(runID string, rd *model.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := rd.At
	if at.IsZero() {
		at = time.Now()
	}
	available := 0
	if rd.Available {
		available = 1
	}
	_, err := r.db.Exec(`INSERT INTO readings
		(run_id, timestamp, symbol, name, price, k_value, signal, available, error)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		runID, at.Unix(), strings.ToUpper(rd.Symbol), rd.Name,
		rd.Price, rd.K, string(rd.Signal), available, rd.Err,
	)
	return err
}

// History returns the most recent readings of symbol, newest first.
func (r *SQLiteRecorder) History(symbol string, limit int) ([]model.Reading, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT timestamp, symbol, name, price, k_value, signal, available, error
		FROM readings WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.Reading
	for rows.Next() {
		var (
			ts        int64
			rd        model.Reading
			signal    string
			available int
		)
		if err := rows.Scan(&ts, &rd.Symbol, &rd.Name, &rd.Price, &rd.K, &signal, &available, &rd.Err); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rd.At = time.Unix(ts, 0)
		rd.Signal = model.Signal(signal)
		rd.Available = available == 1
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
