package journal

import (
	"fmt"
	"time"
)

// Run is one journaled archive pass.
type Run struct {
	ID            int64
	Kind          string // archive, daily, monthly
	ReferenceDate string
	StartedAt     time.Time
	Moved         int
	Skipped       int
	Missing       int
	Moves         []Move
}

// Move is one planned move and what became of it.
type Move struct {
	Kind     string
	Source   string
	Dest     string
	Outcome  string
	Checksum string
}

// Recorder is what the archive flow needs from the journal.
type Recorder interface {
	RecordRun(r Run) (int64, error)
	RecentRuns(limit int) ([]Run, error)
	Close() error
}

// Verify *DB satisfies Recorder at compile time.
var _ Recorder = (*DB)(nil)

// RecordRun stores a run and its moves within a transaction.
func (db *DB) RecordRun(r Run) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("journal: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`
		INSERT INTO runs (kind, reference_date, started_at, moved, skipped, missing)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.Kind, r.ReferenceDate, r.StartedAt.UTC().Format(time.RFC3339Nano), r.Moved, r.Skipped, r.Missing)
	if err != nil {
		return 0, fmt.Errorf("journal: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("journal: run id: %w", err)
	}

	if len(r.Moves) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO moves (run_id, seq, kind, source, dest, outcome, checksum) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("journal: prepare move insert: %w", err)
		}
		defer stmt.Close()
		for i, m := range r.Moves {
			if _, err := stmt.Exec(id, i, m.Kind, m.Source, m.Dest, m.Outcome, m.Checksum); err != nil {
				return 0, fmt.Errorf("journal: insert move: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("journal: commit: %w", err)
	}
	return id, nil
}

// RecentRuns returns up to limit runs, newest first, with their moves.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.Query(`
		SELECT id, kind, reference_date, started_at, moved, skipped, missing
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Kind, &r.ReferenceDate, &started, &r.Moved, &r.Skipped, &r.Missing); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Moves, err = db.moves(out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (db *DB) moves(runID int64) ([]Move, error) {
	rows, err := db.conn.Query(`
		SELECT kind, source, dest, outcome, checksum
		FROM moves WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("journal: moves: %w", err)
	}
	defer rows.Close()

	var out []Move
	for rows.Next() {
		var m Move
		if err := rows.Scan(&m.Kind, &m.Source, &m.Dest, &m.Outcome, &m.Checksum); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
