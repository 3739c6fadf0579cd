package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Run summarizes one audit pass over a library root.
type Run struct {
	ID         string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Files      int
	Mismatches int
	Failures   int
}

// StartRun records the start of an audit of root.
func (d *DB) StartRun(root string) (Run, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	run := Run{ID: uuid.NewString(), Root: root, StartedAt: time.Now().UTC()}
	_, err := d.db.Exec(`INSERT INTO audit_runs (id, root, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Root, run.StartedAt)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// FinishRun stores the counters of run and stamps its finish time.
func (d *DB) FinishRun(run Run) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}
	_, err := d.db.Exec(`
		UPDATE audit_runs SET finished_at = ?, files = ?, mismatches = ?, failures = ?
		WHERE id = ?
	`, finished, run.Files, run.Mismatches, run.Failures, run.ID)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (d *DB) RecentRuns(limit int) ([]Run, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.Query(`
		SELECT id, root, started_at, finished_at, files, mismatches, failures
		FROM audit_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Root, &r.StartedAt, &finished, &r.Files, &r.Mismatches, &r.Failures); err != nil {
			return nil, err
		}
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
