package database

import (
	"database/sql"
	"errors"
	"time"
)

// Mismatch is a file whose name claims a different definition than its
// video stream has.
type Mismatch struct {
	Path             string
	NamedDefinition  string
	ProbedDefinition string
	Width            int
	Height           int
	Encoder          string
	RunID            string
	FirstSeen        time.Time
	LastSeen         time.Time
	Resolved         bool
}

// UpsertMismatch records m. A known path keeps its first_seen and is reopened.
func (d *DB) UpsertMismatch(m Mismatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := m.LastSeen
	if now.IsZero() {
		now = time.Now().UTC()
	}
	_, err := d.db.Exec(`
		INSERT INTO definition_mismatches
			(path, named_definition, probed_definition, width, height, encoder, run_id, first_seen, last_seen, resolved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(path) DO UPDATE SET
			named_definition = excluded.named_definition,
			probed_definition = excluded.probed_definition,
			width = excluded.width,
			height = excluded.height,
			encoder = excluded.encoder,
			run_id = excluded.run_id,
			last_seen = excluded.last_seen,
			resolved = 0
	`, m.Path, m.NamedDefinition, m.ProbedDefinition, m.Width, m.Height, m.Encoder, m.RunID, now, now)
	return err
}

// GetMismatch returns the row for path, or nil when there is none.
func (d *DB) GetMismatch(path string) (*Mismatch, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	row := d.db.QueryRow(`SELECT `+mismatchColumns+` FROM definition_mismatches WHERE path = ?`, path)
	m, err := scanMismatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMismatches returns open mismatches ordered by path, or every row when
// includeResolved is set.
func (d *DB) ListMismatches(includeResolved bool) ([]Mismatch, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	query := `SELECT ` + mismatchColumns + ` FROM definition_mismatches`
	if !includeResolved {
		query += ` WHERE resolved = 0`
	}
	query += ` ORDER BY path`

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Mismatch
	for rows.Next() {
		m, err := scanMismatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ResolveStale marks open mismatches below root that runID did not report
// again as resolved, and returns how many rows changed.
func (d *DB) ResolveStale(root, runID string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prefix := root
	if prefix != "" && prefix[len(prefix)-1] != '/' {
		prefix += "/"
	}
	res, err := d.db.Exec(`
		UPDATE definition_mismatches SET resolved = 1
		WHERE resolved = 0 AND run_id != ? AND substr(path, 1, length(?)) = ?
	`, runID, prefix, prefix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteMismatch forgets path.
func (d *DB) DeleteMismatch(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.db.Exec(`DELETE FROM definition_mismatches WHERE path = ?`, path)
	return err
}

const mismatchColumns = `path, named_definition, probed_definition, width, height, encoder, run_id, first_seen, last_seen, resolved`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMismatch(r rowScanner) (Mismatch, error) {
	var m Mismatch
	err := r.Scan(&m.Path, &m.NamedDefinition, &m.ProbedDefinition, &m.Width, &m.Height,
		&m.Encoder, &m.RunID, &m.FirstSeen, &m.LastSeen, &m.Resolved)
	return m, err
}
