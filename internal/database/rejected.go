package database

import "time"

// RejectReason says why a video file name was not accepted.
type RejectReason string

const (
	// RejectMalformed: the name matches neither file grammar.
	RejectMalformed RejectReason = "malformed"
	// RejectCase: the name only parses ignoring case.
	RejectCase RejectReason = "case"
)

// Rejected is a video file whose name needs attention.
type Rejected struct {
	Path       string
	Reason     RejectReason
	Suggestion string // canonical name derived from the release name, if any
	Attempts   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecordRejected adds path to the rejected list or bumps its attempt count.
func (d *DB) RecordRejected(path string, reason RejectReason, suggestion string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now().UTC()
	_, err := d.db.Exec(`
		INSERT INTO rejected_names (path, reason, suggestion, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			reason = excluded.reason,
			suggestion = excluded.suggestion,
			attempts = attempts + 1,
			updated_at = excluded.updated_at
	`, path, reason, suggestion, now, now)
	return err
}

// ListRejected returns rejected names ordered by path.
func (d *DB) ListRejected() ([]Rejected, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.Query(`
		SELECT path, reason, suggestion, attempts, created_at, updated_at
		FROM rejected_names
		ORDER BY path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rejected
	for rows.Next() {
		var r Rejected
		if err := rows.Scan(&r.Path, &r.Reason, &r.Suggestion, &r.Attempts, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClearRejected removes path, typically after it was renamed.
func (d *DB) ClearRejected(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.db.Exec(`DELETE FROM rejected_names WHERE path = ?`, path)
	return err
}
