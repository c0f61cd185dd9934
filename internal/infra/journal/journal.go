// Package journal keeps an on-disk record of what an unattended run did:
// every worker attempt and every completed rotation, queryable after the
// fact with any sqlite client.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vietddude/rotor/internal/core/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	attempt     INTEGER NOT NULL,
	exit_code   INTEGER NOT NULL,
	outcome     TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS rotations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	old_hostname TEXT NOT NULL DEFAULT '',
	new_hostname TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	attempts     INTEGER NOT NULL,
	escalated    INTEGER NOT NULL,
	created_at   INTEGER NOT NULL
);
`

// Journal is an append-only run history.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// RecordAttempt appends one worker invocation.
func (j *Journal) RecordAttempt(ctx context.Context, rec domain.AttemptRecord) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO attempts (run_id, attempt, exit_code, outcome, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Attempt, rec.ExitCode, rec.Outcome.String(),
		rec.Duration.Milliseconds(), rec.At.Unix())
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// RecordRotation appends one completed rotation.
func (j *Journal) RecordRotation(ctx context.Context, rec domain.RotationRecord) error {
	escalated := 0
	if rec.Escalated {
		escalated = 1
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO rotations (run_id, old_hostname, new_hostname, location, attempts, escalated, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.OldHostname, rec.NewHostname, rec.Location,
		rec.Attempts, escalated, rec.At.Unix())
	if err != nil {
		return fmt.Errorf("failed to record rotation: %w", err)
	}
	return nil
}

// AttemptCount returns the number of recorded attempts for a run.
func (j *Journal) AttemptCount(ctx context.Context, runID string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return n, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
