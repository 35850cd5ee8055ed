// Package journal keeps an SQLite audit trail of machine activity.
//
// Each run gets a UUIDv7 id; records are appended in the order the machine
// emitted them. The journal is write-only from the machine's point of view:
// nothing here restores a machine.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/comalice/fsmx"
)

//go:embed schema.sql
var schemaSQL string

// Journal is an SQLite-backed record log.
type Journal struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

// RunInfo describes a journaled run.
type RunInfo struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	StartedAt time.Time `json:"startedAt" yaml:"startedAt"`
}

// Entry is a stored record with its position in the run.
type Entry struct {
	Seq           int    `json:"seq" yaml:"seq"`
	DirectiveKind string `json:"directive" yaml:"directive"`
	fsmx.Record   `yaml:",inline"`
}

// Open creates or opens a journal database at path.
func Open(path string, logger logrus.FieldLogger) (*Journal, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite has one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db, logger: logger}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Begin registers a new run and returns its recorder.
func (j *Journal) Begin(ctx context.Context, name string) (*Run, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	now := time.Now().UTC()
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, started_at) VALUES (?, ?, ?)`,
		id.String(), name, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return &Run{j: j, ctx: ctx, id: id.String()}, nil
}

// Runs lists journaled runs, oldest first.
func (j *Journal) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT id, name, started_at FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			r       RunInfo
			started string
		)
		if err := rows.Scan(&r.ID, &r.Name, &started); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("list runs: started_at: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Records returns the records of runID in emission order.
func (j *Journal) Records(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, router, kind, event, event_name, from_state, from_name, to_state, to_name, directive
		FROM records
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind string
		if err := rows.Scan(&e.Seq, &e.Router, &kind, &e.Event, &e.EventName,
			&e.From, &e.FromName, &e.To, &e.ToName, &e.DirectiveKind); err != nil {
			return nil, fmt.Errorf("read records: %w", err)
		}
		e.Kind = fsmx.RecordKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Run appends the records of one machine run. It is an fsmx.Observer.
type Run struct {
	j   *Journal
	ctx context.Context
	id  string
	seq int
	err error
}

// ID returns the run's UUIDv7.
func (r *Run) ID() string { return r.id }

// Err returns the first write failure, if any. Records after a failure are
// dropped.
func (r *Run) Err() error { return r.err }

// Observe writes rec. Failures are logged once and kept for Err.
func (r *Run) Observe(rec fsmx.Record) {
	if r.err != nil {
		return
	}
	_, err := r.j.db.ExecContext(r.ctx, `
		INSERT INTO records
		(run_id, seq, router, kind, event, event_name, from_state, from_name, to_state, to_name, directive)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.id, r.seq, rec.Router, string(rec.Kind), rec.Event, rec.EventName,
		rec.From, rec.FromName, rec.To, rec.ToName, rec.Directive.Kind.String(),
	)
	if err != nil {
		r.err = fmt.Errorf("write record %d: %w", r.seq, err)
		r.j.logger.WithError(r.err).WithField("run", r.id).Error("journal write failed")
		return
	}
	r.seq++
}
