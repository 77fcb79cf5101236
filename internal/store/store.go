// Package store keeps the history of compiled snapshots in a SQL database so
// successive runs can be compared.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shapec-dev/shapec/internal/compiler/snapshot"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// ErrNotFound is returned when no run matches.
var ErrNotFound = errors.New("run not found")

// Run is one stored compilation of a service.
type Run struct {
	ID         string
	Service    string
	SourceHash string
	CreatedAt  time.Time
	Records    int
	Literals   int
	Methods    int
	Warnings   int

	// Snapshot is nil in History results.
	Snapshot *snapshot.Snapshot
}

// NewRun summarizes s into a run with a fresh id.
func NewRun(s *snapshot.Snapshot) *Run {
	r := &Run{
		ID:         uuid.NewString(),
		Service:    s.Service,
		SourceHash: s.SourceHash,
		Records:    len(s.Records),
		Literals:   len(s.Literals),
		Methods:    s.MethodCount(),
		Snapshot:   s,
	}
	for _, d := range s.Diagnostics {
		if d.Severity == "warning" {
			r.Warnings++
		}
	}
	return r
}

// SnapshotStore manages snapshot history in the database
type SnapshotStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open connects to the database and returns a store over it.
func Open(driver, dsn string) (*SnapshotStore, error) {
	if err := ValidateDriver(driver); err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// Writers serialize on one connection; this also keeps in-memory
		// databases alive across calls.
		db.SetMaxOpenConns(1)
	}
	return New(db, driver), nil
}

// ValidateDriver reports whether driver is supported.
func ValidateDriver(driver string) error {
	switch driver {
	case DriverSQLite, DriverPostgres, DriverPgx:
		return nil
	}
	return fmt.Errorf("unsupported store driver %q", driver)
}

// New creates a store over an open database.
func New(db *sql.DB, driver string) *SnapshotStore {
	return &SnapshotStore{db: db, driver: driver, now: time.Now}
}

// DB returns the underlying database.
func (s *SnapshotStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SnapshotStore) Close() error { return s.db.Close() }

func (s *SnapshotStore) blobType() string {
	if s.driver == DriverSQLite {
		return "BLOB"
	}
	return "BYTEA"
}

// Initialize ensures the snapshot_runs table exists
func (s *SnapshotStore) Initialize(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS snapshot_runs (
	run_id VARCHAR(36) PRIMARY KEY,
	service VARCHAR(255) NOT NULL,
	source_hash VARCHAR(64) NOT NULL,
	created_at TIMESTAMP NOT NULL,
	records INTEGER NOT NULL,
	literals INTEGER NOT NULL,
	methods INTEGER NOT NULL,
	warnings INTEGER NOT NULL,
	snapshot %s NOT NULL
)`, s.blobType())
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to initialize snapshot_runs table: %w", err)
	}

	index := `CREATE INDEX IF NOT EXISTS idx_snapshot_runs_service_created ON snapshot_runs(service, created_at)`
	if _, err := s.db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("failed to create snapshot_runs index: %w", err)
	}
	return nil
}

// Save stores run, assigning an id and a creation time when unset.
func (s *SnapshotStore) Save(ctx context.Context, run *Run) error {
	if run.Snapshot == nil {
		return fmt.Errorf("run %s has no snapshot", run.Service)
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}

	data, err := snapshot.Serialize(run.Snapshot)
	if err != nil {
		return err
	}
	packed, err := snapshot.Compress(data)
	if err != nil {
		return err
	}

	query := `
INSERT INTO snapshot_runs (run_id, service, source_hash, created_at, records, literals, methods, warnings, snapshot)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.Service, run.SourceHash, run.CreatedAt,
		run.Records, run.Literals, run.Methods, run.Warnings, packed)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// Latest returns the most recent run of service with its snapshot.
func (s *SnapshotStore) Latest(ctx context.Context, service string) (*Run, error) {
	query := `
SELECT run_id, service, source_hash, created_at, records, literals, methods, warnings, snapshot
FROM snapshot_runs
WHERE service = $1
ORDER BY created_at DESC
LIMIT 1
`
	return s.queryOne(ctx, query, service)
}

// Get returns the run with the given id.
func (s *SnapshotStore) Get(ctx context.Context, id string) (*Run, error) {
	query := `
SELECT run_id, service, source_hash, created_at, records, literals, methods, warnings, snapshot
FROM snapshot_runs
WHERE run_id = $1
`
	return s.queryOne(ctx, query, id)
}

func (s *SnapshotStore) queryOne(ctx context.Context, query string, arg any) (*Run, error) {
	run := &Run{}
	var packed []byte
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&run.ID, &run.Service, &run.SourceHash, &run.CreatedAt,
		&run.Records, &run.Literals, &run.Methods, &run.Warnings, &packed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	snap, err := snapshot.Decode(packed)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", run.ID, err)
	}
	run.Snapshot = snap
	return run, nil
}

// History returns up to limit runs of service, newest first, without their
// snapshots. A limit below one returns every run.
func (s *SnapshotStore) History(ctx context.Context, service string, limit int) ([]*Run, error) {
	query := `
SELECT run_id, service, source_hash, created_at, records, literals, methods, warnings
FROM snapshot_runs
WHERE service = $1
ORDER BY created_at DESC
`
	args := []any{service}
	if limit > 0 {
		query += "LIMIT $2\n"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(&run.ID, &run.Service, &run.SourceHash, &run.CreatedAt,
			&run.Records, &run.Literals, &run.Methods, &run.Warnings); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}
