package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shapec-dev/shapec/internal/compiler/snapshot"
)

func setupTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	s, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func testSnapshot(service string, records ...string) *snapshot.Snapshot {
	s := &snapshot.Snapshot{
		Version:    snapshot.FormatVersion,
		Service:    service,
		SourceHash: "abc123",
		Classes: []snapshot.Class{{
			Name:    "ThingsClient",
			Kind:    snapshot.KindClient,
			Methods: []snapshot.Method{{Name: "ping", Signature: "ping(self) -> none"}},
		}},
		Literals: []snapshot.Literal{},
		Diagnostics: []snapshot.Diagnostic{
			{Code: "SCH001", Severity: "warning", Message: "missing"},
			{Code: "NAM204", Severity: "info", Message: "renamed"},
		},
	}
	for _, name := range records {
		s.Records = append(s.Records, snapshot.Record{Name: name, Fields: []snapshot.Field{}})
	}
	return s
}

func TestNewRun(t *testing.T) {
	run := NewRun(testSnapshot("things", "ATypeDef", "BTypeDef"))

	assert.Len(t, run.ID, 36)
	assert.Equal(t, "things", run.Service)
	assert.Equal(t, "abc123", run.SourceHash)
	assert.Equal(t, 2, run.Records)
	assert.Equal(t, 1, run.Methods)
	assert.Equal(t, 1, run.Warnings)
}

func TestSnapshotStore_SaveAndLatest(t *testing.T) {
	s := setupTestStore(t)
	s.now = fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	ctx := context.Background()

	first := NewRun(testSnapshot("things", "ATypeDef"))
	require.NoError(t, s.Save(ctx, first))
	second := NewRun(testSnapshot("things", "ATypeDef", "BTypeDef"))
	require.NoError(t, s.Save(ctx, second))
	require.NoError(t, s.Save(ctx, NewRun(testSnapshot("other"))))

	latest, err := s.Latest(ctx, "things")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, 2, latest.Records)
	assert.WithinDuration(t, second.CreatedAt, latest.CreatedAt, time.Millisecond)
	require.NotNil(t, latest.Snapshot)
	assert.Equal(t, second.Snapshot.Records, latest.Snapshot.Records)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Records)
}

func TestSnapshotStore_LatestNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Latest(context.Background(), "nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotStore_History(t *testing.T) {
	s := setupTestStore(t)
	s.now = fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		run := NewRun(testSnapshot("things"))
		require.NoError(t, s.Save(ctx, run))
		ids = append(ids, run.ID)
	}

	runs, err := s.History(ctx, "things", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Nil(t, runs[0].Snapshot)

	all, err := s.History(ctx, "things", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSnapshotStore_SaveRequiresSnapshot(t *testing.T) {
	s := setupTestStore(t)
	assert.Error(t, s.Save(context.Background(), &Run{Service: "things"}))
}

func TestSnapshotStore_InitializeIdempotent(t *testing.T) {
	s := setupTestStore(t)
	assert.NoError(t, s.Initialize(context.Background()))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	assert.ErrorContains(t, err, "unsupported store driver")

	for _, d := range []string{DriverSQLite, DriverPostgres, DriverPgx} {
		assert.NoError(t, ValidateDriver(d))
	}
}

func TestSnapshotStore_PostgresDDL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS snapshot_runs \(.*snapshot BYTEA NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_snapshot_runs_service_created`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := New(db, DriverPostgres)
	require.NoError(t, s.Initialize(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_SaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO snapshot_runs")).
		WithArgs(sqlmock.AnyArg(), "things", "abc123", sqlmock.AnyArg(), 0, 0, 1, 1, sqlmock.AnyArg()).
		WillReturnError(sql.ErrConnDone)

	s := New(db, DriverPgx)
	err = s.Save(context.Background(), NewRun(testSnapshot("things")))
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_HistoryScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"run_id", "service", "source_hash", "created_at", "records", "literals", "methods", "warnings"}).
		AddRow("id", "things", "h", "not-a-time", 1, 1, 1, 0)
	mock.ExpectQuery(`SELECT run_id, service`).WithArgs("things", 5).WillReturnRows(rows)

	s := New(db, DriverPostgres)
	_, err = s.History(context.Background(), "things", 5)
	assert.ErrorContains(t, err, "failed to scan run")
}

func TestSnapshotStore_CorruptSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"run_id", "service", "source_hash", "created_at", "records", "literals", "methods", "warnings", "snapshot"}).
		AddRow("id", "things", "h", time.Now(), 1, 1, 1, 0, []byte("garbage"))
	mock.ExpectQuery(`SELECT run_id, service`).WithArgs("things").WillReturnRows(rows)

	s := New(db, DriverPostgres)
	_, err = s.Latest(context.Background(), "things")
	assert.ErrorContains(t, err, "run id")
}
