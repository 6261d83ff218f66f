package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"awake/internal/database/migrations"
	"awake/internal/schedule"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Preference keys. The sleep-hour key doubles as the "ever configured" sentinel.
const (
	KeySleepHour   = "sleepHour"
	KeySleepMinute = "sleepMinute"
	KeyWakeEnabled = "wakeEnabled"
	KeyWakeHour    = "wakeHour"
	KeyWakeMinute  = "wakeMinute"
	KeyDays        = "days"
	KeyLanguage    = "appLanguage"
)

// SQLiteDatabase stores preferences and the operation history in SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens the database at path (or ":memory:") and brings
// its schema up to date.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to ":memory:" is its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Preferences

func (s *SQLiteDatabase) getPreference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setPreference(ctx context.Context, ex execer, key, value string, now time.Time) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

// LoadDesired reads the saved schedule. ok is false when the sleep-hour key
// has never been written. Missing or unreadable keys keep their defaults.
func (s *SQLiteDatabase) LoadDesired() (schedule.DesiredSchedule, bool, error) {
	ctx := context.Background()
	d := schedule.DefaultDesiredSchedule()

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM preferences WHERE key IN (?, ?, ?, ?, ?, ?)",
		KeySleepHour, KeySleepMinute, KeyWakeEnabled, KeyWakeHour, KeyWakeMinute, KeyDays)
	if err != nil {
		return d, false, fmt.Errorf("loading schedule preferences: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, 6)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return d, false, fmt.Errorf("scanning preference: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return d, false, fmt.Errorf("loading schedule preferences: %w", err)
	}

	if _, ok := values[KeySleepHour]; !ok {
		return d, false, nil
	}

	readInt(values, KeySleepHour, &d.SleepHour)
	readInt(values, KeySleepMinute, &d.SleepMinute)
	readInt(values, KeyWakeHour, &d.WakeHour)
	readInt(values, KeyWakeMinute, &d.WakeMinute)
	if v, ok := values[KeyWakeEnabled]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			d.WakeEnabled = b
		}
	}
	if v, ok := values[KeyDays]; ok {
		if days := schedule.DaySet(v); days.Valid() {
			d.Days = days
		}
	}
	return d, true, nil
}

func readInt(values map[string]string, key string, dst *int) {
	v, ok := values[key]
	if !ok {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// SaveDesired writes all six schedule keys in one transaction.
func (s *SQLiteDatabase) SaveDesired(d schedule.DesiredSchedule) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	entries := []struct{ key, value string }{
		{KeySleepHour, strconv.Itoa(d.SleepHour)},
		{KeySleepMinute, strconv.Itoa(d.SleepMinute)},
		{KeyWakeEnabled, strconv.FormatBool(d.WakeEnabled)},
		{KeyWakeHour, strconv.Itoa(d.WakeHour)},
		{KeyWakeMinute, strconv.Itoa(d.WakeMinute)},
		{KeyDays, d.Days.Code()},
	}
	for _, e := range entries {
		if err := setPreference(ctx, tx, e.key, e.value, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schedule preferences: %w", err)
	}
	return nil
}

// Language returns the saved display language code, or "" if none was saved.
func (s *SQLiteDatabase) Language() (string, error) {
	v, _, err := s.getPreference(context.Background(), KeyLanguage)
	return v, err
}

// SetLanguage saves the display language code.
func (s *SQLiteDatabase) SetLanguage(code string) error {
	return setPreference(context.Background(), s.db, KeyLanguage, code, time.Now().UTC())
}

// Operation history

func (s *SQLiteDatabase) CreateOperation(op *schedule.Operation) error {
	res, err := s.db.ExecContext(context.Background(), `
		INSERT INTO operations (request_id, started_at, operation, command, status, observed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, op.RequestID, op.StartedAt.UTC(), op.Operation, op.Command, op.Status, op.Observed)
	if err != nil {
		return fmt.Errorf("creating operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading operation id: %w", err)
	}
	op.ID = id
	return nil
}

func (s *SQLiteDatabase) RecordObserved(id int64, observed string) error {
	_, err := s.db.ExecContext(context.Background(),
		"UPDATE operations SET observed = ? WHERE id = ?", observed, id)
	if err != nil {
		return fmt.Errorf("recording observed schedule: %w", err)
	}
	return nil
}

// ListOperations returns the most recent operations, newest first.
func (s *SQLiteDatabase) ListOperations(limit int) ([]*schedule.Operation, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT id, request_id, started_at, operation, command, status, observed
		FROM operations
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*schedule.Operation
	for rows.Next() {
		op := &schedule.Operation{}
		if err := rows.Scan(&op.ID, &op.RequestID, &op.StartedAt, &op.Operation, &op.Command, &op.Status, &op.Observed); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var (
	_ schedule.PreferenceStore = (*SQLiteDatabase)(nil)
	_ schedule.OperationLog    = (*SQLiteDatabase)(nil)
)
