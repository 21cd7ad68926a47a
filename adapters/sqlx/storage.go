// Package sqlx implements the ProgressStore on a SQL backend via jmoiron/sqlx.
package sqlx

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlxlib "github.com/jmoiron/sqlx"

	// database drivers selectable through Config.Driver
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"learnkit/core"
)

// Driver selects the SQL dialect.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config holds SQL connection configuration.
type Config struct {
	Driver          Driver        `json:"driver"`
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// DefaultConfig returns sensible defaults for the given driver.
func DefaultConfig(driver Driver) Config {
	return Config{
		Driver:          driver,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store keeps one JSON progress blob per user in the user_progress table.
// Update serializes same-user writes with a row-locking transaction.
type Store struct {
	db     *sqlxlib.DB
	driver Driver
}

// New opens a connection pool and pings it.
func New(cfg Config) (*Store, error) {
	db, err := sqlxlib.Connect(string(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return &Store{db: db, driver: cfg.Driver}, nil
}

// NewWithDB creates a Store using an existing database handle (useful for testing).
func NewWithDB(db *sqlxlib.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

// Close closes the underlying pool.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the user_progress table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS user_progress (
		user_id    VARCHAR(255) PRIMARY KEY,
		progress   TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return &core.PersistenceError{Op: "migrate", Err: err}
	}
	return nil
}

func (s *Store) Get(ctx context.Context, user core.UserID) (core.UserProgress, error) {
	query := s.db.Rebind(`SELECT progress FROM user_progress WHERE user_id = ?`)
	var raw []byte
	err := s.db.QueryRowxContext(ctx, query, user).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UserProgress{}, &core.NotFoundError{Resource: "user", Key: string(user)}
	}
	if err != nil {
		return core.UserProgress{}, &core.PersistenceError{Op: "read", Err: err}
	}
	var p core.UserProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		return core.UserProgress{}, &core.PersistenceError{Op: "decode", Err: err}
	}
	return p, nil
}

func (s *Store) Update(ctx context.Context, user core.UserID, fn func(*core.UserProgress) error) (core.UserProgress, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.UserProgress{}, &core.PersistenceError{Op: "begin", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	p := core.NewUserProgress(user)
	insert := false
	query := tx.Rebind(`SELECT progress FROM user_progress WHERE user_id = ? FOR UPDATE`)
	var raw []byte
	err = tx.QueryRowxContext(ctx, query, user).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		insert = true
	case err != nil:
		return core.UserProgress{}, &core.PersistenceError{Op: "read", Err: err}
	default:
		if err := json.Unmarshal(raw, &p); err != nil {
			return core.UserProgress{}, &core.PersistenceError{Op: "decode", Err: err}
		}
	}

	if err := fn(&p); err != nil {
		return core.UserProgress{}, err
	}

	encoded, err := json.Marshal(p)
	if err != nil {
		return core.UserProgress{}, &core.PersistenceError{Op: "encode", Err: err}
	}
	now := time.Now().UTC()
	if insert {
		stmt := tx.Rebind(`INSERT INTO user_progress (user_id, progress, updated_at) VALUES (?, ?, ?)`)
		_, err = tx.ExecContext(ctx, stmt, user, encoded, now)
	} else {
		stmt := tx.Rebind(`UPDATE user_progress SET progress = ?, updated_at = ? WHERE user_id = ?`)
		_, err = tx.ExecContext(ctx, stmt, encoded, now, user)
	}
	if err != nil {
		return core.UserProgress{}, &core.PersistenceError{Op: "write", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return core.UserProgress{}, &core.PersistenceError{Op: "commit", Err: err}
	}
	return p, nil
}
