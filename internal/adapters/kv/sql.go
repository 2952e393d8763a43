package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"                                // postgres driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // libsql driver
	_ "modernc.org/sqlite"                               // sqlite driver
)

// SQL driver names accepted by NewSQL.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverLibSQL   = "libsql"
)

const (
	createTableQuery = `
	  create table if not exists kv_store (
		store_key text primary key,
		store_value text not null,
		updated_at timestamp not null
	  );`

	selectQuery = `SELECT store_value FROM kv_store WHERE store_key = ?`

	upsertQuery = `INSERT INTO kv_store (store_key, store_value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (store_key) DO UPDATE SET store_value = excluded.store_value, updated_at = excluded.updated_at`
)

func init() { //nolint:gochecknoinits // register placeholder style for a driver sqlx does not know
	sqlx.BindDriver(DriverLibSQL, sqlx.QUESTION)
}

// SQL keeps every record as one row of the kv_store table.
type SQL struct {
	db     *sqlx.DB
	driver string
	now    func() time.Time
}

// NewSQL opens dsn with driver and makes sure the table exists.
func NewSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case DriverSQLite, DriverPostgres, DriverLibSQL:
	default:
		return nil, fmt.Errorf("%w: sql driver %q", ErrUnknownBackend, driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one writer; avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql: connect %s: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, createTableQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql: create table: %w", err)
	}

	return &SQL{db: db, driver: driver, now: time.Now}, nil
}

// Driver returns the database/sql driver name in use.
func (s *SQL) Driver() string { return s.driver }

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var val string
	err := s.db.GetContext(ctx, &val, s.db.Rebind(selectQuery), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.wrap(err)
	}
	return val, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(upsertQuery), key, value, s.timestamp()); err != nil {
		return s.wrap(err)
	}
	return nil
}

// SetMany upserts every value in one transaction.
func (s *SQL) SetMany(ctx context.Context, values map[string]string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return s.wrap(err)
	}

	query := tx.Rebind(upsertQuery)
	ts := s.timestamp()
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, query, k, v, ts); err != nil {
			_ = tx.Rollback()
			return s.wrap(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return s.wrap(err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// timestamp is formatted as text so every driver accepts it.
func (s *SQL) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *SQL) wrap(err error) error {
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return ErrClosed
	}
	return fmt.Errorf("sql %s: %w", s.driver, err)
}
