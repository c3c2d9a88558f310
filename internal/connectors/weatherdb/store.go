package weatherdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"go-wetta-dashboard/internal/config"
	"go-wetta-dashboard/internal/registry"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// QueryObserver is told about every finished query, e.g. to record metrics.
type QueryObserver func(query string, elapsed time.Duration, err error)

// Options configure a Store built around an existing *sql.DB.
type Options struct {
	Driver       string
	QueryTimeout time.Duration
	// Location is the display timezone timestamps are converted into.
	Location *time.Location
	Observer QueryObserver
}

// Store wraps read-only access to the weather station tables.
type Store struct {
	db           *sql.DB
	driver       string
	queryTimeout time.Duration
	location     *time.Location
	observe      QueryObserver

	latestSQL string
	columns   []string
	// timestamps marks row positions rendered by the timestamp formatter.
	timestamps []bool
}

// NewStore opens the configured database and verifies it is reachable.
func NewStore(cfg config.Config, reg *registry.Registry, observer QueryObserver) (*Store, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch cfg.DBDriver {
	case DriverMySQL:
		db, err = sql.Open("mysql", cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	case DriverSQLite:
		db, err = OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBConnTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == DriverSQLite {
		if err := EnsureSQLiteSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return NewStoreFromDB(db, reg, Options{
		Driver:       cfg.DBDriver,
		QueryTimeout: cfg.DBQueryTimeout,
		Location:     loc,
		Observer:     observer,
	}), nil
}

// NewStoreFromDB wraps an already opened database. The store takes
// ownership of db and closes it in Close.
func NewStoreFromDB(db *sql.DB, reg *registry.Registry, opts Options) *Store {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 10 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Observer == nil {
		opts.Observer = func(string, time.Duration, error) {}
	}

	metrics := reg.Metrics()
	columns := reg.Expressions()
	timestamps := make([]bool, len(metrics))
	for i, m := range metrics {
		timestamps[i] = m.Formatter == registry.Timestamp
	}

	return &Store{
		db:           db,
		driver:       opts.Driver,
		queryTimeout: opts.QueryTimeout,
		location:     opts.Location,
		observe:      opts.Observer,
		latestSQL:    latestReadingSQL(columns),
		columns:      columns,
		timestamps:   timestamps,
	}
}

func latestReadingSQL(columns []string) string {
	return "SELECT " + strings.Join(columns, ", ") + " FROM weather_data ORDER BY `timestamp` DESC LIMIT 1"
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Driver() string { return s.driver }

// Ping checks connectivity within the query timeout.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) track(query string, start time.Time, err error) {
	s.observe(query, time.Since(start), err)
}
