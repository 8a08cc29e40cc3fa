package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	// PostgreSQL driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Driver names the database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Options configures Open.
type Options struct {
	Driver Driver
	DSN    string

	// MaxOpenConns caps the pool for server databases. SQLite always
	// uses a single connection.
	MaxOpenConns int
}

// Store holds the database handle and provides access to repositories.
type Store struct {
	db      *sqlx.DB
	driver  Driver
	builder *entsql.DialectBuilder
	now     func() time.Time
}

// Open connects to the configured database, applies SQLite pragmas when
// relevant, and creates the schema if it does not exist yet.
func Open(ctx context.Context, opts Options) (*Store, error) {
	driverName, entDialect, dsn, err := resolveDriver(opts)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// One connection keeps pragmas in effect and serializes writers.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db.DB); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
		db.SetConnMaxLifetime(time.Hour)
	}

	s := &Store{
		db:      db,
		driver:  opts.Driver,
		builder: entsql.Dialect(entDialect),
		now:     time.Now,
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// Driver returns the backend this store is connected to.
func (s *Store) Driver() Driver {
	return s.driver
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Users returns a UserRepo backed by this store.
func (s *Store) Users() UserRepo {
	return &userRepo{db: s.db, b: s.builder, now: s.now}
}

// Scores returns a ScoreRepo that applies the given update policy.
func (s *Store) Scores(policy ScorePolicy) ScoreRepo {
	if policy == "" {
		policy = ScorePolicyLastWrite
	}
	return &scoreRepo{db: s.db, b: s.builder, now: s.now, policy: policy}
}

func resolveDriver(opts Options) (driverName, entDialect, dsn string, err error) {
	if opts.DSN == "" {
		return "", "", "", fmt.Errorf("database dsn is required")
	}
	switch opts.Driver {
	case DriverSQLite:
		return "sqlite", dialect.SQLite, opts.DSN, nil
	case DriverPostgres:
		return "pgx", dialect.Postgres, opts.DSN, nil
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(opts.DSN)
		if err != nil {
			return "", "", "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		return "mysql", dialect.MySQL, cfg.FormatDSN(), nil
	default:
		return "", "", "", fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// applyPragmas configures SQLite for a small single-node deployment.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the SQLite database file path in priority order:
// 1. MATHGYM_DB environment variable
// 2. $XDG_DATA_HOME/mathgym/mathgym.db
// 3. ~/.local/share/mathgym/mathgym.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("MATHGYM_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "mathgym", "mathgym.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
