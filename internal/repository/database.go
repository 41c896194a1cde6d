package repository

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations
var migrationsFS embed.FS

// NewPostgresDB establishes a new connection to the PostgreSQL database.
func NewPostgresDB(dataSourceName string, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to the database!", zap.String("driver", "postgres"))
	return db, nil
}

// NewSQLiteDB opens (creating if needed) the SQLite database file at path.
// path may be a plain file name or a file: URI with its own query string.
func NewSQLiteDB(path string, logger *zap.Logger) (*sqlx.DB, error) {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)

	dsn, file := sqliteDSN(path)
	if file != "" && file != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, fmt.Errorf("create directory for sqlite database %s: %w", path, err)
		}
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	// A single writer keeps read-modify-write appends serialized.
	db.SetMaxOpenConns(1)

	logger.Info("Successfully connected to the database!", zap.String("driver", "sqlite"), zap.String("path", path))
	return db, nil
}

const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// sqliteDSN appends the connection pragmas to path and returns the DSN along
// with the file name it refers to.
func sqliteDSN(path string) (dsn, file string) {
	file, query, hasQuery := strings.Cut(path, "?")
	file = strings.TrimPrefix(file, "file:")
	if hasQuery && query != "" {
		return path + "&" + sqlitePragmas, file
	}
	if hasQuery {
		return path + sqlitePragmas, file
	}
	return path + "?" + sqlitePragmas, file
}

// MigrateDB runs the embedded migrations for db. Supported commands are
// "up", "down" and "version".
func MigrateDB(db *sqlx.DB, command string, logger *zap.Logger) error {
	switch command {
	case "up", "down", "version":
	default:
		return fmt.Errorf("unknown migrate command: %s (use: up, down, version)", command)
	}

	dialect := db.DriverName()
	var (
		driver database.Driver
		err    error
	)
	switch dialect {
	case "postgres":
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case "sqlite":
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDriver, dialect)
	}
	if err != nil {
		return fmt.Errorf("couldn't get database instance for running migrations: %w", err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "crm", driver)
	if err != nil {
		return fmt.Errorf("couldn't create migrate instance: %w", err)
	}

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("couldn't run database migration: %w", err)
		}
		logger.Info("Database migration was run successfully")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("couldn't roll back database migration: %w", err)
		}
		logger.Info("All migrations rolled back")
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("couldn't read migration version: %w", err)
		}
		logger.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}

	return nil
}
