// Package db opens the relational store behind the marketplace and runs its migrations.
package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialect identifies the SQL flavour a store speaks.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DefaultPath returns the default database path: ~/.fsbo/fsbo.db
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".fsbo", "fsbo.db"), nil
}

// DialectOf reports which driver a connection string selects.
// postgres:// and postgresql:// URLs select Postgres; anything else is a SQLite path.
func DialectOf(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open connects to the store named by dsn and runs migrations.
// SQLite databases are created if missing, with WAL mode and foreign keys enabled.
func Open(dsn string) (*gorm.DB, error) {
	dialect := DialectOf(dsn)

	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	default:
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
		dialector = sqlite.Open(sqliteDSN(dsn))
	}

	gdb, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := configure(gdb, dialect); err != nil {
		return nil, closeAfter(gdb, err)
	}

	if err := Migrate(gdb, dialect); err != nil {
		return nil, closeAfter(gdb, fmt.Errorf("running migrations: %w", err))
	}

	return gdb, nil
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("getting connection pool: %w", err)
	}
	return sqlDB.Close()
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// sqliteDSN turns a file path into a DSN carrying the pragmas every pooled
// connection needs. A PRAGMA statement would only reach one connection.
func sqliteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
}

// configure tunes the pool. SQLite allows a single writer, so the pool is
// capped at one connection and writers queue in Go instead of failing with SQLITE_BUSY.
func configure(gdb *gorm.DB, dialect Dialect) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("getting connection pool: %w", err)
	}

	if dialect == DialectSQLite {
		sqlDB.SetMaxOpenConns(1)
		return nil
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return nil
}

func closeAfter(gdb *gorm.DB, err error) error {
	if closeErr := Close(gdb); closeErr != nil {
		return fmt.Errorf("%w (also failed to close: %v)", err, closeErr)
	}
	return err
}
