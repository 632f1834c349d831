package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// migrations is an ordered list of SQL statements to run.
// Placeholders in braces are expanded per dialect before execution.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                  TEXT PRIMARY KEY,
		email               TEXT UNIQUE,
		first_name          TEXT,
		last_name           TEXT,
		profile_image_url   TEXT,
		role                TEXT NOT NULL DEFAULT 'buyer',
		payment_customer_id TEXT,
		created_at          {timestamp} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at          {timestamp} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id            {pk},
		user_id       TEXT    NOT NULL REFERENCES users(id),
		title         TEXT    NOT NULL,
		description   TEXT    NOT NULL,
		price         BIGINT  NOT NULL,
		address       TEXT    NOT NULL,
		city          TEXT    NOT NULL,
		state         TEXT    NOT NULL,
		zip_code      TEXT    NOT NULL,
		latitude      {float},
		longitude     {float},
		bedrooms      INTEGER NOT NULL,
		bathrooms     {float} NOT NULL,
		square_feet   INTEGER NOT NULL,
		lot_size      {float},
		year_built    INTEGER,
		property_type TEXT    NOT NULL,
		status        TEXT    NOT NULL DEFAULT 'active',
		is_premium    BOOLEAN NOT NULL DEFAULT FALSE,
		premium_until {timestamp},
		featured_image TEXT,
		view_count    INTEGER NOT NULL DEFAULT 0,
		created_at    {timestamp} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    {timestamp} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_user ON properties(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_listing ON properties(status, is_premium, created_at)`,
	`CREATE TABLE IF NOT EXISTS property_images (
		id          {pk},
		property_id BIGINT  NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		image_url   TEXT    NOT NULL,
		caption     TEXT,
		sort_order  INTEGER NOT NULL DEFAULT 0,
		created_at  {timestamp} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS property_features (
		id          {pk},
		property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		feature     TEXT   NOT NULL,
		created_at  {timestamp} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id           {pk},
		from_user_id TEXT    NOT NULL REFERENCES users(id),
		to_user_id   TEXT    NOT NULL REFERENCES users(id),
		property_id  BIGINT  NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		message      TEXT    NOT NULL,
		is_read      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   {timestamp} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_user_id)`,
	`CREATE TABLE IF NOT EXISTS offers (
		id          {pk},
		property_id BIGINT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		buyer_id    TEXT   NOT NULL REFERENCES users(id),
		amount      BIGINT NOT NULL,
		message     TEXT,
		status      TEXT   NOT NULL DEFAULT 'pending',
		created_at  {timestamp} NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  {timestamp} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_offers_property ON offers(property_id)`,
	`CREATE INDEX IF NOT EXISTS idx_offers_buyer ON offers(buyer_id)`,
	`CREATE TABLE IF NOT EXISTS premium_transactions (
		id          {pk},
		user_id     TEXT   NOT NULL REFERENCES users(id),
		property_id BIGINT NOT NULL REFERENCES properties(id),
		amount      BIGINT NOT NULL,
		payment_ref TEXT   NOT NULL UNIQUE,
		status      TEXT   NOT NULL DEFAULT 'completed',
		created_at  {timestamp} NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// columnMigrations are additive changes applied after the base tables exist.
var columnMigrations = []struct {
	table, column, definition string
}{
	{"property_images", "sort_order", "INTEGER NOT NULL DEFAULT 0"},
	{"users", "payment_customer_id", "TEXT"},
}

// dialectTypes expands the DDL placeholders for each dialect.
var dialectTypes = map[Dialect]*strings.Replacer{
	DialectSQLite: strings.NewReplacer(
		"{pk}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{timestamp}", "DATETIME",
		"{float}", "REAL",
	),
	DialectPostgres: strings.NewReplacer(
		"{pk}", "BIGSERIAL PRIMARY KEY",
		"{timestamp}", "TIMESTAMPTZ",
		"{float}", "DOUBLE PRECISION",
	),
}

// Migrate runs all migrations in order for the given dialect.
func Migrate(gdb *gorm.DB, dialect Dialect) error {
	replacer, ok := dialectTypes[dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	for i, m := range migrations {
		if err := gdb.Exec(replacer.Replace(m)).Error; err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(gdb, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(gdb *gorm.DB, table, column, definition string) error {
	if gdb.Migrator().HasColumn(table, column) {
		return nil
	}
	return gdb.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)).Error
}
