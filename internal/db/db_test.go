package db

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "creates new database",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "fsbo.db")
			},
		},
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b", "fsbo.db")
			},
		},
		{
			name: "opens existing database",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "fsbo.db")
				d, err := Open(path)
				if err != nil {
					t.Fatalf("setup: %v", err)
				}
				if err := Close(d); err != nil {
					t.Fatalf("setup close: %v", err)
				}
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			d, err := Open(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer func() {
				if err := Close(d); err != nil {
					t.Errorf("close: %v", err)
				}
			}()

			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Error("database file was not created")
			}
		})
	}
}

func TestDialectOf(t *testing.T) {
	tests := []struct {
		dsn  string
		want Dialect
	}{
		{"postgres://u:p@localhost/fsbo", DialectPostgres},
		{"postgresql://localhost/fsbo?sslmode=disable", DialectPostgres},
		{"/var/lib/fsbo/fsbo.db", DialectSQLite},
		{"fsbo.db", DialectSQLite},
	}

	for _, tt := range tests {
		if got := DialectOf(tt.dsn); got != tt.want {
			t.Errorf("DialectOf(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestWALMode(t *testing.T) {
	d := openTestDB(t)

	var mode string
	if err := d.Raw("PRAGMA journal_mode").Scan(&mode).Error; err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestForeignKeys(t *testing.T) {
	d := openTestDB(t)

	var fk int
	if err := d.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		table string
		cols  []string
	}{
		{
			table: "users",
			cols:  []string{"id", "email", "first_name", "last_name", "profile_image_url", "role", "payment_customer_id", "created_at", "updated_at"},
		},
		{
			table: "properties",
			cols: []string{"id", "user_id", "title", "description", "price", "address", "city", "state", "zip_code",
				"latitude", "longitude", "bedrooms", "bathrooms", "square_feet", "lot_size", "year_built",
				"property_type", "status", "is_premium", "premium_until", "featured_image", "view_count", "created_at", "updated_at"},
		},
		{
			table: "property_images",
			cols:  []string{"id", "property_id", "image_url", "caption", "sort_order", "created_at"},
		},
		{
			table: "property_features",
			cols:  []string{"id", "property_id", "feature", "created_at"},
		},
		{
			table: "messages",
			cols:  []string{"id", "from_user_id", "to_user_id", "property_id", "message", "is_read", "created_at"},
		},
		{
			table: "offers",
			cols:  []string{"id", "property_id", "buyer_id", "amount", "message", "status", "created_at", "updated_at"},
		},
		{
			table: "premium_transactions",
			cols:  []string{"id", "user_id", "property_id", "amount", "payment_ref", "status", "created_at"},
		},
	}

	d := openTestDB(t)

	for _, tt := range tests {
		t.Run(tt.table+" table exists", func(t *testing.T) {
			cols := tableColumns(t, d, tt.table)
			if len(cols) != len(tt.cols) {
				t.Fatalf("got %d columns, want %d: %v", len(cols), len(tt.cols), cols)
			}
			for i, want := range tt.cols {
				if cols[i] != want {
					t.Errorf("column %d = %q, want %q", i, cols[i], want)
				}
			}
		})
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	d := openTestDB(t)

	if err := Migrate(d, DialectSQLite); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestCascadeRules(t *testing.T) {
	d := openTestDB(t)

	mustExec(t, d, `INSERT INTO users (id, email) VALUES ('seller', 's@example.com'), ('buyer', 'b@example.com')`)
	mustExec(t, d, `INSERT INTO properties (id, user_id, title, description, price, address, city, state, zip_code,
		bedrooms, bathrooms, square_feet, property_type) VALUES
		(1, 'seller', 'A', 'd', 100, '1 Main', 'Austin', 'TX', '78701', 3, 2, 1500, 'House'),
		(2, 'seller', 'B', 'd', 100, '2 Main', 'Austin', 'TX', '78701', 3, 2, 1500, 'House')`)
	mustExec(t, d, `INSERT INTO property_images (property_id, image_url) VALUES (1, 'a.jpg')`)
	mustExec(t, d, `INSERT INTO property_features (property_id, feature) VALUES (1, 'Pool')`)
	mustExec(t, d, `INSERT INTO messages (from_user_id, to_user_id, property_id, message) VALUES ('buyer', 'seller', 1, 'hi')`)
	mustExec(t, d, `INSERT INTO offers (property_id, buyer_id, amount) VALUES (1, 'buyer', 90)`)
	mustExec(t, d, `INSERT INTO premium_transactions (user_id, property_id, amount, payment_ref) VALUES ('seller', 2, 99900, 'pi_1')`)

	t.Run("children cascade with property", func(t *testing.T) {
		mustExec(t, d, `DELETE FROM properties WHERE id = 1`)
		for _, table := range []string{"property_images", "property_features", "messages", "offers"} {
			var n int64
			if err := d.Table(table).Count(&n).Error; err != nil {
				t.Fatalf("count %s: %v", table, err)
			}
			if n != 0 {
				t.Errorf("%s rows = %d, want 0", table, n)
			}
		}
	})

	t.Run("ledger blocks property delete", func(t *testing.T) {
		err := d.Exec(`DELETE FROM properties WHERE id = 2`).Error
		if !IsForeignKeyViolation(err) {
			t.Fatalf("expected foreign key violation, got %v", err)
		}
	})

	t.Run("payment ref is unique", func(t *testing.T) {
		err := d.Exec(`INSERT INTO premium_transactions (user_id, property_id, amount, payment_ref) VALUES ('seller', 2, 99900, 'pi_1')`).Error
		if !IsUniqueViolation(err) {
			t.Fatalf("expected unique violation, got %v", err)
		}
	})
}

func TestPostgresMigrations(t *testing.T) {
	tests := []struct {
		name    string
		failAt  int
		wantErr string
	}{
		{name: "applies every statement", failAt: -1},
		{name: "stops at failing statement", failAt: 1, wantErr: "migration 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlDB, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock: %v", err)
			}
			defer func() { _ = sqlDB.Close() }()

			gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
			if err != nil {
				t.Fatalf("gorm open: %v", err)
			}

			replacer := dialectTypes[DialectPostgres]
			for i, m := range migrations {
				stmt := replacer.Replace(m)
				if strings.Contains(stmt, "AUTOINCREMENT") || strings.Contains(stmt, "DATETIME") {
					t.Fatalf("migration %d still carries sqlite types", i)
				}
				expect := mock.ExpectExec(regexp.QuoteMeta(firstLine(stmt)))
				if i == tt.failAt {
					expect.WillReturnError(errors.New("syntax error"))
					break
				}
				expect.WillReturnResult(sqlmock.NewResult(0, 0))
			}
			if tt.failAt < 0 {
				for range columnMigrations {
					mock.ExpectQuery("(?i)information_schema.columns").
						WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				}
			}

			err = Migrate(gdb, DialectPostgres)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("migrate: %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := Close(d); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
	return d
}

func mustExec(t *testing.T, d *gorm.DB, stmt string) {
	t.Helper()
	if err := d.Exec(stmt).Error; err != nil {
		t.Fatalf("exec %q: %v", firstLine(stmt), err)
	}
}

func tableColumns(t *testing.T, d *gorm.DB, table string) []string {
	t.Helper()
	var info []struct {
		Name string
	}
	if err := d.Raw("SELECT name FROM pragma_table_info(?) ORDER BY cid", table).Scan(&info).Error; err != nil {
		t.Fatalf("table_info(%s): %v", table, err)
	}
	cols := make([]string, 0, len(info))
	for _, c := range info {
		cols = append(cols, c.Name)
	}
	return cols
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
