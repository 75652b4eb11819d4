package migrate_test

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/inventory-reorder/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationsContainConstraints(t *testing.T) {
	cases := map[string][]string{
		"create_items": {
			"CREATE TABLE IF NOT EXISTS items",
			"CONSTRAINT items_sku_key UNIQUE (sku)",
			"CHECK (lead_time_days > 0)",
			"DROP TABLE IF EXISTS items",
		},
		"create_demand_stats": {
			"CONSTRAINT demand_stats_item_day_key UNIQUE (item_id, day)",
			"FOREIGN KEY (item_id) REFERENCES items(id)",
		},
		"create_supplier_orders": {
			"supplier_orders_one_pending_automatic_idx",
			"WHERE status = 'pending' AND source = 'automatic'",
			"CHECK (status IN ('pending', 'confirmed', 'failed'))",
		},
	}

	for suffix, checks := range cases {
		content := readMigration(t, suffix)
		for _, sub := range checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", suffix, sub)
			}
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestValidateDirRejectsMissingDown(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20260101000000_broken.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected missing down marker to fail validation")
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Supplier Ref!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_supplier_ref.sql") {
		t.Fatalf("unexpected path %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestDialectFor(t *testing.T) {
	if migrate.DialectFor("sqlite") != goose.DialectSQLite3 {
		t.Fatal("expected sqlite3 dialect")
	}
	if migrate.DialectFor("postgres") != goose.DialectPostgres {
		t.Fatal("expected postgres dialect")
	}
}

func TestEmbeddedMigrationsMatchSourceDir(t *testing.T) {
	embedded, err := fs.Glob(migrate.Migrations(), "*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob disk: %v", err)
	}
	if len(embedded) == 0 || len(embedded) != len(onDisk) {
		t.Fatalf("embedded %d migrations, disk has %d", len(embedded), len(onDisk))
	}
}

func TestRunnerAppliesAndRollsBack(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	files := fstest.MapFS{
		"00001_widgets.sql": {Data: []byte("-- +goose Up\nCREATE TABLE widgets (id INTEGER PRIMARY KEY);\n\n-- +goose Down\nDROP TABLE widgets;\n")},
		"00002_gadgets.sql": {Data: []byte("-- +goose Up\nCREATE TABLE gadgets (id INTEGER PRIMARY KEY);\n\n-- +goose Down\nDROP TABLE gadgets;\n")},
	}

	runner, err := migrate.NewRunner(sqlDB, goose.DialectSQLite3, files, nil)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	ctx := context.Background()
	if err := runner.Up(ctx); err != nil {
		t.Fatalf("up: %v", err)
	}
	if v, err := runner.Version(ctx); err != nil || v != 2 {
		t.Fatalf("expected version 2, got %d err=%v", v, err)
	}
	if err := runner.To(ctx, 1); err != nil {
		t.Fatalf("to 1: %v", err)
	}
	if conn.Migrator().HasTable("gadgets") {
		t.Fatalf("gadgets should be rolled back")
	}
	if !conn.Migrator().HasTable("widgets") {
		t.Fatalf("widgets should remain")
	}
	statuses, err := runner.Status(ctx)
	if err != nil || len(statuses) != 2 {
		t.Fatalf("expected two statuses, got %d err=%v", len(statuses), err)
	}
}
