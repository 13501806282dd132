package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ruslano69/dbdump/pkg/config"
)

func createSource(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, email TEXT, active INTEGER)`,
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER, total REAL)`,
		`INSERT INTO users VALUES (1, 'Alice', 'alice@example.com', 1), (2, 'Bob', 'bob@example.com', 0), (3, 'Carol', NULL, 1)`,
		`INSERT INTO orders VALUES (10, 1, 9.5), (11, 2, 20), (12, 3, 7.25), (13, NULL, 1)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("setup %q: %v", stmt, err)
		}
	}
	return path
}

func testConfig(t *testing.T, dbPath string) *config.Config {
	t.Helper()

	cfg, err := config.Parse([]byte(`
database:
  type: sqlite
  database: ` + dbPath + `
dump:
  batch_size: 2
tables:
  - name: users
    order_by: id
    filters:
      - column: active
        operator: eq
        value: 1
    converters:
      email:
        - type: mask
          params:
            pattern: partial
  - name: orders
    order_by: id
    filters:
      - column: user_id
        operator: in
        references: users.id
output:
  path: ` + filepath.Join(t.TempDir(), "dump.sql") + `
  checksum: true
`))
	if err != nil {
		t.Fatalf("config.Parse() error = %v", err)
	}
	return cfg
}

func TestRunDumpSQL(t *testing.T) {
	cfg := testConfig(t, createSource(t))

	res, err := runDump(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("runDump() error = %v", err)
	}

	if res.Stats.Rows != 5 {
		t.Errorf("rows = %d, want 5", res.Stats.Rows)
	}

	data, err := os.ReadFile(cfg.Output.Path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	dump := string(data)

	for _, want := range []string{
		"-- Dialect: sqlite",
		"PRAGMA foreign_keys = OFF;",
		`INSERT INTO "users" ("id", "name", "email", "active") VALUES (1, 'Alice', 'alice@example.com a***@example.com', 1);`,
		`INSERT INTO "users" ("id", "name", "email", "active") VALUES (3, 'Carol', NULL, 1);`,
		`INSERT INTO "orders" ("id", "user_id", "total") VALUES (10, 1, 9.5);`,
		`INSERT INTO "orders" ("id", "user_id", "total") VALUES (13, NULL, 1);`,
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q\n%s", want, dump)
		}
	}
	if strings.Contains(dump, "'Bob'") || strings.Contains(dump, "VALUES (11,") {
		t.Errorf("filtered rows leaked into dump:\n%s", dump)
	}

	sidecar, err := os.ReadFile(cfg.Output.Path + ".xxh3")
	if err != nil {
		t.Fatalf("checksum file: %v", err)
	}
	if !strings.HasPrefix(string(sidecar), res.Checksum) {
		t.Errorf("checksum file = %q, want prefix %s", sidecar, res.Checksum)
	}
}

func TestRunDumpXLSX(t *testing.T) {
	cfg := testConfig(t, createSource(t))
	cfg.Output.Format = "xlsx"
	cfg.Output.Path = filepath.Join(t.TempDir(), "dump.xlsx")

	if _, err := runDump(context.Background(), cfg, zerolog.Nop()); err != nil {
		t.Fatalf("runDump() error = %v", err)
	}

	info, err := os.Stat(cfg.Output.Path)
	if err != nil || info.Size() == 0 {
		t.Errorf("xlsx output missing: %v", err)
	}
}

func TestRunDumpWrongOrder(t *testing.T) {
	cfg := testConfig(t, createSource(t))
	cfg.Tables[0], cfg.Tables[1] = cfg.Tables[1], cfg.Tables[0]

	_, err := runDump(context.Background(), cfg, zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "users") {
		t.Errorf("runDump() error = %v, want missing dependency on users", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := &config.Config{}
	out, batch, level := "x.sql", 50, "debug"

	applyOverrides(cfg, &Flags{Output: &out, BatchSize: &batch, LogLevel: &level})

	if cfg.Output.Path != "x.sql" || cfg.Dump.BatchSize != 50 || cfg.Log.Level != "debug" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger("warn", "json", &buf)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"message":"shown"`) {
		t.Errorf("log output = %s", buf.String())
	}

	if _, err := newLogger("loud", "json", &buf); err == nil {
		t.Error("newLogger(loud) error = nil")
	}
}

func TestRunVersionAndCreateConfig(t *testing.T) {
	if code := run([]string{"-version"}); code != 0 {
		t.Errorf("run(-version) = %d", code)
	}

	path := filepath.Join(t.TempDir(), "dbdump.yaml")
	if code := run([]string{"-create-config", "mysql", "-config", path}); code != 0 {
		t.Fatalf("run(-create-config) = %d", code)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Database.Type != "mysql" {
		t.Errorf("Type = %s", cfg.Database.Type)
	}

	if code := run([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}); code != 1 {
		t.Errorf("run(missing config) = %d, want 1", code)
	}
}
