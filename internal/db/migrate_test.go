package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateSQLiteCreatesLedgerTables(t *testing.T) {
	conn, errOpen := Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	for _, table := range []string{"users", "bets", "transactions", "virtual_transactions", "match_caches", "settings"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
	for _, column := range []string{"is_vip", "last_spin_date", "total_wins", "total_losses"} {
		if !conn.Migrator().HasColumn("users", column) {
			t.Fatalf("users missing column %s", column)
		}
	}
	for _, column := range []string{"bank_name", "account_number", "account_name", "status"} {
		if !conn.Migrator().HasColumn("transactions", column) {
			t.Fatalf("transactions missing column %s", column)
		}
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	conn, errOpen := Open(filepath.Join(t.TempDir(), "nested", "matchday.db"))
	if errOpen != nil {
		t.Fatalf("open sqlite file: %v", errOpen)
	}
	t.Cleanup(func() { _ = Close(conn) })

	for i := 0; i < 2; i++ {
		if errMigrate := Migrate(conn); errMigrate != nil {
			t.Fatalf("migrate pass %d: %v", i+1, errMigrate)
		}
	}
}

func TestDetectDialectFromDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/matchday":       DialectPostgres,
		"host=localhost user=matchday dbname=matchday": DialectPostgres,
		"data/matchday.db":                             DialectSQLite,
		"sqlite://data/matchday.db":                    DialectSQLite,
		":memory:":                                     DialectSQLite,
	}
	for dsn, want := range cases {
		got, err := detectDialectFromDSN(dsn)
		if err != nil {
			t.Fatalf("detect %q: %v", dsn, err)
		}
		if got != want {
			t.Fatalf("detect %q = %s, want %s", dsn, got, want)
		}
	}
	if _, err := detectDialectFromDSN("mysql://root@localhost/matchday"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestEnsureSQLiteParamsKeepsExisting(t *testing.T) {
	got := ensureSQLiteParams("file:data/m.db?_busy_timeout=100")
	if got != "file:data/m.db?_busy_timeout=100&_journal_mode=WAL&_foreign_keys=on&_synchronous=NORMAL" {
		t.Fatalf("unexpected params: %s", got)
	}
}
