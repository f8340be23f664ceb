package db

import (
	"path/filepath"
	"testing"
)

func TestInitDB_SQLiteAppliesMigrationsAndSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finax.db")

	conn, err := InitDB(DriverSQLite, path)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer conn.Close()

	for _, table := range []string{"users", "categories", "transactions"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}

	var defaults int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM categories WHERE user_id IS NULL`).Scan(&defaults); err != nil {
		t.Fatalf("count defaults: %v", err)
	}
	if defaults != 9 {
		t.Fatalf("expected 9 system-default categories, got %d", defaults)
	}
}

func TestInitDB_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finax.db")

	first, err := InitDB(DriverSQLite, path)
	if err != nil {
		t.Fatalf("first InitDB: %v", err)
	}
	_ = first.Close()

	second, err := InitDB(DriverSQLite, path)
	if err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
	_ = second.Close()
}

func TestInitDB_RejectsUnknownDriver(t *testing.T) {
	if _, err := InitDB("mysql", "x"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
