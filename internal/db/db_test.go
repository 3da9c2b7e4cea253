package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateIsIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestOpenEnablesForeignKeys(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	var enabled int
	if err := database.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled); err != nil {
		t.Fatalf("reading pragma: %v", err)
	}
	if enabled != 1 {
		t.Errorf("expected foreign_keys=1, got %d", enabled)
	}
}

func TestInventoryCheckConstraints(t *testing.T) {
	database := NewTestDB(t)

	if _, err := database.Exec(`INSERT INTO products (id, sku, name) VALUES ('p1', 'SKU-1', 'Widget')`); err != nil {
		t.Fatalf("inserting product: %v", err)
	}
	if _, err := database.Exec(`INSERT INTO locations (id, name, type) VALUES ('l1', 'Main', 'warehouse')`); err != nil {
		t.Fatalf("inserting location: %v", err)
	}

	_, err := database.Exec(
		`INSERT INTO inventory (id, product_id, location_id, quantity, reserved_quantity, created_at, updated_at)
		 VALUES ('i1', 'p1', 'l1', 5, 6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	if err == nil {
		t.Error("expected reserved_quantity > quantity to be rejected")
	}

	_, err = database.Exec(
		`INSERT INTO inventory (id, product_id, location_id, quantity, created_at, updated_at)
		 VALUES ('i2', 'p1', 'missing', 5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	if err == nil {
		t.Error("expected unknown location to be rejected")
	}
}
