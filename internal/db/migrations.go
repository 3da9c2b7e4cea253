package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: lookups by location and history reads by record.
	`CREATE INDEX IF NOT EXISTS idx_inventory_location ON inventory(location_id)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_events_inventory
	     ON stock_events(inventory_id, occurred_at)`,
	// Migration 2: transfer listing filters.
	`CREATE INDEX IF NOT EXISTS idx_transfers_product ON transfers(product_id, transferred_at)`,
}

// Migrate ensures the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
