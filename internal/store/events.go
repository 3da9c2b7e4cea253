package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/zaloga/internal/inventory"
	"github.com/erazemk/zaloga/internal/model"
)

// EventJournal appends dispatched inventory events to the stock_events table.
type EventJournal struct {
	DB *sql.DB
}

// Handle stores ev with its JSON encoding as payload. Replayed events with a
// known ID are ignored.
func (j EventJournal) Handle(ctx context.Context, ev inventory.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", ev.Name(), err)
	}

	h := ev.Header()
	_, err = j.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO stock_events (id, inventory_id, name, payload, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		h.EventID, h.InventoryID, ev.Name(), string(payload), h.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("journaling event: %w", err)
	}
	return nil
}

// ListEvents returns the latest events of an inventory record, newest first.
// The limit is clamped like an inventory query: zero, negative or above
// inventory.MaxLimit falls back to inventory.DefaultLimit.
func ListEvents(ctx context.Context, db *sql.DB, inventoryID string, limit int) ([]model.StockEvent, error) {
	if limit <= 0 || limit > inventory.MaxLimit {
		limit = inventory.DefaultLimit
	}

	query := `SELECT id, inventory_id, name, payload, occurred_at
	          FROM stock_events WHERE inventory_id = ?
	          ORDER BY occurred_at DESC, rowid DESC
	          LIMIT ?`
	args := []any{inventoryID, limit}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []model.StockEvent
	for rows.Next() {
		var e model.StockEvent
		var payload string
		if err := rows.Scan(&e.ID, &e.InventoryID, &e.Name, &payload, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Payload = json.RawMessage(payload)
		events = append(events, e)
	}
	return events, rows.Err()
}
