package model

import (
	"encoding/json"
	"time"
)

// Transfer is a journal entry for stock moved between two inventory records.
type Transfer struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	FromInventoryID string    `json:"from_inventory_id"`
	ToInventoryID   string    `json:"to_inventory_id"`
	FromLocationID  string    `json:"from_location_id"`
	ToLocationID    string    `json:"to_location_id"`
	Quantity        int       `json:"quantity"`
	Reason          string    `json:"reason,omitempty"`
	TransferredAt   time.Time `json:"transferred_at"`
	TransferredBy   *int64    `json:"transferred_by,omitempty"`

	// Joined fields (not always populated).
	ProductName      string `json:"product_name,omitempty"`
	FromLocationName string `json:"from_location_name,omitempty"`
	ToLocationName   string `json:"to_location_name,omitempty"`
}

// StockEvent is a stored domain event of an inventory record.
type StockEvent struct {
	ID          string          `json:"id"`
	InventoryID string          `json:"inventory_id"`
	Name        string          `json:"name"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurred_at"`
}
