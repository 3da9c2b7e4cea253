package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Event names.
const (
	EventStockAdjusted            = "inventory.stock_adjusted"
	EventStockReserved            = "inventory.stock_reserved"
	EventStockReservationReleased = "inventory.stock_reservation_released"
)

// Event is a fact produced by a successful mutation.
type Event interface {
	Name() string
	Header() Meta
}

// Meta holds the fields shared by every event.
type Meta struct {
	EventID     string    `json:"event_id"`
	InventoryID string    `json:"inventory_id"`
	ProductID   string    `json:"product_id"`
	LocationID  string    `json:"location_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Header returns the shared event fields.
func (m Meta) Header() Meta { return m }

// StockAdjusted records a change of the total quantity.
type StockAdjusted struct {
	Meta
	OldQuantity int    `json:"old_quantity"`
	NewQuantity int    `json:"new_quantity"`
	Delta       int    `json:"delta"`
	Reason      string `json:"reason"`
}

func (StockAdjusted) Name() string { return EventStockAdjusted }

// StockReserved records units moved from the free pool to the held pool.
type StockReserved struct {
	Meta
	Quantity         int `json:"quantity"`
	ReservedQuantity int `json:"reserved_quantity"`
}

func (StockReserved) Name() string { return EventStockReserved }

// StockReservationReleased records held units returned to the free pool.
type StockReservationReleased struct {
	Meta
	Quantity         int `json:"quantity"`
	ReservedQuantity int `json:"reserved_quantity"`
}

func (StockReservationReleased) Name() string { return EventStockReservationReleased }

func (r *Record) meta(at time.Time) Meta {
	return Meta{
		EventID:     uuid.NewString(),
		InventoryID: r.id,
		ProductID:   r.productID,
		LocationID:  r.locationID,
		OccurredAt:  at,
	}
}
