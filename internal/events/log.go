package events

import (
	"context"
	"log/slog"

	"github.com/erazemk/zaloga/internal/inventory"
)

// LogHandler writes every event to a logger at INFO.
type LogHandler struct {
	Logger *slog.Logger
}

func (h LogHandler) Handle(ctx context.Context, ev inventory.Event) error {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	meta := ev.Header()
	attrs := []any{
		"event_id", meta.EventID,
		"inventory_id", meta.InventoryID,
		"product_id", meta.ProductID,
		"location_id", meta.LocationID,
	}
	switch e := ev.(type) {
	case inventory.StockAdjusted:
		attrs = append(attrs, "old", e.OldQuantity, "new", e.NewQuantity, "delta", e.Delta, "reason", e.Reason)
	case inventory.StockReserved:
		attrs = append(attrs, "quantity", e.Quantity, "reserved", e.ReservedQuantity)
	case inventory.StockReservationReleased:
		attrs = append(attrs, "quantity", e.Quantity, "reserved", e.ReservedQuantity)
	}

	logger.InfoContext(ctx, ev.Name(), attrs...)
	return nil
}
