// Package events delivers inventory events to their consumers after the
// records that produced them are persisted.
package events

import (
	"context"
	"log/slog"

	"github.com/erazemk/zaloga/internal/inventory"
)

// Handler consumes one event.
type Handler interface {
	Handle(ctx context.Context, ev inventory.Event) error
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(ctx context.Context, ev inventory.Event) error

func (f HandlerFunc) Handle(ctx context.Context, ev inventory.Event) error { return f(ctx, ev) }

// Dispatcher hands every event to each registered handler in order.
// Handler failures are logged and do not stop delivery to the others:
// the state change the event describes is already committed.
type Dispatcher struct {
	handlers []Handler
	logger   *slog.Logger
}

// NewDispatcher returns a dispatcher delivering to handlers.
func NewDispatcher(logger *slog.Logger, handlers ...Handler) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{handlers: handlers, logger: logger}
}

// Register adds a handler.
func (d *Dispatcher) Register(h Handler) {
	d.handlers = append(d.handlers, h)
}

// Dispatch delivers events in order.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...inventory.Event) {
	for _, ev := range events {
		for _, h := range d.handlers {
			if err := h.Handle(ctx, ev); err != nil {
				meta := ev.Header()
				d.logger.Error("event handler failed",
					"event", ev.Name(),
					"event_id", meta.EventID,
					"inventory_id", meta.InventoryID,
					"error", err,
				)
			}
		}
	}
}
