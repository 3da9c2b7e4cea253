package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/erazemk/zaloga/internal/inventory"
)

type recorder struct {
	names []string
}

func (r *recorder) Handle(_ context.Context, ev inventory.Event) error {
	r.names = append(r.names, ev.Name())
	return nil
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(nil, rec)

	r, events, _ := inventory.New("p1", "l1", 5)
	more, _ := r.ReserveStock(2)
	events = append(events, more...)
	more, _ = r.ReleaseReservation(1)
	events = append(events, more...)

	d.Dispatch(context.Background(), events...)

	want := []string{inventory.EventStockAdjusted, inventory.EventStockReserved, inventory.EventStockReservationReleased}
	if len(rec.names) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(rec.names))
	}
	for i := range want {
		if rec.names[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], rec.names[i])
		}
	}
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	failing := HandlerFunc(func(context.Context, inventory.Event) error {
		return errors.New("broker down")
	})
	rec := &recorder{}
	d := NewDispatcher(logger, failing)
	d.Register(rec)

	_, events, _ := inventory.New("p1", "l1", 5)
	d.Dispatch(context.Background(), events...)

	if len(rec.names) != 1 {
		t.Fatalf("expected the second handler to receive the event, got %d", len(rec.names))
	}
	if !strings.Contains(buf.String(), "broker down") {
		t.Errorf("expected handler error in log, got %q", buf.String())
	}
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := LogHandler{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	r, _, _ := inventory.New("p1", "l1", 5)
	events, _ := r.AdjustStock(-2, "damaged")
	if err := h.Handle(context.Background(), events[0]); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	out := buf.String()
	for _, want := range []string{inventory.EventStockAdjusted, "delta=-2", "reason=damaged", "inventory_id=" + r.ID()} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log line %q", want, out)
		}
	}
}
