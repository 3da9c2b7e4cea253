package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default reasons recorded on adjustment events.
const (
	ReasonInitialStock         = "Initial stock"
	ReasonDefault              = "Stock adjustment"
	ReasonReservationCommitted = "Reservation committed"
)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// Record is the stock held for one product at one location.
//
// Fields are only changed through the mutation methods, which check the
// invariants 0 <= reserved <= quantity before touching any state. A failed
// mutation leaves the record unchanged.
type Record struct {
	id         string
	productID  string
	locationID string
	quantity   int
	reserved   int
	version    int64
	createdAt  time.Time
	updatedAt  time.Time
}

// Snapshot is the observable state of a record.
type Snapshot struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"product_id"`
	LocationID        string    `json:"location_id"`
	Quantity          int       `json:"quantity"`
	ReservedQuantity  int       `json:"reserved_quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// New creates a record with the given initial quantity. A positive initial
// quantity is reported as an adjustment from zero.
func New(productID, locationID string, initial int) (*Record, []Event, error) {
	if initial < 0 {
		return nil, nil, fmt.Errorf("%w: initial quantity %d is negative", ErrInvalidQuantity, initial)
	}

	at := now()
	r := &Record{
		id:         uuid.NewString(),
		productID:  productID,
		locationID: locationID,
		quantity:   initial,
		version:    1,
		createdAt:  at,
		updatedAt:  at,
	}

	var events []Event
	if initial > 0 {
		events = append(events, StockAdjusted{
			Meta:        r.meta(at),
			OldQuantity: 0,
			NewQuantity: initial,
			Delta:       initial,
			Reason:      ReasonInitialStock,
		})
	}
	return r, events, nil
}

// Restore rebuilds a record from persisted state.
func Restore(s Snapshot) (*Record, error) {
	if s.ID == "" || s.ProductID == "" || s.LocationID == "" {
		return nil, fmt.Errorf("%w: missing identity", ErrCorruptRecord)
	}
	if s.Quantity < 0 || s.ReservedQuantity < 0 || s.ReservedQuantity > s.Quantity {
		return nil, fmt.Errorf("%w: quantity %d, reserved %d", ErrCorruptRecord, s.Quantity, s.ReservedQuantity)
	}
	return &Record{
		id:         s.ID,
		productID:  s.ProductID,
		locationID: s.LocationID,
		quantity:   s.Quantity,
		reserved:   s.ReservedQuantity,
		version:    s.Version,
		createdAt:  s.CreatedAt,
		updatedAt:  s.UpdatedAt,
	}, nil
}

func (r *Record) ID() string             { return r.id }
func (r *Record) ProductID() string      { return r.productID }
func (r *Record) LocationID() string     { return r.locationID }
func (r *Record) Quantity() int          { return r.quantity }
func (r *Record) ReservedQuantity() int  { return r.reserved }
func (r *Record) AvailableQuantity() int { return r.quantity - r.reserved }
func (r *Record) Version() int64         { return r.version }
func (r *Record) CreatedAt() time.Time   { return r.createdAt }
func (r *Record) UpdatedAt() time.Time   { return r.updatedAt }

// Snapshot returns the current observable state.
func (r *Record) Snapshot() Snapshot {
	return Snapshot{
		ID:                r.id,
		ProductID:         r.productID,
		LocationID:        r.locationID,
		Quantity:          r.quantity,
		ReservedQuantity:  r.reserved,
		AvailableQuantity: r.AvailableQuantity(),
		Version:           r.version,
		CreatedAt:         r.createdAt,
		UpdatedAt:         r.updatedAt,
	}
}

// Persisted advances the concurrency token after the store wrote the record.
func (r *Record) Persisted() {
	r.version++
}

// AdjustStock changes the total quantity by delta.
func (r *Record) AdjustStock(delta int, reason string) ([]Event, error) {
	newQty := r.quantity + delta
	if newQty < 0 {
		return nil, fmt.Errorf("%w: %d %+d would be negative", ErrInvalidQuantity, r.quantity, delta)
	}
	if newQty < r.reserved {
		return nil, fmt.Errorf("%w: %d %+d leaves less than the %d reserved", ErrInsufficientStock, r.quantity, delta, r.reserved)
	}
	if strings.TrimSpace(reason) == "" {
		reason = ReasonDefault
	}

	at := now()
	old := r.quantity
	r.quantity = newQty
	r.updatedAt = at

	return []Event{StockAdjusted{
		Meta:        r.meta(at),
		OldQuantity: old,
		NewQuantity: newQty,
		Delta:       delta,
		Reason:      reason,
	}}, nil
}

// ReserveStock holds quantity units of the available stock.
func (r *Record) ReserveStock(quantity int) ([]Event, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidReservationQuantity, quantity)
	}
	if r.AvailableQuantity() < quantity {
		return nil, fmt.Errorf("%w: available %d, requested %d", ErrInsufficientAvailableStock, r.AvailableQuantity(), quantity)
	}

	at := now()
	r.reserved += quantity
	r.updatedAt = at

	return []Event{StockReserved{
		Meta:             r.meta(at),
		Quantity:         quantity,
		ReservedQuantity: r.reserved,
	}}, nil
}

// ReleaseReservation returns quantity held units to the available stock.
func (r *Record) ReleaseReservation(quantity int) ([]Event, error) {
	if err := r.checkHeld(quantity); err != nil {
		return nil, err
	}

	at := now()
	r.reserved -= quantity
	r.updatedAt = at

	return []Event{StockReservationReleased{
		Meta:             r.meta(at),
		Quantity:         quantity,
		ReservedQuantity: r.reserved,
	}}, nil
}

// CommitReservation removes quantity held units from existence, reducing
// both the reserved and the total quantity.
func (r *Record) CommitReservation(quantity int) ([]Event, error) {
	if err := r.checkHeld(quantity); err != nil {
		return nil, err
	}

	at := now()
	old := r.quantity
	r.reserved -= quantity
	r.quantity -= quantity
	r.updatedAt = at

	return []Event{StockAdjusted{
		Meta:        r.meta(at),
		OldQuantity: old,
		NewQuantity: r.quantity,
		Delta:       -quantity,
		Reason:      ReasonReservationCommitted,
	}}, nil
}

func (r *Record) checkHeld(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidReservationQuantity, quantity)
	}
	if quantity > r.reserved {
		return fmt.Errorf("%w: reserved %d, requested %d", ErrCannotReleaseMoreThanReserved, r.reserved, quantity)
	}
	return nil
}
