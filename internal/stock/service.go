// Package stock runs inventory commands: it loads records from the store,
// applies one mutation, persists the result and dispatches the events it
// produced.
package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/zaloga/internal/inventory"
)

// DefaultMaxRetries is how often a command is retried after a concurrency
// conflict before the conflict is returned.
const DefaultMaxRetries = 3

// Catalog checks that referenced products and locations exist.
type Catalog interface {
	ProductExists(ctx context.Context, id string) (bool, error)
	LocationExists(ctx context.Context, id string) (bool, error)
}

// Dispatcher forwards persisted events to their consumers.
type Dispatcher interface {
	Dispatch(ctx context.Context, events ...inventory.Event)
}

// Options configure a Service.
type Options struct {
	// MaxRetries bounds retries after ErrConcurrencyConflict. Zero disables them.
	MaxRetries   int
	TransferMode TransferMode
	Logger       *slog.Logger
}

// Service executes inventory commands against a Store.
type Service struct {
	store      inventory.Store
	catalog    Catalog
	dispatcher Dispatcher
	maxRetries int
	mode       TransferMode
	logger     *slog.Logger
}

// NewService returns a service. A nil catalog skips existence checks on
// create and a nil dispatcher drops events.
func NewService(store inventory.Store, catalog Catalog, dispatcher Dispatcher, opts Options) *Service {
	s := &Service{
		store:      store,
		catalog:    catalog,
		dispatcher: dispatcher,
		maxRetries: max(opts.MaxRetries, 0),
		mode:       opts.TransferMode,
		logger:     opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.mode == "" {
		s.mode = ModeAtomic
	}
	if _, ok := store.(inventory.Transactor); s.mode == ModeAtomic && !ok {
		s.logger.Warn("store has no transactions, transfers fall back to saga mode")
		s.mode = ModeSaga
	}
	return s
}

// TransferMode reports the transfer strategy in use.
func (s *Service) TransferMode() TransferMode { return s.mode }

// Created is the result of CreateInventory.
type Created struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Adjusted is the result of AdjustStock.
type Adjusted struct {
	InventoryID       string `json:"inventory_id"`
	NewQuantity       int    `json:"new_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
}

// Reservation is the result of ReserveStock and ReleaseReservation.
type Reservation struct {
	InventoryID       string `json:"inventory_id"`
	ReservedQuantity  int    `json:"reserved_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
}

// Committed is the result of CommitReservation.
type Committed struct {
	InventoryID         string `json:"inventory_id"`
	NewQuantity         int    `json:"new_quantity"`
	NewReservedQuantity int    `json:"new_reserved_quantity"`
	AvailableQuantity   int    `json:"available_quantity"`
}

// CreateInventory creates the record of a product at a location.
func (s *Service) CreateInventory(ctx context.Context, productID, locationID string, initial int) (*Created, error) {
	r, events, err := inventory.New(productID, locationID, initial)
	if err != nil {
		return nil, err
	}

	if s.catalog != nil {
		ok, err := s.catalog.ProductExists(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", inventory.ErrProductNotFound, productID)
		}
		ok, err = s.catalog.LocationExists(ctx, locationID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", inventory.ErrLocationNotFound, locationID)
		}
	}

	exists, err := s.store.ExistsFor(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: product %s at location %s", inventory.ErrAlreadyExists, productID, locationID)
	}

	if err := s.store.Add(ctx, r); err != nil {
		return nil, err
	}
	s.dispatch(ctx, events)

	return &Created{ID: r.ID(), Quantity: r.Quantity()}, nil
}

// AdjustStock changes the total quantity of a record by delta.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int, reason string) (*Adjusted, error) {
	r, err := s.run(ctx, id, func(r *inventory.Record) ([]inventory.Event, error) {
		return r.AdjustStock(delta, reason)
	})
	if err != nil {
		return nil, err
	}
	return &Adjusted{InventoryID: id, NewQuantity: r.Quantity(), AvailableQuantity: r.AvailableQuantity()}, nil
}

// ReserveStock holds quantity available units of a record.
func (s *Service) ReserveStock(ctx context.Context, id string, quantity int) (*Reservation, error) {
	r, err := s.run(ctx, id, func(r *inventory.Record) ([]inventory.Event, error) {
		return r.ReserveStock(quantity)
	})
	if err != nil {
		return nil, err
	}
	return &Reservation{InventoryID: id, ReservedQuantity: r.ReservedQuantity(), AvailableQuantity: r.AvailableQuantity()}, nil
}

// ReleaseReservation returns quantity held units of a record to the available stock.
func (s *Service) ReleaseReservation(ctx context.Context, id string, quantity int) (*Reservation, error) {
	r, err := s.run(ctx, id, func(r *inventory.Record) ([]inventory.Event, error) {
		return r.ReleaseReservation(quantity)
	})
	if err != nil {
		return nil, err
	}
	return &Reservation{InventoryID: id, ReservedQuantity: r.ReservedQuantity(), AvailableQuantity: r.AvailableQuantity()}, nil
}

// CommitReservation removes quantity held units of a record.
func (s *Service) CommitReservation(ctx context.Context, id string, quantity int) (*Committed, error) {
	r, err := s.run(ctx, id, func(r *inventory.Record) ([]inventory.Event, error) {
		return r.CommitReservation(quantity)
	})
	if err != nil {
		return nil, err
	}
	return &Committed{
		InventoryID:         id,
		NewQuantity:         r.Quantity(),
		NewReservedQuantity: r.ReservedQuantity(),
		AvailableQuantity:   r.AvailableQuantity(),
	}, nil
}

// GetInventory returns a record by ID.
func (s *Service) GetInventory(ctx context.Context, id string) (*inventory.Record, error) {
	return s.store.GetByID(ctx, id)
}

// QueryInventory returns one page of records matching f.
func (s *Service) QueryInventory(ctx context.Context, f inventory.Filter) (inventory.Page, error) {
	return s.store.Query(ctx, f)
}

type mutation func(r *inventory.Record) ([]inventory.Event, error)

// run applies fn to a fresh copy of the record, persists it and dispatches
// the resulting events.
func (s *Service) run(ctx context.Context, id string, fn mutation) (*inventory.Record, error) {
	r, events, err := s.apply(ctx, s.store, id, nil, fn)
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, events)
	return r, nil
}

// apply runs load, mutate and update on st. A non-nil loaded record is used
// for the first attempt. After a concurrency conflict the record is reloaded
// and fn is applied again, up to the configured number of retries.
func (s *Service) apply(ctx context.Context, st inventory.Store, id string, loaded *inventory.Record, fn mutation) (*inventory.Record, []inventory.Event, error) {
	for attempt := 0; ; attempt++ {
		r := loaded
		loaded = nil
		if r == nil {
			var err error
			if r, err = st.GetByID(ctx, id); err != nil {
				return nil, nil, err
			}
		}

		events, err := fn(r)
		if err != nil {
			return nil, nil, err
		}

		err = st.Update(ctx, r)
		if err == nil {
			return r, events, nil
		}
		if !errors.Is(err, inventory.ErrConcurrencyConflict) || attempt >= s.maxRetries {
			return nil, nil, err
		}
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		s.logger.Warn("retrying after concurrency conflict", "inventory_id", id, "attempt", attempt+1)
	}
}

func (s *Service) dispatch(ctx context.Context, events []inventory.Event) {
	if s.dispatcher == nil || len(events) == 0 {
		return
	}
	s.dispatcher.Dispatch(ctx, events...)
}
