package stock

import (
	"context"
	"fmt"
	"sync"

	"github.com/erazemk/zaloga/internal/inventory"
	"github.com/erazemk/zaloga/internal/model"
)

// memStore is an in-memory Store and TransferLog without transactions.
// failUpdate, when set, is consulted before every write.
type memStore struct {
	mu         sync.Mutex
	records    map[string]inventory.Snapshot
	transfers  []*model.Transfer
	updates    map[string]int
	failUpdate func(id string, call int) error
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[string]inventory.Snapshot),
		updates: make(map[string]int),
	}
}

func (m *memStore) GetByID(_ context.Context, id string) (*inventory.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", inventory.ErrInventoryNotFound, id)
	}
	return inventory.Restore(s)
}

func (m *memStore) GetByProductAndLocation(_ context.Context, productID, locationID string) (*inventory.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.records {
		if s.ProductID == productID && s.LocationID == locationID {
			return inventory.Restore(s)
		}
	}
	return nil, inventory.ErrInventoryNotFound
}

func (m *memStore) ExistsFor(ctx context.Context, productID, locationID string) (bool, error) {
	_, err := m.GetByProductAndLocation(ctx, productID, locationID)
	return err == nil, nil
}

func (m *memStore) Query(_ context.Context, f inventory.Filter) (inventory.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var page inventory.Page
	for _, s := range m.records {
		if f.ProductID != nil && s.ProductID != *f.ProductID {
			continue
		}
		if f.LocationID != nil && s.LocationID != *f.LocationID {
			continue
		}
		r, _ := inventory.Restore(s)
		page.Records = append(page.Records, r)
	}
	page.Total = len(page.Records)
	return page, nil
}

func (m *memStore) Add(_ context.Context, r *inventory.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.records {
		if s.ProductID == r.ProductID() && s.LocationID == r.LocationID() {
			return inventory.ErrAlreadyExists
		}
	}
	m.records[r.ID()] = r.Snapshot()
	return nil
}

func (m *memStore) Update(_ context.Context, r *inventory.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updates[r.ID()]++
	if m.failUpdate != nil {
		if err := m.failUpdate(r.ID(), m.updates[r.ID()]); err != nil {
			return err
		}
	}

	stored, ok := m.records[r.ID()]
	if !ok {
		return inventory.ErrInventoryNotFound
	}
	if stored.Version != r.Version() {
		return inventory.ErrConcurrencyConflict
	}

	s := r.Snapshot()
	s.Version++
	m.records[r.ID()] = s
	r.Persisted()
	return nil
}

func (m *memStore) RecordTransfer(_ context.Context, t *model.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t.ID = fmt.Sprintf("t%d", len(m.transfers)+1)
	m.transfers = append(m.transfers, t)
	return nil
}

func (m *memStore) snapshot(id string) inventory.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id]
}

type fakeCatalog struct {
	products  map[string]bool
	locations map[string]bool
}

func (c fakeCatalog) ProductExists(_ context.Context, id string) (bool, error) {
	return c.products[id], nil
}

func (c fakeCatalog) LocationExists(_ context.Context, id string) (bool, error) {
	return c.locations[id], nil
}

type eventLog struct {
	mu     sync.Mutex
	events []inventory.Event
}

func (l *eventLog) Dispatch(_ context.Context, events ...inventory.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
}

func (l *eventLog) names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, len(l.events))
	for i, ev := range l.events {
		names[i] = ev.Name()
	}
	return names
}
