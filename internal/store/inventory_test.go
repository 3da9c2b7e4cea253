package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/inventory"
	"github.com/erazemk/zaloga/internal/model"
)

func seedProduct(t *testing.T, database *sql.DB, sku string) *model.Product {
	t.Helper()
	p, err := CreateProduct(context.Background(), database, sku, "Product "+sku, "")
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return p
}

func seedLocation(t *testing.T, database *sql.DB, name string) *model.Location {
	t.Helper()
	l, err := CreateLocation(context.Background(), database, name, model.LocationTypeWarehouse)
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	return l
}

func addRecord(t *testing.T, s *InventoryStore, productID, locationID string, qty int) *inventory.Record {
	t.Helper()
	r, _, err := inventory.New(productID, locationID, qty)
	if err != nil {
		t.Fatalf("inventory.New: %v", err)
	}
	if err := s.Add(context.Background(), r); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return r
}

func TestInventoryStoreAddAndGet(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := NewInventoryStore(database)

	p := seedProduct(t, database, "SKU-1")
	l := seedLocation(t, database, "Main")
	r := addRecord(t, s, p.ID, l.ID, 10)

	got, err := s.GetByID(ctx, r.ID())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Quantity() != 10 || got.ReservedQuantity() != 0 || got.Version() != 1 {
		t.Errorf("unexpected record: %+v", got.Snapshot())
	}

	got, err = s.GetByProductAndLocation(ctx, p.ID, l.ID)
	if err != nil {
		t.Fatalf("GetByProductAndLocation: %v", err)
	}
	if got.ID() != r.ID() {
		t.Errorf("expected id %s, got %s", r.ID(), got.ID())
	}

	exists, err := s.ExistsFor(ctx, p.ID, l.ID)
	if err != nil {
		t.Fatalf("ExistsFor: %v", err)
	}
	if !exists {
		t.Error("expected record to exist")
	}

	if _, err := s.GetByID(ctx, "missing"); !errors.Is(err, inventory.ErrInventoryNotFound) {
		t.Errorf("expected ErrInventoryNotFound, got %v", err)
	}
	if _, err := s.GetByProductAndLocation(ctx, p.ID, "missing"); !errors.Is(err, inventory.ErrInventoryNotFound) {
		t.Errorf("expected ErrInventoryNotFound, got %v", err)
	}
}

func TestInventoryStoreAddDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	s := NewInventoryStore(database)

	p := seedProduct(t, database, "SKU-1")
	l := seedLocation(t, database, "Main")
	addRecord(t, s, p.ID, l.ID, 1)

	r, _, _ := inventory.New(p.ID, l.ID, 5)
	err := s.Add(context.Background(), r)
	if !errors.Is(err, inventory.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestInventoryStoreUpdate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := NewInventoryStore(database)

	p := seedProduct(t, database, "SKU-1")
	l := seedLocation(t, database, "Main")
	r := addRecord(t, s, p.ID, l.ID, 10)

	if _, err := r.ReserveStock(4); err != nil {
		t.Fatalf("ReserveStock: %v", err)
	}
	if err := s.Update(ctx, r); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if r.Version() != 2 {
		t.Errorf("expected in-memory version 2, got %d", r.Version())
	}

	got, _ := s.GetByID(ctx, r.ID())
	if got.ReservedQuantity() != 4 || got.AvailableQuantity() != 6 || got.Version() != 2 {
		t.Errorf("unexpected stored record: %+v", got.Snapshot())
	}
}

func TestInventoryStoreUpdateConflict(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := NewInventoryStore(database)

	p := seedProduct(t, database, "SKU-1")
	l := seedLocation(t, database, "Main")
	r := addRecord(t, s, p.ID, l.ID, 10)

	first, _ := s.GetByID(ctx, r.ID())
	second, _ := s.GetByID(ctx, r.ID())

	first.AdjustStock(5, "")
	if err := s.Update(ctx, first); err != nil {
		t.Fatalf("first Update: %v", err)
	}

	second.AdjustStock(-3, "")
	err := s.Update(ctx, second)
	if !errors.Is(err, inventory.ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}

	got, _ := s.GetByID(ctx, r.ID())
	if got.Quantity() != 15 {
		t.Errorf("expected quantity 15, got %d", got.Quantity())
	}
}

func TestInventoryStoreUpdateMissing(t *testing.T) {
	database := db.NewTestDB(t)
	s := NewInventoryStore(database)

	r, _, _ := inventory.New("p", "l", 1)
	err := s.Update(context.Background(), r)
	if !errors.Is(err, inventory.ErrInventoryNotFound) {
		t.Fatalf("expected ErrInventoryNotFound, got %v", err)
	}
}

func TestInventoryStoreQuery(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := NewInventoryStore(database)

	p1 := seedProduct(t, database, "SKU-1")
	p2 := seedProduct(t, database, "SKU-2")
	main := seedLocation(t, database, "Main")
	north := seedLocation(t, database, "North")

	addRecord(t, s, p1.ID, main.ID, 10)
	addRecord(t, s, p1.ID, north.ID, 0)
	reserved := addRecord(t, s, p2.ID, main.ID, 30)
	reserved.ReserveStock(25)
	if err := s.Update(ctx, reserved); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ptr := func(s string) *string { return &s }
	yes, no := true, false
	minQty := 5

	tests := []struct {
		name   string
		filter inventory.Filter
		want   []int // quantities in result order
		total  int
	}{
		{"all by quantity", inventory.Filter{SortBy: inventory.SortQuantity}, []int{0, 10, 30}, 3},
		{"all by quantity desc", inventory.Filter{SortBy: inventory.SortQuantity, Desc: true}, []int{30, 10, 0}, 3},
		{"by product", inventory.Filter{ProductID: ptr(p1.ID), SortBy: inventory.SortQuantity}, []int{0, 10}, 2},
		{"by location", inventory.Filter{LocationID: ptr(main.ID), SortBy: inventory.SortQuantity}, []int{10, 30}, 2},
		{"has stock", inventory.Filter{HasStock: &yes, SortBy: inventory.SortQuantity}, []int{10, 30}, 2},
		{"no stock", inventory.Filter{HasStock: &no}, []int{0}, 1},
		{"has reservation", inventory.Filter{HasReservation: &yes}, []int{30}, 1},
		{"min quantity", inventory.Filter{MinQuantity: &minQty, SortBy: inventory.SortQuantity}, []int{10, 30}, 2},
		{"by available", inventory.Filter{HasStock: &yes, SortBy: inventory.SortAvailable}, []int{30, 10}, 2},
		{"paged", inventory.Filter{SortBy: inventory.SortQuantity, Limit: 1, Offset: 1}, []int{10}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if page.Total != tt.total {
				t.Errorf("expected total %d, got %d", tt.total, page.Total)
			}
			if len(page.Records) != len(tt.want) {
				t.Fatalf("expected %d records, got %d", len(tt.want), len(page.Records))
			}
			for i, r := range page.Records {
				if r.Quantity() != tt.want[i] {
					t.Errorf("record %d: expected quantity %d, got %d", i, tt.want[i], r.Quantity())
				}
			}
		})
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := NewInventoryStore(database)

	p := seedProduct(t, database, "SKU-1")
	l := seedLocation(t, database, "Main")
	r := addRecord(t, s, p.ID, l.ID, 10)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx inventory.Tx) error {
		rec, err := tx.GetByID(ctx, r.ID())
		if err != nil {
			return err
		}
		rec.AdjustStock(-10, "")
		if err := tx.Update(ctx, rec); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := s.GetByID(ctx, r.ID())
	if got.Quantity() != 10 || got.Version() != 1 {
		t.Errorf("expected rolled back record, got %+v", got.Snapshot())
	}
}

func TestWithinTxCommits(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	s := NewInventoryStore(database)

	p := seedProduct(t, database, "SKU-1")
	main := seedLocation(t, database, "Main")
	north := seedLocation(t, database, "North")
	from := addRecord(t, s, p.ID, main.ID, 10)
	to := addRecord(t, s, p.ID, north.ID, 0)

	err := s.WithinTx(ctx, func(tx inventory.Tx) error {
		f, _ := tx.GetByID(ctx, from.ID())
		d, _ := tx.GetByID(ctx, to.ID())
		f.AdjustStock(-4, "")
		d.AdjustStock(4, "")
		if err := tx.Update(ctx, f); err != nil {
			return err
		}
		if err := tx.Update(ctx, d); err != nil {
			return err
		}
		return tx.RecordTransfer(ctx, &model.Transfer{
			ProductID:       p.ID,
			FromInventoryID: f.ID(),
			ToInventoryID:   d.ID(),
			FromLocationID:  main.ID,
			ToLocationID:    north.ID,
			Quantity:        4,
		})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	f, _ := s.GetByID(ctx, from.ID())
	d, _ := s.GetByID(ctx, to.ID())
	if f.Quantity() != 6 || d.Quantity() != 4 {
		t.Errorf("expected 6 and 4, got %d and %d", f.Quantity(), d.Quantity())
	}

	transfers, err := ListTransfers(ctx, database, p.ID, "")
	if err != nil {
		t.Fatalf("ListTransfers: %v", err)
	}
	if len(transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(transfers))
	}
}
