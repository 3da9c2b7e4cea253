package inventory

import (
	"context"

	"github.com/erazemk/zaloga/internal/model"
)

// Store persists inventory records.
//
// Each Add or Update is durable once it returns nil. Update fails with
// ErrConcurrencyConflict when the stored version differs from the record's.
type Store interface {
	// GetByID returns ErrInventoryNotFound when no record has the id.
	GetByID(ctx context.Context, id string) (*Record, error)
	// GetByProductAndLocation returns ErrInventoryNotFound when the pair has no record.
	GetByProductAndLocation(ctx context.Context, productID, locationID string) (*Record, error)
	ExistsFor(ctx context.Context, productID, locationID string) (bool, error)
	Query(ctx context.Context, f Filter) (Page, error)
	// Add fails with ErrAlreadyExists when the pair already has a record.
	Add(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
}

// TransferLog records completed transfers.
type TransferLog interface {
	RecordTransfer(ctx context.Context, t *model.Transfer) error
}

// Tx is a Store and TransferLog bound to a single transaction.
type Tx interface {
	Store
	TransferLog
}

// Transactor is implemented by stores that can run several writes atomically.
// fn's writes are committed when it returns nil and rolled back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
