package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/zaloga/internal/inventory"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InventoryStore persists inventory records in SQLite.
type InventoryStore struct {
	db *sql.DB
	q  querier
}

var (
	_ inventory.Store      = (*InventoryStore)(nil)
	_ inventory.Transactor = (*InventoryStore)(nil)
	_ inventory.Tx         = (*InventoryStore)(nil)
)

// NewInventoryStore returns a store backed by db.
func NewInventoryStore(db *sql.DB) *InventoryStore {
	return &InventoryStore{db: db, q: db}
}

const inventoryColumns = `id, product_id, location_id, quantity, reserved_quantity, version, created_at, updated_at`

var sortColumns = map[inventory.SortField]string{
	inventory.SortCreatedAt: "created_at",
	inventory.SortUpdatedAt: "updated_at",
	inventory.SortQuantity:  "quantity",
	inventory.SortReserved:  "reserved_quantity",
	inventory.SortAvailable: "(quantity - reserved_quantity)",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*inventory.Record, error) {
	var s inventory.Snapshot
	if err := row.Scan(&s.ID, &s.ProductID, &s.LocationID, &s.Quantity, &s.ReservedQuantity,
		&s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return inventory.Restore(s)
}

// GetByID returns the record with the given id.
func (s *InventoryStore) GetByID(ctx context.Context, id string) (*inventory.Record, error) {
	rec, err := scanRecord(s.q.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", inventory.ErrInventoryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory: %w", err)
	}
	return rec, nil
}

// GetByProductAndLocation returns the record of a product at a location.
func (s *InventoryStore) GetByProductAndLocation(ctx context.Context, productID, locationID string) (*inventory.Record, error) {
	rec, err := scanRecord(s.q.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory WHERE product_id = ? AND location_id = ?`,
		productID, locationID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %s at location %s", inventory.ErrInventoryNotFound, productID, locationID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory by product and location: %w", err)
	}
	return rec, nil
}

// ExistsFor reports whether the product already has a record at the location.
func (s *InventoryStore) ExistsFor(ctx context.Context, productID, locationID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventory WHERE product_id = ? AND location_id = ?)`,
		productID, locationID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking inventory existence: %w", err)
	}
	return exists, nil
}

// Query returns one page of records matching f, and the total match count.
func (s *InventoryStore) Query(ctx context.Context, f inventory.Filter) (inventory.Page, error) {
	f = f.Normalize()

	var where []string
	var args []any

	if f.ProductID != nil {
		where = append(where, "product_id = ?")
		args = append(args, *f.ProductID)
	}
	if f.LocationID != nil {
		where = append(where, "location_id = ?")
		args = append(args, *f.LocationID)
	}
	if f.HasStock != nil {
		if *f.HasStock {
			where = append(where, "quantity > 0")
		} else {
			where = append(where, "quantity = 0")
		}
	}
	if f.HasReservation != nil {
		if *f.HasReservation {
			where = append(where, "reserved_quantity > 0")
		} else {
			where = append(where, "reserved_quantity = 0")
		}
	}
	if f.MinQuantity != nil {
		where = append(where, "quantity >= ?")
		args = append(args, *f.MinQuantity)
	}
	if f.MaxQuantity != nil {
		where = append(where, "quantity <= ?")
		args = append(args, *f.MaxQuantity)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var page inventory.Page
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory`+clause, args...).Scan(&page.Total); err != nil {
		return inventory.Page{}, fmt.Errorf("counting inventory: %w", err)
	}

	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	query := `SELECT ` + inventoryColumns + ` FROM inventory` + clause +
		` ORDER BY ` + sortColumns[f.SortBy] + ` ` + dir + `, id ` + dir +
		` LIMIT ? OFFSET ?`

	rows, err := s.q.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return inventory.Page{}, fmt.Errorf("querying inventory: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return inventory.Page{}, fmt.Errorf("scanning inventory: %w", err)
		}
		page.Records = append(page.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return inventory.Page{}, fmt.Errorf("iterating inventory: %w", err)
	}
	return page, nil
}

// Add inserts a new record.
func (s *InventoryStore) Add(ctx context.Context, r *inventory.Record) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO inventory (`+inventoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID(), r.ProductID(), r.LocationID(), r.Quantity(), r.ReservedQuantity(),
		r.Version(), r.CreatedAt(), r.UpdatedAt(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: product %s at location %s", inventory.ErrAlreadyExists, r.ProductID(), r.LocationID())
	}
	if err != nil {
		return fmt.Errorf("adding inventory: %w", err)
	}
	return nil
}

// Update writes the record's quantities if the stored version still matches
// and advances the record's version.
func (s *InventoryStore) Update(ctx context.Context, r *inventory.Record) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE inventory
		 SET quantity = ?, reserved_quantity = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		r.Quantity(), r.ReservedQuantity(), r.UpdatedAt(), r.ID(), r.Version(),
	)
	if err != nil {
		return fmt.Errorf("updating inventory: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		var stored int64
		err := s.q.QueryRowContext(ctx, `SELECT version FROM inventory WHERE id = ?`, r.ID()).Scan(&stored)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", inventory.ErrInventoryNotFound, r.ID())
		}
		if err != nil {
			return fmt.Errorf("checking inventory version: %w", err)
		}
		return fmt.Errorf("%w: %s has version %d, expected %d", inventory.ErrConcurrencyConflict, r.ID(), stored, r.Version())
	}

	r.Persisted()
	return nil
}

// WithinTx runs fn against a store bound to one transaction. Calls nested in
// an existing transaction reuse it.
func (s *InventoryStore) WithinTx(ctx context.Context, fn func(tx inventory.Tx) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&InventoryStore{db: s.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
