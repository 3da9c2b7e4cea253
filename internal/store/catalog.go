package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Catalog answers existence checks against the product and location tables.
// Soft-deleted rows do not exist.
type Catalog struct {
	DB *sql.DB
}

// ProductExists reports whether an active product has the ID.
func (c Catalog) ProductExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := c.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = ? AND deleted_at IS NULL)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking product: %w", err)
	}
	return exists, nil
}

// LocationExists reports whether an active location has the ID.
func (c Catalog) LocationExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := c.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM locations WHERE id = ? AND deleted_at IS NULL)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking location: %w", err)
	}
	return exists, nil
}
