package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/zaloga/internal/model"
)

// ErrLocationHoldsStock is returned when deleting a location that still has
// stock on hand.
var ErrLocationHoldsStock = errors.New("location holds stock")

// CreateLocation creates a new location.
func CreateLocation(ctx context.Context, db *sql.DB, name, locationType string) (*model.Location, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO locations (id, name, type) VALUES (?, ?, ?)`,
		id, name, locationType,
	)
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}

	return GetLocation(ctx, db, id)
}

// GetLocation returns a location by ID, including deleted ones.
func GetLocation(ctx context.Context, db *sql.DB, id string) (*model.Location, error) {
	l := &model.Location{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, type, created_at, deleted_at FROM locations WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &l.Type, &l.CreatedAt, &l.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return l, nil
}

// ListLocations returns all non-deleted locations, optionally filtered by type.
func ListLocations(ctx context.Context, db *sql.DB, locationType string) ([]model.Location, error) {
	query := `SELECT id, name, type, created_at, deleted_at FROM locations WHERE deleted_at IS NULL`
	var args []any
	if locationType != "" {
		query += ` AND type = ?`
		args = append(args, locationType)
	}
	query += ` ORDER BY name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Type, &l.CreatedAt, &l.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// DeleteLocation soft-deletes a location. It fails with ErrLocationHoldsStock
// while any inventory record at the location has a positive quantity.
func DeleteLocation(ctx context.Context, db *sql.DB, id string) error {
	var held int
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM inventory WHERE location_id = ?`, id,
	).Scan(&held)
	if err != nil {
		return fmt.Errorf("checking location stock: %w", err)
	}
	if held > 0 {
		return fmt.Errorf("%w: %d units at %s", ErrLocationHoldsStock, held, id)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE locations SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	return nil
}
