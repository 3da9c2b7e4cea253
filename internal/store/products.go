package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/zaloga/internal/model"
)

// ErrDuplicateSKU is returned when an active product already uses the SKU.
var ErrDuplicateSKU = errors.New("duplicate sku")

// CreateProduct creates a new product.
func CreateProduct(ctx context.Context, db *sql.DB, sku, name, description string) (*model.Product, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO products (id, sku, name, description) VALUES (?, ?, ?, ?)`,
		id, sku, name, description,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSKU, sku)
	}
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	return GetProduct(ctx, db, id)
}

// GetProduct returns a product by ID, including deleted ones.
func GetProduct(ctx context.Context, db *sql.DB, id string) (*model.Product, error) {
	p := &model.Product{}
	var description sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, sku, name, description, created_at, updated_at, deleted_at
		 FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.SKU, &p.Name, &description, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	p.Description = description.String
	return p, nil
}

// ListProducts returns all non-deleted products ordered by SKU.
func ListProducts(ctx context.Context, db *sql.DB) ([]model.Product, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, sku, name, description, created_at, updated_at, deleted_at
		 FROM products WHERE deleted_at IS NULL ORDER BY sku`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &description, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p.Description = description.String
		products = append(products, p)
	}
	return products, rows.Err()
}

// DeleteProduct soft-deletes a product. Its inventory records are kept.
func DeleteProduct(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE products SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}
