package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/zaloga/internal/model"
)

// RecordTransfer appends a transfer to the journal, assigning its ID and
// timestamp when unset. Inside WithinTx it shares the stock writes' transaction.
func (s *InventoryStore) RecordTransfer(ctx context.Context, t *model.Transfer) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.TransferredAt.IsZero() {
		t.TransferredAt = time.Now().UTC()
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO transfers (id, product_id, from_inventory_id, to_inventory_id,
		                        from_location_id, to_location_id, quantity, reason,
		                        transferred_at, transferred_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProductID, t.FromInventoryID, t.ToInventoryID,
		t.FromLocationID, t.ToLocationID, t.Quantity, t.Reason,
		t.TransferredAt, t.TransferredBy,
	)
	if err != nil {
		return fmt.Errorf("recording transfer: %w", err)
	}
	return nil
}

const transferSelect = `SELECT t.id, t.product_id, t.from_inventory_id, t.to_inventory_id,
        t.from_location_id, t.to_location_id, t.quantity, t.reason,
        t.transferred_at, t.transferred_by,
        p.name AS product_name, fl.name AS from_location_name, tl.name AS to_location_name
 FROM transfers t
 JOIN products p ON p.id = t.product_id
 JOIN locations fl ON fl.id = t.from_location_id
 JOIN locations tl ON tl.id = t.to_location_id`

// GetTransfer returns a transfer by ID.
func GetTransfer(ctx context.Context, db *sql.DB, id string) (*model.Transfer, error) {
	rows, err := db.QueryContext(ctx, transferSelect+` WHERE t.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting transfer: %w", err)
	}
	defer rows.Close()

	transfers, err := scanTransfers(rows)
	if err != nil {
		return nil, err
	}
	if len(transfers) == 0 {
		return nil, nil
	}
	return &transfers[0], nil
}

// ListTransfers returns transfers, newest first, optionally filtered by
// product or by a location on either side.
func ListTransfers(ctx context.Context, db *sql.DB, productID, locationID string) ([]model.Transfer, error) {
	query := transferSelect + ` WHERE 1=1`
	var args []any

	if productID != "" {
		query += ` AND t.product_id = ?`
		args = append(args, productID)
	}
	if locationID != "" {
		query += ` AND (t.from_location_id = ? OR t.to_location_id = ?)`
		args = append(args, locationID, locationID)
	}

	query += ` ORDER BY t.transferred_at DESC, t.id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

func scanTransfers(rows *sql.Rows) ([]model.Transfer, error) {
	var transfers []model.Transfer
	for rows.Next() {
		var t model.Transfer
		var reason sql.NullString
		if err := rows.Scan(&t.ID, &t.ProductID, &t.FromInventoryID, &t.ToInventoryID,
			&t.FromLocationID, &t.ToLocationID, &t.Quantity, &reason,
			&t.TransferredAt, &t.TransferredBy,
			&t.ProductName, &t.FromLocationName, &t.ToLocationName); err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		t.Reason = reason.String
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
