package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore implements Store on the shared orders database. The
// decrement is a single conditional UPDATE so concurrent checkouts on the
// same product never lose updates.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetStock(ctx context.Context, productIDs []string) ([]StockLevel, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	query := `SELECT product_id, quantity_in_stock FROM inventory WHERE product_id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query stock: %w", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var level StockLevel
		if err := rows.Scan(&level.ProductID, &level.QuantityInStock); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		levels = append(levels, level)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return levels, nil
}

func (s *PostgresStore) Decrement(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("decrement quantity must be positive, got %d", quantity)
	}

	// Conditional decrement: the WHERE guard keeps the counter non-negative
	// under concurrent checkouts.
	query := `UPDATE inventory
	          SET quantity_in_stock = quantity_in_stock - $2, updated_at = NOW()
	          WHERE product_id = $1 AND quantity_in_stock >= $2`

	result, err := s.db.ExecContext(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock for %s: %w", productID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read decrement result for %s: %w", productID, err)
	}
	if affected > 0 {
		return nil
	}

	// Distinguish an unknown product from one that is out of stock.
	var current int
	err = s.db.QueryRowContext(ctx,
		`SELECT quantity_in_stock FROM inventory WHERE product_id = $1`, productID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check stock for %s: %w", productID, err)
	}
	return ErrInsufficientStock
}

func (s *PostgresStore) SetStock(ctx context.Context, productID string, quantity int) error {
	query := `INSERT INTO inventory (product_id, quantity_in_stock, updated_at)
	          VALUES ($1, $2, NOW())
	          ON CONFLICT (product_id) DO UPDATE
	          SET quantity_in_stock = EXCLUDED.quantity_in_stock, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, productID, quantity); err != nil {
		return fmt.Errorf("failed to set stock for %s: %w", productID, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	// The *sql.DB is shared with the order repository and closed there.
	return nil
}
