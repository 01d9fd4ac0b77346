package inventory

import (
	"context"
	"errors"
)

// Common errors returned by the store
var (
	ErrProductNotFound   = errors.New("product not found in inventory")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockLevel is the stock counter for one product.
type StockLevel struct {
	ProductID       string `json:"product_id"`
	QuantityInStock int    `json:"quantity_in_stock"`
}

// Store defines the interface for inventory storage operations. The store
// is shared across concurrent checkouts, so Decrement must be atomic
// (decrement-by-delta, never read-modify-write) and must refuse to drive a
// counter negative.
type Store interface {
	// GetStock returns stock levels for the given product IDs. Unknown
	// products are omitted from the result.
	GetStock(ctx context.Context, productIDs []string) ([]StockLevel, error)

	// Decrement atomically reduces a product's stock by the given quantity.
	// Returns ErrInsufficientStock when the counter would go negative.
	Decrement(ctx context.Context, productID string, quantity int) error

	// SetStock sets the stock level for a product (used for seeding).
	SetStock(ctx context.Context, productID string, quantity int) error

	// Close shuts down the store.
	Close() error
}
