package checkout

import (
	"context"
	"errors"
	"log"

	"github.com/namexuser/body-products/internal/inventory"
	"github.com/namexuser/body-products/internal/order"
)

// decrementInventory applies each line's quantity against stock. Every
// decrement is atomic for its own product, but there is no ordering or
// all-or-nothing guarantee across products: lines that fail are collected
// and reported, lines that succeeded stay decremented.
func (s *Service) decrementInventory(ctx context.Context, items []order.Item) *InventoryError {
	var failed []string
	for _, item := range items {
		if err := s.inventory.Decrement(ctx, item.ProductID, item.Quantity); err != nil {
			switch {
			case errors.Is(err, inventory.ErrInsufficientStock):
				log.Printf("insufficient stock for product %s (wanted %d)", item.ProductID, item.Quantity)
			case errors.Is(err, inventory.ErrProductNotFound):
				log.Printf("no inventory row for product %s", item.ProductID)
			default:
				log.Printf("inventory decrement failed for product %s: %v", item.ProductID, err)
			}
			failed = append(failed, item.ProductID)
		}
	}
	if len(failed) > 0 {
		return &InventoryError{FailedProducts: failed}
	}
	return nil
}
