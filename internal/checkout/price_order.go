package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/namexuser/body-products/internal/order"
)

// priceOrder builds the order header and items from catalog prices at
// submission time. Client-supplied totals are never trusted; the catalog
// MSRP is the authoritative price and is frozen into each item.
func (s *Service) priceOrder(ctx context.Context, items []SubmittedItem) (*order.Order, []order.Item, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch product details: %w", err)
	}

	orderID := uuid.New()
	orderItems := make([]order.Item, len(items))
	var totalMSRP float64
	var totalUnits int

	for i, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, nil, &ValidationError{Reason: "unknown product " + item.ProductID}
		}

		subtotal := product.MSRP * float64(item.Quantity)
		orderItems[i] = order.Item{
			ID:             uuid.New(),
			OrderID:        orderID,
			ProductID:      product.ID,
			ProductName:    product.Name,
			SKU:            product.SKU,
			Quantity:       item.Quantity,
			MSRPAtPurchase: product.MSRP,
			Subtotal:       subtotal,
		}
		totalMSRP += subtotal
		totalUnits += item.Quantity
	}

	quote, err := s.table.Quote(totalMSRP, totalUnits)
	if err != nil {
		return nil, nil, &ValidationError{Reason: err.Error()}
	}
	if err := s.floor.check(quote); err != nil {
		return nil, nil, err
	}

	header := &order.Order{
		ID:                 orderID,
		TotalMSRP:          quote.TotalMSRP,
		TotalUnits:         quote.TotalUnits,
		UnitPrice:          quote.UnitPrice,
		DiscountPercentage: quote.DiscountPercentage,
		EstimatedTotal:     quote.EstimatedTotal,
		Status:             order.StatusPending,
	}
	return header, orderItems, nil
}
