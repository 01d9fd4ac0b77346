package checkout

import (
	"context"
	"encoding/json"
	"log"

	"github.com/namexuser/body-products/internal/order"
)

type orderPlacedItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type orderPlacedEvent struct {
	OrderID        string            `json:"order_id"`
	CustomerEmail  string            `json:"customer_email"`
	CustomerCity   string            `json:"customer_city"`
	TotalUnits     int               `json:"total_units"`
	TotalMSRP      float64           `json:"total_msrp"`
	EstimatedTotal float64           `json:"estimated_total"`
	Items          []orderPlacedItem `json:"items"`
}

// emitOrderPlaced records an order.placed event in the outbox for the
// downstream publisher. Best effort: a failed write is logged and the
// submission still completes.
func (s *Service) emitOrderPlaced(ctx context.Context, header *order.Order, items []order.Item) {
	event := orderPlacedEvent{
		OrderID:        header.ID.String(),
		CustomerEmail:  header.CustomerEmail,
		CustomerCity:   header.CustomerCity,
		TotalUnits:     header.TotalUnits,
		TotalMSRP:      header.TotalMSRP,
		EstimatedTotal: header.EstimatedTotal,
	}
	for _, item := range items {
		event.Items = append(event.Items, orderPlacedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal order.placed event for order %s: %v", header.ID, err)
		return
	}
	if err := s.orders.SaveOutboxEvent(ctx, event.OrderID, "order.placed", payload); err != nil {
		log.Printf("failed to save order.placed event for order %s: %v", header.ID, err)
	}
}
