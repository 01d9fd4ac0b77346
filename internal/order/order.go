package order

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	// StatusPending is set at submission time. Confirmation and
	// cancellation happen in the back office.
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Order is the persisted order header. The totals are a snapshot computed
// server-side at submission time.
type Order struct {
	ID                 uuid.UUID `json:"id"`
	CustomerName       string    `json:"customer_name"`
	CustomerEmail      string    `json:"customer_email"`
	CustomerPhone      string    `json:"customer_phone"`
	CustomerCity       string    `json:"customer_city"`
	TotalMSRP          float64   `json:"total_msrp"`
	TotalUnits         int       `json:"total_units"`
	UnitPrice          float64   `json:"unit_price"`
	DiscountPercentage float64   `json:"discount_percentage"`
	EstimatedTotal     float64   `json:"estimated_total"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// Item is a point-in-time copy of one cart line. MSRPAtPurchase is frozen
// at submission so later catalog price changes never touch placed orders.
type Item struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	SKU            string    `json:"sku"`
	Quantity       int       `json:"quantity"`
	MSRPAtPurchase float64   `json:"msrp_at_purchase"`
	Subtotal       float64   `json:"subtotal"`
}

// OutboxEvent is a pending back-office notification, written alongside the
// order and published to Kafka by the outbox poller.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
