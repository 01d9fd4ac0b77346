package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// Repository persists order headers, order items and outbox events.
// Header and item writes are deliberately separate calls: each is an
// independent failure point in the submission pipeline and there is no
// wrapping transaction across them.
type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	CreateOrderItems(ctx context.Context, items []Item) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]Item, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]*Order, error)

	SaveOutboxEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error

	RunMigrations(*Credentials) error
	Close() error
}
