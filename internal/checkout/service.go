package checkout

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/namexuser/body-products/internal/catalog"
	"github.com/namexuser/body-products/internal/mail"
	"github.com/namexuser/body-products/internal/order"
	"github.com/namexuser/body-products/internal/pricing"
)

// SubmittedItem is one line of an incoming submission. Only the product id
// and quantity are trusted; prices always come from the catalog.
type SubmittedItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// SubmissionResult reports a placed order plus any degradations that
// happened after the order was durably recorded.
type SubmissionResult struct {
	OrderID          uuid.UUID
	Status           SubmissionStatus
	EmailSent        bool
	FailedDecrements []string
	Warnings         []string
}

// CatalogReader is the slice of the catalog the pipeline needs.
type CatalogReader interface {
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]*catalog.Product, error)
}

// OrderStore is the slice of the order repository the pipeline needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, o *order.Order) error
	CreateOrderItems(ctx context.Context, items []order.Item) error
	SaveOutboxEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error
}

// InventoryStore decrements stock counters. Decrements must be atomic per
// product; the pipeline never reads-then-writes.
type InventoryStore interface {
	Decrement(ctx context.Context, productID string, quantity int) error
}

// CartClearer empties the session cart once the order is placed.
type CartClearer interface {
	ClearCart(ctx context.Context, sessionID string) error
}

// Service runs the order submission pipeline:
//
//	validate -> persist header -> persist items -> decrement inventory -> notify -> complete
//
// Steps after persistence are independently degradable: the design favors
// "order recorded" over strict atomicity. Losing an email is tolerable,
// losing a placed order is not, so nothing past the persist steps ever
// rolls the order back.
type Service struct {
	catalog      CatalogReader
	orders       OrderStore
	inventory    InventoryStore
	carts        CartClearer
	mailer       mail.Mailer
	table        pricing.Table
	floor        Floor
	storeName    string
	backOfficeTo string
}

type Config struct {
	Table        pricing.Table
	Floor        Floor
	StoreName    string
	BackOfficeTo string
}

func NewService(
	catalogReader CatalogReader,
	orders OrderStore,
	inventoryStore InventoryStore,
	carts CartClearer,
	mailer mail.Mailer,
	cfg Config,
) *Service {
	return &Service{
		catalog:      catalogReader,
		orders:       orders,
		inventory:    inventoryStore,
		carts:        carts,
		mailer:       mailer,
		table:        cfg.Table,
		floor:        cfg.Floor,
		storeName:    cfg.StoreName,
		backOfficeTo: cfg.BackOfficeTo,
	}
}

// Submit runs the pipeline for one order. A returned error means no order
// was placed; a non-nil result always carries a durably recorded order id,
// possibly with warnings about degraded follow-up steps.
func (s *Service) Submit(ctx context.Context, sessionID string, info CustomerInfo, items []SubmittedItem) (*SubmissionResult, error) {
	status := StatusIdle

	// Step 1: validate. No side effects on failure.
	status, err := s.advance(status, StatusValidating)
	if err != nil {
		return nil, err
	}
	if err := validateCustomerInfo(info); err != nil {
		return nil, err
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	header, orderItems, err := s.priceOrder(ctx, items)
	if err != nil {
		return nil, err
	}
	header.CustomerName = info.Name
	header.CustomerEmail = info.Email
	header.CustomerPhone = info.Phone
	header.CustomerCity = info.City

	// A cancellation before anything is written is a clean no-op.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Steps 2-3: persist header, then items. A failure between the two
	// leaves an orphaned header; that inconsistency is accepted and
	// logged rather than hidden behind a transaction.
	status, err = s.advance(status, StatusPersisting)
	if err != nil {
		return nil, err
	}
	if err := s.orders.CreateOrder(ctx, header); err != nil {
		return nil, &PersistenceError{Step: "order header", Err: err}
	}
	if err := s.orders.CreateOrderItems(ctx, orderItems); err != nil {
		log.Printf("order %s has a header but no items after failed item insert: %v", header.ID, err)
		return nil, &PersistenceError{Step: "order items", Orphaned: true, Err: err}
	}

	result := &SubmissionResult{OrderID: header.ID}

	// Step 4: decrement inventory. Per-item, no rollback of completed
	// decrements on partial failure.
	status, err = s.advance(status, StatusDecrementingInventory)
	if err != nil {
		return nil, err
	}
	if invErr := s.decrementInventory(ctx, orderItems); invErr != nil {
		log.Printf("order %s placed with failed decrements: %v", header.ID, invErr)
		result.FailedDecrements = invErr.FailedProducts
		result.Warnings = append(result.Warnings, invErr.Error())
	}

	// Step 5: notify. The order stands whether or not the email goes out.
	status, err = s.advance(status, StatusNotifying)
	if err != nil {
		return nil, err
	}
	if notifyErr := s.notify(ctx, header, orderItems); notifyErr != nil {
		log.Printf("confirmation email for order %s failed: %v", header.ID, notifyErr)
		result.Warnings = append(result.Warnings, "confirmation email may be delayed")
	} else {
		result.EmailSent = true
	}

	// Step 6: complete. Cart clearing and the back-office event are best
	// effort once the order is recorded.
	status, err = s.advance(status, StatusCompleted)
	if err != nil {
		return nil, err
	}
	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		log.Printf("failed to clear cart for session %s: %v", sessionID, err)
	}
	s.emitOrderPlaced(ctx, header, orderItems)

	result.Status = status
	return result, nil
}

func (s *Service) advance(from, to SubmissionStatus) (SubmissionStatus, error) {
	if !CanTransitionTo(from, to) {
		return from, ErrIllegalTransition
	}
	return to, nil
}
