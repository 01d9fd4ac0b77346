package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/namexuser/body-products/internal/catalog"
	"github.com/namexuser/body-products/internal/inventory"
	"github.com/namexuser/body-products/internal/order"
)

type mockCatalog struct {
	products map[string]*catalog.Product
	err      error
}

func (m *mockCatalog) GetProductsByIDs(_ context.Context, ids []string) (map[string]*catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]*catalog.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type mockOrderStore struct {
	mu sync.Mutex

	orders []*order.Order
	items  []order.Item
	events []string

	createOrderErr error
	createItemsErr error
	outboxErr      error
}

func (m *mockOrderStore) CreateOrder(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createOrderErr != nil {
		return m.createOrderErr
	}
	m.orders = append(m.orders, o)
	return nil
}

func (m *mockOrderStore) CreateOrderItems(_ context.Context, items []order.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createItemsErr != nil {
		return m.createItemsErr
	}
	m.items = append(m.items, items...)
	return nil
}

func (m *mockOrderStore) SaveOutboxEvent(_ context.Context, aggregateID, eventType string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outboxErr != nil {
		return m.outboxErr
	}
	m.events = append(m.events, eventType+":"+aggregateID)
	return nil
}

type mockInventory struct {
	mu    sync.Mutex
	stock map[string]int
}

func (m *mockInventory) Decrement(_ context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.stock[productID]
	if !ok {
		return inventory.ErrProductNotFound
	}
	if current < quantity {
		return inventory.ErrInsufficientStock
	}
	m.stock[productID] = current - quantity
	return nil
}

type mockCartClearer struct {
	cleared []string
	err     error
}

func (m *mockCartClearer) ClearCart(_ context.Context, sessionID string) error {
	if m.err != nil {
		return m.err
	}
	m.cleared = append(m.cleared, sessionID)
	return nil
}

type mockMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

func (m *mockMailer) Send(_ context.Context, to []string, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

var errStorageDown = errors.New("storage unavailable")
