package inventory

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore implements Store with in-memory storage. Used for local
// development and tests; production deployments use the Postgres store.
type MemoryStore struct {
	mu     sync.RWMutex
	stocks map[string]int // productID -> quantity in stock
}

// NewMemoryStore creates a new in-memory inventory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stocks: make(map[string]int),
	}
}

func (s *MemoryStore) GetStock(_ context.Context, productIDs []string) ([]StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]StockLevel, 0, len(productIDs))
	for _, id := range productIDs {
		if quantity, exists := s.stocks[id]; exists {
			result = append(result, StockLevel{ProductID: id, QuantityInStock: quantity})
		}
	}
	return result, nil
}

func (s *MemoryStore) Decrement(_ context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("decrement quantity must be positive, got %d", quantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.stocks[productID]
	if !exists {
		return ErrProductNotFound
	}
	if current < quantity {
		return ErrInsufficientStock
	}

	s.stocks[productID] = current - quantity
	return nil
}

func (s *MemoryStore) SetStock(_ context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stocks[productID] = quantity
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
