package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/namexuser/body-products/internal/pricing"
)

// Service owns the session cart: durable line items in the repository,
// derived totals via the pricing table. The cart is single-writer per
// session, so mutations need no coordination beyond the repository's own.
type Service struct {
	repo  Repository
	cache Cache
	table pricing.Table
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, cache Cache, table pricing.Table) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		table: table,
	}
}

func (s *Service) GetCart(ctx context.Context, sessionID string) (*Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {

		cached, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return cached, nil // cart is in cache
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		stored, errGet := s.repo.GetCart(ctx, sessionID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) {
			// A session with no persisted cart is an empty cart, never an error.
			return &Cart{
				SessionID: sessionID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), sessionID, stored)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return stored, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*Cart), nil
}

func (s *Service) AddItem(ctx context.Context, sessionID string, item LineItem) error {
	if item.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", item.Quantity)
	}
	if item.UnitMSRP < 0 {
		return fmt.Errorf("unit MSRP must not be negative, got %v", item.UnitMSRP)
	}

	errAdd := s.repo.AddItem(ctx, sessionID, item)
	if errAdd != nil {
		log.Printf("repo add item error: %v \n", errAdd)
		return errAdd
	}

	s.invalidateCache(sessionID)
	return nil
}

// SetQuantity replaces a line item's quantity. A quantity of zero or less
// removes the item.
func (s *Service) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sessionID, productID)
	}

	errSet := s.repo.SetItemQuantity(ctx, sessionID, productID, quantity)
	if errSet != nil {
		log.Printf("repo set item quantity error: %v \n", errSet)
		return errSet
	}

	s.invalidateCache(sessionID)
	return nil
}

// RemoveItem is idempotent: removing an absent item or from an absent cart
// is a no-op.
func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) error {
	errRemove := s.repo.RemoveItem(ctx, sessionID, productID)
	if errRemove != nil {
		if errors.Is(errRemove, ErrCartNotFound) || errors.Is(errRemove, ErrItemNotFound) {
			return nil
		}
		log.Printf("repo remove item error: %v \n", errRemove)
		return errRemove
	}

	s.invalidateCache(sessionID)
	return nil
}

func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	errDelete := s.repo.DeleteCart(ctx, sessionID)
	if errDelete != nil {
		if errors.Is(errDelete, ErrCartNotFound) {
			return nil
		}
		log.Printf("repo delete cart error: %v \n", errDelete)
		return errDelete
	}

	s.invalidateCache(sessionID)
	return nil
}

// Totals prices the current cart. Two calls without an intervening
// mutation return identical snapshots.
func (s *Service) Totals(ctx context.Context, sessionID string) (Snapshot, error) {
	c, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return c.Snapshot(s.table)
}

func (s *Service) invalidateCache(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, sessionID)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v \n", errInvalidate)
	}
}
