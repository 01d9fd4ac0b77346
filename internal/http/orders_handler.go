package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/namexuser/body-products/internal/order"
)

// OrderReader is the read side of the order repository.
type OrderReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]order.Item, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]*order.Order, error)
}

type OrdersHandler struct {
	orders  OrderReader
	timeout time.Duration
}

func NewOrdersHandler(orders OrderReader, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

type OrderResponseDTO struct {
	Order *order.Order `json:"order"`
	Items []order.Item `json:"items"`
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	o, err := h.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}

	items, err := h.orders.GetOrderItems(ctx, orderID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order items")
		return
	}

	respondJSON(w, http.StatusOK, OrderResponseDTO{Order: o, Items: items})
}

// GET /api/v1/orders?email=...
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "missing_email", "email query parameter is required")
		return
	}

	orders, err := h.orders.ListOrdersByEmail(ctx, email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load orders")
		return
	}
	if orders == nil {
		orders = make([]*order.Order, 0)
	}

	respondJSON(w, http.StatusOK, orders)
}
