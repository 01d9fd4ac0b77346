package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/namexuser/body-products/internal/catalog"
	"github.com/namexuser/body-products/internal/inventory"
)

// ProductCatalog is the slice of the catalog the product endpoints need.
type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]*catalog.Product, error)
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// StockReader reads stock counters for the inventory endpoint.
type StockReader interface {
	GetStock(ctx context.Context, productIDs []string) ([]inventory.StockLevel, error)
}

type ProductHandler struct {
	catalog ProductCatalog
	stock   StockReader
	timeout time.Duration
}

func NewProductHandler(cat ProductCatalog, stock StockReader, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: cat,
		stock:   stock,
		timeout: timeout,
	}
}

// GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load products")
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}

	product, err := h.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// GET /api/v1/products/{product_id}/inventory
func (h *ProductHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product_id is required")
		return
	}

	levels, err := h.stock.GetStock(ctx, []string{productID})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load stock level")
		return
	}
	if len(levels) == 0 {
		respondError(w, http.StatusNotFound, "not_found", "no inventory for product")
		return
	}

	respondJSON(w, http.StatusOK, levels[0])
}
