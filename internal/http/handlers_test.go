package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/namexuser/body-products/internal/cart"
	"github.com/namexuser/body-products/internal/catalog"
	"github.com/namexuser/body-products/internal/checkout"
	"github.com/namexuser/body-products/internal/inventory"
	"github.com/namexuser/body-products/internal/order"
	"github.com/namexuser/body-products/internal/pricing"
)

type catalogMock struct {
	products map[string]*catalog.Product
	err      error
}

func (m catalogMock) ListProducts(context.Context) ([]*catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m catalogMock) GetProduct(_ context.Context, id string) (*catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, catalog.ErrProductNotFound
}

type stockMock struct {
	levels map[string]int
	err    error
}

func (m stockMock) GetStock(_ context.Context, productIDs []string) ([]inventory.StockLevel, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []inventory.StockLevel
	for _, id := range productIDs {
		if qty, ok := m.levels[id]; ok {
			out = append(out, inventory.StockLevel{ProductID: id, QuantityInStock: qty})
		}
	}
	return out, nil
}

type cartServiceMock struct {
	carts map[string]*cart.Cart
	err   error
}

func newCartServiceMock() *cartServiceMock {
	return &cartServiceMock{carts: make(map[string]*cart.Cart)}
}

func (m *cartServiceMock) cartFor(sessionID string) *cart.Cart {
	c, ok := m.carts[sessionID]
	if !ok {
		c = &cart.Cart{SessionID: sessionID}
		m.carts[sessionID] = c
	}
	return c
}

func (m *cartServiceMock) GetCart(_ context.Context, sessionID string) (*cart.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cartFor(sessionID), nil
}

func (m *cartServiceMock) AddItem(_ context.Context, sessionID string, item cart.LineItem) error {
	if m.err != nil {
		return m.err
	}
	c := m.cartFor(sessionID)
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			return nil
		}
	}
	c.Items = append(c.Items, item)
	return nil
}

func (m *cartServiceMock) SetQuantity(_ context.Context, sessionID, productID string, quantity int) error {
	if m.err != nil {
		return m.err
	}
	c := m.cartFor(sessionID)
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			return nil
		}
	}
	return cart.ErrItemNotFound
}

func (m *cartServiceMock) RemoveItem(_ context.Context, sessionID, productID string) error {
	if m.err != nil {
		return m.err
	}
	c := m.cartFor(sessionID)
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *cartServiceMock) ClearCart(_ context.Context, sessionID string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.carts, sessionID)
	return nil
}

func (m *cartServiceMock) Totals(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	if m.err != nil {
		return cart.Snapshot{}, m.err
	}
	c := m.cartFor(sessionID)
	return c.Snapshot(testTable())
}

type submitterMock struct {
	result *checkout.SubmissionResult
	err    error

	gotSessionID string
	gotInfo      checkout.CustomerInfo
	gotItems     []checkout.SubmittedItem
}

func (m *submitterMock) Submit(_ context.Context, sessionID string, info checkout.CustomerInfo, items []checkout.SubmittedItem) (*checkout.SubmissionResult, error) {
	m.gotSessionID = sessionID
	m.gotInfo = info
	m.gotItems = items
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type orderReaderMock struct {
	orders map[uuid.UUID]*order.Order
	items  map[uuid.UUID][]order.Item
	err    error
}

func (m orderReaderMock) GetOrderByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, order.ErrOrderNotFound
}

func (m orderReaderMock) GetOrderItems(_ context.Context, orderID uuid.UUID) ([]order.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items[orderID], nil
}

func (m orderReaderMock) ListOrdersByEmail(_ context.Context, email string) ([]*order.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*order.Order
	for _, o := range m.orders {
		if o.CustomerEmail == email {
			out = append(out, o)
		}
	}
	return out, nil
}

func testTable() pricing.Table {
	return pricing.DefaultTable()
}

func testProducts() map[string]*catalog.Product {
	return map[string]*catalog.Product{
		"prod-001": {ID: "prod-001", Name: "Lavender Body Lotion", SKU: "LOT-LAV-8", MSRP: 12.99, CaseSize: 12, ProductType: "lotion", IsActive: true},
		"prod-002": {ID: "prod-002", Name: "Citrus Body Wash", SKU: "WSH-CIT-12", MSRP: 9.99, CaseSize: 24, ProductType: "wash", IsActive: true},
	}
}

func withSession(r *http.Request, sessionID string) *http.Request {
	ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestListProducts_Success(t *testing.T) {
	handler := NewProductHandler(catalogMock{products: testProducts()}, stockMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/products", nil)

	handler.ListProducts(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var products []*catalog.Product
	if err := json.NewDecoder(recorder.Body).Decode(&products); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("Expected 2 products, got %d", len(products))
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	handler := NewProductHandler(catalogMock{products: testProducts()}, stockMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/api/v1/products/prod-999", nil), "product_id", "prod-999")

	handler.GetProduct(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestGetProduct_Success(t *testing.T) {
	handler := NewProductHandler(catalogMock{products: testProducts()}, stockMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/api/v1/products/prod-001", nil), "product_id", "prod-001")

	handler.GetProduct(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var product catalog.Product
	if err := json.NewDecoder(recorder.Body).Decode(&product); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if product.SKU != "LOT-LAV-8" {
		t.Errorf("Expected SKU 'LOT-LAV-8', got '%s'", product.SKU)
	}
}

func TestGetInventory(t *testing.T) {
	handler := NewProductHandler(catalogMock{products: testProducts()}, stockMock{levels: map[string]int{"prod-001": 480}}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/api/v1/products/prod-001/inventory", nil), "product_id", "prod-001")
	handler.GetInventory(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	var level inventory.StockLevel
	if err := json.NewDecoder(recorder.Body).Decode(&level); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if level.QuantityInStock != 480 {
		t.Errorf("Expected 480 units in stock, got %d", level.QuantityInStock)
	}

	recorder = httptest.NewRecorder()
	request = withURLParam(httptest.NewRequest("GET", "/api/v1/products/prod-999/inventory", nil), "product_id", "prod-999")
	handler.GetInventory(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestAddItem_RoundsUpToCaseSize(t *testing.T) {
	carts := newCartServiceMock()
	handler := NewCartHandler(carts, catalogMock{products: testProducts()}, 5*time.Second)

	body := strings.NewReader(`{"product_id":"prod-001","quantity":10}`)
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/cart/items", body), "sess-1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body.String())
	}

	// Case size for prod-001 is 12, so 10 rounds up to 12.
	items := carts.cartFor("sess-1").Items
	if len(items) != 1 {
		t.Fatalf("Expected 1 cart item, got %d", len(items))
	}
	if items[0].Quantity != 12 {
		t.Errorf("Expected quantity rounded up to 12, got %d", items[0].Quantity)
	}
	if items[0].UnitMSRP != 12.99 {
		t.Errorf("Expected catalog MSRP 12.99, got %f", items[0].UnitMSRP)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	handler := NewCartHandler(newCartServiceMock(), catalogMock{products: testProducts()}, 5*time.Second)

	body := strings.NewReader(`{"product_id":"prod-999","quantity":10}`)
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/cart/items", body), "sess-1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestAddItem_InvalidBody(t *testing.T) {
	handler := NewCartHandler(newCartServiceMock(), catalogMock{products: testProducts()}, 5*time.Second)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{not json`},
		{"missing product id", `{"quantity":10}`},
		{"zero quantity", `{"product_id":"prod-001","quantity":0}`},
		{"negative quantity", `{"product_id":"prod-001","quantity":-5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := withSession(httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(tt.body)), "sess-1")

			handler.AddItem(recorder, request)

			if recorder.Code != http.StatusBadRequest {
				t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
			}
		})
	}
}

func TestGetCart_IncludesQuote(t *testing.T) {
	carts := newCartServiceMock()
	c := carts.cartFor("sess-1")
	c.Items = append(c.Items, cart.LineItem{ProductID: "prod-001", UnitMSRP: 20.00, Quantity: 500, CaseSize: 12})

	handler := NewCartHandler(carts, catalogMock{products: testProducts()}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("GET", "/api/v1/cart", nil), "sess-1")

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var snapshot cart.Snapshot
	if err := json.NewDecoder(recorder.Body).Decode(&snapshot); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if snapshot.Quote.DiscountPercentage != 73.5 {
		t.Errorf("Expected 73.5%% discount, got %f", snapshot.Quote.DiscountPercentage)
	}
	if snapshot.Quote.EstimatedTotal != 2650.00 {
		t.Errorf("Expected estimated total 2650.00, got %f", snapshot.Quote.EstimatedTotal)
	}
}

func TestUpdateQuantity_RemovesOnZero(t *testing.T) {
	carts := newCartServiceMock()
	c := carts.cartFor("sess-1")
	c.Items = append(c.Items, cart.LineItem{ProductID: "prod-001", UnitMSRP: 12.99, Quantity: 24, CaseSize: 12})

	handler := NewCartHandler(carts, catalogMock{products: testProducts()}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("PUT", "/api/v1/cart/items/prod-001", strings.NewReader(`{"quantity":0}`)), "sess-1")
	request = withURLParam(request, "product_id", "prod-001")

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if len(carts.cartFor("sess-1").Items) != 0 {
		t.Errorf("Expected item removed on zero quantity")
	}
}

func TestUpdateQuantity_RoundsUpToCaseSize(t *testing.T) {
	carts := newCartServiceMock()
	c := carts.cartFor("sess-1")
	c.Items = append(c.Items, cart.LineItem{ProductID: "prod-001", UnitMSRP: 12.99, Quantity: 24, CaseSize: 12})

	handler := NewCartHandler(carts, catalogMock{products: testProducts()}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("PUT", "/api/v1/cart/items/prod-001", strings.NewReader(`{"quantity":30}`)), "sess-1")
	request = withURLParam(request, "product_id", "prod-001")

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if got := carts.cartFor("sess-1").Items[0].Quantity; got != 36 {
		t.Errorf("Expected quantity rounded up to 36, got %d", got)
	}
}

func TestSubmitOrder_Success(t *testing.T) {
	orderID := uuid.New()
	submitter := &submitterMock{result: &checkout.SubmissionResult{
		OrderID:   orderID,
		Status:    checkout.StatusCompleted,
		EmailSent: true,
	}}
	handler := NewCheckoutHandler(submitter, 30*time.Second)

	body := strings.NewReader(`{
		"customer_info": {"name":"Dana Buyer","email":"dana@example.com","phone":"555-0100","city":"Portland"},
		"cart_items": [{"product_id":"prod-001","quantity":500}]
	}`)
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/orders", body), "sess-1")

	handler.SubmitOrder(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d: %s", http.StatusCreated, recorder.Code, recorder.Body.String())
	}

	var resp SubmitOrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Errorf("Expected success=true")
	}
	if resp.OrderID != orderID.String() {
		t.Errorf("Expected order id %s, got %s", orderID, resp.OrderID)
	}
	if submitter.gotSessionID != "sess-1" {
		t.Errorf("Expected session 'sess-1', got '%s'", submitter.gotSessionID)
	}
	if len(submitter.gotItems) != 1 || submitter.gotItems[0].Quantity != 500 {
		t.Errorf("Expected one submitted item with quantity 500, got %+v", submitter.gotItems)
	}
}

func TestSubmitOrder_SurfacesWarnings(t *testing.T) {
	submitter := &submitterMock{result: &checkout.SubmissionResult{
		OrderID:          uuid.New(),
		Status:           checkout.StatusCompleted,
		FailedDecrements: []string{"prod-002"},
		Warnings:         []string{"inventory decrement failed for: prod-002"},
	}}
	handler := NewCheckoutHandler(submitter, 30*time.Second)

	body := strings.NewReader(`{
		"customer_info": {"name":"Dana","email":"dana@example.com","phone":"555-0100","city":"Portland"},
		"cart_items": [{"product_id":"prod-002","quantity":300}]
	}`)
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/api/v1/orders", body), "sess-1")

	handler.SubmitOrder(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}
	var resp SubmitOrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("Expected 1 warning, got %d", len(resp.Warnings))
	}
}

func TestSubmitOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation error", &checkout.ValidationError{Reason: "customer email is required"}, http.StatusBadRequest},
		{"persistence error", &checkout.PersistenceError{Step: "order header", Err: errors.New("db down")}, http.StatusServiceUnavailable},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCheckoutHandler(&submitterMock{err: tt.err}, 30*time.Second)

			body := strings.NewReader(`{
				"customer_info": {"name":"Dana","email":"dana@example.com","phone":"555-0100","city":"Portland"},
				"cart_items": [{"product_id":"prod-001","quantity":300}]
			}`)
			recorder := httptest.NewRecorder()
			request := withSession(httptest.NewRequest("POST", "/api/v1/orders", body), "sess-1")

			handler.SubmitOrder(recorder, request)

			if recorder.Code != tt.wantStatus {
				t.Errorf("Expected status code %d, got %d", tt.wantStatus, recorder.Code)
			}
			var resp SubmitOrderResponseDTO
			if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Success {
				t.Errorf("Expected success=false")
			}
			if resp.Error == "" {
				t.Errorf("Expected an error message")
			}
		})
	}
}

func TestGetOrder(t *testing.T) {
	orderID := uuid.New()
	reader := orderReaderMock{
		orders: map[uuid.UUID]*order.Order{orderID: {ID: orderID, CustomerEmail: "dana@example.com", TotalUnits: 500}},
		items:  map[uuid.UUID][]order.Item{orderID: {{OrderID: orderID, ProductID: "prod-001", Quantity: 500}}},
	}
	handler := NewOrdersHandler(reader, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/api/v1/orders/"+orderID.String(), nil), "order_id", orderID.String())
	handler.GetOrder(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	var resp OrderResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Order.ID != orderID {
		t.Errorf("Expected order id %s, got %s", orderID, resp.Order.ID)
	}
	if len(resp.Items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(resp.Items))
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	handler := NewOrdersHandler(orderReaderMock{orders: map[uuid.UUID]*order.Order{}}, 5*time.Second)

	recorder := httptest.NewRecorder()
	id := uuid.NewString()
	request := withURLParam(httptest.NewRequest("GET", "/api/v1/orders/"+id, nil), "order_id", id)
	handler.GetOrder(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestGetOrder_BadID(t *testing.T) {
	handler := NewOrdersHandler(orderReaderMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/api/v1/orders/not-a-uuid", nil), "order_id", "not-a-uuid")
	handler.GetOrder(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestListOrders_RequiresEmail(t *testing.T) {
	handler := NewOrdersHandler(orderReaderMock{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/orders", nil)
	handler.ListOrders(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestSessionMiddleware(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = getSessionIDFromContext(r.Context())
	})

	// Existing session id is passed through.
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-Session-ID", "sess-existing")
	SessionMiddleware(next).ServeHTTP(recorder, request)

	if seen != "sess-existing" {
		t.Errorf("Expected session 'sess-existing', got '%s'", seen)
	}
	if got := recorder.Header().Get("X-Session-ID"); got != "sess-existing" {
		t.Errorf("Expected session echoed in header, got '%s'", got)
	}

	// Missing session id gets a generated one.
	recorder = httptest.NewRecorder()
	request = httptest.NewRequest("GET", "/", nil)
	SessionMiddleware(next).ServeHTTP(recorder, request)

	if seen == "" {
		t.Errorf("Expected a generated session id")
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("Expected generated session id to be a UUID, got '%s'", seen)
	}
	if got := recorder.Header().Get("X-Session-ID"); got != seen {
		t.Errorf("Expected generated session echoed in header, got '%s'", got)
	}
}
