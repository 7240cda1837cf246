package shopify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront-analytics/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResponse struct {
	status int
	body   string
}

// stubTransport answers requests by URL path and records what it saw
type stubTransport struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	requests  []*http.Request
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	resp, ok := s.responses[req.URL.Path]
	if !ok {
		resp = stubResponse{status: http.StatusNotFound, body: `{"errors":"Not Found"}`}
	}
	return &http.Response{
		StatusCode: resp.status,
		Status:     http.StatusText(resp.status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(resp.body)),
		Request:    req,
	}, nil
}

func (s *stubTransport) lastRequest() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func newTestClient(t *testing.T, responses map[string]stubResponse) (*client, *stubTransport) {
	t.Helper()
	transport := &stubTransport{responses: responses}
	factory := NewClientFactory("", &http.Client{Transport: transport, Timeout: 5 * time.Second}, zerolog.Nop())
	c, err := factory.NewClient("demo.myshopify.com", "shpat_test")
	require.NoError(t, err)
	return c.(*client), transport
}

const productsBody = `{"products":[
  {"id":632910392,"title":"IPod Nano","handle":"ipod-nano","vendor":"Apple","product_type":"Cult Products","status":"active",
   "tags":"Emotive, Flash Memory, MP3",
   "variants":[{"price":"199.00","compare_at_price":"249.00","inventory_quantity":10},{"price":"1.00"}]},
  {"id":921728736,"title":"IPod Touch","handle":"ipod-touch","vendor":"Apple","product_type":"","status":"draft","tags":"","variants":[]}
]}`

const ordersBody = `{"orders":[
  {"id":450789469,"order_number":1001,"email":"bob@example.com","total_price":"598.94","subtotal_price":"597.00","total_tax":"11.94",
   "financial_status":"paid","fulfillment_status":null,"processed_at":"2026-03-13T16:09:54-05:00",
   "shipping_lines":[{"price":"4.00"}],"customer":{"id":207119551},"line_items":[{"id":1},{"id":2}]},
  {"id":450789470,"order_number":1002,"email":null,"total_price":"10.00","subtotal_price":"10.00","total_tax":"0.00",
   "financial_status":"pending","fulfillment_status":"fulfilled","processed_at":null,"shipping_lines":[],"line_items":[]}
]}`

const customersBody = `{"customers":[
  {"id":207119551,"email":"bob@example.com","first_name":"Bob","last_name":"Norman","phone":"+16136120707",
   "total_spent":"199.65","orders_count":1,"state":"disabled"},
  {"id":207119552,"email":"ann@example.com","first_name":null,"last_name":"Lee","phone":null,
   "total_spent":"0.00","orders_count":0,"state":"enabled"}
]}`

func TestClient_GetProducts(t *testing.T) {
	c, transport := newTestClient(t, map[string]stubResponse{
		"/admin/api/2023-10/products.json": {status: http.StatusOK, body: productsBody},
	})

	products, err := c.GetProducts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, products, 2)

	req := transport.lastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "demo.myshopify.com", req.URL.Host)
	assert.Equal(t, "250", req.URL.Query().Get("limit"))
	assert.Equal(t, "shpat_test", req.Header.Get("X-Shopify-Access-Token"))

	first := products[0]
	assert.Equal(t, int64(632910392), first.ShopifyProductID)
	assert.Equal(t, []string{"Emotive", "Flash Memory", "MP3"}, first.Tags)
	assert.Equal(t, "199.00", first.Price)
	require.NotNil(t, first.CompareAtPrice)
	assert.Equal(t, "249.00", *first.CompareAtPrice)
	assert.Equal(t, 10, first.InventoryQuantity)

	second := products[1]
	assert.Equal(t, "0", second.Price)
	assert.Nil(t, second.CompareAtPrice)
	assert.Equal(t, 0, second.InventoryQuantity)
	assert.Empty(t, second.Tags)
}

func TestClient_GetOrders(t *testing.T) {
	c, transport := newTestClient(t, map[string]stubResponse{
		"/admin/api/2023-10/orders.json": {status: http.StatusOK, body: ordersBody},
	})

	orders, err := c.GetOrders(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	query := transport.lastRequest().URL.Query()
	assert.Equal(t, "50", query.Get("limit"))
	assert.Equal(t, "any", query.Get("status"))

	first := orders[0]
	assert.Equal(t, "1001", first.OrderNumber)
	assert.Equal(t, "11.94", first.TaxPrice)
	assert.Equal(t, "4.00", first.ShippingPrice)
	assert.Nil(t, first.FulfillmentStatus)
	require.NotNil(t, first.CustomerID)
	assert.Equal(t, int64(207119551), *first.CustomerID)
	assert.Equal(t, 2, first.LineItemsCount)
	require.NotNil(t, first.ProcessedAt)
	assert.Equal(t, time.Date(2026, 3, 13, 21, 9, 54, 0, time.UTC), *first.ProcessedAt)

	second := orders[1]
	assert.Equal(t, "", second.Email)
	assert.Equal(t, "0", second.ShippingPrice)
	require.NotNil(t, second.FulfillmentStatus)
	assert.Equal(t, "fulfilled", *second.FulfillmentStatus)
	assert.Nil(t, second.CustomerID)
	assert.Nil(t, second.ProcessedAt)
}

func TestClient_GetCustomers(t *testing.T) {
	c, _ := newTestClient(t, map[string]stubResponse{
		"/admin/api/2023-10/customers.json": {status: http.StatusOK, body: customersBody},
	})

	customers, err := c.GetCustomers(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, customers, 2)

	assert.Equal(t, "Bob", customers[0].FirstName)
	require.NotNil(t, customers[0].Phone)
	assert.Equal(t, "+16136120707", *customers[0].Phone)
	assert.Equal(t, "", customers[1].FirstName)
	assert.Nil(t, customers[1].Phone)
	assert.Equal(t, "enabled", customers[1].State)
}

func TestClient_MissingCollectionKey(t *testing.T) {
	c, _ := newTestClient(t, map[string]stubResponse{
		"/admin/api/2023-10/products.json": {status: http.StatusOK, body: `{}`},
	})

	products, err := c.GetProducts(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestClient_ErrorCarriesStatus(t *testing.T) {
	c, _ := newTestClient(t, map[string]stubResponse{
		"/admin/api/2023-10/customers.json": {status: http.StatusUnauthorized, body: `{"errors":"[API] Invalid API key or access token"}`},
	})

	_, err := c.GetCustomers(context.Background(), 0)
	require.Error(t, err)

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Contains(t, err.Error(), "401 Unauthorized")
}

func TestClient_TestConnection(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		c, transport := newTestClient(t, map[string]stubResponse{
			"/admin/api/2023-10/shop.json": {status: http.StatusOK, body: `{"shop":{"id":1,"name":"Demo"}}`},
		})
		assert.True(t, c.TestConnection(context.Background()))
		assert.Equal(t, "/admin/api/2023-10/shop.json", transport.lastRequest().URL.Path)
	})

	t.Run("rejected", func(t *testing.T) {
		c, _ := newTestClient(t, map[string]stubResponse{
			"/admin/api/2023-10/shop.json": {status: http.StatusUnauthorized, body: `{"errors":"unauthorized"}`},
		})
		assert.False(t, c.TestConnection(context.Background()))
	})
}

func TestClientFactory_RequiresDomain(t *testing.T) {
	factory := NewClientFactory("2024-01", nil, zerolog.Nop())
	_, err := factory.NewClient("", "token")
	assert.Error(t, err)
}
