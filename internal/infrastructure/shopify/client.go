package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// DefaultAPIVersion is the Admin REST API version requested when none is configured
const DefaultAPIVersion = "2023-10"

// listOptions is encoded into the query string by go-shopify
type listOptions struct {
	Limit  int    `url:"limit,omitempty"`
	Status string `url:"status,omitempty"`
}

type client struct {
	shop       *goshopify.Client
	shopDomain string
	logger     zerolog.Logger
}

// ClientFactory builds store-scoped clients sharing one API version and transport
type ClientFactory struct {
	app        goshopify.App
	apiVersion string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClientFactory creates a factory. A nil httpClient keeps the go-shopify default.
func NewClientFactory(apiVersion string, httpClient *http.Client, logger zerolog.Logger) *ClientFactory {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &ClientFactory{
		apiVersion: apiVersion,
		httpClient: httpClient,
		logger:     logger,
	}
}

// NewClient creates a client bound to one shop and its plaintext access token
func (f *ClientFactory) NewClient(shopDomain, accessToken string) (ports.ShopifyClient, error) {
	if shopDomain == "" {
		return nil, fmt.Errorf("shop domain is required")
	}

	shop, err := goshopify.NewClient(f.app, shopDomain, accessToken, goshopify.WithVersion(f.apiVersion))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	if f.httpClient != nil {
		shop.Client = f.httpClient
	}

	return &client{
		shop:       shop,
		shopDomain: shopDomain,
		logger:     f.logger.With().Str("shop", shopDomain).Logger(),
	}, nil
}

func (c *client) TestConnection(ctx context.Context) bool {
	var resource struct {
		Shop map[string]any `json:"shop"`
	}
	if err := c.shop.Get(ctx, "shop.json", &resource, nil); err != nil {
		c.logger.Warn().Err(toUpstreamError(err)).Msg("Shopify connection test failed")
		return false
	}
	return true
}

func (c *client) GetProducts(ctx context.Context, limit int) ([]*domain.Product, error) {
	var resource struct {
		Products []productResource `json:"products"`
	}
	if err := c.shop.Get(ctx, "products.json", &resource, listOptions{Limit: pageLimit(limit)}); err != nil {
		return nil, fmt.Errorf("failed to get products: %w", toUpstreamError(err))
	}

	products := make([]*domain.Product, 0, len(resource.Products))
	for i := range resource.Products {
		products = append(products, resource.Products[i].toDomain())
	}

	c.logger.Debug().Int("count", len(products)).Msg("Fetched products")
	return products, nil
}

func (c *client) GetOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	var resource struct {
		Orders []orderResource `json:"orders"`
	}
	opts := listOptions{Limit: pageLimit(limit), Status: "any"}
	if err := c.shop.Get(ctx, "orders.json", &resource, opts); err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", toUpstreamError(err))
	}

	orders := make([]*domain.Order, 0, len(resource.Orders))
	for i := range resource.Orders {
		orders = append(orders, resource.Orders[i].toDomain())
	}

	c.logger.Debug().Int("count", len(orders)).Msg("Fetched orders")
	return orders, nil
}

func (c *client) GetCustomers(ctx context.Context, limit int) ([]*domain.Customer, error) {
	var resource struct {
		Customers []customerResource `json:"customers"`
	}
	if err := c.shop.Get(ctx, "customers.json", &resource, listOptions{Limit: pageLimit(limit)}); err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", toUpstreamError(err))
	}

	customers := make([]*domain.Customer, 0, len(resource.Customers))
	for i := range resource.Customers {
		customers = append(customers, resource.Customers[i].toDomain())
	}

	c.logger.Debug().Int("count", len(customers)).Msg("Fetched customers")
	return customers, nil
}

func pageLimit(limit int) int {
	if limit <= 0 {
		return ports.DefaultPageLimit
	}
	return limit
}

// toUpstreamError converts go-shopify response errors into a status-carrying UpstreamError
func toUpstreamError(err error) error {
	var statusErr interface{ GetStatus() int }
	if errors.As(err, &statusErr) && statusErr.GetStatus() != 0 {
		status := statusErr.GetStatus()
		return &domain.UpstreamError{StatusCode: status, Message: http.StatusText(status)}
	}
	return &domain.UpstreamError{Message: err.Error()}
}
