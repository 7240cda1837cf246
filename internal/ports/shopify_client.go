package ports

import (
	"context"

	"storefront-analytics/internal/domain"
)

// DefaultPageLimit is the page size requested from Shopify when none is given
const DefaultPageLimit = 250

// ShopifyClient talks to the Admin REST API of one store with one access token
type ShopifyClient interface {
	// TestConnection reports whether the shop endpoint answers successfully
	TestConnection(ctx context.Context) bool

	GetProducts(ctx context.Context, limit int) ([]*domain.Product, error)
	GetOrders(ctx context.Context, limit int) ([]*domain.Order, error)
	GetCustomers(ctx context.Context, limit int) ([]*domain.Customer, error)
}

// ShopifyClientFactory builds a client bound to a shop domain and plaintext token
type ShopifyClientFactory interface {
	NewClient(shopDomain, accessToken string) (ShopifyClient, error)
}
