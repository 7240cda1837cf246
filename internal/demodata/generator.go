// Package demodata synthesizes Shopify-shaped products, orders and customers
// for stores that have no access token or whose API calls failed.
package demodata

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"storefront-analytics/internal/domain"

	"github.com/shopspring/decimal"
)

// Default batch sizes written by the sync fallback
const (
	FallbackProducts  = 15
	FallbackOrders    = 25
	FallbackCustomers = 20
)

const (
	productIDBase  = 1000
	orderIDBase    = 2000
	orderNumberMin = 1000
	customerIDBase = 3000
	orderWindow    = 30 * 24 * time.Hour

	customerStateEnabled  = "enabled"
	customerIDsPerCatalog = 10
)

var (
	productTypes        = []string{"Electronics", "Clothing", "Home & Garden", "Sports", "Books", "Beauty"}
	vendors             = []string{"Demo Corp", "Sample Inc", "Test Ltd", "Example Co", "Mock LLC"}
	productStatuses     = []string{"active", "draft"}
	financialStatuses   = []string{"paid", "pending", "refunded"}
	fulfillmentStatuses = []string{"fulfilled", "pending", "shipped"}
	firstNames          = []string{"John", "Jane", "Mike", "Sarah", "David", "Lisa", "Tom", "Emma", "Chris", "Anna"}
	lastNames           = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}
)

// Generator produces demo rows. External ids are fixed per index so repeated
// runs land on the same upsert keys.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator seeded from the runtime source
func NewGenerator() *Generator {
	return NewGeneratorWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()), time.Now)
}

// NewGeneratorWithSource creates a generator with an explicit random source and clock
func NewGeneratorWithSource(src rand.Source, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rand.New(src), now: now}
}

// Products returns count demo products for the store
func (g *Generator) Products(storeID string, count int) []*domain.Product {
	g.mu.Lock()
	defer g.mu.Unlock()

	products := make([]*domain.Product, 0, count)
	for i := 0; i < count; i++ {
		productType := productTypes[i%len(productTypes)]
		compareAt := g.money(150, 50)
		products = append(products, &domain.Product{
			StoreID:           storeID,
			ShopifyProductID:  int64(productIDBase + i),
			Title:             fmt.Sprintf("Demo Product %d", i+1),
			Handle:            fmt.Sprintf("demo-product-%d", i+1),
			Vendor:            vendors[i%len(vendors)],
			ProductType:       productType,
			Status:            productStatuses[i%len(productStatuses)],
			Tags:              []string{"demo", "sample", strings.ToLower(productType)},
			Price:             g.money(100, 10),
			CompareAtPrice:    &compareAt,
			InventoryQuantity: g.rng.IntN(100),
		})
	}
	return products
}

// Orders returns count demo orders processed within the last 30 days
func (g *Generator) Orders(storeID string, count int) []*domain.Order {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	orders := make([]*domain.Order, 0, count)
	for i := 0; i < count; i++ {
		fulfillment := fulfillmentStatuses[i%len(fulfillmentStatuses)]
		customerID := int64(customerIDBase + i%customerIDsPerCatalog)
		processedAt := now.Add(-time.Duration(g.rng.Float64() * float64(orderWindow))).UTC()
		orders = append(orders, &domain.Order{
			StoreID:           storeID,
			ShopifyOrderID:    int64(orderIDBase + i),
			OrderNumber:       fmt.Sprintf("#%d", orderNumberMin+i),
			Email:             fmt.Sprintf("customer%d@example.com", i+1),
			TotalPrice:        g.money(200, 20),
			SubtotalPrice:     g.money(180, 15),
			TaxPrice:          g.money(20, 2),
			ShippingPrice:     g.money(15, 5),
			FinancialStatus:   financialStatuses[i%len(financialStatuses)],
			FulfillmentStatus: &fulfillment,
			CustomerID:        &customerID,
			LineItemsCount:    g.rng.IntN(5) + 1,
			ProcessedAt:       &processedAt,
		})
	}
	return orders
}

// Customers returns count demo customers
func (g *Generator) Customers(storeID string, count int) []*domain.Customer {
	g.mu.Lock()
	defer g.mu.Unlock()

	customers := make([]*domain.Customer, 0, count)
	for i := 0; i < count; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[i%len(lastNames)]
		phone := fmt.Sprintf("+1%d", g.rng.Int64N(9_000_000_000)+1_000_000_000)
		customers = append(customers, &domain.Customer{
			StoreID:           storeID,
			ShopifyCustomerID: int64(customerIDBase + i),
			Email:             fmt.Sprintf("%s.%s@example.com", strings.ToLower(first), strings.ToLower(last)),
			FirstName:         first,
			LastName:          last,
			Phone:             &phone,
			TotalSpent:        g.money(1000, 50),
			OrdersCount:       g.rng.IntN(10) + 1,
			State:             customerStateEnabled,
		})
	}
	return customers
}

// money returns a two-decimal amount in [offset, offset+spread)
func (g *Generator) money(spread, offset float64) string {
	return decimal.NewFromFloat(g.rng.Float64()*spread + offset).StringFixed(2)
}
