package ports

import (
	"context"
	"time"

	"storefront-analytics/internal/domain"
)

// StoreRepository persists stores. Every read is scoped to the owning user.
// Lookups return (nil, nil) when nothing matches.
type StoreRepository interface {
	CreateStore(ctx context.Context, store *domain.Store) error
	GetStore(ctx context.Context, userID, storeID string) (*domain.Store, error)
	GetStoreByDomain(ctx context.Context, shopDomain string) (*domain.Store, error)
	ListStores(ctx context.Context, userID string) ([]*domain.Store, error)
	ListActiveStores(ctx context.Context, userID string) ([]*domain.Store, error)
}

// CatalogRepository persists synced store data.
//
// Upsert contract: each Upsert* call writes the whole batch as one
// insert-or-update keyed on (store_id, shopify_<entity>_id), so replaying
// the same source data never duplicates rows.
type CatalogRepository interface {
	UpsertProducts(ctx context.Context, products []*domain.Product) error
	UpsertOrders(ctx context.Context, orders []*domain.Order) error
	UpsertCustomers(ctx context.Context, customers []*domain.Customer) error

	CountProducts(ctx context.Context, storeIDs []string) (int64, error)
	CountOrders(ctx context.Context, storeIDs []string) (int64, error)
	CountCustomers(ctx context.Context, storeIDs []string) (int64, error)

	RecentProducts(ctx context.Context, storeIDs []string, limit int) ([]*domain.Product, error)
	RecentOrders(ctx context.Context, storeIDs []string, limit int) ([]*domain.Order, error)
	RecentCustomers(ctx context.Context, storeIDs []string, limit int) ([]*domain.Customer, error)

	// ListPaidOrders returns paid orders of the stores processed at or after since.
	// A zero since means no lower bound.
	ListPaidOrders(ctx context.Context, storeIDs []string, since time.Time) ([]*domain.Order, error)
}

// AnalyticsRepository persists daily summaries keyed on (store_id, date)
type AnalyticsRepository interface {
	UpsertAnalyticsSummaries(ctx context.Context, summaries []*domain.AnalyticsSummary) error
	// ReplaceAnalyticsSummaries makes the store's rows dated on or after fromDate
	// exactly the given set: rows of other dates in that range are deleted and
	// the set is upserted. An empty set clears the range.
	ReplaceAnalyticsSummaries(ctx context.Context, storeID, fromDate string, summaries []*domain.AnalyticsSummary) error
	ListAnalyticsSummaries(ctx context.Context, storeIDs []string, limit int) ([]*domain.AnalyticsSummary, error)
}

// Repository is the full persistence surface one storage backend provides
type Repository interface {
	StoreRepository
	CatalogRepository
	AnalyticsRepository
}
