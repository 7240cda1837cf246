package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/infrastructure/repository/entity"
	"storefront-analytics/internal/ports"

	postgrest "github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

const (
	tableStores    = "stores"
	tableProducts  = "products"
	tableOrders    = "orders"
	tableCustomers = "customers"
	tableSummary   = "analytics_summary"

	postgresUniqueViolation = "(23505)"
)

// SupabaseRepository implements Repository over the Supabase REST (PostgREST) API.
// The client library takes no context, so ctx is only checked before each request.
type SupabaseRepository struct {
	client *supabase.Client
}

// NewSupabaseRepository creates a repository on a service-role Supabase client
func NewSupabaseRepository(client *supabase.Client) ports.Repository {
	return &SupabaseRepository{client: client}
}

// CreateStore inserts a new store and reads back the generated id and timestamps
func (r *SupabaseRepository) CreateStore(ctx context.Context, store *domain.Store) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := entity.StoreModelFromDomain(store)
	model.CreatedAt = nil
	model.UpdatedAt = nil

	var created []entity.StoreModel
	_, err := r.client.From(tableStores).
		Insert(model, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		if strings.Contains(err.Error(), postgresUniqueViolation) {
			return domain.ErrStoreExists
		}
		return fmt.Errorf("failed to create store: %w", err)
	}
	if len(created) == 0 {
		return fmt.Errorf("failed to create store: empty response")
	}

	saved := created[0].ToDomain()
	store.ID = saved.ID
	store.CreatedAt = saved.CreatedAt
	store.UpdatedAt = saved.UpdatedAt
	return nil
}

// GetStore retrieves a store owned by userID
func (r *SupabaseRepository) GetStore(ctx context.Context, userID, storeID string) (*domain.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []entity.StoreModel
	_, err := r.client.From(tableStores).
		Select("*", "", false).
		Eq("id", storeID).
		Eq("user_id", userID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].ToDomain(), nil
}

// GetStoreByDomain retrieves a store by shop domain
func (r *SupabaseRepository) GetStoreByDomain(ctx context.Context, shopDomain string) (*domain.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []entity.StoreModel
	_, err := r.client.From(tableStores).
		Select("*", "", false).
		Eq("shop_domain", shopDomain).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get store by domain: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].ToDomain(), nil
}

// ListStores lists every store of userID, newest first
func (r *SupabaseRepository) ListStores(ctx context.Context, userID string) ([]*domain.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []entity.StoreModel
	_, err := r.client.From(tableStores).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return storesToDomain(rows), nil
}

// ListActiveStores lists the active stores of userID, oldest first
func (r *SupabaseRepository) ListActiveStores(ctx context.Context, userID string) ([]*domain.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []entity.StoreModel
	_, err := r.client.From(tableStores).
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("is_active", "true").
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list active stores: %w", err)
	}
	return storesToDomain(rows), nil
}

// UpsertProducts writes the batch keyed on (store_id, shopify_product_id)
func (r *SupabaseRepository) UpsertProducts(ctx context.Context, products []*domain.Product) error {
	now := time.Now().UTC()
	rows := make([]*entity.ProductModel, 0, len(products))
	for _, p := range products {
		m := entity.ProductModelFromDomain(p)
		m.ID, m.CreatedAt, m.UpdatedAt = "", nil, &now
		rows = append(rows, m)
	}
	if err := r.upsert(ctx, tableProducts, "store_id,shopify_product_id", rows, len(rows)); err != nil {
		return fmt.Errorf("failed to upsert products: %w", err)
	}
	return nil
}

// UpsertOrders writes the batch keyed on (store_id, shopify_order_id)
func (r *SupabaseRepository) UpsertOrders(ctx context.Context, orders []*domain.Order) error {
	now := time.Now().UTC()
	rows := make([]*entity.OrderModel, 0, len(orders))
	for _, o := range orders {
		m := entity.OrderModelFromDomain(o)
		m.ID, m.CreatedAt, m.UpdatedAt = "", nil, &now
		rows = append(rows, m)
	}
	if err := r.upsert(ctx, tableOrders, "store_id,shopify_order_id", rows, len(rows)); err != nil {
		return fmt.Errorf("failed to upsert orders: %w", err)
	}
	return nil
}

// UpsertCustomers writes the batch keyed on (store_id, shopify_customer_id)
func (r *SupabaseRepository) UpsertCustomers(ctx context.Context, customers []*domain.Customer) error {
	now := time.Now().UTC()
	rows := make([]*entity.CustomerModel, 0, len(customers))
	for _, c := range customers {
		m := entity.CustomerModelFromDomain(c)
		m.ID, m.CreatedAt, m.UpdatedAt = "", nil, &now
		rows = append(rows, m)
	}
	if err := r.upsert(ctx, tableCustomers, "store_id,shopify_customer_id", rows, len(rows)); err != nil {
		return fmt.Errorf("failed to upsert customers: %w", err)
	}
	return nil
}

// UpsertAnalyticsSummaries writes the batch keyed on (store_id, date)
func (r *SupabaseRepository) UpsertAnalyticsSummaries(ctx context.Context, summaries []*domain.AnalyticsSummary) error {
	now := time.Now().UTC()
	rows := make([]*entity.AnalyticsSummaryModel, 0, len(summaries))
	for _, s := range summaries {
		m := entity.AnalyticsSummaryModelFromDomain(s)
		m.ID, m.CreatedAt, m.UpdatedAt = "", nil, &now
		rows = append(rows, m)
	}
	if err := r.upsert(ctx, tableSummary, "store_id,date", rows, len(rows)); err != nil {
		return fmt.Errorf("failed to upsert analytics summaries: %w", err)
	}
	return nil
}

// ReplaceAnalyticsSummaries deletes the store's stale summaries from fromDate on,
// then upserts the fresh set. PostgREST runs each request in its own transaction.
func (r *SupabaseRepository) ReplaceAnalyticsSummaries(ctx context.Context, storeID, fromDate string, summaries []*domain.AnalyticsSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var existing []entity.AnalyticsSummaryModel
	_, err := r.client.From(tableSummary).
		Select("date", "", false).
		Eq("store_id", storeID).
		Gte("date", fromDate).
		ExecuteTo(&existing)
	if err != nil {
		return fmt.Errorf("failed to list analytics summary dates: %w", err)
	}

	fresh := make(map[string]struct{}, len(summaries))
	for _, s := range summaries {
		fresh[s.Date] = struct{}{}
	}
	stale := make([]string, 0, len(existing))
	for _, row := range existing {
		if _, ok := fresh[row.Date]; !ok {
			stale = append(stale, row.Date)
		}
	}

	if len(stale) > 0 {
		_, _, err := r.client.From(tableSummary).
			Delete("minimal", "").
			Eq("store_id", storeID).
			In("date", stale).
			Execute()
		if err != nil {
			return fmt.Errorf("failed to delete stale analytics summaries: %w", err)
		}
	}

	return r.UpsertAnalyticsSummaries(ctx, summaries)
}

// upsert posts the whole batch as one merge-duplicates insert
func (r *SupabaseRepository) upsert(ctx context.Context, table, onConflict string, rows any, n int) error {
	if n == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := r.client.From(table).Upsert(rows, onConflict, "minimal", "").Execute()
	return err
}

func (r *SupabaseRepository) CountProducts(ctx context.Context, storeIDs []string) (int64, error) {
	return r.count(ctx, tableProducts, storeIDs)
}

func (r *SupabaseRepository) CountOrders(ctx context.Context, storeIDs []string) (int64, error) {
	return r.count(ctx, tableOrders, storeIDs)
}

func (r *SupabaseRepository) CountCustomers(ctx context.Context, storeIDs []string) (int64, error) {
	return r.count(ctx, tableCustomers, storeIDs)
}

func (r *SupabaseRepository) count(ctx context.Context, table string, storeIDs []string) (int64, error) {
	if len(storeIDs) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_, n, err := r.client.From(table).
		Select("id", "exact", true).
		In("store_id", storeIDs).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// RecentProducts returns the newest products of the stores
func (r *SupabaseRepository) RecentProducts(ctx context.Context, storeIDs []string, limit int) ([]*domain.Product, error) {
	var rows []entity.ProductModel
	if err := r.recent(ctx, tableProducts, "created_at", storeIDs, limit, &rows); err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(rows))
	for i := range rows {
		products = append(products, rows[i].ToDomain())
	}
	return products, nil
}

// RecentOrders returns the most recently processed orders of the stores
func (r *SupabaseRepository) RecentOrders(ctx context.Context, storeIDs []string, limit int) ([]*domain.Order, error) {
	var rows []entity.OrderModel
	if err := r.recent(ctx, tableOrders, "processed_at", storeIDs, limit, &rows); err != nil {
		return nil, err
	}
	return ordersToDomain(rows), nil
}

// RecentCustomers returns the newest customers of the stores
func (r *SupabaseRepository) RecentCustomers(ctx context.Context, storeIDs []string, limit int) ([]*domain.Customer, error) {
	var rows []entity.CustomerModel
	if err := r.recent(ctx, tableCustomers, "created_at", storeIDs, limit, &rows); err != nil {
		return nil, err
	}
	customers := make([]*domain.Customer, 0, len(rows))
	for i := range rows {
		customers = append(customers, rows[i].ToDomain())
	}
	return customers, nil
}

// ListAnalyticsSummaries returns the latest summary rows of the stores
func (r *SupabaseRepository) ListAnalyticsSummaries(ctx context.Context, storeIDs []string, limit int) ([]*domain.AnalyticsSummary, error) {
	var rows []entity.AnalyticsSummaryModel
	if err := r.recent(ctx, tableSummary, "date", storeIDs, limit, &rows); err != nil {
		return nil, err
	}
	summaries := make([]*domain.AnalyticsSummary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, rows[i].ToDomain())
	}
	return summaries, nil
}

func (r *SupabaseRepository) recent(ctx context.Context, table, orderBy string, storeIDs []string, limit int, dest any) error {
	if len(storeIDs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.client.From(table).
		Select("*", "", false).
		In("store_id", storeIDs).
		Order(orderBy, &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(dest)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", table, err)
	}
	return nil
}

// ListPaidOrders returns paid orders of the stores processed at or after since
func (r *SupabaseRepository) ListPaidOrders(ctx context.Context, storeIDs []string, since time.Time) ([]*domain.Order, error) {
	if len(storeIDs) == 0 {
		return []*domain.Order{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := r.client.From(tableOrders).
		Select("*", "", false).
		In("store_id", storeIDs).
		Eq("financial_status", domain.FinancialStatusPaid)
	if !since.IsZero() {
		query = query.Gte("processed_at", since.UTC().Format(time.RFC3339))
	}

	var rows []entity.OrderModel
	if _, err := query.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("failed to list paid orders: %w", err)
	}
	return ordersToDomain(rows), nil
}
