package repository

import (
	"context"
	"testing"
	"time"

	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) ports.Repository {
	t.Helper()
	db, err := OpenGorm("sqlite", ":memory:")
	require.NoError(t, err)
	return NewGormRepository(db)
}

func createTestStore(t *testing.T, repo ports.Repository, userID, domainName string, active bool, createdAt time.Time) *domain.Store {
	t.Helper()
	store := &domain.Store{
		UserID:       userID,
		ShopDomain:   domainName,
		StoreName:    domainName,
		ContactEmail: "owner@example.com",
		IsActive:     active,
		CreatedAt:    createdAt,
	}
	require.NoError(t, repo.CreateStore(context.Background(), store))
	return store
}

func strPtr(s string) *string { return &s }

func TestGormRepository_Stores(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := createTestStore(t, repo, "user-1", "first.myshopify.com", true, base)
	second := createTestStore(t, repo, "user-1", "second.myshopify.com", false, base.Add(time.Hour))
	createTestStore(t, repo, "user-2", "other.myshopify.com", true, base)

	t.Run("scopes lookups to the owner", func(t *testing.T) {
		found, err := repo.GetStore(ctx, "user-1", first.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "first.myshopify.com", found.ShopDomain)

		foreign, err := repo.GetStore(ctx, "user-2", first.ID)
		require.NoError(t, err)
		assert.Nil(t, foreign)

		missing, err := repo.GetStore(ctx, "user-1", "does-not-exist")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("lists newest first", func(t *testing.T) {
		stores, err := repo.ListStores(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, stores, 2)
		assert.Equal(t, second.ID, stores[0].ID)
		assert.Equal(t, first.ID, stores[1].ID)
	})

	t.Run("lists only active stores", func(t *testing.T) {
		stores, err := repo.ListActiveStores(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, stores, 1)
		assert.Equal(t, first.ID, stores[0].ID)
	})

	t.Run("rejects a duplicate shop domain", func(t *testing.T) {
		err := repo.CreateStore(ctx, &domain.Store{UserID: "user-3", ShopDomain: "first.myshopify.com", StoreName: "dup"})
		assert.ErrorIs(t, err, domain.ErrStoreExists)
	})

	t.Run("stores and returns the sealed token", func(t *testing.T) {
		store := &domain.Store{UserID: "user-1", ShopDomain: "token.myshopify.com", StoreName: "t", AccessToken: "sealed", IsActive: true}
		require.NoError(t, repo.CreateStore(ctx, store))

		found, err := repo.GetStoreByDomain(ctx, "token.myshopify.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "sealed", found.AccessToken)
		assert.True(t, found.HasCredential())
	})
}

func TestGormRepository_UpsertProductsIsIdempotent(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	store := createTestStore(t, repo, "user-1", "shop.myshopify.com", true, time.Time{})

	batch := func(title string) []*domain.Product {
		return []*domain.Product{
			{StoreID: store.ID, ShopifyProductID: 1, Title: title, Price: "10.00", Tags: []string{"a", "b"}},
			{StoreID: store.ID, ShopifyProductID: 2, Title: title, Price: "20.00", CompareAtPrice: strPtr("25.00")},
		}
	}

	require.NoError(t, repo.UpsertProducts(ctx, batch("first")))
	require.NoError(t, repo.UpsertProducts(ctx, batch("second")))

	count, err := repo.CountProducts(ctx, []string{store.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	products, err := repo.RecentProducts(ctx, []string{store.ID}, 10)
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.Equal(t, "second", p.Title)
	}

	require.NoError(t, repo.UpsertProducts(ctx, nil))
}

func TestGormRepository_UpsertIsScopedByStore(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	a := createTestStore(t, repo, "user-1", "a.myshopify.com", true, time.Time{})
	b := createTestStore(t, repo, "user-1", "b.myshopify.com", true, time.Time{})

	require.NoError(t, repo.UpsertCustomers(ctx, []*domain.Customer{
		{StoreID: a.ID, ShopifyCustomerID: 3000, Email: "x@example.com", TotalSpent: "1.00"},
	}))
	require.NoError(t, repo.UpsertCustomers(ctx, []*domain.Customer{
		{StoreID: b.ID, ShopifyCustomerID: 3000, Email: "y@example.com", TotalSpent: "2.00"},
	}))

	countA, err := repo.CountCustomers(ctx, []string{a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countA)

	countBoth, err := repo.CountCustomers(ctx, []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), countBoth)

	none, err := repo.CountCustomers(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestGormRepository_ListPaidOrders(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	store := createTestStore(t, repo, "user-1", "shop.myshopify.com", true, time.Time{})

	now := time.Now().UTC()
	recent := now.Add(-24 * time.Hour)
	old := now.Add(-40 * 24 * time.Hour)

	require.NoError(t, repo.UpsertOrders(ctx, []*domain.Order{
		{StoreID: store.ID, ShopifyOrderID: 1, TotalPrice: "10.00", FinancialStatus: "paid", ProcessedAt: &recent},
		{StoreID: store.ID, ShopifyOrderID: 2, TotalPrice: "20.00", FinancialStatus: "pending", ProcessedAt: &recent},
		{StoreID: store.ID, ShopifyOrderID: 3, TotalPrice: "30.00", FinancialStatus: "paid", ProcessedAt: &old},
	}))

	windowed, err := repo.ListPaidOrders(ctx, []string{store.ID}, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, int64(1), windowed[0].ShopifyOrderID)

	all, err := repo.ListPaidOrders(ctx, []string{store.ID}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	recentOrders, err := repo.RecentOrders(ctx, []string{store.ID}, 2)
	require.NoError(t, err)
	assert.Len(t, recentOrders, 2)
}

func TestGormRepository_AnalyticsSummaries(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	store := createTestStore(t, repo, "user-1", "shop.myshopify.com", true, time.Time{})

	require.NoError(t, repo.UpsertAnalyticsSummaries(ctx, []*domain.AnalyticsSummary{
		{StoreID: store.ID, Date: "2026-03-01", TotalSales: 10, TotalOrders: 1, AverageOrderValue: 10},
		{StoreID: store.ID, Date: "2026-03-02", TotalSales: 30, TotalOrders: 2, AverageOrderValue: 15},
	}))
	require.NoError(t, repo.UpsertAnalyticsSummaries(ctx, []*domain.AnalyticsSummary{
		{StoreID: store.ID, Date: "2026-03-02", TotalSales: 60, TotalOrders: 3, AverageOrderValue: 20},
	}))

	summaries, err := repo.ListAnalyticsSummaries(ctx, []string{store.ID}, 30)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "2026-03-02", summaries[0].Date)
	assert.Equal(t, 60.0, summaries[0].TotalSales)
	assert.Equal(t, 3, summaries[0].TotalOrders)
	assert.Equal(t, "2026-03-01", summaries[1].Date)
}

func TestGormRepository_ReplaceAnalyticsSummaries(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	store := createTestStore(t, repo, "user-1", "shop.myshopify.com", true, time.Time{})
	other := createTestStore(t, repo, "user-1", "other.myshopify.com", true, time.Time{})

	require.NoError(t, repo.UpsertAnalyticsSummaries(ctx, []*domain.AnalyticsSummary{
		{StoreID: store.ID, Date: "2026-01-10", TotalSales: 5, TotalOrders: 1, AverageOrderValue: 5},
		{StoreID: store.ID, Date: "2026-03-01", TotalSales: 10, TotalOrders: 1, AverageOrderValue: 10},
		{StoreID: store.ID, Date: "2026-03-02", TotalSales: 30, TotalOrders: 2, AverageOrderValue: 15},
		{StoreID: other.ID, Date: "2026-03-01", TotalSales: 7, TotalOrders: 1, AverageOrderValue: 7},
	}))

	require.NoError(t, repo.ReplaceAnalyticsSummaries(ctx, store.ID, "2026-02-13", []*domain.AnalyticsSummary{
		{StoreID: store.ID, Date: "2026-03-02", TotalSales: 40, TotalOrders: 2, AverageOrderValue: 20},
	}))

	summaries, err := repo.ListAnalyticsSummaries(ctx, []string{store.ID}, 30)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "2026-03-02", summaries[0].Date)
	assert.Equal(t, 40.0, summaries[0].TotalSales)
	assert.Equal(t, "2026-01-10", summaries[1].Date, "rows before fromDate survive")

	untouched, err := repo.ListAnalyticsSummaries(ctx, []string{other.ID}, 30)
	require.NoError(t, err)
	assert.Len(t, untouched, 1, "other stores are not touched")

	require.NoError(t, repo.ReplaceAnalyticsSummaries(ctx, store.ID, "2026-02-13", nil))
	summaries, err = repo.ListAnalyticsSummaries(ctx, []string{store.ID}, 30)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "2026-01-10", summaries[0].Date)
}
