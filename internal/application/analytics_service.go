package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// SummaryWindow is how far back paid orders feed the daily summaries
	SummaryWindow = 30 * 24 * time.Hour

	overviewRecentOrders = 10
	overviewSummaries    = 30
)

// AnalyticsService derives daily sales summaries and the dashboard overview
type AnalyticsService struct {
	repo   ports.Repository
	logger zerolog.Logger
	now    func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo ports.Repository, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// RefreshSummaries recomputes the per-day summaries of one store from its
// paid orders of the trailing window. Rows in the window whose date no longer
// has a paid order are removed; rows older than the window are left alone.
func (s *AnalyticsService) RefreshSummaries(ctx context.Context, storeID string) error {
	since := s.now().UTC().Add(-SummaryWindow)

	orders, err := s.repo.ListPaidOrders(ctx, []string{storeID}, since)
	if err != nil {
		return fmt.Errorf("failed to list paid orders: %w", err)
	}

	type bucket struct {
		total decimal.Decimal
		count int
	}
	buckets := make(map[string]*bucket)
	for _, order := range orders {
		if order.ProcessedAt == nil {
			continue
		}
		date := order.ProcessedAt.UTC().Format(domain.SummaryDateLayout)
		b, ok := buckets[date]
		if !ok {
			b = &bucket{}
			buckets[date] = b
		}
		b.total = b.total.Add(parseAmount(order.TotalPrice))
		b.count++
	}

	summaries := make([]*domain.AnalyticsSummary, 0, len(buckets))
	for date, b := range buckets {
		total := b.total.InexactFloat64()
		summaries = append(summaries, &domain.AnalyticsSummary{
			StoreID:           storeID,
			Date:              date,
			TotalSales:        total,
			TotalOrders:       b.count,
			AverageOrderValue: total / float64(b.count),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Date < summaries[j].Date })

	fromDate := since.Format(domain.SummaryDateLayout)
	if err := s.repo.ReplaceAnalyticsSummaries(ctx, storeID, fromDate, summaries); err != nil {
		return fmt.Errorf("failed to store analytics summaries: %w", err)
	}

	s.logger.Debug().
		Str("storeId", storeID).
		Int("days", len(summaries)).
		Int("orders", len(orders)).
		Msg("Refreshed analytics summaries")
	return nil
}

// Overview aggregates every active store of the caller
func (s *AnalyticsService) Overview(ctx context.Context, caller domain.Caller) (*domain.AnalyticsOverview, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	stores, err := s.repo.ListActiveStores(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active stores: %w", err)
	}

	overview := &domain.AnalyticsOverview{
		StoreCount:   len(stores),
		RecentOrders: []*domain.Order{},
		Summaries:    []*domain.AnalyticsSummary{},
	}
	if len(stores) == 0 {
		return overview, nil
	}
	storeIDs := storeIDsOf(stores)

	revenue, err := s.revenue(ctx, storeIDs)
	if err != nil {
		return nil, err
	}
	overview.TotalRevenue = revenue

	if overview.TotalOrders, err = s.repo.CountOrders(ctx, storeIDs); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if overview.TotalCustomers, err = s.repo.CountCustomers(ctx, storeIDs); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if overview.TotalProducts, err = s.repo.CountProducts(ctx, storeIDs); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if overview.TotalOrders > 0 {
		overview.AverageOrderValue = revenue / float64(overview.TotalOrders)
	}

	if overview.RecentOrders, err = s.repo.RecentOrders(ctx, storeIDs, overviewRecentOrders); err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	if overview.Summaries, err = s.repo.ListAnalyticsSummaries(ctx, storeIDs, overviewSummaries); err != nil {
		return nil, fmt.Errorf("failed to list analytics summaries: %w", err)
	}

	return overview, nil
}

// revenue sums the totals of every paid order of the stores
func (s *AnalyticsService) revenue(ctx context.Context, storeIDs []string) (float64, error) {
	orders, err := s.repo.ListPaidOrders(ctx, storeIDs, time.Time{})
	if err != nil {
		return 0, fmt.Errorf("failed to list paid orders: %w", err)
	}
	return sumTotals(orders).InexactFloat64(), nil
}

// sumTotals adds order totals in decimal
func sumTotals(orders []*domain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, order := range orders {
		total = total.Add(parseAmount(order.TotalPrice))
	}
	return total
}

// parseAmount reads a decimal money string; anything unparseable counts as zero
func parseAmount(raw string) decimal.Decimal {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

func storeIDsOf(stores []*domain.Store) []string {
	ids := make([]string, len(stores))
	for i, store := range stores {
		ids[i] = store.ID
	}
	return ids
}
