package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-analytics/internal/demodata"
	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/ports"

	"github.com/rs/zerolog"
)

// Sync modes reported to the recorder
const (
	SyncModeSingle = "single"
	SyncModeBulk   = "bulk"
)

// Messages returned by the sync endpoints
const (
	SyncCompletedMessage  = "Data sync completed"
	NoActiveStoresMessage = "No active stores found"
	InternalErrorMessage  = "Internal server error"
)

const shopifyErrorPrefix = "Shopify API error: "

// ErrNoSyncStatus means the store has not been synced within the status TTL
var ErrNoSyncStatus = errors.New("no sync recorded for store")

// SyncOptions tunes the sync pipeline
type SyncOptions struct {
	PageLimit int
	StatusTTL time.Duration
}

// SyncService pulls store data from Shopify, or synthesizes it, and refreshes analytics
type SyncService struct {
	repo      ports.Repository
	tokens    ports.TokenVault
	factory   ports.ShopifyClientFactory
	generator *demodata.Generator
	analytics *AnalyticsService
	statuses  ports.SyncStatusStore
	events    ports.SyncEventPublisher
	recorder  ports.SyncRecorder
	logger    zerolog.Logger
	opts      SyncOptions
	now       func() time.Time
}

// NewSyncService creates a new sync service. statuses, events and recorder may be nil.
func NewSyncService(
	repo ports.Repository,
	tokens ports.TokenVault,
	factory ports.ShopifyClientFactory,
	generator *demodata.Generator,
	analytics *AnalyticsService,
	statuses ports.SyncStatusStore,
	events ports.SyncEventPublisher,
	recorder ports.SyncRecorder,
	logger zerolog.Logger,
	opts SyncOptions,
) *SyncService {
	if opts.PageLimit <= 0 {
		opts.PageLimit = ports.DefaultPageLimit
	}
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = 24 * time.Hour
	}
	return &SyncService{
		repo:      repo,
		tokens:    tokens,
		factory:   factory,
		generator: generator,
		analytics: analytics,
		statuses:  statuses,
		events:    events,
		recorder:  recorder,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// SyncStore syncs one store owned by the caller
func (s *SyncService) SyncStore(ctx context.Context, caller domain.Caller, storeID string) (*domain.SyncResult, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	store, err := s.repo.GetStore(ctx, caller.UserID, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}

	return s.sync(ctx, caller, store, SyncModeSingle)
}

// SyncAll syncs every active store of the caller one after another.
// A failing store is reported in its result and does not stop the rest.
func (s *SyncService) SyncAll(ctx context.Context, caller domain.Caller) ([]domain.StoreSyncResult, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	stores, err := s.repo.ListActiveStores(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active stores: %w", err)
	}

	results := make([]domain.StoreSyncResult, 0, len(stores))
	for _, store := range stores {
		entry := domain.StoreSyncResult{
			StoreID:   store.ID,
			StoreName: store.StoreName,
		}

		result, err := s.sync(ctx, caller, store, SyncModeBulk)
		if err != nil {
			entry.Error = InternalErrorMessage
			entry.Details = err.Error()
		} else {
			entry.Success = true
			entry.Message = SyncCompletedMessage
			entry.Results = result
		}
		results = append(results, entry)
	}

	s.logger.Info().
		Str("userId", caller.UserID).
		Int("stores", len(results)).
		Msg("Bulk sync finished")
	return results, nil
}

func (s *SyncService) sync(ctx context.Context, caller domain.Caller, store *domain.Store, mode string) (*domain.SyncResult, error) {
	start := s.now()
	logger := s.logger.With().Str("storeId", store.ID).Str("shop", store.ShopDomain).Logger()

	result, err := s.runPipeline(ctx, store, logger)

	if s.recorder != nil {
		s.recorder.ObserveSync(mode, err == nil, s.now().Sub(start))
	}
	s.publish(caller, store, result, err)

	if err != nil {
		logger.Error().Err(err).Msg("Store sync failed")
		return nil, err
	}

	s.saveStatus(ctx, store, result, logger)

	logger.Info().
		Int("products", result.Products).
		Int("orders", result.Orders).
		Int("customers", result.Customers).
		Int("errors", len(result.Errors)).
		Dur("duration", s.now().Sub(start)).
		Msg("Store sync completed")
	return result, nil
}

func (s *SyncService) runPipeline(ctx context.Context, store *domain.Store, logger zerolog.Logger) (*domain.SyncResult, error) {
	result := &domain.SyncResult{Errors: []string{}}

	fallback := !store.HasCredential()
	if store.HasCredential() {
		if err := s.syncFromShopify(ctx, store, result); err != nil {
			logger.Warn().Err(err).Msg("Shopify sync failed, falling back to demo data")
			result.Errors = append(result.Errors, shopifyErrorPrefix+err.Error())
			fallback = true
		}
	}

	if fallback {
		if err := s.syncDemoData(ctx, store.ID, result); err != nil {
			return nil, err
		}
	}

	if err := s.analytics.RefreshSummaries(ctx, store.ID); err != nil {
		return nil, fmt.Errorf("failed to update analytics summary: %w", err)
	}
	return result, nil
}

// syncFromShopify fetches and upserts products, orders and customers in that order
func (s *SyncService) syncFromShopify(ctx context.Context, store *domain.Store, result *domain.SyncResult) error {
	token, err := s.tokens.DecryptToken(store.AccessToken)
	if err != nil {
		return err
	}

	client, err := s.factory.NewClient(store.ShopDomain, token)
	if err != nil {
		return err
	}

	if !client.TestConnection(ctx) {
		s.upstreamError("test_connection")
		return &domain.UpstreamError{Message: "failed to connect to Shopify API"}
	}

	products, err := client.GetProducts(ctx, s.opts.PageLimit)
	if err != nil {
		s.upstreamError("get_products")
		return err
	}
	for _, p := range products {
		p.StoreID = store.ID
	}
	if err := s.repo.UpsertProducts(ctx, products); err != nil {
		return fmt.Errorf("failed to upsert products: %w", err)
	}
	result.Products += len(products)
	s.addRecords("products", domain.SyncSourceShopify, len(products))

	orders, err := client.GetOrders(ctx, s.opts.PageLimit)
	if err != nil {
		s.upstreamError("get_orders")
		return err
	}
	for _, o := range orders {
		o.StoreID = store.ID
	}
	if err := s.repo.UpsertOrders(ctx, orders); err != nil {
		return fmt.Errorf("failed to upsert orders: %w", err)
	}
	result.Orders += len(orders)
	s.addRecords("orders", domain.SyncSourceShopify, len(orders))

	customers, err := client.GetCustomers(ctx, s.opts.PageLimit)
	if err != nil {
		s.upstreamError("get_customers")
		return err
	}
	for _, c := range customers {
		c.StoreID = store.ID
	}
	if err := s.repo.UpsertCustomers(ctx, customers); err != nil {
		return fmt.Errorf("failed to upsert customers: %w", err)
	}
	result.Customers += len(customers)
	s.addRecords("customers", domain.SyncSourceShopify, len(customers))

	return nil
}

func (s *SyncService) syncDemoData(ctx context.Context, storeID string, result *domain.SyncResult) error {
	products := s.generator.Products(storeID, demodata.FallbackProducts)
	if err := s.repo.UpsertProducts(ctx, products); err != nil {
		return fmt.Errorf("failed to upsert demo products: %w", err)
	}
	result.Products += len(products)
	s.addRecords("products", domain.SyncSourceDemo, len(products))

	orders := s.generator.Orders(storeID, demodata.FallbackOrders)
	if err := s.repo.UpsertOrders(ctx, orders); err != nil {
		return fmt.Errorf("failed to upsert demo orders: %w", err)
	}
	result.Orders += len(orders)
	s.addRecords("orders", domain.SyncSourceDemo, len(orders))

	customers := s.generator.Customers(storeID, demodata.FallbackCustomers)
	if err := s.repo.UpsertCustomers(ctx, customers); err != nil {
		return fmt.Errorf("failed to upsert demo customers: %w", err)
	}
	result.Customers += len(customers)
	s.addRecords("customers", domain.SyncSourceDemo, len(customers))

	return nil
}

// LastStatus returns the last recorded sync of a store owned by the caller
func (s *SyncService) LastStatus(ctx context.Context, caller domain.Caller, storeID string) (*domain.SyncStatus, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	store, err := s.repo.GetStore(ctx, caller.UserID, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}
	if s.statuses == nil {
		return nil, ErrNoSyncStatus
	}

	status, err := s.statuses.GetStatus(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}
	if status == nil {
		return nil, ErrNoSyncStatus
	}
	return status, nil
}

func (s *SyncService) saveStatus(ctx context.Context, store *domain.Store, result *domain.SyncResult, logger zerolog.Logger) {
	if s.statuses == nil {
		return
	}
	status := &domain.SyncStatus{
		StoreID:  store.ID,
		SyncedAt: s.now().UTC(),
		Results:  result,
	}
	// A lost status entry must not fail a sync that already wrote its rows
	if err := s.statuses.SaveStatus(ctx, status, s.opts.StatusTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to save sync status")
	}
}

func (s *SyncService) publish(caller domain.Caller, store *domain.Store, result *domain.SyncResult, err error) {
	if s.events == nil {
		return
	}
	event := &domain.SyncEvent{
		UserID:     caller.UserID,
		StoreID:    store.ID,
		StoreName:  store.StoreName,
		Success:    err == nil,
		Results:    result,
		OccurredAt: s.now().UTC(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	s.events.Publish(event)
}

func (s *SyncService) addRecords(entity string, source domain.SyncSource, count int) {
	if s.recorder != nil {
		s.recorder.AddRecords(entity, source, count)
	}
}

func (s *SyncService) upstreamError(operation string) {
	if s.recorder != nil {
		s.recorder.IncUpstreamError(operation)
	}
}
