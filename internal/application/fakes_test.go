package application

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront-analytics/internal/demodata"
	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/infrastructure/cache"
	"storefront-analytics/internal/infrastructure/repository"
	"storefront-analytics/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeClient struct {
	connected    bool
	products     []*domain.Product
	orders       []*domain.Order
	customers    []*domain.Customer
	productsErr  error
	ordersErr    error
	customersErr error
	limits       []int
}

func (c *fakeClient) TestConnection(ctx context.Context) bool { return c.connected }

func (c *fakeClient) GetProducts(ctx context.Context, limit int) ([]*domain.Product, error) {
	c.limits = append(c.limits, limit)
	return c.products, c.productsErr
}

func (c *fakeClient) GetOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	c.limits = append(c.limits, limit)
	return c.orders, c.ordersErr
}

func (c *fakeClient) GetCustomers(ctx context.Context, limit int) ([]*domain.Customer, error) {
	c.limits = append(c.limits, limit)
	return c.customers, c.customersErr
}

// fakeFactory hands out clients by shop domain and records the tokens it was given
type fakeFactory struct {
	clients map[string]*fakeClient
	tokens  []string
}

func (f *fakeFactory) NewClient(shopDomain, accessToken string) (ports.ShopifyClient, error) {
	f.tokens = append(f.tokens, accessToken)
	client, ok := f.clients[shopDomain]
	if !ok {
		return nil, errors.New("no client for " + shopDomain)
	}
	return client, nil
}

// fakeVault seals tokens with a visible prefix
type fakeVault struct {
	valid bool
}

const sealedPrefix = "sealed:"

func (v *fakeVault) EncryptToken(token string) (string, error) {
	return sealedPrefix + token, nil
}

func (v *fakeVault) DecryptToken(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return "", errors.New("failed to decrypt access token: bad ciphertext")
	}
	return strings.TrimPrefix(sealed, sealedPrefix), nil
}

func (v *fakeVault) ValidateToken(ctx context.Context, shopDomain, token string) (bool, error) {
	return v.valid, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*domain.SyncEvent
}

func (p *recordingPublisher) Publish(event *domain.SyncEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

type recordingRecorder struct {
	runs           map[string]int
	records        map[string]int
	upstreamErrors map[string]int
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{
		runs:           map[string]int{},
		records:        map[string]int{},
		upstreamErrors: map[string]int{},
	}
}

func (r *recordingRecorder) ObserveSync(mode string, success bool, duration time.Duration) {
	if success {
		r.runs[mode+"/success"]++
	} else {
		r.runs[mode+"/failure"]++
	}
}

func (r *recordingRecorder) AddRecords(entity string, source domain.SyncSource, count int) {
	r.records[entity+"/"+string(source)] += count
}

func (r *recordingRecorder) IncUpstreamError(operation string) {
	r.upstreamErrors[operation]++
}

// failingRepo fails product upserts for one store
type failingRepo struct {
	ports.Repository
	failStoreID string
}

func (r *failingRepo) UpsertProducts(ctx context.Context, products []*domain.Product) error {
	for _, p := range products {
		if p.StoreID == r.failStoreID {
			return errors.New("disk full")
		}
	}
	return r.Repository.UpsertProducts(ctx, products)
}

type testEnv struct {
	repo      ports.Repository
	factory   *fakeFactory
	vault     *fakeVault
	analytics *AnalyticsService
	sync      *SyncService
	stores    *StoreService
	statuses  *cache.MemorySyncStatusStore
	events    *recordingPublisher
	recorder  *recordingRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repository.OpenGorm("sqlite", ":memory:")
	require.NoError(t, err)
	return newTestEnvWithRepo(t, repository.NewGormRepository(db))
}

func newTestEnvWithRepo(t *testing.T, repo ports.Repository) *testEnv {
	t.Helper()
	clock := func() time.Time { return fixedNow }

	env := &testEnv{
		repo:     repo,
		factory:  &fakeFactory{clients: map[string]*fakeClient{}},
		vault:    &fakeVault{valid: true},
		statuses: cache.NewMemorySyncStatusStore(),
		events:   &recordingPublisher{},
		recorder: newRecordingRecorder(),
	}

	env.analytics = NewAnalyticsService(repo, zerolog.Nop())
	env.analytics.now = clock

	generator := demodata.NewGeneratorWithSource(rand.NewPCG(1, 2), clock)
	env.sync = NewSyncService(
		repo, env.vault, env.factory, generator, env.analytics,
		env.statuses, env.events, env.recorder, zerolog.Nop(),
		SyncOptions{PageLimit: 50, StatusTTL: time.Hour},
	)
	env.sync.now = clock

	env.stores = NewStoreService(repo, env.vault, zerolog.Nop())
	env.stores.now = clock
	return env
}

func (e *testEnv) createStore(t *testing.T, userID, shopDomain, sealedToken string) *domain.Store {
	t.Helper()
	store := &domain.Store{
		UserID:       userID,
		ShopDomain:   shopDomain,
		StoreName:    shopDomain,
		ContactEmail: "owner@example.com",
		AccessToken:  sealedToken,
		IsActive:     true,
	}
	require.NoError(t, e.repo.CreateStore(context.Background(), store))
	return store
}

func timePtr(t time.Time) *time.Time { return &t }
