package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-analytics/internal/application"
	"storefront-analytics/internal/demodata"
	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/infrastructure/cache"
	"storefront-analytics/internal/infrastructure/encryption"
	"storefront-analytics/internal/infrastructure/metrics"
	securitymiddleware "storefront-analytics/internal/infrastructure/middleware"
	"storefront-analytics/internal/infrastructure/pubsub"
	"storefront-analytics/internal/infrastructure/repository"
	"storefront-analytics/internal/infrastructure/shopify"
	"storefront-analytics/internal/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "test-jwt-secret-with-enough-length-0123456789"

type testServer struct {
	router http.Handler
	repo   ports.Repository
}

// brokenRepo fails every store lookup
type brokenRepo struct {
	ports.Repository
}

func (brokenRepo) GetStore(ctx context.Context, userID, storeID string) (*domain.Store, error) {
	return nil, errors.New("connection refused")
}

func newTestServer(t *testing.T, wrap func(ports.Repository) ports.Repository) *testServer {
	t.Helper()
	logger := zerolog.Nop()

	db, err := repository.OpenGorm("sqlite", ":memory:")
	require.NoError(t, err)
	var repo ports.Repository = repository.NewGormRepository(db)
	if wrap != nil {
		repo = wrap(repo)
	}

	encSvc, err := encryption.NewService([]byte(strings.Repeat("k", 32)))
	require.NoError(t, err)
	factory := shopify.NewClientFactory("", nil, logger)
	tokens := shopify.NewTokenManager(encSvc, factory, logger)

	registry := prometheus.NewRegistry()
	events := pubsub.NewSyncPubSub(logger)
	analytics := application.NewAnalyticsService(repo, logger)
	syncService := application.NewSyncService(
		repo, tokens, factory, demodata.NewGenerator(), analytics,
		cache.NewMemorySyncStatusStore(), events, metrics.NewSyncMetrics(registry), logger,
		application.SyncOptions{},
	)
	stores := application.NewStoreService(repo, tokens, logger)

	router := NewRouter(RouterConfig{
		Handler:  NewHandler(syncService, stores, analytics, events, logger),
		Verifier: securitymiddleware.NewSessionVerifier(jwtSecret, ""),
		Gatherer: registry,
		Logger:   logger,
	})
	return &testServer{router: router, repo: repo}
}

func sessionToken(t *testing.T, userID string) string {
	t.Helper()
	claims := securitymiddleware.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: userID + "@example.com",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.AddCookie(&http.Cookie{Name: securitymiddleware.DefaultSessionCookie, Value: sessionToken(t, userID)})
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createDemoStore(t *testing.T, userID, name string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/stores/demo", userID, `{"storeName":"`+name+`","email":"owner@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Store domain.Store `json:"store"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Store.ID
}

func TestSyncStore_RequiresSession(t *testing.T) {
	srv := newTestServer(t, nil)
	storeID := srv.createDemoStore(t, "user-1", "Acme")

	rec := srv.do(t, http.MethodPost, "/api/sync/"+storeID, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	count, err := srv.repo.CountOrders(context.Background(), []string{storeID})
	require.NoError(t, err)
	assert.Zero(t, count, "an unauthenticated sync writes nothing")
}

func TestSyncStore_Endpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	storeID := srv.createDemoStore(t, "user-1", "Acme")

	rec := srv.do(t, http.MethodPost, "/api/sync/"+storeID, "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"success": true,
		"message": "Data sync completed",
		"results": {"products": 15, "orders": 25, "customers": 20, "errors": []}
	}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/sync/"+storeID, "user-2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Store not found"}`, rec.Body.String())
}

func TestSyncStore_InternalError(t *testing.T) {
	srv := newTestServer(t, func(repo ports.Repository) ports.Repository { return brokenRepo{repo} })

	rec := srv.do(t, http.MethodPost, "/api/sync/anything", "user-1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.Contains(t, body["details"], "connection refused")
}

func TestSyncAll_Endpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/sync/all", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"No active stores found"}`, rec.Body.String())

	first := srv.createDemoStore(t, "user-1", "One")
	second := srv.createDemoStore(t, "user-1", "Two")

	rec = srv.do(t, http.MethodPost, "/api/sync/all", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                     `json:"success"`
		Message string                   `json:"message"`
		Results []domain.StoreSyncResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Synced 2 stores", body.Message)
	require.Len(t, body.Results, 2)

	ids := []string{body.Results[0].StoreID, body.Results[1].StoreID}
	assert.ElementsMatch(t, []string{first, second}, ids)
	for _, r := range body.Results {
		assert.True(t, r.Success)
		assert.Equal(t, 20, r.Results.Customers)
	}
}

func TestStoreEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/stores/demo", "user-1", `{"storeName":"Acme","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"email"`)

	rec = srv.do(t, http.MethodPost, "/api/stores", "user-1", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/stores", "user-1",
		`{"storeName":"Live","shopDomain":"live-shop","email":"live@example.com","accessToken":"shpat_secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "shpat_secret")
	assert.Contains(t, rec.Body.String(), `"shop_domain":"live-shop.myshopify.com"`)

	rec = srv.do(t, http.MethodPost, "/api/stores", "user-2",
		`{"storeName":"Copy","shopDomain":"live-shop.myshopify.com","email":"copy@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	storeID := srv.createDemoStore(t, "user-1", "Demo")
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/sync/"+storeID, "user-1", "").Code)

	rec = srv.do(t, http.MethodGet, "/api/stores", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Stores []domain.Store `json:"stores"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Stores, 2)

	rec = srv.do(t, http.MethodGet, "/api/stores/"+storeID, "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail domain.StoreDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, int64(25), detail.OrderCount)
	assert.Len(t, detail.RecentOrders, 5)

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/stores/"+storeID, "user-2", "").Code)

	rec = srv.do(t, http.MethodGet, "/api/customers", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var customers struct {
		Customers []domain.Customer `json:"customers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customers))
	assert.Len(t, customers.Customers, 20)
}

func TestAnalyticsAndStatusEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	storeID := srv.createDemoStore(t, "user-1", "Acme")

	rec := srv.do(t, http.MethodGet, "/api/sync/"+storeID+"/status", "user-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/sync/"+storeID, "user-1", "").Code)

	rec = srv.do(t, http.MethodGet, "/api/sync/"+storeID+"/status", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.SyncStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, storeID, status.StoreID)
	assert.Equal(t, 15, status.Results.Products)

	rec = srv.do(t, http.MethodGet, "/api/analytics", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var overview domain.AnalyticsOverview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	assert.Equal(t, 1, overview.StoreCount)
	assert.Equal(t, int64(25), overview.TotalOrders)
	assert.Len(t, overview.RecentOrders, 10)
	assert.InDelta(t, overview.TotalRevenue/25, overview.AverageOrderValue, 1e-9)
}

func TestOperationalEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	storeID := srv.createDemoStore(t, "user-1", "Acme")
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/sync/"+storeID, "user-1", "").Code)

	rec := srv.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = srv.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sync_runs_total{mode="single",outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), `sync_records_total{entity="orders",source="demo"} 25`)
}

func TestSyncEventsStream(t *testing.T) {
	srv := newTestServer(t, nil)
	storeID := srv.createDemoStore(t, "user-1", "Acme")

	server := httptest.NewServer(srv.router)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/sync/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "user-1"))

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/sync/"+storeID, "user-1", "").Code)

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			break
		}
	}

	var event domain.SyncEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
	assert.Equal(t, storeID, event.StoreID)
	assert.True(t, event.Success)
	assert.Equal(t, 25, event.Results.Orders)
}
