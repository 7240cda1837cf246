package api

import (
	"fmt"
	"net/http"

	"storefront-analytics/internal/application"
	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/infrastructure/pubsub"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler serves the dashboard REST API
type Handler struct {
	syncService      *application.SyncService
	storeService     *application.StoreService
	analyticsService *application.AnalyticsService
	events           *pubsub.SyncPubSub
	logger           zerolog.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	syncService *application.SyncService,
	storeService *application.StoreService,
	analyticsService *application.AnalyticsService,
	events *pubsub.SyncPubSub,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		syncService:      syncService,
		storeService:     storeService,
		analyticsService: analyticsService,
		events:           events,
		logger:           logger,
	}
}

type syncResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Results *domain.SyncResult `json:"results"`
}

type bulkSyncResponse struct {
	Success bool                     `json:"success,omitempty"`
	Message string                   `json:"message"`
	Results []domain.StoreSyncResult `json:"results,omitempty"`
}

// SyncStore handles POST /api/sync/{storeId}
func (h *Handler) SyncStore(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeId")

	result, err := h.syncService.SyncStore(r.Context(), callerFrom(r), storeID)
	if err != nil {
		writeServiceError(w, h.logger.With().Str("storeId", storeID).Logger(), err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		Success: true,
		Message: application.SyncCompletedMessage,
		Results: result,
	})
}

// SyncAll handles POST /api/sync/all
func (h *Handler) SyncAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.syncService.SyncAll(r.Context(), callerFrom(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if len(results) == 0 {
		writeJSON(w, http.StatusOK, bulkSyncResponse{Message: application.NoActiveStoresMessage})
		return
	}

	writeJSON(w, http.StatusOK, bulkSyncResponse{
		Success: true,
		Message: fmt.Sprintf("Synced %d stores", len(results)),
		Results: results,
	})
}

// SyncStatus handles GET /api/sync/{storeId}/status
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.syncService.LastStatus(r.Context(), callerFrom(r), chi.URLParam(r, "storeId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ListStores handles GET /api/stores
func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.storeService.ListStores(r.Context(), callerFrom(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stores": stores})
}

// ConnectStore handles POST /api/stores
func (h *Handler) ConnectStore(w http.ResponseWriter, r *http.Request) {
	var input application.ConnectStoreInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	store, err := h.storeService.ConnectStore(r.Context(), callerFrom(r), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "store": store})
}

// CreateDemoStore handles POST /api/stores/demo
func (h *Handler) CreateDemoStore(w http.ResponseWriter, r *http.Request) {
	var input application.CreateDemoStoreInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	store, err := h.storeService.CreateDemoStore(r.Context(), callerFrom(r), input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "store": store})
}

// GetStore handles GET /api/stores/{storeId}
func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	detail, err := h.storeService.GetStoreDetail(r.Context(), callerFrom(r), chi.URLParam(r, "storeId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Overview handles GET /api/analytics
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analyticsService.Overview(r.Context(), callerFrom(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// ListCustomers handles GET /api/customers
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.storeService.ListCustomers(r.Context(), callerFrom(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}
