package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront-analytics/internal/infrastructure/pubsub"
)

const sseHeartbeat = 25 * time.Second

// SyncEvents handles GET /api/sync/events, streaming completed syncs of the
// caller's stores as server-sent events until the client disconnects
func (h *Handler) SyncEvents(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	if caller.UserID == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Streaming unsupported"})
		return
	}

	filter := &pubsub.SyncEventFilter{UserID: caller.UserID}
	if storeID := r.URL.Query().Get("storeId"); storeID != "" {
		filter.StoreIDs = []string{storeID}
	}
	sub := h.events.Subscribe(r.Context(), filter)
	defer h.events.Unsubscribe(sub.ID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error().Err(err).Msg("Failed to encode sync event")
				continue
			}
			fmt.Fprintf(w, "event: sync\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
