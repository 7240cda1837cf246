package pubsub

import (
	"context"
	"fmt"
	"sync"

	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/ports"

	"github.com/rs/zerolog"
)

const subscriberBuffer = 10

// SyncEventChannel is one live subscription
type SyncEventChannel struct {
	ID     string
	Filter *SyncEventFilter
	Events chan *domain.SyncEvent
	Done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// SyncEventFilter narrows the events a subscriber receives
type SyncEventFilter struct {
	UserID   string   // owner of the synced store, required for dashboard streams
	StoreIDs []string // empty means every store of the user
}

// SyncPubSub fans completed sync events out to subscribers
type SyncPubSub struct {
	mu       sync.RWMutex
	channels map[string]*SyncEventChannel
	logger   zerolog.Logger
	nextID   int64
	idMu     sync.Mutex
}

func NewSyncPubSub(logger zerolog.Logger) *SyncPubSub {
	return &SyncPubSub{
		channels: make(map[string]*SyncEventChannel),
		logger:   logger,
	}
}

var _ ports.SyncEventPublisher = (*SyncPubSub)(nil)

// Subscribe registers a channel that lives until ctx is cancelled or Unsubscribe is called
func (ps *SyncPubSub) Subscribe(ctx context.Context, filter *SyncEventFilter) *SyncEventChannel {
	ps.idMu.Lock()
	id := ps.generateID()
	ps.idMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)

	channel := &SyncEventChannel{
		ID:     id,
		Filter: filter,
		Events: make(chan *domain.SyncEvent, subscriberBuffer),
		Done:   make(chan struct{}),
		ctx:    subCtx,
		cancel: cancel,
	}

	ps.mu.Lock()
	ps.channels[id] = channel
	ps.mu.Unlock()

	ps.logger.Info().
		Str("channelId", id).
		Msg("Sync event subscription created")

	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(id)
	}()

	return channel
}

// Unsubscribe removes a subscription and closes its channels
func (ps *SyncPubSub) Unsubscribe(channelID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	channel, exists := ps.channels[channelID]
	if !exists {
		return
	}

	close(channel.Events)
	close(channel.Done)
	channel.cancel()
	delete(ps.channels, channelID)

	ps.logger.Info().
		Str("channelId", channelID).
		Msg("Sync event subscription removed")
}

// Publish delivers event to every matching subscriber without blocking
func (ps *SyncPubSub) Publish(event *domain.SyncEvent) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	delivered := 0
	for _, channel := range ps.channels {
		if !matchesFilter(event, channel.Filter) {
			continue
		}
		select {
		case channel.Events <- event:
			delivered++
		case <-channel.ctx.Done():
		default:
			ps.logger.Warn().
				Str("channelId", channel.ID).
				Str("storeId", event.StoreID).
				Msg("Subscriber buffer full, dropping sync event")
		}
	}

	if delivered > 0 {
		ps.logger.Debug().
			Str("storeId", event.StoreID).
			Int("subscribers", delivered).
			Msg("Published sync event")
	}
}

func matchesFilter(event *domain.SyncEvent, filter *SyncEventFilter) bool {
	if filter == nil {
		return true
	}
	if filter.UserID != "" && event.UserID != filter.UserID {
		return false
	}
	if len(filter.StoreIDs) == 0 {
		return true
	}
	for _, id := range filter.StoreIDs {
		if id == event.StoreID {
			return true
		}
	}
	return false
}

func (ps *SyncPubSub) generateID() string {
	ps.nextID++
	return fmt.Sprintf("channel-%d", ps.nextID)
}

// GetStats returns subscription statistics
func (ps *SyncPubSub) GetStats() map[string]interface{} {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return map[string]interface{}{
		"active_subscriptions": len(ps.channels),
	}
}
