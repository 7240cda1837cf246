package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/ports"

	"github.com/redis/go-redis/v9"
)

const syncStatusKeyPrefix = "sync:status:"

// RedisSyncStatusStore keeps the last sync result per store in Redis
type RedisSyncStatusStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSyncStatusStore connects to redisURL and verifies the connection
func NewRedisSyncStatusStore(ctx context.Context, redisURL string) (*RedisSyncStatusStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisSyncStatusStoreWithClient(client), nil
}

// NewRedisSyncStatusStoreWithClient wraps an existing client
func NewRedisSyncStatusStoreWithClient(client *redis.Client) *RedisSyncStatusStore {
	return &RedisSyncStatusStore{
		client:    client,
		keyPrefix: syncStatusKeyPrefix,
	}
}

var _ ports.SyncStatusStore = (*RedisSyncStatusStore)(nil)

func (s *RedisSyncStatusStore) SaveStatus(ctx context.Context, status *domain.SyncStatus, ttl time.Duration) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal sync status: %w", err)
	}

	if err := s.client.Set(ctx, s.keyPrefix+status.StoreID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save sync status: %w", err)
	}
	return nil
}

func (s *RedisSyncStatusStore) GetStatus(ctx context.Context, storeID string) (*domain.SyncStatus, error) {
	payload, err := s.client.Get(ctx, s.keyPrefix+storeID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}

	var status domain.SyncStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, fmt.Errorf("failed to decode sync status: %w", err)
	}
	return &status, nil
}

// Close releases the underlying client
func (s *RedisSyncStatusStore) Close() error {
	return s.client.Close()
}
