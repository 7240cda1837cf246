package ports

import (
	"context"
	"time"

	"storefront-analytics/internal/domain"
)

// EncryptionService seals secrets before they are persisted
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// TokenVault seals store access tokens and checks them against Shopify
type TokenVault interface {
	EncryptToken(token string) (string, error)
	DecryptToken(encryptedToken string) (string, error)
	ValidateToken(ctx context.Context, shopDomain, token string) (bool, error)
}

// SyncStatusStore remembers the last sync result per store
type SyncStatusStore interface {
	SaveStatus(ctx context.Context, status *domain.SyncStatus, ttl time.Duration) error
	GetStatus(ctx context.Context, storeID string) (*domain.SyncStatus, error)
}

// SyncEventPublisher fans out completed sync events
type SyncEventPublisher interface {
	Publish(event *domain.SyncEvent)
}

// SyncRecorder collects sync telemetry
type SyncRecorder interface {
	ObserveSync(mode string, success bool, duration time.Duration)
	AddRecords(entity string, source domain.SyncSource, count int)
	IncUpstreamError(operation string)
}
