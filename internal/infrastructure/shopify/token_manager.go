package shopify

import (
	"context"
	"fmt"

	"storefront-analytics/internal/ports"

	"github.com/rs/zerolog"
)

// TokenManager seals Shopify access tokens for storage and opens them for API calls
type TokenManager struct {
	encryptionSvc ports.EncryptionService
	factory       ports.ShopifyClientFactory
	logger        zerolog.Logger
}

// NewTokenManager creates a new token manager
func NewTokenManager(encryptionSvc ports.EncryptionService, factory ports.ShopifyClientFactory, logger zerolog.Logger) *TokenManager {
	return &TokenManager{
		encryptionSvc: encryptionSvc,
		factory:       factory,
		logger:        logger,
	}
}

var _ ports.TokenVault = (*TokenManager)(nil)

// EncryptToken encrypts an access token before storage
func (tm *TokenManager) EncryptToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token cannot be empty")
	}
	return tm.encryptionSvc.Encrypt(token)
}

// DecryptToken decrypts an access token after retrieval
func (tm *TokenManager) DecryptToken(encryptedToken string) (string, error) {
	if encryptedToken == "" {
		return "", fmt.Errorf("encrypted token cannot be empty")
	}
	token, err := tm.encryptionSvc.Decrypt(encryptedToken)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}
	return token, nil
}

// ValidateToken probes the shop endpoint with a freshly built client.
// Only a client construction failure is returned as an error.
func (tm *TokenManager) ValidateToken(ctx context.Context, shopDomain, token string) (bool, error) {
	if token == "" {
		return false, fmt.Errorf("token is empty")
	}
	if shopDomain == "" {
		return false, fmt.Errorf("shop domain is required for token validation")
	}

	client, err := tm.factory.NewClient(shopDomain, token)
	if err != nil {
		return false, err
	}

	if !client.TestConnection(ctx) {
		tm.logger.Warn().
			Str("shop", shopDomain).
			Msg("Token validation failed: token is invalid or revoked")
		return false, nil
	}

	tm.logger.Debug().
		Str("shop", shopDomain).
		Msg("Token validation successful")
	return true, nil
}
