package shopify

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"storefront-analytics/internal/infrastructure/encryption"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenManager(t *testing.T, factory *ClientFactory) *TokenManager {
	t.Helper()
	svc, err := encryption.NewService([]byte(strings.Repeat("a", 32)))
	require.NoError(t, err)
	return NewTokenManager(svc, factory, zerolog.Nop())
}

func TestTokenManager_EncryptDecrypt(t *testing.T) {
	tm := newTokenManager(t, NewClientFactory("", nil, zerolog.Nop()))

	sealed, err := tm.EncryptToken("shpat_secret")
	require.NoError(t, err)
	assert.NotEqual(t, "shpat_secret", sealed)

	token, err := tm.DecryptToken(sealed)
	require.NoError(t, err)
	assert.Equal(t, "shpat_secret", token)

	_, err = tm.EncryptToken("")
	assert.Error(t, err)
	_, err = tm.DecryptToken("")
	assert.Error(t, err)
	_, err = tm.DecryptToken("garbage")
	assert.Error(t, err)
}

func TestTokenManager_ValidateToken(t *testing.T) {
	transport := &stubTransport{responses: map[string]stubResponse{
		"/admin/api/2023-10/shop.json": {status: http.StatusOK, body: `{"shop":{}}`},
	}}
	tm := newTokenManager(t, NewClientFactory("", &http.Client{Transport: transport}, zerolog.Nop()))

	ok, err := tm.ValidateToken(context.Background(), "demo.myshopify.com", "shpat_x")
	require.NoError(t, err)
	assert.True(t, ok)

	transport.responses["/admin/api/2023-10/shop.json"] = stubResponse{status: http.StatusForbidden, body: `{"errors":"forbidden"}`}
	ok, err = tm.ValidateToken(context.Background(), "demo.myshopify.com", "shpat_x")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = tm.ValidateToken(context.Background(), "", "shpat_x")
	assert.Error(t, err)
}
