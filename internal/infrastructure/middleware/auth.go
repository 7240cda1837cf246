package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront-analytics/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// DefaultSessionCookie is the cookie the hosted auth provider sets for browser sessions
const DefaultSessionCookie = "sb-access-token"

var (
	ErrMissingToken = errors.New("missing session token")
	ErrInvalidToken = errors.New("invalid session token")
)

// SessionClaims are the claims issued by the auth provider
type SessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// SessionVerifier validates HS256 session tokens signed with the provider secret
type SessionVerifier struct {
	secret     []byte
	cookieName string
}

func NewSessionVerifier(secret, cookieName string) *SessionVerifier {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &SessionVerifier{secret: []byte(secret), cookieName: cookieName}
}

// Verify parses tokenString and returns the caller it identifies
func (v *SessionVerifier) Verify(tokenString string) (domain.Caller, error) {
	if tokenString == "" {
		return domain.Caller{}, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Caller{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return domain.Caller{}, ErrInvalidToken
	}

	return domain.Caller{UserID: claims.Subject, Email: claims.Email}, nil
}

// tokenFromRequest prefers the session cookie and falls back to a bearer header
func (v *SessionVerifier) tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(v.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireSession rejects requests without a valid session and stores the caller in the context
func RequireSession(verifier *SessionVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := verifier.Verify(verifier.tokenFromRequest(r))
			if err != nil {
				logger.Debug().
					Err(err).
					Str("path", r.URL.Path).
					Msg("Rejected unauthenticated request")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithCaller(r.Context(), caller)))
		})
	}
}
