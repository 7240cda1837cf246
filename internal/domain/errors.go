package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no valid session accompanied the request
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrStoreNotFound covers both missing stores and stores owned by another user
	ErrStoreNotFound = errors.New("store not found")
	// ErrStoreExists means the shop domain is already registered
	ErrStoreExists = errors.New("store already exists")
)

// UpstreamError is a failed call to the Shopify API
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// ValidationError reports a rejected request payload
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
