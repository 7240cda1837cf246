package domain

import "time"

// SyncResult counts rows written per entity during one store sync.
// Errors holds recorded upstream failures; a non-empty list does not fail the sync.
type SyncResult struct {
	Products  int      `json:"products"`
	Orders    int      `json:"orders"`
	Customers int      `json:"customers"`
	Errors    []string `json:"errors"`
}

// StoreSyncResult is one entry of a bulk sync
type StoreSyncResult struct {
	StoreID   string      `json:"storeId"`
	StoreName string      `json:"storeName"`
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Results   *SyncResult `json:"results,omitempty"`
	Error     string      `json:"error,omitempty"`
	Details   string      `json:"details,omitempty"`
}

// SyncSource tells whether rows came from Shopify or from the demo generator
type SyncSource string

const (
	SyncSourceShopify SyncSource = "shopify"
	SyncSourceDemo    SyncSource = "demo"
)

// SyncStatus is the last recorded sync of a store
type SyncStatus struct {
	StoreID  string      `json:"storeId"`
	SyncedAt time.Time   `json:"syncedAt"`
	Results  *SyncResult `json:"results"`
}

// SyncEvent is broadcast after every completed store sync
type SyncEvent struct {
	UserID     string      `json:"-"`
	StoreID    string      `json:"storeId"`
	StoreName  string      `json:"storeName"`
	Success    bool        `json:"success"`
	Results    *SyncResult `json:"results,omitempty"`
	Error      string      `json:"error,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}
