package domain

import "time"

// Store is a Shopify storefront owned by one dashboard user
type Store struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ShopDomain   string    `json:"shop_domain"`
	StoreName    string    `json:"store_name"`
	ContactEmail string    `json:"email"`
	AccessToken  string    `json:"-"` // encrypted at rest, never serialized
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasCredential reports whether the store can talk to the live Shopify API
func (s *Store) HasCredential() bool {
	return s.AccessToken != ""
}

// StoreDetail is the store page payload: the store plus entity counts and recent rows
type StoreDetail struct {
	Store           *Store      `json:"store"`
	ProductCount    int64       `json:"product_count"`
	OrderCount      int64       `json:"order_count"`
	CustomerCount   int64       `json:"customer_count"`
	Revenue         float64     `json:"revenue"`
	RecentProducts  []*Product  `json:"recent_products"`
	RecentOrders    []*Order    `json:"recent_orders"`
	RecentCustomers []*Customer `json:"recent_customers"`
}
