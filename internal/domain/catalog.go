package domain

import "time"

// Product is a store product keyed by (StoreID, ShopifyProductID)
type Product struct {
	ID                string    `json:"id"`
	StoreID           string    `json:"store_id"`
	ShopifyProductID  int64     `json:"shopify_product_id"`
	Title             string    `json:"title"`
	Handle            string    `json:"handle"`
	Vendor            string    `json:"vendor"`
	ProductType       string    `json:"product_type"`
	Status            string    `json:"status"`
	Tags              []string  `json:"tags"`
	Price             string    `json:"price"`
	CompareAtPrice    *string   `json:"compare_at_price"`
	InventoryQuantity int       `json:"inventory_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Order is a store order keyed by (StoreID, ShopifyOrderID). Money fields are decimal strings.
type Order struct {
	ID                string     `json:"id"`
	StoreID           string     `json:"store_id"`
	ShopifyOrderID    int64      `json:"shopify_order_id"`
	OrderNumber       string     `json:"order_number"`
	Email             string     `json:"email"`
	TotalPrice        string     `json:"total_price"`
	SubtotalPrice     string     `json:"subtotal_price"`
	TaxPrice          string     `json:"tax_price"`
	ShippingPrice     string     `json:"shipping_price"`
	FinancialStatus   string     `json:"financial_status"`
	FulfillmentStatus *string    `json:"fulfillment_status"`
	CustomerID        *int64     `json:"customer_id"`
	LineItemsCount    int        `json:"line_items_count"`
	ProcessedAt       *time.Time `json:"processed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// FinancialStatusPaid is the only status that counts toward revenue
const FinancialStatusPaid = "paid"

// IsPaid reports whether the order counts toward revenue
func (o *Order) IsPaid() bool {
	return o.FinancialStatus == FinancialStatusPaid
}

// Customer is a store customer keyed by (StoreID, ShopifyCustomerID)
type Customer struct {
	ID                string    `json:"id"`
	StoreID           string    `json:"store_id"`
	ShopifyCustomerID int64     `json:"shopify_customer_id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Phone             *string   `json:"phone"`
	TotalSpent        string    `json:"total_spent"`
	OrdersCount       int       `json:"orders_count"`
	State             string    `json:"state"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
