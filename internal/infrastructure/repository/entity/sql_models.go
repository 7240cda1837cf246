package entity

import (
	"time"

	"storefront-analytics/internal/domain"
)

// Relational rows shared by the gorm and Supabase (PostgREST) repositories.
// json tags are the PostgREST column names; id and timestamps are omitted
// when empty so the database defaults apply.

// StoreModel is a row of the stores table
type StoreModel struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"id,omitempty"`
	UserID       string     `gorm:"type:varchar(64);not null;index" json:"user_id"`
	ShopDomain   string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"shop_domain"`
	StoreName    string     `gorm:"type:varchar(255);not null" json:"store_name"`
	ContactEmail string     `gorm:"column:email;type:varchar(255)" json:"email"`
	AccessToken  *string    `gorm:"type:text" json:"access_token"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name
func (StoreModel) TableName() string { return "stores" }

// ProductModel is a row of the products table
type ProductModel struct {
	ID                string     `gorm:"type:varchar(36);primaryKey" json:"id,omitempty"`
	StoreID           string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_products_store_external,priority:1" json:"store_id"`
	ShopifyProductID  int64      `gorm:"not null;uniqueIndex:idx_products_store_external,priority:2" json:"shopify_product_id"`
	Title             string     `gorm:"type:varchar(255)" json:"title"`
	Handle            string     `gorm:"type:varchar(255)" json:"handle"`
	Vendor            string     `gorm:"type:varchar(255)" json:"vendor"`
	ProductType       string     `gorm:"type:varchar(255)" json:"product_type"`
	Status            string     `gorm:"type:varchar(32)" json:"status"`
	Tags              []string   `gorm:"type:text;serializer:json" json:"tags"`
	Price             string     `gorm:"type:varchar(32)" json:"price"`
	CompareAtPrice    *string    `gorm:"type:varchar(32)" json:"compare_at_price"`
	InventoryQuantity int        `json:"inventory_quantity"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name
func (ProductModel) TableName() string { return "products" }

// OrderModel is a row of the orders table
type OrderModel struct {
	ID                string     `gorm:"type:varchar(36);primaryKey" json:"id,omitempty"`
	StoreID           string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_orders_store_external,priority:1" json:"store_id"`
	ShopifyOrderID    int64      `gorm:"not null;uniqueIndex:idx_orders_store_external,priority:2" json:"shopify_order_id"`
	OrderNumber       string     `gorm:"type:varchar(64)" json:"order_number"`
	Email             string     `gorm:"type:varchar(255)" json:"email"`
	TotalPrice        string     `gorm:"type:varchar(32)" json:"total_price"`
	SubtotalPrice     string     `gorm:"type:varchar(32)" json:"subtotal_price"`
	TaxPrice          string     `gorm:"type:varchar(32)" json:"tax_price"`
	ShippingPrice     string     `gorm:"type:varchar(32)" json:"shipping_price"`
	FinancialStatus   string     `gorm:"type:varchar(32);index" json:"financial_status"`
	FulfillmentStatus *string    `gorm:"type:varchar(32)" json:"fulfillment_status"`
	CustomerID        *int64     `json:"customer_id"`
	LineItemsCount    int        `json:"line_items_count"`
	ProcessedAt       *time.Time `gorm:"index" json:"processed_at"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name
func (OrderModel) TableName() string { return "orders" }

// CustomerModel is a row of the customers table
type CustomerModel struct {
	ID                string     `gorm:"type:varchar(36);primaryKey" json:"id,omitempty"`
	StoreID           string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_customers_store_external,priority:1" json:"store_id"`
	ShopifyCustomerID int64      `gorm:"not null;uniqueIndex:idx_customers_store_external,priority:2" json:"shopify_customer_id"`
	Email             string     `gorm:"type:varchar(255)" json:"email"`
	FirstName         string     `gorm:"type:varchar(255)" json:"first_name"`
	LastName          string     `gorm:"type:varchar(255)" json:"last_name"`
	Phone             *string    `gorm:"type:varchar(32)" json:"phone"`
	TotalSpent        string     `gorm:"type:varchar(32)" json:"total_spent"`
	OrdersCount       int        `json:"orders_count"`
	State             string     `gorm:"type:varchar(32)" json:"state"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name
func (CustomerModel) TableName() string { return "customers" }

// AnalyticsSummaryModel is a row of the analytics_summary table
type AnalyticsSummaryModel struct {
	ID                string     `gorm:"type:varchar(36);primaryKey" json:"id,omitempty"`
	StoreID           string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_analytics_store_date,priority:1" json:"store_id"`
	Date              string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_analytics_store_date,priority:2" json:"date"`
	TotalSales        float64    `json:"total_sales"`
	TotalOrders       int        `json:"total_orders"`
	AverageOrderValue float64    `json:"average_order_value"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name
func (AnalyticsSummaryModel) TableName() string { return "analytics_summary" }

// AllModels lists every model for auto-migration
func AllModels() []any {
	return []any{
		&StoreModel{},
		&ProductModel{},
		&OrderModel{},
		&CustomerModel{},
		&AnalyticsSummaryModel{},
	}
}

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// ToDomain converts the row to a domain store
func (m *StoreModel) ToDomain() *domain.Store {
	store := &domain.Store{
		ID:           m.ID,
		UserID:       m.UserID,
		ShopDomain:   m.ShopDomain,
		StoreName:    m.StoreName,
		ContactEmail: m.ContactEmail,
		IsActive:     m.IsActive,
		CreatedAt:    timeValue(m.CreatedAt),
		UpdatedAt:    timeValue(m.UpdatedAt),
	}
	if m.AccessToken != nil {
		store.AccessToken = *m.AccessToken
	}
	return store
}

// StoreModelFromDomain converts a domain store to a row
func StoreModelFromDomain(s *domain.Store) *StoreModel {
	m := &StoreModel{
		ID:           s.ID,
		UserID:       s.UserID,
		ShopDomain:   s.ShopDomain,
		StoreName:    s.StoreName,
		ContactEmail: s.ContactEmail,
		IsActive:     s.IsActive,
		CreatedAt:    timePtr(s.CreatedAt),
		UpdatedAt:    timePtr(s.UpdatedAt),
	}
	if s.AccessToken != "" {
		token := s.AccessToken
		m.AccessToken = &token
	}
	return m
}

// ToDomain converts the row to a domain product
func (m *ProductModel) ToDomain() *domain.Product {
	return &domain.Product{
		ID:                m.ID,
		StoreID:           m.StoreID,
		ShopifyProductID:  m.ShopifyProductID,
		Title:             m.Title,
		Handle:            m.Handle,
		Vendor:            m.Vendor,
		ProductType:       m.ProductType,
		Status:            m.Status,
		Tags:              m.Tags,
		Price:             m.Price,
		CompareAtPrice:    m.CompareAtPrice,
		InventoryQuantity: m.InventoryQuantity,
		CreatedAt:         timeValue(m.CreatedAt),
		UpdatedAt:         timeValue(m.UpdatedAt),
	}
}

// ProductModelFromDomain converts a domain product to a row
func ProductModelFromDomain(p *domain.Product) *ProductModel {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &ProductModel{
		ID:                p.ID,
		StoreID:           p.StoreID,
		ShopifyProductID:  p.ShopifyProductID,
		Title:             p.Title,
		Handle:            p.Handle,
		Vendor:            p.Vendor,
		ProductType:       p.ProductType,
		Status:            p.Status,
		Tags:              tags,
		Price:             p.Price,
		CompareAtPrice:    p.CompareAtPrice,
		InventoryQuantity: p.InventoryQuantity,
		CreatedAt:         timePtr(p.CreatedAt),
		UpdatedAt:         timePtr(p.UpdatedAt),
	}
}

// ToDomain converts the row to a domain order
func (m *OrderModel) ToDomain() *domain.Order {
	return &domain.Order{
		ID:                m.ID,
		StoreID:           m.StoreID,
		ShopifyOrderID:    m.ShopifyOrderID,
		OrderNumber:       m.OrderNumber,
		Email:             m.Email,
		TotalPrice:        m.TotalPrice,
		SubtotalPrice:     m.SubtotalPrice,
		TaxPrice:          m.TaxPrice,
		ShippingPrice:     m.ShippingPrice,
		FinancialStatus:   m.FinancialStatus,
		FulfillmentStatus: m.FulfillmentStatus,
		CustomerID:        m.CustomerID,
		LineItemsCount:    m.LineItemsCount,
		ProcessedAt:       m.ProcessedAt,
		CreatedAt:         timeValue(m.CreatedAt),
		UpdatedAt:         timeValue(m.UpdatedAt),
	}
}

// OrderModelFromDomain converts a domain order to a row
func OrderModelFromDomain(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:                o.ID,
		StoreID:           o.StoreID,
		ShopifyOrderID:    o.ShopifyOrderID,
		OrderNumber:       o.OrderNumber,
		Email:             o.Email,
		TotalPrice:        o.TotalPrice,
		SubtotalPrice:     o.SubtotalPrice,
		TaxPrice:          o.TaxPrice,
		ShippingPrice:     o.ShippingPrice,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		CustomerID:        o.CustomerID,
		LineItemsCount:    o.LineItemsCount,
		ProcessedAt:       o.ProcessedAt,
		CreatedAt:         timePtr(o.CreatedAt),
		UpdatedAt:         timePtr(o.UpdatedAt),
	}
}

// ToDomain converts the row to a domain customer
func (m *CustomerModel) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:                m.ID,
		StoreID:           m.StoreID,
		ShopifyCustomerID: m.ShopifyCustomerID,
		Email:             m.Email,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Phone:             m.Phone,
		TotalSpent:        m.TotalSpent,
		OrdersCount:       m.OrdersCount,
		State:             m.State,
		CreatedAt:         timeValue(m.CreatedAt),
		UpdatedAt:         timeValue(m.UpdatedAt),
	}
}

// CustomerModelFromDomain converts a domain customer to a row
func CustomerModelFromDomain(c *domain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:                c.ID,
		StoreID:           c.StoreID,
		ShopifyCustomerID: c.ShopifyCustomerID,
		Email:             c.Email,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Phone:             c.Phone,
		TotalSpent:        c.TotalSpent,
		OrdersCount:       c.OrdersCount,
		State:             c.State,
		CreatedAt:         timePtr(c.CreatedAt),
		UpdatedAt:         timePtr(c.UpdatedAt),
	}
}

// ToDomain converts the row to a domain summary
func (m *AnalyticsSummaryModel) ToDomain() *domain.AnalyticsSummary {
	return &domain.AnalyticsSummary{
		ID:                m.ID,
		StoreID:           m.StoreID,
		Date:              m.Date,
		TotalSales:        m.TotalSales,
		TotalOrders:       m.TotalOrders,
		AverageOrderValue: m.AverageOrderValue,
		CreatedAt:         timeValue(m.CreatedAt),
		UpdatedAt:         timeValue(m.UpdatedAt),
	}
}

// AnalyticsSummaryModelFromDomain converts a domain summary to a row
func AnalyticsSummaryModelFromDomain(s *domain.AnalyticsSummary) *AnalyticsSummaryModel {
	return &AnalyticsSummaryModel{
		ID:                s.ID,
		StoreID:           s.StoreID,
		Date:              s.Date,
		TotalSales:        s.TotalSales,
		TotalOrders:       s.TotalOrders,
		AverageOrderValue: s.AverageOrderValue,
		CreatedAt:         timePtr(s.CreatedAt),
		UpdatedAt:         timePtr(s.UpdatedAt),
	}
}
