package entity

import (
	"time"

	"storefront-analytics/internal/domain"
)

// MongoStoreDoc represents a store in MongoDB
type MongoStoreDoc struct {
	ID           string    `bson:"_id"`
	UserID       string    `bson:"userId"`
	ShopDomain   string    `bson:"shopDomain"`
	StoreName    string    `bson:"storeName"`
	ContactEmail string    `bson:"email"`
	AccessToken  string    `bson:"accessToken,omitempty"`
	IsActive     bool      `bson:"isActive"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoStoreDoc) ToDomain() *domain.Store {
	return &domain.Store{
		ID:           d.ID,
		UserID:       d.UserID,
		ShopDomain:   d.ShopDomain,
		StoreName:    d.StoreName,
		ContactEmail: d.ContactEmail,
		AccessToken:  d.AccessToken,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoStoreDocFromDomain converts a domain entity to a MongoDB document
func MongoStoreDocFromDomain(s *domain.Store) *MongoStoreDoc {
	return &MongoStoreDoc{
		ID:           s.ID,
		UserID:       s.UserID,
		ShopDomain:   s.ShopDomain,
		StoreName:    s.StoreName,
		ContactEmail: s.ContactEmail,
		AccessToken:  s.AccessToken,
		IsActive:     s.IsActive,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// Synced documents leave _id and createdAt empty in $set; both are written once via $setOnInsert.

// MongoProductDoc represents a product in MongoDB
type MongoProductDoc struct {
	ID                string    `bson:"_id,omitempty"`
	StoreID           string    `bson:"storeId"`
	ShopifyProductID  int64     `bson:"shopifyProductId"`
	Title             string    `bson:"title"`
	Handle            string    `bson:"handle"`
	Vendor            string    `bson:"vendor"`
	ProductType       string    `bson:"productType"`
	Status            string    `bson:"status"`
	Tags              []string  `bson:"tags"`
	Price             string    `bson:"price"`
	CompareAtPrice    *string   `bson:"compareAtPrice"`
	InventoryQuantity int       `bson:"inventoryQuantity"`
	CreatedAt         time.Time `bson:"createdAt,omitempty"`
	UpdatedAt         time.Time `bson:"updatedAt"`
}

func (d *MongoProductDoc) ToDomain() *domain.Product {
	return &domain.Product{
		ID:                d.ID,
		StoreID:           d.StoreID,
		ShopifyProductID:  d.ShopifyProductID,
		Title:             d.Title,
		Handle:            d.Handle,
		Vendor:            d.Vendor,
		ProductType:       d.ProductType,
		Status:            d.Status,
		Tags:              d.Tags,
		Price:             d.Price,
		CompareAtPrice:    d.CompareAtPrice,
		InventoryQuantity: d.InventoryQuantity,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func MongoProductDocFromDomain(p *domain.Product) *MongoProductDoc {
	return &MongoProductDoc{
		StoreID:           p.StoreID,
		ShopifyProductID:  p.ShopifyProductID,
		Title:             p.Title,
		Handle:            p.Handle,
		Vendor:            p.Vendor,
		ProductType:       p.ProductType,
		Status:            p.Status,
		Tags:              p.Tags,
		Price:             p.Price,
		CompareAtPrice:    p.CompareAtPrice,
		InventoryQuantity: p.InventoryQuantity,
	}
}

// MongoOrderDoc represents an order in MongoDB
type MongoOrderDoc struct {
	ID                string     `bson:"_id,omitempty"`
	StoreID           string     `bson:"storeId"`
	ShopifyOrderID    int64      `bson:"shopifyOrderId"`
	OrderNumber       string     `bson:"orderNumber"`
	Email             string     `bson:"email"`
	TotalPrice        string     `bson:"totalPrice"`
	SubtotalPrice     string     `bson:"subtotalPrice"`
	TaxPrice          string     `bson:"taxPrice"`
	ShippingPrice     string     `bson:"shippingPrice"`
	FinancialStatus   string     `bson:"financialStatus"`
	FulfillmentStatus *string    `bson:"fulfillmentStatus"`
	CustomerID        *int64     `bson:"customerId"`
	LineItemsCount    int        `bson:"lineItemsCount"`
	ProcessedAt       *time.Time `bson:"processedAt"`
	CreatedAt         time.Time  `bson:"createdAt,omitempty"`
	UpdatedAt         time.Time  `bson:"updatedAt"`
}

func (d *MongoOrderDoc) ToDomain() *domain.Order {
	return &domain.Order{
		ID:                d.ID,
		StoreID:           d.StoreID,
		ShopifyOrderID:    d.ShopifyOrderID,
		OrderNumber:       d.OrderNumber,
		Email:             d.Email,
		TotalPrice:        d.TotalPrice,
		SubtotalPrice:     d.SubtotalPrice,
		TaxPrice:          d.TaxPrice,
		ShippingPrice:     d.ShippingPrice,
		FinancialStatus:   d.FinancialStatus,
		FulfillmentStatus: d.FulfillmentStatus,
		CustomerID:        d.CustomerID,
		LineItemsCount:    d.LineItemsCount,
		ProcessedAt:       d.ProcessedAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func MongoOrderDocFromDomain(o *domain.Order) *MongoOrderDoc {
	return &MongoOrderDoc{
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
	}
}

// MongoCustomerDoc represents a customer in MongoDB
type MongoCustomerDoc struct {
	ID                string    `bson:"_id,omitempty"`
	StoreID           string    `bson:"storeId"`
	ShopifyCustomerID int64     `bson:"shopifyCustomerId"`
	Email             string    `bson:"email"`
	FirstName         string    `bson:"firstName"`
	LastName          string    `bson:"lastName"`
	Phone             *string   `bson:"phone"`
	TotalSpent        string    `bson:"totalSpent"`
	OrdersCount       int       `bson:"ordersCount"`
	State             string    `bson:"state"`
	CreatedAt         time.Time `bson:"createdAt,omitempty"`
	UpdatedAt         time.Time `bson:"updatedAt"`
}

func (d *MongoCustomerDoc) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:                d.ID,
		StoreID:           d.StoreID,
		ShopifyCustomerID: d.ShopifyCustomerID,
		Email:             d.Email,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		Phone:             d.Phone,
		TotalSpent:        d.TotalSpent,
		OrdersCount:       d.OrdersCount,
		State:             d.State,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func MongoCustomerDocFromDomain(c *domain.Customer) *MongoCustomerDoc {
	return &MongoCustomerDoc{
		StoreID:           c.StoreID,
		ShopifyCustomerID: c.ShopifyCustomerID,
		Email:             c.Email,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Phone:             c.Phone,
		TotalSpent:        c.TotalSpent,
		OrdersCount:       c.OrdersCount,
		State:             c.State,
	}
}

// MongoAnalyticsSummaryDoc represents a daily summary in MongoDB
type MongoAnalyticsSummaryDoc struct {
	ID                string    `bson:"_id,omitempty"`
	StoreID           string    `bson:"storeId"`
	Date              string    `bson:"date"`
	TotalSales        float64   `bson:"totalSales"`
	TotalOrders       int       `bson:"totalOrders"`
	AverageOrderValue float64   `bson:"averageOrderValue"`
	CreatedAt         time.Time `bson:"createdAt,omitempty"`
	UpdatedAt         time.Time `bson:"updatedAt"`
}

func (d *MongoAnalyticsSummaryDoc) ToDomain() *domain.AnalyticsSummary {
	return &domain.AnalyticsSummary{
		ID:                d.ID,
		StoreID:           d.StoreID,
		Date:              d.Date,
		TotalSales:        d.TotalSales,
		TotalOrders:       d.TotalOrders,
		AverageOrderValue: d.AverageOrderValue,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func MongoAnalyticsSummaryDocFromDomain(s *domain.AnalyticsSummary) *MongoAnalyticsSummaryDoc {
	return &MongoAnalyticsSummaryDoc{
		StoreID:           s.StoreID,
		Date:              s.Date,
		TotalSales:        s.TotalSales,
		TotalOrders:       s.TotalOrders,
		AverageOrderValue: s.AverageOrderValue,
	}
}
