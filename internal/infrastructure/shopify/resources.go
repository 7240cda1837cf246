package shopify

import (
	"encoding/json"
	"strings"
	"time"

	"storefront-analytics/internal/domain"
)

type variantResource struct {
	Price             string `json:"price"`
	CompareAtPrice    string `json:"compare_at_price"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

type productResource struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Handle      string            `json:"handle"`
	Vendor      string            `json:"vendor"`
	ProductType string            `json:"product_type"`
	Status      string            `json:"status"`
	Tags        string            `json:"tags"`
	Variants    []variantResource `json:"variants"`
}

func (p *productResource) toDomain() *domain.Product {
	product := &domain.Product{
		ShopifyProductID: p.ID,
		Title:            p.Title,
		Handle:           p.Handle,
		Vendor:           p.Vendor,
		ProductType:      p.ProductType,
		Status:           p.Status,
		Tags:             splitTags(p.Tags),
		Price:            "0",
	}

	// the first variant carries the listed price and stock
	if len(p.Variants) > 0 {
		v := p.Variants[0]
		if v.Price != "" {
			product.Price = v.Price
		}
		if v.CompareAtPrice != "" {
			compareAt := v.CompareAtPrice
			product.CompareAtPrice = &compareAt
		}
		product.InventoryQuantity = v.InventoryQuantity
	}

	return product
}

type orderResource struct {
	ID                int64       `json:"id"`
	OrderNumber       json.Number `json:"order_number"`
	Email             *string     `json:"email"`
	TotalPrice        string      `json:"total_price"`
	SubtotalPrice     string      `json:"subtotal_price"`
	TotalTax          string      `json:"total_tax"`
	FinancialStatus   string      `json:"financial_status"`
	FulfillmentStatus *string     `json:"fulfillment_status"`
	ProcessedAt       *time.Time  `json:"processed_at"`
	ShippingLines     []struct {
		Price string `json:"price"`
	} `json:"shipping_lines"`
	Customer *struct {
		ID int64 `json:"id"`
	} `json:"customer"`
	LineItems []json.RawMessage `json:"line_items"`
}

func (o *orderResource) toDomain() *domain.Order {
	order := &domain.Order{
		ShopifyOrderID:  o.ID,
		OrderNumber:     o.OrderNumber.String(),
		Email:           deref(o.Email),
		TotalPrice:      o.TotalPrice,
		SubtotalPrice:   o.SubtotalPrice,
		TaxPrice:        o.TotalTax,
		ShippingPrice:   "0",
		FinancialStatus: o.FinancialStatus,
		LineItemsCount:  len(o.LineItems),
		ProcessedAt:     o.ProcessedAt,
	}

	if len(o.ShippingLines) > 0 && o.ShippingLines[0].Price != "" {
		order.ShippingPrice = o.ShippingLines[0].Price
	}
	if o.FulfillmentStatus != nil && *o.FulfillmentStatus != "" {
		status := *o.FulfillmentStatus
		order.FulfillmentStatus = &status
	}
	if o.Customer != nil && o.Customer.ID != 0 {
		id := o.Customer.ID
		order.CustomerID = &id
	}
	if order.ProcessedAt != nil {
		processed := order.ProcessedAt.UTC()
		order.ProcessedAt = &processed
	}

	return order
}

type customerResource struct {
	ID          int64   `json:"id"`
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Phone       *string `json:"phone"`
	TotalSpent  string  `json:"total_spent"`
	OrdersCount int     `json:"orders_count"`
	State       string  `json:"state"`
}

func (c *customerResource) toDomain() *domain.Customer {
	customer := &domain.Customer{
		ShopifyCustomerID: c.ID,
		Email:             deref(c.Email),
		FirstName:         deref(c.FirstName),
		LastName:          deref(c.LastName),
		TotalSpent:        c.TotalSpent,
		OrdersCount:       c.OrdersCount,
		State:             c.State,
	}
	if c.Phone != nil && *c.Phone != "" {
		phone := *c.Phone
		customer.Phone = &phone
	}
	return customer
}

// splitTags splits Shopify's ", "-joined tag list
func splitTags(tags string) []string {
	if tags == "" {
		return []string{}
	}
	return strings.Split(tags, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
