package domain

import "time"

// SummaryDateLayout is the UTC calendar-day key of an AnalyticsSummary
const SummaryDateLayout = "2006-01-02"

// AnalyticsSummary holds paid-order totals for one store and one UTC day
type AnalyticsSummary struct {
	ID                string    `json:"id"`
	StoreID           string    `json:"store_id"`
	Date              string    `json:"date"`
	TotalSales        float64   `json:"total_sales"`
	TotalOrders       int       `json:"total_orders"`
	AverageOrderValue float64   `json:"average_order_value"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AnalyticsOverview aggregates every active store of one user
type AnalyticsOverview struct {
	StoreCount        int                 `json:"store_count"`
	TotalRevenue      float64             `json:"total_revenue"`
	TotalOrders       int64               `json:"total_orders"`
	TotalCustomers    int64               `json:"total_customers"`
	TotalProducts     int64               `json:"total_products"`
	AverageOrderValue float64             `json:"average_order_value"`
	RecentOrders      []*Order            `json:"recent_orders"`
	Summaries         []*AnalyticsSummary `json:"summaries"`
}
