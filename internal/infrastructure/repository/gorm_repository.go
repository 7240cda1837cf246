package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/infrastructure/repository/entity"
	"storefront-analytics/internal/ports"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const upsertBatchSize = 100

// GormRepository implements Repository on PostgreSQL or SQLite through gorm
type GormRepository struct {
	db *gorm.DB
}

// OpenGorm connects to postgres (dsn is a connection string) or sqlite (dsn is a file path)
// and migrates the schema
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// one connection keeps a single writer and lets ":memory:" databases survive
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(entity.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// NewGormRepository creates a repository on an open, migrated database
func NewGormRepository(db *gorm.DB) ports.Repository {
	return &GormRepository{db: db}
}

// CreateStore inserts a new store
func (r *GormRepository) CreateStore(ctx context.Context, store *domain.Store) error {
	if store.ID == "" {
		store.ID = uuid.NewString()
	}
	model := entity.StoreModelFromDomain(store)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrStoreExists
		}
		return fmt.Errorf("failed to create store: %w", err)
	}

	created := model.ToDomain()
	store.CreatedAt = created.CreatedAt
	store.UpdatedAt = created.UpdatedAt
	return nil
}

// GetStore retrieves a store owned by userID
func (r *GormRepository) GetStore(ctx context.Context, userID, storeID string) (*domain.Store, error) {
	var model entity.StoreModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", storeID, userID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return model.ToDomain(), nil
}

// GetStoreByDomain retrieves a store by shop domain regardless of owner
func (r *GormRepository) GetStoreByDomain(ctx context.Context, shopDomain string) (*domain.Store, error) {
	var model entity.StoreModel
	err := r.db.WithContext(ctx).Where("shop_domain = ?", shopDomain).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store by domain: %w", err)
	}
	return model.ToDomain(), nil
}

// ListStores lists every store of userID, newest first
func (r *GormRepository) ListStores(ctx context.Context, userID string) ([]*domain.Store, error) {
	var models []entity.StoreModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return storesToDomain(models), nil
}

// ListActiveStores lists the active stores of userID, oldest first
func (r *GormRepository) ListActiveStores(ctx context.Context, userID string) ([]*domain.Store, error) {
	var models []entity.StoreModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active stores: %w", err)
	}
	return storesToDomain(models), nil
}

func storesToDomain(models []entity.StoreModel) []*domain.Store {
	stores := make([]*domain.Store, 0, len(models))
	for i := range models {
		stores = append(stores, models[i].ToDomain())
	}
	return stores
}

// UpsertProducts writes the batch keyed on (store_id, shopify_product_id)
func (r *GormRepository) UpsertProducts(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	models := make([]*entity.ProductModel, 0, len(products))
	for _, p := range products {
		m := entity.ProductModelFromDomain(p)
		m.ID = uuid.NewString()
		models = append(models, m)
	}

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "shopify_product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "handle", "vendor", "product_type", "status", "tags",
			"price", "compare_at_price", "inventory_quantity", "updated_at",
		}),
	}
	if err := r.upsert(ctx, onConflict, models); err != nil {
		return fmt.Errorf("failed to upsert products: %w", err)
	}
	return nil
}

// UpsertOrders writes the batch keyed on (store_id, shopify_order_id)
func (r *GormRepository) UpsertOrders(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	models := make([]*entity.OrderModel, 0, len(orders))
	for _, o := range orders {
		m := entity.OrderModelFromDomain(o)
		m.ID = uuid.NewString()
		models = append(models, m)
	}

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "shopify_order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"order_number", "email", "total_price", "subtotal_price", "tax_price",
			"shipping_price", "financial_status", "fulfillment_status", "customer_id",
			"line_items_count", "processed_at", "updated_at",
		}),
	}
	if err := r.upsert(ctx, onConflict, models); err != nil {
		return fmt.Errorf("failed to upsert orders: %w", err)
	}
	return nil
}

// UpsertCustomers writes the batch keyed on (store_id, shopify_customer_id)
func (r *GormRepository) UpsertCustomers(ctx context.Context, customers []*domain.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	models := make([]*entity.CustomerModel, 0, len(customers))
	for _, c := range customers {
		m := entity.CustomerModelFromDomain(c)
		m.ID = uuid.NewString()
		models = append(models, m)
	}

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "shopify_customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "first_name", "last_name", "phone", "total_spent",
			"orders_count", "state", "updated_at",
		}),
	}
	if err := r.upsert(ctx, onConflict, models); err != nil {
		return fmt.Errorf("failed to upsert customers: %w", err)
	}
	return nil
}

var summaryConflict = clause.OnConflict{
	Columns: []clause.Column{{Name: "store_id"}, {Name: "date"}},
	DoUpdates: clause.AssignmentColumns([]string{
		"total_sales", "total_orders", "average_order_value", "updated_at",
	}),
}

// UpsertAnalyticsSummaries writes the batch keyed on (store_id, date)
func (r *GormRepository) UpsertAnalyticsSummaries(ctx context.Context, summaries []*domain.AnalyticsSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	if err := r.upsert(ctx, summaryConflict, summaryModels(summaries)); err != nil {
		return fmt.Errorf("failed to upsert analytics summaries: %w", err)
	}
	return nil
}

// ReplaceAnalyticsSummaries deletes the store's stale rows from fromDate on and
// upserts the fresh set in the same transaction
func (r *GormRepository) ReplaceAnalyticsSummaries(ctx context.Context, storeID, fromDate string, summaries []*domain.AnalyticsSummary) error {
	dates := make([]string, 0, len(summaries))
	for _, s := range summaries {
		dates = append(dates, s.Date)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Where("store_id = ? AND date >= ?", storeID, fromDate)
		if len(dates) > 0 {
			stale = stale.Where("date NOT IN ?", dates)
		}
		if err := stale.Delete(&entity.AnalyticsSummaryModel{}).Error; err != nil {
			return err
		}
		if len(summaries) == 0 {
			return nil
		}
		return tx.Clauses(summaryConflict).CreateInBatches(summaryModels(summaries), upsertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace analytics summaries: %w", err)
	}
	return nil
}

func summaryModels(summaries []*domain.AnalyticsSummary) []*entity.AnalyticsSummaryModel {
	models := make([]*entity.AnalyticsSummaryModel, 0, len(summaries))
	for _, s := range summaries {
		m := entity.AnalyticsSummaryModelFromDomain(s)
		m.ID = uuid.NewString()
		models = append(models, m)
	}
	return models
}

// upsert writes all rows in one transaction so a batch lands entirely or not at all
func (r *GormRepository) upsert(ctx context.Context, onConflict clause.OnConflict, rows any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(onConflict).CreateInBatches(rows, upsertBatchSize).Error
	})
}

func (r *GormRepository) CountProducts(ctx context.Context, storeIDs []string) (int64, error) {
	return r.count(ctx, &entity.ProductModel{}, storeIDs)
}

func (r *GormRepository) CountOrders(ctx context.Context, storeIDs []string) (int64, error) {
	return r.count(ctx, &entity.OrderModel{}, storeIDs)
}

func (r *GormRepository) CountCustomers(ctx context.Context, storeIDs []string) (int64, error) {
	return r.count(ctx, &entity.CustomerModel{}, storeIDs)
}

func (r *GormRepository) count(ctx context.Context, model any, storeIDs []string) (int64, error) {
	if len(storeIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("store_id IN ?", storeIDs).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

// RecentProducts returns the newest products of the stores
func (r *GormRepository) RecentProducts(ctx context.Context, storeIDs []string, limit int) ([]*domain.Product, error) {
	if len(storeIDs) == 0 {
		return []*domain.Product{}, nil
	}
	var models []entity.ProductModel
	err := r.db.WithContext(ctx).
		Where("store_id IN ?", storeIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent products: %w", err)
	}
	products := make([]*domain.Product, 0, len(models))
	for i := range models {
		products = append(products, models[i].ToDomain())
	}
	return products, nil
}

// RecentOrders returns the most recently processed orders of the stores
func (r *GormRepository) RecentOrders(ctx context.Context, storeIDs []string, limit int) ([]*domain.Order, error) {
	if len(storeIDs) == 0 {
		return []*domain.Order{}, nil
	}
	var models []entity.OrderModel
	err := r.db.WithContext(ctx).
		Where("store_id IN ?", storeIDs).
		Order("processed_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	return ordersToDomain(models), nil
}

// RecentCustomers returns the newest customers of the stores
func (r *GormRepository) RecentCustomers(ctx context.Context, storeIDs []string, limit int) ([]*domain.Customer, error) {
	if len(storeIDs) == 0 {
		return []*domain.Customer{}, nil
	}
	var models []entity.CustomerModel
	err := r.db.WithContext(ctx).
		Where("store_id IN ?", storeIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent customers: %w", err)
	}
	customers := make([]*domain.Customer, 0, len(models))
	for i := range models {
		customers = append(customers, models[i].ToDomain())
	}
	return customers, nil
}

// ListPaidOrders returns paid orders of the stores processed at or after since
func (r *GormRepository) ListPaidOrders(ctx context.Context, storeIDs []string, since time.Time) ([]*domain.Order, error) {
	if len(storeIDs) == 0 {
		return []*domain.Order{}, nil
	}
	query := r.db.WithContext(ctx).
		Where("store_id IN ? AND financial_status = ?", storeIDs, domain.FinancialStatusPaid)
	if !since.IsZero() {
		query = query.Where("processed_at >= ?", since.UTC())
	}

	var models []entity.OrderModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list paid orders: %w", err)
	}
	return ordersToDomain(models), nil
}

// ListAnalyticsSummaries returns the latest summary rows of the stores
func (r *GormRepository) ListAnalyticsSummaries(ctx context.Context, storeIDs []string, limit int) ([]*domain.AnalyticsSummary, error) {
	if len(storeIDs) == 0 {
		return []*domain.AnalyticsSummary{}, nil
	}
	var models []entity.AnalyticsSummaryModel
	err := r.db.WithContext(ctx).
		Where("store_id IN ?", storeIDs).
		Order("date DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics summaries: %w", err)
	}
	summaries := make([]*domain.AnalyticsSummary, 0, len(models))
	for i := range models {
		summaries = append(summaries, models[i].ToDomain())
	}
	return summaries, nil
}

func ordersToDomain(models []entity.OrderModel) []*domain.Order {
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, models[i].ToDomain())
	}
	return orders
}
