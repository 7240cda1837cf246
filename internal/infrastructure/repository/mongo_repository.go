package repository

import (
	"context"
	"fmt"
	"time"

	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/infrastructure/repository/entity"
	"storefront-analytics/internal/ports"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	storesCollection    *mongo.Collection
	productsCollection  *mongo.Collection
	ordersCollection    *mongo.Collection
	customersCollection *mongo.Collection
	summaryCollection   *mongo.Collection
}

// NewMongoRepository creates a new MongoDB repository and ensures its unique indexes
func NewMongoRepository(ctx context.Context, db *mongo.Database) (ports.Repository, error) {
	r := &MongoRepository{
		storesCollection:    db.Collection("stores"),
		productsCollection:  db.Collection("products"),
		ordersCollection:    db.Collection("orders"),
		customersCollection: db.Collection("customers"),
		summaryCollection:   db.Collection("analytics_summary"),
	}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *MongoRepository) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := []struct {
		collection *mongo.Collection
		model      mongo.IndexModel
	}{
		{r.storesCollection, mongo.IndexModel{Keys: bson.D{{Key: "shopDomain", Value: 1}}, Options: unique}},
		{r.storesCollection, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{r.productsCollection, mongo.IndexModel{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "shopifyProductId", Value: 1}}, Options: unique}},
		{r.ordersCollection, mongo.IndexModel{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "shopifyOrderId", Value: 1}}, Options: unique}},
		{r.ordersCollection, mongo.IndexModel{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "financialStatus", Value: 1}, {Key: "processedAt", Value: -1}}}},
		{r.customersCollection, mongo.IndexModel{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "shopifyCustomerId", Value: 1}}, Options: unique}},
		{r.summaryCollection, mongo.IndexModel{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "date", Value: 1}}, Options: unique}},
	}

	for _, idx := range indexes {
		if _, err := idx.collection.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.collection.Name(), err)
		}
	}
	return nil
}

// CreateStore inserts a new store
func (r *MongoRepository) CreateStore(ctx context.Context, store *domain.Store) error {
	if store.ID == "" {
		store.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if store.CreatedAt.IsZero() {
		store.CreatedAt = now
	}
	store.UpdatedAt = now

	_, err := r.storesCollection.InsertOne(ctx, entity.MongoStoreDocFromDomain(store))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrStoreExists
	}
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

// GetStore retrieves a store owned by userID
func (r *MongoRepository) GetStore(ctx context.Context, userID, storeID string) (*domain.Store, error) {
	return r.findStore(ctx, bson.M{"_id": storeID, "userId": userID})
}

// GetStoreByDomain retrieves a store by shop domain
func (r *MongoRepository) GetStoreByDomain(ctx context.Context, shopDomain string) (*domain.Store, error) {
	return r.findStore(ctx, bson.M{"shopDomain": shopDomain})
}

func (r *MongoRepository) findStore(ctx context.Context, filter bson.M) (*domain.Store, error) {
	var doc entity.MongoStoreDoc
	err := r.storesCollection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return doc.ToDomain(), nil
}

// ListStores lists every store of userID, newest first
func (r *MongoRepository) ListStores(ctx context.Context, userID string) ([]*domain.Store, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll(ctx, r.storesCollection, bson.M{"userId": userID}, opts, (*entity.MongoStoreDoc).ToDomain)
}

// ListActiveStores lists the active stores of userID, oldest first
func (r *MongoRepository) ListActiveStores(ctx context.Context, userID string) ([]*domain.Store, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	filter := bson.M{"userId": userID, "isActive": true}
	return findAll(ctx, r.storesCollection, filter, opts, (*entity.MongoStoreDoc).ToDomain)
}

// UpsertProducts writes the batch keyed on (storeId, shopifyProductId)
func (r *MongoRepository) UpsertProducts(ctx context.Context, products []*domain.Product) error {
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(products))
	for _, p := range products {
		filter := bson.M{"storeId": p.StoreID, "shopifyProductId": p.ShopifyProductID}
		doc := entity.MongoProductDocFromDomain(p)
		doc.UpdatedAt = now
		models = append(models, upsertModel(filter, doc))
	}
	if err := r.bulkUpsert(ctx, r.productsCollection, models); err != nil {
		return fmt.Errorf("failed to upsert products: %w", err)
	}
	return nil
}

// UpsertOrders writes the batch keyed on (storeId, shopifyOrderId)
func (r *MongoRepository) UpsertOrders(ctx context.Context, orders []*domain.Order) error {
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(orders))
	for _, o := range orders {
		filter := bson.M{"storeId": o.StoreID, "shopifyOrderId": o.ShopifyOrderID}
		doc := entity.MongoOrderDocFromDomain(o)
		doc.UpdatedAt = now
		models = append(models, upsertModel(filter, doc))
	}
	if err := r.bulkUpsert(ctx, r.ordersCollection, models); err != nil {
		return fmt.Errorf("failed to upsert orders: %w", err)
	}
	return nil
}

// UpsertCustomers writes the batch keyed on (storeId, shopifyCustomerId)
func (r *MongoRepository) UpsertCustomers(ctx context.Context, customers []*domain.Customer) error {
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(customers))
	for _, c := range customers {
		filter := bson.M{"storeId": c.StoreID, "shopifyCustomerId": c.ShopifyCustomerID}
		doc := entity.MongoCustomerDocFromDomain(c)
		doc.UpdatedAt = now
		models = append(models, upsertModel(filter, doc))
	}
	if err := r.bulkUpsert(ctx, r.customersCollection, models); err != nil {
		return fmt.Errorf("failed to upsert customers: %w", err)
	}
	return nil
}

// UpsertAnalyticsSummaries writes the batch keyed on (storeId, date)
func (r *MongoRepository) UpsertAnalyticsSummaries(ctx context.Context, summaries []*domain.AnalyticsSummary) error {
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(summaries))
	for _, s := range summaries {
		filter := bson.M{"storeId": s.StoreID, "date": s.Date}
		doc := entity.MongoAnalyticsSummaryDocFromDomain(s)
		doc.UpdatedAt = now
		models = append(models, upsertModel(filter, doc))
	}
	if err := r.bulkUpsert(ctx, r.summaryCollection, models); err != nil {
		return fmt.Errorf("failed to upsert analytics summaries: %w", err)
	}
	return nil
}

// ReplaceAnalyticsSummaries deletes the store's stale summaries from fromDate on,
// then upserts the fresh set. Standalone servers have no multi-document
// transactions, so the two steps run back to back.
func (r *MongoRepository) ReplaceAnalyticsSummaries(ctx context.Context, storeID, fromDate string, summaries []*domain.AnalyticsSummary) error {
	dates := make([]string, 0, len(summaries))
	for _, s := range summaries {
		dates = append(dates, s.Date)
	}

	filter := bson.M{
		"storeId": storeID,
		"date":    bson.M{"$gte": fromDate, "$nin": dates},
	}
	if _, err := r.summaryCollection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete stale analytics summaries: %w", err)
	}
	return r.UpsertAnalyticsSummaries(ctx, summaries)
}

// upsertModel sets the document fields and assigns _id and createdAt only on insert.
// doc must leave both empty.
func upsertModel(filter bson.M, doc any) mongo.WriteModel {
	update := bson.M{
		"$set":         doc,
		"$setOnInsert": bson.M{"_id": uuid.NewString(), "createdAt": time.Now().UTC()},
	}
	return mongo.NewUpdateOneModel().
		SetFilter(filter).
		SetUpdate(update).
		SetUpsert(true)
}

func (r *MongoRepository) bulkUpsert(ctx context.Context, collection *mongo.Collection, models []mongo.WriteModel) error {
	if len(models) == 0 {
		return nil
	}
	_, err := collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *MongoRepository) CountProducts(ctx context.Context, storeIDs []string) (int64, error) {
	return countByStores(ctx, r.productsCollection, storeIDs)
}

func (r *MongoRepository) CountOrders(ctx context.Context, storeIDs []string) (int64, error) {
	return countByStores(ctx, r.ordersCollection, storeIDs)
}

func (r *MongoRepository) CountCustomers(ctx context.Context, storeIDs []string) (int64, error) {
	return countByStores(ctx, r.customersCollection, storeIDs)
}

func countByStores(ctx context.Context, collection *mongo.Collection, storeIDs []string) (int64, error) {
	if len(storeIDs) == 0 {
		return 0, nil
	}
	n, err := collection.CountDocuments(ctx, bson.M{"storeId": bson.M{"$in": storeIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection.Name(), err)
	}
	return n, nil
}

// RecentProducts returns the newest products of the stores
func (r *MongoRepository) RecentProducts(ctx context.Context, storeIDs []string, limit int) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	return findAll(ctx, r.productsCollection, inStores(storeIDs), opts, (*entity.MongoProductDoc).ToDomain)
}

// RecentOrders returns the most recently processed orders of the stores
func (r *MongoRepository) RecentOrders(ctx context.Context, storeIDs []string, limit int) ([]*domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "processedAt", Value: -1}}).SetLimit(int64(limit))
	return findAll(ctx, r.ordersCollection, inStores(storeIDs), opts, (*entity.MongoOrderDoc).ToDomain)
}

// RecentCustomers returns the newest customers of the stores
func (r *MongoRepository) RecentCustomers(ctx context.Context, storeIDs []string, limit int) ([]*domain.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	return findAll(ctx, r.customersCollection, inStores(storeIDs), opts, (*entity.MongoCustomerDoc).ToDomain)
}

// ListPaidOrders returns paid orders of the stores processed at or after since
func (r *MongoRepository) ListPaidOrders(ctx context.Context, storeIDs []string, since time.Time) ([]*domain.Order, error) {
	filter := inStores(storeIDs)
	filter["financialStatus"] = domain.FinancialStatusPaid
	if !since.IsZero() {
		filter["processedAt"] = bson.M{"$gte": since.UTC()}
	}
	return findAll(ctx, r.ordersCollection, filter, options.Find(), (*entity.MongoOrderDoc).ToDomain)
}

// ListAnalyticsSummaries returns the latest summary rows of the stores
func (r *MongoRepository) ListAnalyticsSummaries(ctx context.Context, storeIDs []string, limit int) ([]*domain.AnalyticsSummary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(int64(limit))
	return findAll(ctx, r.summaryCollection, inStores(storeIDs), opts, (*entity.MongoAnalyticsSummaryDoc).ToDomain)
}

func inStores(storeIDs []string) bson.M {
	return bson.M{"storeId": bson.M{"$in": storeIDs}}
}

// findAll decodes every matching document and converts it with toDomain
func findAll[D any, T any](ctx context.Context, collection *mongo.Collection, filter bson.M, opts *options.FindOptions, toDomain func(*D) *T) ([]*T, error) {
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection.Name(), err)
	}
	defer cursor.Close(ctx)

	results := []*T{}
	for cursor.Next(ctx) {
		var doc D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection.Name(), err)
		}
		results = append(results, toDomain(&doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return results, nil
}
