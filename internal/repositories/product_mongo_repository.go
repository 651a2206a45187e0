package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopapi/internal/models"
)

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		collection: db.Collection("products"),
	}
}

// EnsureIndexes creates the unique name index and the category index.
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

// Find retrieves products matching the filter with the given sort.
func (r *MongoProductRepository) Find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Product, error) {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its document id.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	var product models.Product
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product document.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product with name %s: %w", product.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// UpdateFields applies a partial update and returns the updated document.
func (r *MongoProductRepository) UpdateFields(ctx context.Context, id string, fields bson.M) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("product name: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return &product, nil
}

// Replace swaps the full document and returns the replacement.
func (r *MongoProductRepository) Replace(ctx context.Context, id string, product *models.Product) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	product.ID = oid
	product.UpdatedAt = time.Now().UTC()
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	var replaced models.Product
	err = r.collection.FindOneAndReplace(ctx, bson.M{"_id": oid}, product, opts).Decode(&replaced)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("product name: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to replace product %s: %w", id, err)
	}
	return &replaced, nil
}

// Delete removes a product and returns the removed document.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	var product models.Product
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return &product, nil
}
