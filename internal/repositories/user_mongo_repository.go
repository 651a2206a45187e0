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

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection("users"),
	}
}

// EnsureIndexes creates the unique index on email. Email uniqueness is
// enforced here, not in application code.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Create inserts a new user document.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID retrieves a single user by its document id.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// Find retrieves users matching the filter with the given sort and window.
func (r *MongoUserRepository) Find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.User, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Count returns the number of users matching the filter.
func (r *MongoUserRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// UpdateFields applies a partial update and returns the updated document.
func (r *MongoUserRepository) UpdateFields(ctx context.Context, id string, fields bson.M) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("user email: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return &user, nil
}

// Replace swaps the full document and returns the replacement.
func (r *MongoUserRepository) Replace(ctx context.Context, id string, user *models.User) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	user.ID = oid
	user.UpdatedAt = time.Now().UTC()
	opts := options.FindOneAndReplace().SetReturnDocument(options.After)
	var replaced models.User
	err = r.collection.FindOneAndReplace(ctx, bson.M{"_id": oid}, user, opts).Decode(&replaced)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("user email: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to replace user %s: %w", id, err)
	}
	return &replaced, nil
}

// Delete removes a user and returns the removed document.
func (r *MongoUserRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	var user models.User
	if err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	return &user, nil
}

// SetToken stores the current bearer token on the user document.
func (r *MongoUserRepository) SetToken(ctx context.Context, id string, token string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	res, err := r.collection.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"token": token, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to store token for user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}
