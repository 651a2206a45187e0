package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"shopapi/internal/models"
)

// UserRepository defines the interface for user data access. IDs are hex
// document ids; an id that cannot match maps to ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Find(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]models.User, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	UpdateFields(ctx context.Context, id string, fields bson.M) (*models.User, error)
	Replace(ctx context.Context, id string, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) (*models.User, error)
	SetToken(ctx context.Context, id string, token string) error
}
