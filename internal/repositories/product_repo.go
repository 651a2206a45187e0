package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"shopapi/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	UpdateFields(ctx context.Context, id string, fields bson.M) (*models.Product, error)
	Replace(ctx context.Context, id string, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id string) (*models.Product, error)
}
