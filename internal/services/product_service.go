package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"

	"shopapi/internal/models"
	"shopapi/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, events EventPublisher) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
	}
}

// List returns all products matching the filter, newest first.
func (s *ProductService) List(ctx context.Context, rawFilter string) ([]models.Product, error) {
	filter, err := repositories.BuildFilter(rawFilter, repositories.ProductQueryFields)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	return s.repo.Find(ctx, filter, bson.D{{Key: "createdAt", Value: -1}})
}

// Get retrieves a single product by id.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Create inserts a new product. Name uniqueness is enforced by the store.
func (s *ProductService) Create(ctx context.Context, product *models.Product) error {
	if product.Price.IsNegative() {
		return &ValidationError{Message: "Price must be a positive decimal number"}
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}

	if s.events != nil {
		err := s.events.PublishProductCreated(map[string]interface{}{
			"id":       product.ID.Hex(),
			"name":     product.Name,
			"category": product.Category,
		})
		if err != nil {
			log.Printf("Failed to publish product created event: %v", err)
		}
	}
	return nil
}

// UpdatePartial applies a partial update. Unlike user updates there is no
// field allow-list; unknown keys are simply written through to the document.
func (s *ProductService) UpdatePartial(ctx context.Context, id string, fields map[string]interface{}) (*models.Product, error) {
	update := bson.M{}
	for name, value := range fields {
		update[name] = value
	}
	if err := normalizeProductFields(update); err != nil {
		return nil, err
	}
	return s.repo.UpdateFields(ctx, id, update)
}

// Replace fully replaces the product's mutable fields.
func (s *ProductService) Replace(ctx context.Context, id string, product *models.Product) (*models.Product, error) {
	if product.Price.IsNegative() {
		return nil, &ValidationError{Message: "Price must be a positive decimal number"}
	}
	return s.repo.Replace(ctx, id, product)
}

// Delete removes a product and returns the removed record.
func (s *ProductService) Delete(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.Delete(ctx, id)
}

// normalizeProductFields coerces JSON-decoded update values to their stored
// types and checks their range constraints.
func normalizeProductFields(update bson.M) error {
	if v, ok := update["price"]; ok {
		d, err := decimalValue(v)
		if err != nil {
			return &ValidationError{Message: "Price must be a decimal number"}
		}
		if d.IsNegative() {
			return &ValidationError{Message: "Price must be a positive decimal number"}
		}
		update["price"] = d
	}
	if v, ok := update["stock"]; ok {
		f, isNum := v.(float64)
		if !isNum || f < 0 || f != math.Trunc(f) {
			return &ValidationError{Message: "Stock must be a non-negative integer"}
		}
		update["stock"] = int(f)
	}
	if v, ok := update["rating"]; ok {
		f, isNum := v.(float64)
		if !isNum || f < 0 || f > 5 {
			return &ValidationError{Message: "Rating must be between 0 and 5"}
		}
	}
	return nil
}

func decimalValue(v interface{}) (models.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return models.NewDecimal(strconv.FormatFloat(n, 'f', -1, 64))
	case string:
		return models.NewDecimal(n)
	}
	return models.Decimal{}, fmt.Errorf("unsupported price value %v", v)
}
