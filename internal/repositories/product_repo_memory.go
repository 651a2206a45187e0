package repositories

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopapi/internal/models"
)

// MemoryProductRepository is an in-memory implementation of
// ProductRepository with the same name-uniqueness and not-found semantics
// as the MongoDB implementation.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

func productQueryValues(p *models.Product) map[string]interface{} {
	return map[string]interface{}{
		"name":      p.Name,
		"category":  p.Category,
		"price":     p.Price,
		"stock":     p.Stock,
		"rating":    p.Rating,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
	}
}

// Find returns products matching the filter in the given order.
func (r *MemoryProductRepository) Find(_ context.Context, filter bson.M, sortKeys bson.D) ([]models.Product, error) {
	r.mu.RLock()
	matched := []models.Product{}
	for _, product := range r.products {
		p := product
		if matchFilter(productQueryValues(&p), filter) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	sortByFields(matched, sortKeys, productQueryValues)
	return matched, nil
}

// GetByID returns a product by its id.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product, rejecting duplicate names.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.products {
		if existing.Name == product.Name {
			return fmt.Errorf("product with name %s: %w", product.Name, ErrDuplicate)
		}
	}
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products[product.ID.Hex()] = *product
	return nil
}

// UpdateFields applies a partial update and returns the updated product.
func (r *MemoryProductRepository) UpdateFields(_ context.Context, id string, fields bson.M) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	for name, value := range fields {
		switch name {
		case "name":
			proposed, _ := value.(string)
			for otherID, other := range r.products {
				if otherID != id && other.Name == proposed {
					return nil, fmt.Errorf("product name: %w", ErrDuplicate)
				}
			}
			product.Name = proposed
		case "description":
			product.Description, _ = value.(string)
		case "category":
			product.Category, _ = value.(string)
		case "image":
			product.Image, _ = value.(string)
		case "price":
			if d, ok := value.(models.Decimal); ok {
				product.Price = d
			} else if f, ok := toFloat(value); ok {
				d, err := models.NewDecimal(strconv.FormatFloat(f, 'f', -1, 64))
				if err != nil {
					return nil, err
				}
				product.Price = d
			}
		case "stock":
			if f, ok := toFloat(value); ok {
				product.Stock = int(f)
			}
		case "rating":
			if f, ok := toFloat(value); ok {
				product.Rating = f
			}
		}
	}
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = product
	return &product, nil
}

// Replace swaps the stored product and returns the replacement.
func (r *MemoryProductRepository) Replace(_ context.Context, id string, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	for otherID, other := range r.products {
		if otherID != id && other.Name == product.Name {
			return nil, fmt.Errorf("product name: %w", ErrDuplicate)
		}
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.products[id] = *product
	return product, nil
}

// Delete removes a product and returns the removed record.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return &product, nil
}
