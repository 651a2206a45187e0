package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopapi/internal/models"
	"shopapi/internal/repositories"
	"shopapi/internal/services"
)

// MockProductRepository is a mock implementation of
// repositories.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Product, error) {
	args := m.Called(ctx, filter, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateFields(ctx context.Context, id string, fields bson.M) (*models.Product, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Replace(ctx context.Context, id string, product *models.Product) (*models.Product, error) {
	args := m.Called(ctx, id, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func mustDecimal(t *testing.T, s string) models.Decimal {
	t.Helper()
	d, err := models.NewDecimal(s)
	assert.NoError(t, err)
	return d
}

func TestProductService_ListSortsNewestFirst(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expected := []models.Product{{Name: "Laptop"}, {Name: "Keyboard"}}
	mockRepo.On("Find", mock.Anything, bson.M{}, bson.D{{Key: "createdAt", Value: -1}}).
		Return(expected, nil).Once()

	products, err := service.List(context.Background(), "")
	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListPassesWhitelistedFilter(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Find", mock.Anything,
		bson.M{"category": "electronics", "price": bson.M{"$lte": float64(100)}},
		bson.D{{Key: "createdAt", Value: -1}}).
		Return([]models.Product{}, nil).Once()

	_, err := service.List(context.Background(), `{"category":"electronics","price":{"$lte":100}}`)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListRejectsBadFilter(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	var ve *services.ValidationError

	_, err := service.List(context.Background(), `{"$where":"1"}`)
	assert.ErrorAs(t, err, &ve)

	_, err = service.List(context.Background(), `{"category":{"$regex":".*"}}`)
	assert.ErrorAs(t, err, &ve)

	_, err = service.List(context.Background(), `not-json`)
	assert.ErrorAs(t, err, &ve)

	mockRepo.AssertNotCalled(t, "Find")
}

func TestProductService_Create(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	product := &models.Product{
		Name:        "Laptop",
		Description: "High performance laptop",
		Price:       mustDecimal(t, "1199.99"),
		Category:    "electronics",
		Stock:       10,
		Image:       "laptop.png",
	}

	mockRepo.On("Create", mock.Anything, product).Return(nil).Once()
	assert.NoError(t, service.Create(context.Background(), product))
	mockRepo.AssertExpectations(t)

	// Duplicate names surface from the store.
	mockRepo.On("Create", mock.Anything, product).
		Return(fmt.Errorf("product with name Laptop: %w", repositories.ErrDuplicate)).Once()
	err := service.Create(context.Background(), product)
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateRejectsNegativePrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	product := &models.Product{
		Name:        "Laptop",
		Description: "d",
		Price:       mustDecimal(t, "-1"),
		Category:    "electronics",
		Image:       "laptop.png",
	}
	err := service.Create(context.Background(), product)

	var ve *services.ValidationError
	assert.ErrorAs(t, err, &ve)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestProductService_UpdatePartialNormalizesValues(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	id := primitive.NewObjectID().Hex()
	var captured bson.M
	mockRepo.On("UpdateFields", mock.Anything, id, mock.AnythingOfType("primitive.M")).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(bson.M)
		}).Return(&models.Product{}, nil).Once()

	_, err := service.UpdatePartial(context.Background(), id, map[string]interface{}{
		"price": 899.99,
		"stock": float64(45),
	})
	assert.NoError(t, err)

	price, ok := captured["price"].(models.Decimal)
	assert.True(t, ok)
	assert.Equal(t, "899.99", price.String())
	assert.Equal(t, 45, captured["stock"])
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdatePartialRejectsBadValues(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	id := primitive.NewObjectID().Hex()
	var ve *services.ValidationError

	_, err := service.UpdatePartial(context.Background(), id, map[string]interface{}{"price": -5.0})
	assert.ErrorAs(t, err, &ve)

	_, err = service.UpdatePartial(context.Background(), id, map[string]interface{}{"price": "NaN"})
	assert.ErrorAs(t, err, &ve)

	_, err = service.UpdatePartial(context.Background(), id, map[string]interface{}{"price": "Infinity"})
	assert.ErrorAs(t, err, &ve)

	_, err = service.UpdatePartial(context.Background(), id, map[string]interface{}{"stock": 1.5})
	assert.ErrorAs(t, err, &ve)

	_, err = service.UpdatePartial(context.Background(), id, map[string]interface{}{"rating": 5.5})
	assert.ErrorAs(t, err, &ve)

	mockRepo.AssertNotCalled(t, "UpdateFields")
}

func TestProductService_Delete(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	id := primitive.NewObjectID().Hex()
	deleted := &models.Product{Name: "Laptop"}

	mockRepo.On("Delete", mock.Anything, id).Return(deleted, nil).Once()
	product, err := service.Delete(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, deleted, product)

	missing := primitive.NewObjectID().Hex()
	mockRepo.On("Delete", mock.Anything, missing).
		Return(nil, fmt.Errorf("product %s: %w", missing, repositories.ErrNotFound)).Once()
	_, err = service.Delete(context.Background(), missing)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
