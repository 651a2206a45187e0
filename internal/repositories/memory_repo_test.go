package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"shopapi/internal/models"
	"shopapi/internal/repositories"
)

func seedUsers(t *testing.T, repo *repositories.MemoryUserRepository, emails ...string) []models.User {
	t.Helper()
	users := make([]models.User, 0, len(emails))
	for _, email := range emails {
		u := models.User{FirstName: "F", Email: email, Password: "digest"}
		assert.NoError(t, repo.Create(context.Background(), &u))
		users = append(users, u)
	}
	return users
}

func TestMemoryUserRepository_DuplicateEmail(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	seedUsers(t, repo, "a@b.com")

	err := repo.Create(context.Background(), &models.User{Email: "a@b.com"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	count, err := repo.Count(context.Background(), bson.M{})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemoryUserRepository_FindFilterSortWindow(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	seedUsers(t, repo, "c@x.com", "a@x.com", "b@x.com", "d@y.com")

	// Equality filter.
	found, err := repo.Find(context.Background(), bson.M{"email": "a@x.com"}, nil, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, found, 1)

	// Comparison filter with sort and window.
	found, err = repo.Find(context.Background(),
		bson.M{"email": bson.M{"$lt": "d@y.com"}},
		bson.D{{Key: "email", Value: 1}}, 1, 2)
	assert.NoError(t, err)
	if assert.Len(t, found, 2) {
		assert.Equal(t, "b@x.com", found[0].Email)
		assert.Equal(t, "c@x.com", found[1].Email)
	}

	// Skip past the end yields an empty page, not an error.
	found, err = repo.Find(context.Background(), bson.M{}, nil, 100, 10)
	assert.NoError(t, err)
	assert.Empty(t, found)
}

func TestMemoryUserRepository_NotFound(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = repo.UpdateFields(context.Background(), "missing", bson.M{"firstName": "A"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMemoryProductRepository_SortNewestFirst(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	for _, name := range []string{"first", "second", "third"} {
		p := models.Product{Name: name, Category: "c"}
		assert.NoError(t, repo.Create(context.Background(), &p))
		time.Sleep(time.Millisecond)
	}

	products, err := repo.Find(context.Background(), bson.M{}, bson.D{{Key: "createdAt", Value: -1}})
	assert.NoError(t, err)
	if assert.Len(t, products, 3) {
		assert.Equal(t, "third", products[0].Name)
		assert.Equal(t, "first", products[2].Name)
	}
}

func TestMemoryProductRepository_FilterOnPrice(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	cheap, _ := models.NewDecimal("9.99")
	dear, _ := models.NewDecimal("99.99")
	assert.NoError(t, repo.Create(context.Background(), &models.Product{Name: "cheap", Price: cheap}))
	assert.NoError(t, repo.Create(context.Background(), &models.Product{Name: "dear", Price: dear}))

	products, err := repo.Find(context.Background(),
		bson.M{"price": bson.M{"$lt": float64(50)}}, nil)
	assert.NoError(t, err)
	if assert.Len(t, products, 1) {
		assert.Equal(t, "cheap", products[0].Name)
	}
}

func TestMemoryProductRepository_DuplicateName(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	assert.NoError(t, repo.Create(context.Background(), &models.Product{Name: "Laptop"}))

	err := repo.Create(context.Background(), &models.Product{Name: "Laptop"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	other := models.Product{Name: "Keyboard"}
	assert.NoError(t, repo.Create(context.Background(), &other))
	_, err = repo.UpdateFields(context.Background(), other.ID.Hex(), bson.M{"name": "Laptop"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}
