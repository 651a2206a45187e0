package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopapi/internal/models"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// It enforces the same email uniqueness and not-found semantics as the
// MongoDB implementation.
type MemoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
	}
}

func userQueryValues(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
}

// Create adds a new user, rejecting duplicate emails.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrDuplicate)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID.Hex()] = *user
	return nil
}

// GetByID returns a user by its id.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return &user, nil
}

// GetByEmail returns a user by email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

// Find returns users matching the filter, sorted and windowed.
func (r *MemoryUserRepository) Find(_ context.Context, filter bson.M, sortKeys bson.D, skip, limit int64) ([]models.User, error) {
	r.mu.RLock()
	matched := []models.User{}
	for _, user := range r.users {
		u := user
		if matchFilter(userQueryValues(&u), filter) {
			matched = append(matched, u)
		}
	}
	r.mu.RUnlock()

	if len(sortKeys) == 0 {
		sortKeys = bson.D{{Key: "createdAt", Value: 1}}
	}
	sortByFields(matched, sortKeys, userQueryValues)

	if skip >= int64(len(matched)) {
		return []models.User{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

// Count returns the number of users matching the filter.
func (r *MemoryUserRepository) Count(_ context.Context, filter bson.M) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, user := range r.users {
		u := user
		if matchFilter(userQueryValues(&u), filter) {
			count++
		}
	}
	return count, nil
}

// UpdateFields applies a partial update and returns the updated user.
func (r *MemoryUserRepository) UpdateFields(_ context.Context, id string, fields bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	for name, value := range fields {
		switch name {
		case "firstName":
			user.FirstName, _ = value.(string)
		case "lastName":
			user.LastName, _ = value.(string)
		case "email":
			email, _ := value.(string)
			for otherID, other := range r.users {
				if otherID != id && other.Email == email {
					return nil, fmt.Errorf("user email: %w", ErrDuplicate)
				}
			}
			user.Email = email
		case "password":
			user.Password, _ = value.(string)
		}
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return &user, nil
}

// Replace swaps the stored user and returns the replacement.
func (r *MemoryUserRepository) Replace(_ context.Context, id string, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	for otherID, other := range r.users {
		if otherID != id && other.Email == user.Email {
			return nil, fmt.Errorf("user email: %w", ErrDuplicate)
		}
	}
	user.ID = existing.ID
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = *user
	return user, nil
}

// Delete removes a user and returns the removed record.
func (r *MemoryUserRepository) Delete(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	delete(r.users, id)
	return &user, nil
}

// SetToken stores the current bearer token on the user.
func (r *MemoryUserRepository) SetToken(_ context.Context, id string, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	user.Token = &token
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}
