package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"shopapi/internal/models"
	"shopapi/internal/repositories"
)

// userUpdateAllowList names the only fields a partial user update may touch.
var userUpdateAllowList = map[string]bool{
	"firstName": true,
	"lastName":  true,
	"email":     true,
	"password":  true,
}

// UserListQuery carries the raw listing parameters from the request.
type UserListQuery struct {
	Filter string
	Sort   string
	Page   string
	Limit  string
}

// UserListResult is one page of users plus pagination metadata.
type UserListResult struct {
	Users      []models.User
	TotalUsers int64
	Page       int
	TotalPages int
}

// UserService handles business logic for the user collection.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// List returns a page of users. Page and limit default to 1 and 10 and must
// be positive integers; both are validated before any store query runs.
func (s *UserService) List(ctx context.Context, q UserListQuery) (*UserListResult, error) {
	page, limit := 1, 10
	if q.Page != "" {
		n, err := strconv.Atoi(q.Page)
		if err != nil || n <= 0 {
			return nil, &ValidationError{Message: "Invalid page number"}
		}
		page = n
	}
	if q.Limit != "" {
		n, err := strconv.Atoi(q.Limit)
		if err != nil || n <= 0 {
			return nil, &ValidationError{Message: "Invalid limit number"}
		}
		limit = n
	}

	filter, err := repositories.BuildFilter(q.Filter, repositories.UserQueryFields)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	sortKeys, err := repositories.BuildSort(q.Sort, repositories.UserQueryFields)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	skip := int64(page-1) * int64(limit)
	users, err := s.repo.Find(ctx, filter, sortKeys, skip, int64(limit))
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &UserListResult{
		Users:      users,
		TotalUsers: total,
		Page:       page,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Get retrieves a single user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdatePartial applies a partial update. Any field outside the allow-list
// rejects the whole request before the store is touched; password values are
// re-hashed and emails lowercased.
func (s *UserService) UpdatePartial(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	var invalid []string
	for name := range fields {
		if !userUpdateAllowList[name] {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, &ValidationError{Message: "Invalid update fields", Fields: invalid}
	}

	update := bson.M{}
	for name, value := range fields {
		update[name] = value
	}
	if email, ok := update["email"].(string); ok {
		update["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	if password, ok := update["password"]; ok {
		plaintext, ok := password.(string)
		if !ok || !ValidPassword(plaintext) {
			return nil, &ValidationError{Message: passwordPolicyMessage}
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		update["password"] = string(hashed)
	}

	return s.repo.UpdateFields(ctx, id, update)
}

// Replace fully replaces the user's mutable fields. The stored token is
// cleared; the caller must log in again to obtain one.
func (s *UserService) Replace(ctx context.Context, id string, user *models.User) (*models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if !ValidPassword(user.Password) {
		return nil, &ValidationError{Message: passwordPolicyMessage}
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	user.Token = nil

	return s.repo.Replace(ctx, id, user)
}

// Delete removes a user and returns the removed record.
func (s *UserService) Delete(ctx context.Context, id string) (*models.User, error) {
	return s.repo.Delete(ctx, id)
}
