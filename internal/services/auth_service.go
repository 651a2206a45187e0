package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"shopapi/internal/models"
	"shopapi/internal/repositories"
)

// passwordPolicyMessage is returned whenever a plaintext password fails the
// composition rule.
const passwordPolicyMessage = "Password must be at least 6 characters long, and include at least one letter, one number, and one special character."

// Claims is the decoded payload of a verified bearer token.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

// EventPublisher publishes domain events after successful mutations.
// A nil publisher disables publication; failures never fail the request.
type EventPublisher interface {
	PublishUserRegistered(event map[string]interface{}) error
	PublishProductCreated(event map[string]interface{}) error
}

// AuthService handles registration, login and bearer-token verification.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	events    EventPublisher
}

// NewAuthService creates a new AuthService. Tokens expire one hour after
// issuance.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, events EventPublisher) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  time.Hour,
		events:    events,
	}
}

// ValidPassword reports whether a plaintext password satisfies the policy:
// at least 6 characters with at least one letter, one digit and one symbol.
func ValidPassword(password string) bool {
	if len(password) < 6 {
		return false
	}
	var letter, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return letter && digit && symbol
}

// Register hashes the user's password, persists the account and returns a
// fresh bearer token. Email uniqueness is enforced by the store.
func (s *AuthService) Register(ctx context.Context, user *models.User) (string, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if !ValidPassword(user.Password) {
		return "", &ValidationError{Message: passwordPolicyMessage}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.SetToken(ctx, user.ID.Hex(), token); err != nil {
		return "", err
	}
	user.Token = &token

	if s.events != nil {
		err := s.events.PublishUserRegistered(map[string]interface{}{
			"id":    user.ID.Hex(),
			"email": user.Email,
		})
		if err != nil {
			log.Printf("Failed to publish user registered event: %v", err)
		}
	}
	return token, nil
}

// Login authenticates by email and password and returns a fresh bearer
// token, persisted on the user record. All failures collapse into
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.SetToken(ctx, user.ID.Hex(), token); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry, returning the decoded claims
// or a typed verification failure.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
