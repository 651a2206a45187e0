package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"shopapi/internal/models"
	"shopapi/internal/repositories"
	"shopapi/internal/services"
	"shopapi/pkg/audit"
)

// AuthHandler handles HTTP requests for signup and login.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	audit       *audit.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, auditLog *audit.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		audit:       auditLog,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// record writes an audit entry for the auth endpoints, which capture headers
// in addition to the payload.
func (h *AuthHandler) record(c *fiber.Ctx, level audit.Level, message string, status int) {
	h.audit.Record(audit.Entry{
		Level:   level,
		Message: message,
		Method:  c.Method(),
		URL:     c.OriginalURL(),
		Status:  status,
		Headers: c.GetReqHeaders(),
		Payload: string(c.Body()),
	})
}

// HandleSignup creates a new account and returns a bearer token for it.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing signup request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	}
	token, err := h.authService.Register(c.Context(), &user)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			message := "User already exists"
			h.record(c, audit.LevelInfo, fmt.Sprintf("%s - Email: %s", message, user.Email), fiber.StatusBadRequest)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": message,
			})
		case errors.As(err, &ve):
			h.record(c, audit.LevelInfo, ve.Message, fiber.StatusBadRequest)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": ve.Message,
			})
		default:
			log.Printf("Error creating user: %v", err)
			h.record(c, audit.LevelError, fmt.Sprintf("Error creating user - %v", err), fiber.StatusInternalServerError)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error creating user",
				"error":   err.Error(),
			})
		}
	}

	h.record(c, audit.LevelInfo,
		fmt.Sprintf("User created successfully - Email: %s, ID: %s", user.Email, user.ID.Hex()),
		fiber.StatusCreated)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully!",
		"token":   token,
	})
}

// HandleLogin authenticates a user and returns a fresh bearer token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	token, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			message := "Invalid credentials"
			h.record(c, audit.LevelWarn, fmt.Sprintf("%s - Email: %s", message, req.Email), fiber.StatusUnauthorized)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": message,
			})
		}
		log.Printf("Error during login for %s: %v", req.Email, err)
		h.record(c, audit.LevelError, fmt.Sprintf("Error during login - %v", err), fiber.StatusInternalServerError)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error during login",
			"error":   err.Error(),
		})
	}

	h.record(c, audit.LevelInfo, fmt.Sprintf("Login successful - Email: %s", req.Email), fiber.StatusOK)
	return c.JSON(fiber.Map{
		"message": "Login successful!",
		"token":   token,
	})
}
