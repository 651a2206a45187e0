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

// UserHandler handles HTTP requests for the user collection.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
	audit       *audit.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, auditLog *audit.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
		audit:       auditLog,
	}
}

// RegisterRoutes registers the user routes with the Fiber app. The caller is
// expected to pass an auth-guarded router group.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleList)
	userRoutes.Get("/:id", h.HandleGet)
	userRoutes.Patch("/:id", h.HandleUpdate)
	userRoutes.Put("/:id", h.HandleReplace)
	userRoutes.Delete("/:id", h.HandleDelete)
}

// ReplaceUserRequest represents the request body for a full user replacement.
type ReplaceUserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

func (h *UserHandler) record(c *fiber.Ctx, level audit.Level, message string, status int) {
	h.audit.Record(audit.Entry{
		Level:   level,
		Message: message,
		Method:  c.Method(),
		URL:     c.OriginalURL(),
		Status:  status,
		Payload: string(c.Body()),
	})
}

// HandleList returns a page of users with optional filtering and sorting.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	query := services.UserListQuery{
		Filter: c.Query("filter"),
		Sort:   c.Query("sort"),
		Page:   c.Query("page"),
		Limit:  c.Query("limit"),
	}
	result, err := h.userService.List(c.Context(), query)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			h.record(c, audit.LevelWarn, ve.Message, fiber.StatusBadRequest)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": ve.Message,
			})
		}
		log.Printf("Error fetching users: %v", err)
		h.record(c, audit.LevelError, fmt.Sprintf("Error while fetching users - %v", err), fiber.StatusInternalServerError)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error while fetching users",
			"error":   err.Error(),
		})
	}

	h.record(c, audit.LevelInfo,
		fmt.Sprintf("Users fetched - Page: %d, Count: %d", result.Page, len(result.Users)),
		fiber.StatusOK)
	return c.JSON(fiber.Map{
		"message":    "Users fetched!",
		"users":      result.Users,
		"totalUsers": result.TotalUsers,
		"page":       result.Page,
		"totalPages": result.TotalPages,
	})
}

// HandleGet retrieves a single user by id.
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("id")
	user, err := h.userService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.record(c, audit.LevelWarn, fmt.Sprintf("User %s not found", id), fiber.StatusNotFound)
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found!",
			})
		}
		log.Printf("Error fetching user %s: %v", id, err)
		h.record(c, audit.LevelError, fmt.Sprintf("Error while fetching user - %v", err), fiber.StatusInternalServerError)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error while fetching user",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "User fetched!",
		"user":    user,
	})
}

// HandleUpdate applies an allow-listed partial update to a user.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		log.Printf("Error parsing user update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	user, err := h.userService.UpdatePartial(c.Context(), id, fields)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) && len(ve.Fields) > 0 {
			h.record(c, audit.LevelWarn,
				fmt.Sprintf("Invalid update fields: %v", ve.Fields), fiber.StatusBadRequest)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message":       ve.Message,
				"invalidFields": ve.Fields,
			})
		}
		return h.writeMutationError(c, id, err, "Error while updating user")
	}

	h.record(c, audit.LevelInfo, fmt.Sprintf("User %s updated", id), fiber.StatusOK)
	return c.JSON(fiber.Map{
		"message": "User updated!",
		"user":    user,
	})
}

// HandleReplace fully replaces a user's mutable fields.
func (h *UserHandler) HandleReplace(c *fiber.Ctx) error {
	id := c.Params("id")
	var req ReplaceUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing user replace body: %v", err)
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
	replaced, err := h.userService.Replace(c.Context(), id, &user)
	if err != nil {
		return h.writeMutationError(c, id, err, "Error while replacing user")
	}

	h.record(c, audit.LevelInfo, fmt.Sprintf("User %s replaced", id), fiber.StatusOK)
	return c.JSON(fiber.Map{
		"message": "User replaced!",
		"user":    replaced,
	})
}

// HandleDelete removes a user.
func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	user, err := h.userService.Delete(c.Context(), id)
	if err != nil {
		return h.writeMutationError(c, id, err, "Error while deleting user")
	}

	h.record(c, audit.LevelInfo, fmt.Sprintf("User %s deleted", id), fiber.StatusOK)
	return c.JSON(fiber.Map{
		"message": "User deleted!",
		"user":    user,
	})
}

func (h *UserHandler) writeMutationError(c *fiber.Ctx, id string, err error, internalMessage string) error {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		h.record(c, audit.LevelWarn, fmt.Sprintf("User %s not found", id), fiber.StatusNotFound)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	case errors.Is(err, repositories.ErrDuplicate):
		message := "User with this email already exists"
		h.record(c, audit.LevelWarn, message, fiber.StatusBadRequest)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": message,
		})
	case errors.As(err, &ve):
		h.record(c, audit.LevelWarn, ve.Message, fiber.StatusBadRequest)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": ve.Message,
		})
	default:
		log.Printf("%s %s: %v", internalMessage, id, err)
		h.record(c, audit.LevelError, fmt.Sprintf("%s - %v", internalMessage, err), fiber.StatusInternalServerError)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": internalMessage,
			"error":   err.Error(),
		})
	}
}
