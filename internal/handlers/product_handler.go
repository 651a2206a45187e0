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

// ProductHandler handles HTTP requests for the product collection.
type ProductHandler struct {
	productService *services.ProductService
	validate       *validator.Validate
	audit          *audit.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService, auditLog *audit.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validate:       validator.New(),
		audit:          auditLog,
	}
}

// RegisterRoutes registers the product routes with the Fiber app. The caller
// is expected to pass an auth-guarded router group.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleList)
	productRoutes.Get("/:id", h.HandleGet)
	productRoutes.Post("/", h.HandleCreate)
	productRoutes.Patch("/:id", h.HandleUpdate)
	productRoutes.Put("/:id", h.HandleReplace)
	productRoutes.Delete("/:id", h.HandleDelete)
}

// ProductRequest represents the request body for create and replace. Price
// and stock are pointers so that an absent field fails validation instead of
// silently defaulting to zero.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,min=3,max=30"`
	Description string          `json:"description" validate:"required"`
	Price       *models.Decimal `json:"price" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Stock       *int            `json:"stock" validate:"required,gte=0"`
	Rating      float64         `json:"rating" validate:"gte=0,lte=5"`
	Image       string          `json:"image" validate:"required"`
}

func (r *ProductRequest) product() models.Product {
	return models.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       *r.Price,
		Category:    r.Category,
		Stock:       *r.Stock,
		Rating:      r.Rating,
		Image:       r.Image,
	}
}

func (h *ProductHandler) record(c *fiber.Ctx, level audit.Level, message string, status int) {
	h.audit.Record(audit.Entry{
		Level:   level,
		Message: message,
		Method:  c.Method(),
		URL:     c.OriginalURL(),
		Status:  status,
		Payload: string(c.Body()),
	})
}

// HandleList retrieves all products matching the optional filter, newest
// first.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.productService.List(c.Context(), c.Query("filter"))
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			h.record(c, audit.LevelWarn, ve.Message, fiber.StatusBadRequest)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": ve.Message,
			})
		}
		log.Printf("Error fetching products: %v", err)
		h.record(c, audit.LevelError, fmt.Sprintf("Error while fetching products - %v", err), fiber.StatusInternalServerError)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error while fetching products",
			"error":   err.Error(),
		})
	}

	h.record(c, audit.LevelInfo, fmt.Sprintf("Products fetched - Count: %d", len(products)), fiber.StatusOK)
	return c.JSON(fiber.Map{
		"message":  "Products fetched!",
		"products": products,
	})
}

// HandleGet retrieves a single product by id.
func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.productService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.record(c, audit.LevelWarn, fmt.Sprintf("Product %s not found", id), fiber.StatusNotFound)
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found!",
			})
		}
		log.Printf("Error fetching product %s: %v", id, err)
		h.record(c, audit.LevelError, fmt.Sprintf("Error while fetching product - %v", err), fiber.StatusInternalServerError)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error while fetching product",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Product fetched!",
		"product": product,
	})
}

// HandleCreate inserts a new product.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	product := req.product()
	if err := h.productService.Create(c.Context(), &product); err != nil {
		var ve *services.ValidationError
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			message := "Product with this name already exists"
			h.record(c, audit.LevelWarn, fmt.Sprintf("%s - Name: %s", message, product.Name), fiber.StatusBadRequest)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": message,
			})
		case errors.As(err, &ve):
			h.record(c, audit.LevelWarn, ve.Message, fiber.StatusBadRequest)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": ve.Message,
			})
		default:
			log.Printf("Error creating product: %v", err)
			h.record(c, audit.LevelError, fmt.Sprintf("Error saving product - %v", err), fiber.StatusInternalServerError)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error saving product",
				"error":   err.Error(),
			})
		}
	}

	h.record(c, audit.LevelInfo, fmt.Sprintf("Product created: %s", product.ID.Hex()), fiber.StatusCreated)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created!",
		"product": product,
	})
}

// HandleUpdate applies a partial update to a product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		log.Printf("Error parsing product update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.productService.UpdatePartial(c.Context(), id, fields)
	if err != nil {
		return h.writeMutationError(c, id, err, "Error while updating product")
	}

	h.record(c, audit.LevelInfo, fmt.Sprintf("Product %s updated", id), fiber.StatusOK)
	return c.JSON(fiber.Map{
		"message": "Product updated!",
		"product": product,
	})
}

// HandleReplace fully replaces a product.
func (h *ProductHandler) HandleReplace(c *fiber.Ctx) error {
	id := c.Params("id")
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing product replace body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	product := req.product()
	replaced, err := h.productService.Replace(c.Context(), id, &product)
	if err != nil {
		return h.writeMutationError(c, id, err, "Error while replacing product")
	}

	h.record(c, audit.LevelInfo, fmt.Sprintf("Product %s replaced", id), fiber.StatusOK)
	return c.JSON(fiber.Map{
		"message": "Product replaced!",
		"product": replaced,
	})
}

// HandleDelete removes a product.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.productService.Delete(c.Context(), id)
	if err != nil {
		return h.writeMutationError(c, id, err, "Error while deleting product")
	}

	h.record(c, audit.LevelInfo, fmt.Sprintf("Product %s deleted", id), fiber.StatusOK)
	return c.JSON(fiber.Map{
		"message": "Product deleted!",
		"product": product,
	})
}

func (h *ProductHandler) writeMutationError(c *fiber.Ctx, id string, err error, internalMessage string) error {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		h.record(c, audit.LevelWarn, fmt.Sprintf("Product %s not found", id), fiber.StatusNotFound)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	case errors.Is(err, repositories.ErrDuplicate):
		message := "Product with this name already exists"
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
