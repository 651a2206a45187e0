package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/streadway/amqp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopapi/internal/config"
	"shopapi/internal/handlers"
	"shopapi/internal/middleware"
	"shopapi/internal/repositories"
	"shopapi/internal/services"
	"shopapi/pkg/audit"
	"shopapi/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	// --- Audit logger ---
	auditLog, err := audit.New(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize audit logger: %v", err)
	}
	defer auditLog.Flush()

	// --- MongoDB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	db := client.Database(cfg.MongoDB)
	log.Printf("Connected to MongoDB database %s", cfg.MongoDB)

	// --- Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	productRepo := repositories.NewMongoProductRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure user indexes: %v", err)
	}
	if err := productRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure product indexes: %v", err)
	}

	// --- Optional RabbitMQ event publication ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		events = mqClient

		go func() {
			log.Println("Starting RabbitMQ consumer for shop events...")
			consumeErr := mqClient.ConsumeEvents(func(msg amqp.Delivery) error {
				log.Printf("Received shop event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			})
			if consumeErr != nil {
				log.Printf("RabbitMQ consumer stopped: %v", consumeErr)
			}
		}()
	}

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, events)
	userService := services.NewUserService(userRepo)
	productService := services.NewProductService(productRepo, events)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, auditLog)
	userHandler := handlers.NewUserHandler(userService, auditLog)
	productHandler := handlers.NewProductHandler(productService, auditLog)

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				return c.Status(code).JSON(fiber.Map{
					"message": "Internal Server Error",
					"error":   err.Error(),
				})
			}
			return c.Status(code).JSON(fiber.Map{
				"message": err.Error(),
			})
		},
	})

	app.Use(middleware.RequestAudit(auditLog))

	// --- Routes ---
	// Public routes must be registered before the guarded group: the group
	// has an empty prefix, so its middleware covers every route added later.
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	})
	authHandler.RegisterRoutes(app)

	protected := app.Group("", middleware.AuthRequired(authService, auditLog))
	productHandler.RegisterRoutes(protected)
	userHandler.RegisterRoutes(protected)

	// --- Start HTTP server ---
	log.Printf("Starting server on %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
