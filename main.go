package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"productapi/internal/handlers"
	"productapi/internal/middleware"
	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/pkg/logging"
	"productapi/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	databaseURL := viper.GetString("DATABASE_URL")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")
	logLevel := viper.GetString("LOG_LEVEL")

	logger := logging.New(os.Stdout, logLevel)

	// --- Database ---
	// Postgres in production; an in-memory sqlite database when no DSN is
	// configured, which keeps local development self-contained.
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory sqlite", nil)
		dialector = sqlite.Open("file::memory:?cache=shared")
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	// Product lifecycle events are only published when a broker URL is set.
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL}, logger)
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	}

	// --- Wiring ---
	productRepo := repositories.NewGORMProductRepository(db, logger)
	productService := services.NewProductService(productRepo, mqClient, logger)
	productHandler := handlers.NewProductHandler(productService, logger)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(middleware.RequestLogger(logger))

	apiV1 := app.Group("/api")
	productHandler.RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Anything that reached this point matched no route.
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid route",
		})
	})

	// --- Start HTTP Server ---
	logger.Info("starting server", logging.Fields{"port": appPort})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	logger.Info("shutting down server", nil)

	if err := app.Shutdown(); err != nil {
		logger.Error("error during shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("server gracefully stopped", nil)
}
