package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"

	"obrolan/internal/handlers"
	"obrolan/internal/middleware"
	"obrolan/internal/models"
	"obrolan/internal/repositories"
	"obrolan/internal/services"
	"obrolan/pkg/rabbitmq"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("STORE_BACKEND", "sqlite") // postgres | sqlite | memory
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("SQLITE_PATH", "obrolan.db")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("JWT_SECRET", "change-me")
	viper.SetDefault("BOOTSTRAP_SECRET", "")
	viper.SetDefault("BOOTSTRAP_ADMIN", "admin")
	viper.SetDefault("SOURCE_BUNDLE_PATH", "")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")

	// --- Initialize Repositories ---
	// The persistent backend stores records through GORM; the local-simulation
	// backend keeps them in process-private maps. Both serve the identical
	// route contract below.
	var userRepo repositories.UserRepository
	var settingRepo repositories.SettingRepository

	switch backend := viper.GetString("STORE_BACKEND"); backend {
	case "memory":
		userRepo = repositories.NewMemoryUserRepository()
		settingRepo = repositories.NewMemorySettingRepository()
		log.Println("Using in-memory simulation store")
	default:
		db, err := openDatabase()
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.AutoMigrate(&models.User{}, &models.Setting{}); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		userRepo = repositories.NewGORMUserRepository(db)
		settingRepo = repositories.NewGORMSettingRepository(db)
		log.Printf("Using persistent store (%s)", backend)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL := viper.GetString("RABBITMQ_URL"); rabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit

		// Log broadcast events; real consumers (client gateways, moderation
		// tooling) bind their own queues.
		go func() {
			log.Println("Starting RabbitMQ consumer for admin events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received admin event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeAdminEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	adminCfg := services.AdminConfig{
		BootstrapSecret: viper.GetString("BOOTSTRAP_SECRET"),
		BootstrapAdmin:  viper.GetString("BOOTSTRAP_ADMIN"),
		SourcePath:      viper.GetString("SOURCE_BUNDLE_PATH"),
	}

	app := buildApp(userRepo, settingRepo, mqClient, viper.GetString("JWT_SECRET"), adminCfg)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase opens the configured persistent store: PostgreSQL when
// DATABASE_URL is set, a SQLite file otherwise.
func openDatabase() (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	if dsn := viper.GetString("DATABASE_URL"); dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return db, nil
	}
	db, err := gorm.Open(sqlite.Open(viper.GetString("SQLITE_PATH")), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return db, nil
}

// buildApp assembles services, handlers and routes on a Fiber app. Both the
// persistent and the simulation backend run this identical assembly; only the
// repositories differ.
func buildApp(userRepo repositories.UserRepository, settingRepo repositories.SettingRepository, mqClient *rabbitmq.Client, jwtSecret string, adminCfg services.AdminConfig) *fiber.App {
	authService := services.NewAuthService(userRepo, jwtSecret)
	directoryService := services.NewDirectoryService(userRepo)
	adminService := services.NewAdminService(userRepo, settingRepo, mqClient, adminCfg)

	authHandler := handlers.NewAuthHandler(authService)
	publicHandler := handlers.NewPublicHandler(directoryService)
	adminHandler := handlers.NewAdminHandler(adminService)

	app := fiber.New()
	app.Use(logger.New()) // Request logger

	publicHandler.RegisterRoutes(app)
	authHandler.RegisterRoutes(app)
	adminHandler.RegisterRoutes(app, middleware.IdentityRequired(authService))

	// Anything unrouted falls through to the shared 404 envelope.
	app.Use(handlers.NotFoundHandler)

	return app
}
