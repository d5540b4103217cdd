package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/seamarket/backend/internal/handlers"
	"github.com/seamarket/backend/internal/middleware"
	"github.com/seamarket/backend/internal/models"
	"github.com/seamarket/backend/internal/repositories"
	"github.com/seamarket/backend/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, mail handlers.Mailer, jwtSecret string) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.SavedProduct{},
		&models.Notification{},
		&models.NotificationSender{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	subscriptionRepo := repositories.NewPostgresSubscriptionRepository(pgdb)
	savedProductRepo := repositories.NewPostgresSavedProductRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	productRepo := repositories.NewMongoProductRepository(mgClient.Database("seamarket"))

	// --- Initialize Services ---
	eventService := services.NewEventService(userRepo, subscriptionRepo, savedProductRepo, productRepo, notificationRepo)
	feedService := services.NewFeedService(notificationRepo, userRepo, productRepo)
	notificationService := services.NewNotificationService(notificationRepo, savedProductRepo)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, mail, jwtSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(jwtSecret))
	authHandler.RegisterProtectedAuthRoutes(api)
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, subscriptionRepo)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	// Subscription routes
	subscriptionHandler := handlers.NewSubscriptionHandler(eventService)
	subscriptionHandler.RegisterSubscriptionRoutes(api)
	log.Println("Subscription routes configured.")

	// Product routes
	productHandler := handlers.NewProductHandler(productRepo, subscriptionRepo, notificationService)
	productHandler.RegisterProductRoutes(api)
	log.Println("Product routes configured.")

	// Saved product routes
	savedProductHandler := handlers.NewSavedProductHandler(eventService)
	savedProductHandler.RegisterSavedProductRoutes(api)
	log.Println("Saved product routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(feedService, notificationService)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
