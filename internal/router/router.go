package router

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/shariar-hasan/instaflow/backend/internal/handlers"
	"github.com/shariar-hasan/instaflow/backend/internal/middleware"
	"github.com/shariar-hasan/instaflow/backend/internal/notifier"
	"github.com/shariar-hasan/instaflow/backend/internal/realtime"
	"github.com/shariar-hasan/instaflow/backend/internal/repositories"
	"github.com/shariar-hasan/instaflow/backend/internal/storage"
	"github.com/shariar-hasan/instaflow/backend/pkg/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes wires repositories, the notifier, the relay hub and all
// handlers onto the Echo instance. Returns the notifier so the caller
// can drain it on shutdown.
func SetupRoutes(e *echo.Echo, db *mongo.Database, cfg *config.Config, firebaseAuthClient *auth.Client, log *logrus.Logger) (*notifier.Notifier, error) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// Stored media is served straight off disk.
	e.Static("/uploads", cfg.UploadDir)

	// --- Initialize repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	postRepo := repositories.NewMongoPostRepository(db)
	storyRepo := repositories.NewMongoStoryRepository(db)
	messageRepo := repositories.NewMongoMessageRepository(db)
	notificationRepo := repositories.NewMongoNotificationRepository(db)

	ctx := context.Background()
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := storyRepo.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	log.Info("MongoDB indexes ensured")

	// --- Collaborators ---
	uploader, err := storage.NewUploader(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	n := notifier.New(notificationRepo, log)
	hub := realtime.NewHub(log)

	// --- Access gate ---
	// Every /api route and the relay endpoint sit behind the gate. The
	// Firebase gate takes over when credentials are configured,
	// otherwise tokens are locally signed JWTs.
	var gate echo.MiddlewareFunc
	if firebaseAuthClient != nil {
		gate = middleware.FirebaseAuthMiddleware(firebaseAuthClient, userRepo)
		log.Info("Firebase access gate configured")
	} else {
		gate = middleware.JWTAuthMiddleware(cfg.JWTSecret, userRepo)
		log.Info("JWT access gate configured")
	}

	api := e.Group("/api")
	api.Use(gate)

	userHandler := handlers.NewUserHandler(userRepo, postRepo, storyRepo, n, uploader)
	userHandler.RegisterUserRoutes(api)

	postHandler := handlers.NewPostHandler(postRepo, userRepo, n, uploader)
	postHandler.RegisterPostRoutes(api)

	storyHandler := handlers.NewStoryHandler(storyRepo, userRepo, n, uploader)
	storyHandler.RegisterStoryRoutes(api)

	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo, n, hub, uploader)
	messageHandler.RegisterMessageRoutes(api)

	// Real-time relay.
	e.GET("/ws", realtime.ServeWS(hub), gate)

	log.Info("All routes configured")
	return n, nil
}
