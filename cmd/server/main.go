package main

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/shariar-hasan/instaflow/backend/internal/router"
	"github.com/shariar-hasan/instaflow/backend/pkg/config"
	"github.com/shariar-hasan/instaflow/backend/pkg/firebase"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logrus.New()
	if cfg.Env == "development" {
		log.SetLevel(logrus.DebugLevel)
	}

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Firebase gate is optional; without credentials the JWT gate is used.
	var authClient *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		authClient = firebaseApp.AuthClient
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	n, err := router.SetupRoutes(e, db.Database, cfg, authClient, log)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}
	defer n.Close()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
