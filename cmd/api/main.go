package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/foodshare/backend/config"
	"github.com/foodshare/backend/internal/api"
	"github.com/foodshare/backend/internal/database"
	"github.com/foodshare/backend/internal/middleware"
	"github.com/foodshare/backend/internal/server"
	"github.com/foodshare/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()

	// Without Redis the server still runs: short links fall back to the
	// in-process store and recipe creation is not rate limited.
	var shortlinks service.ShortLinker = service.NewMemoryShortLinker()
	var limiter *middleware.RateLimiter
	if redisClient, err := database.NewRedisClient(cfg); err != nil {
		log.Printf("Redis unavailable, using in-process short links: %v", err)
	} else {
		shortlinks = service.NewRedisShortLinker(redisClient)
		limiter = middleware.NewRecipeCreationRateLimiter(redisClient)
	}

	var images service.ImageStore = service.NewMemoryImageStore()
	if cfg.S3Bucket != "" {
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize S3: %v", err)
		}
		images = service.NewS3ImageStore(s3Config)
	} else {
		log.Println("No S3 bucket configured, storing images in memory")
	}

	auth := service.NewAuthService(db, images, cfg.JWTSecret)
	profiles := service.NewProfileService(db)
	catalog := service.NewCatalogService(db)
	recipes := service.NewRecipeService(db, images, profiles)
	relations := service.NewRelationService(db, profiles)
	shopping := service.NewShoppingListService(db)

	srv := server.New(
		db,
		api.NewCatalogHandler(catalog),
		api.NewUserHandler(auth, profiles, relations),
		api.NewRecipeHandler(recipes, relations, shopping, shortlinks, auth, limiter, cfg.PublicHost),
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(cfg.ServerPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	if err := srv.Stop(context.Background()); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
