package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	productcmd "github.com/storefront/services/product-service/internal/command"
	"github.com/storefront/services/product-service/internal/handler"
	productqry "github.com/storefront/services/product-service/internal/query"
	"github.com/storefront/services/product-service/internal/repository"
	"github.com/storefront/services/product-service/internal/storage"
	"github.com/storefront/services/shared/config"
	"github.com/storefront/services/shared/database"
	"github.com/storefront/services/shared/events"
	"github.com/storefront/services/shared/logging"
	redisClient "github.com/storefront/services/shared/redis"
	"github.com/storefront/services/shared/server"
)

func main() {
	cfg, err := config.Load("Product Service", "8082")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg.Service.Name, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "product service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	// Database (write store)
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := database.Migrate(ctx, sqlDB); err != nil {
		return err
	}

	// Redis (listing cache and event streaming)
	redis, err := redisClient.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redis.Close()

	images, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client)
	writeRepo := repository.NewProductRepository(db)
	readRepo := repository.NewProductReadRepository(writeRepo, redis.Client, cfg.Product.ListCacheTTL(), logger)

	commands := productcmd.NewProductCommandService(writeRepo, images, readRepo, publisher, logger)
	queries := productqry.NewProductQueryService(readRepo, writeRepo)
	productHandler := handler.NewProductHandler(commands, queries, cfg.Images.MaxBytes)

	router := server.NewRouter(cfg.Service.Name, logger)
	// headroom for the other form fields on top of the image limit
	router.MaxMultipartMemory = cfg.Images.MaxBytes + 1<<20
	g := router.Group("/product")
	{
		g.POST("/save", productHandler.SaveProduct)
		g.GET("/all", productHandler.ListProducts)
		g.GET("/:product_id", productHandler.GetProduct)
		g.DELETE("/delete/:product_id", productHandler.DeleteProduct)
	}

	logger.Info(ctx, "image storage ready", "backend", cfg.Images.Backend)
	return server.Run(ctx, router, cfg.Server.Port, logger)
}
