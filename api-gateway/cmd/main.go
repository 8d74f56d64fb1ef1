package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storefront/services/api-gateway/internal/proxy"
	"github.com/storefront/services/shared/config"
	"github.com/storefront/services/shared/logging"
	"github.com/storefront/services/shared/server"
)

func main() {
	cfg, err := config.Load("API Gateway", "8080")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg.Service.Name, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: 30 * time.Second}

	router := server.NewRouter(cfg.Service.Name, logger)
	router.Any("/user/*path", proxy.To(client, cfg.Gateway.UserServiceURL))
	router.Any("/product/*path", proxy.To(client, cfg.Gateway.ProductServiceURL))

	logger.Info(ctx, "routing",
		"user_service", cfg.Gateway.UserServiceURL,
		"product_service", cfg.Gateway.ProductServiceURL)
	if err := server.Run(ctx, router, cfg.Server.Port, logger); err != nil {
		logger.Error(ctx, "api gateway stopped", "error", err)
		os.Exit(1)
	}
}
