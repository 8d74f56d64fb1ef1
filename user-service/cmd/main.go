package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/storefront/services/shared/auth"
	"github.com/storefront/services/shared/config"
	"github.com/storefront/services/shared/database"
	"github.com/storefront/services/shared/events"
	"github.com/storefront/services/shared/logging"
	"github.com/storefront/services/shared/middleware"
	"github.com/storefront/services/shared/models"
	redisClient "github.com/storefront/services/shared/redis"
	"github.com/storefront/services/shared/server"
	usercmd "github.com/storefront/services/user-service/internal/command"
	"github.com/storefront/services/user-service/internal/handler"
	"github.com/storefront/services/user-service/internal/notify"
	userqry "github.com/storefront/services/user-service/internal/query"
	"github.com/storefront/services/user-service/internal/repository"
	"github.com/storefront/services/user-service/internal/verify"
)

func main() {
	cfg, err := config.Load("User Service", "8081")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg.Service.Name, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "user service stopped", "error", err)
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

	// Redis (read model, OTP store and event streaming)
	redis, err := redisClient.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redis.Close()

	tokens, err := auth.NewTokenManager(cfg.JWT)
	if err != nil {
		return err
	}

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client)
	otpStore := verify.NewRedisOTPStore(redis.Client, cfg.OTP.TTL())
	captcha := verify.NewCaptchaVerifier(cfg.Captcha.SecretKey, cfg.Captcha.VerifyURL)

	writeRepo := repository.NewUserWriteRepository(db)
	readRepo := repository.NewUserReadRepository(db, redis.Client, logger)
	addressRepo := repository.NewAddressRepository(db)

	userCommands := usercmd.NewUserCommandService(writeRepo, readRepo, captcha, otpStore, otpStore,
		publisher, models.NewRoleSet(cfg.Roles.Allowed), logger)
	addressCommands := usercmd.NewAddressCommandService(writeRepo, addressRepo, logger)
	authQueries := userqry.NewAuthQueryService(writeRepo, readRepo, captcha, tokens, logger)
	addressQueries := userqry.NewAddressQueryService(writeRepo, addressRepo)

	userHandler := handler.NewUserHandler(userCommands, authQueries)
	addressHandler := handler.NewAddressHandler(addressCommands, addressQueries)

	router := server.NewRouter(cfg.Service.Name, logger)
	g := router.Group("/user")
	{
		g.POST("/register", userHandler.Register)
		g.POST("/login", userHandler.Login)
		g.POST("/otp", userHandler.IssueOTP)
		g.GET("/me", middleware.AuthMiddleware(tokens), userHandler.Me)

		g.POST("/users/:user_id/addresses", addressHandler.AddAddress)
		g.GET("/users/:user_id/addresses", addressHandler.ListAddresses)
		g.GET("/addresses/:address_id", addressHandler.GetAddress)
		g.PUT("/addresses/:address_id", addressHandler.UpdateAddress)
		g.DELETE("/addresses/:address_id", addressHandler.DeleteAddress)
	}

	// OTP delivery runs off the user event stream
	dispatcher := notify.NewOTPDispatcher(notify.NewLogSender(logger), logger)
	go func() {
		hostname, _ := os.Hostname()
		subscriber := events.NewSubscriber(redis.Client, logger, events.SubscriberConfig{
			Group:    "user-service-notifier",
			Consumer: "notifier-" + hostname,
			Stream:   events.UserEventsStream,
			Handler:  dispatcher.HandleUserEvent,
		})
		if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error(ctx, "subscriber stopped", "error", err)
		}
	}()

	return server.Run(ctx, router, cfg.Server.Port, logger)
}
