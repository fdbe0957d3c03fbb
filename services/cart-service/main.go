package main

import (
	"context"
	"log"

	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services/cart-service/clients"
	"github.com/yashrajoria/storefront/services/cart-service/config"
	"github.com/yashrajoria/storefront/services/cart-service/controllers"
	"github.com/yashrajoria/storefront/services/cart-service/database"
	"github.com/yashrajoria/storefront/services/cart-service/routes"
	"github.com/yashrajoria/storefront/services/cart-service/services"
	"github.com/yashrajoria/storefront/services/common/server"
	"go.uber.org/zap"
)

const serviceName = "cart-service"

func main() {
	ctx := context.Background()

	var sm awspkg.SecretGetter
	if awsCfg, err := awspkg.LoadAWSConfig(ctx); err == nil {
		sm = awspkg.NewSecretsClient(awsCfg)
	}

	cfg, err := config.LoadConfig(ctx, sm)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obs, err := server.NewObservability(ctx, cfg.Common, serviceName)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	logger := obs.Logger
	defer logger.Sync() //nolint:errcheck

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	logger.Info("Connected to Redis", zap.Duration("cart_ttl", cfg.CartTTL))

	svc := services.NewCartService(
		database.NewRedisStorage(redisClient, cfg.CartTTL),
		clients.NewPaymentClient(cfg.PaymentServiceURL),
		logger,
	)

	r := server.NewRouter(obs, cfg.Common, serviceName)
	routes.RegisterCartRoutes(r, controllers.NewCartController(svc), cfg.RateLimit)

	server.Run(logger, cfg.Port, r, func(context.Context) {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	})
}
