package main

import (
	"context"
	"log"

	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services/common/database"
	"github.com/yashrajoria/storefront/services/common/server"
	"github.com/yashrajoria/storefront/services/common/tenants"
	"github.com/yashrajoria/storefront/services/notification-service/dispatch"
	notifservices "github.com/yashrajoria/storefront/services/notification-service/services"
	ordermodels "github.com/yashrajoria/storefront/services/order-service/models"
	orderrepo "github.com/yashrajoria/storefront/services/order-service/repository"
	orderservices "github.com/yashrajoria/storefront/services/order-service/services"
	"github.com/yashrajoria/storefront/services/payment-service/config"
	"github.com/yashrajoria/storefront/services/payment-service/controllers"
	"github.com/yashrajoria/storefront/services/payment-service/routes"
	"github.com/yashrajoria/storefront/services/payment-service/services"
	"go.uber.org/zap"
)

const serviceName = "payment-service"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	db, err := database.ConnectPostgres(logger, cfg.Postgres, &tenants.Profile{}, &ordermodels.Order{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	dispatcher, err := dispatch.New(cfg.Config, db, obs)
	if err != nil {
		logger.Fatal("Failed to init notification dispatcher", zap.Error(err))
	}
	go notifservices.DrainFailures(ctx, dispatcher, obs.Metrics, logger)

	profiles := tenants.NewGormRepository(db)
	orders := orderservices.NewOrderService(
		orderrepo.NewGormOrderRepository(db),
		profiles,
		dispatcher,
		obs.Metrics,
		logger,
	)

	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	pc := controllers.NewPaymentController(
		services.NewCheckoutService(stripeSvc, profiles, cfg.FeeRate, cfg.Currency, obs.Metrics, logger),
		services.NewOnboardingService(stripeSvc, profiles, obs.Metrics, logger),
		services.NewWebhookService(stripeSvc, orders, obs.Metrics, logger),
	)

	r := server.NewRouter(obs, cfg.Common, serviceName)
	routes.RegisterPaymentRoutes(r, pc, cfg.RateLimitPerMinute)

	logger.Info("Payment service configured",
		zap.String("currency", cfg.Currency),
		zap.String("fee_rate", cfg.FeeRate.String()),
		zap.String("notification_mode", cfg.Mode),
	)

	server.Run(logger, cfg.Port, r, func(shutdownCtx context.Context) {
		if err := dispatcher.Close(shutdownCtx); err != nil {
			logger.Warn("Pending notifications abandoned", zap.Error(err))
		}
		cancel()
	})
}
