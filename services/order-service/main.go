package main

import (
	"context"
	"log"

	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services/common/auth"
	"github.com/yashrajoria/storefront/services/common/database"
	"github.com/yashrajoria/storefront/services/common/server"
	"github.com/yashrajoria/storefront/services/common/tenants"
	"github.com/yashrajoria/storefront/services/notification-service/dispatch"
	notifservices "github.com/yashrajoria/storefront/services/notification-service/services"
	"github.com/yashrajoria/storefront/services/order-service/config"
	"github.com/yashrajoria/storefront/services/order-service/controllers"
	"github.com/yashrajoria/storefront/services/order-service/models"
	"github.com/yashrajoria/storefront/services/order-service/repository"
	"github.com/yashrajoria/storefront/services/order-service/routes"
	"github.com/yashrajoria/storefront/services/order-service/services"
	"go.uber.org/zap"
)

const serviceName = "order-service"

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

	db, err := database.ConnectPostgres(logger, cfg.Postgres, &models.Order{}, &tenants.Profile{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	dispatcher, err := dispatch.New(cfg.Config, db, obs)
	if err != nil {
		logger.Fatal("Failed to init notification dispatcher", zap.Error(err))
	}
	go notifservices.DrainFailures(ctx, dispatcher, obs.Metrics, logger)

	parser, err := auth.NewTokenParser(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("Invalid JWT secret", zap.Error(err))
	}

	svc := services.NewOrderService(
		repository.NewGormOrderRepository(db),
		tenants.NewGormRepository(db),
		dispatcher,
		obs.Metrics,
		logger,
	)

	r := server.NewRouter(obs, cfg.Common, serviceName)
	routes.RegisterOrderRoutes(r, controllers.NewOrderController(svc), parser)

	server.Run(logger, cfg.Port, r, func(shutdownCtx context.Context) {
		if err := dispatcher.Close(shutdownCtx); err != nil {
			logger.Warn("Pending notifications abandoned", zap.Error(err))
		}
		cancel()
	})
}
