package main

import (
	"context"
	"log"

	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services/common/auth"
	"github.com/yashrajoria/storefront/services/common/database"
	"github.com/yashrajoria/storefront/services/common/server"
	"github.com/yashrajoria/storefront/services/notification-service/config"
	"github.com/yashrajoria/storefront/services/notification-service/consumer"
	"github.com/yashrajoria/storefront/services/notification-service/controllers"
	"github.com/yashrajoria/storefront/services/notification-service/models"
	"github.com/yashrajoria/storefront/services/notification-service/repository"
	"github.com/yashrajoria/storefront/services/notification-service/routes"
	"github.com/yashrajoria/storefront/services/notification-service/sender"
	"github.com/yashrajoria/storefront/services/notification-service/services"
	"go.uber.org/zap"
)

const serviceName = "notification-service"

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

	db, err := database.ConnectPostgres(logger, cfg.Postgres, &models.NotificationLog{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	emailSender, err := sender.New(cfg.Config)
	if err != nil {
		logger.Fatal("Failed to init email sender", zap.Error(err))
	}
	builder, err := services.NewBuilder(cfg.FromAddress)
	if err != nil {
		logger.Fatal("Failed to load templates", zap.Error(err))
	}

	svc := services.NewNotificationService(
		repository.NewNotificationRepository(db),
		builder,
		emailSender,
		obs.Metrics,
		logger,
	)

	if cfg.QueueURL != "" && obs.AWS != nil {
		sqsConsumer := awspkg.NewSQSConsumer(*obs.AWS, cfg.QueueURL, logger)
		go consumer.Run(ctx, sqsConsumer, svc, logger)
	} else {
		logger.Warn("SQS_QUEUE_URL not set, queued notifications will not be consumed")
	}

	r := server.NewRouter(obs, cfg.Common, serviceName)
	if cfg.JWTSecret != "" {
		parser, err := auth.NewTokenParser(cfg.JWTSecret)
		if err != nil {
			logger.Fatal("Invalid JWT secret", zap.Error(err))
		}
		routes.RegisterNotificationRoutes(r, controllers.NewNotificationController(svc), parser)
	}

	server.Run(logger, cfg.Port, r, func(context.Context) { cancel() })
}
