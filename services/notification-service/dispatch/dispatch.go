// Package dispatch builds the notification dispatcher used by services that
// emit order events.
package dispatch

import (
	"context"
	"fmt"

	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services/common/server"
	"github.com/yashrajoria/storefront/services/notification-service/models"
	"github.com/yashrajoria/storefront/services/notification-service/repository"
	"github.com/yashrajoria/storefront/services/notification-service/sender"
	"github.com/yashrajoria/storefront/services/notification-service/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ModeQueue = "queue"
	ModeSNS   = "sns"
)

type Config struct {
	sender.Config
	Mode        string `envconfig:"NOTIFICATION_MODE" default:"queue"`
	TopicArn    string `envconfig:"NOTIFICATION_SNS_TOPIC_ARN"`
	Workers     int    `envconfig:"NOTIFICATION_WORKERS" default:"4"`
	QueueSize   int    `envconfig:"NOTIFICATION_QUEUE_SIZE" default:"256"`
	FromAddress string `envconfig:"NOTIFICATION_FROM_ADDRESS" default:"orders@storefront.example"`
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeQueue:
		return c.Config.Validate()
	case ModeSNS:
		if c.TopicArn == "" {
			return fmt.Errorf("NOTIFICATION_SNS_TOPIC_ARN is required when NOTIFICATION_MODE=sns")
		}
		return nil
	}
	return fmt.Errorf("unsupported NOTIFICATION_MODE %q", c.Mode)
}

// Dispatcher is a services.Dispatcher that can be drained on shutdown.
type Dispatcher interface {
	services.Dispatcher
	Close(ctx context.Context) error
}

// New returns an SNS dispatcher in sns mode. In queue mode notifications are
// rendered and sent in-process, logging to db.
func New(cfg Config, db *gorm.DB, obs *server.Observability) (Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := obs.Logger.With(zap.String("notification_mode", cfg.Mode))

	if cfg.Mode == ModeSNS {
		if obs.AWS == nil {
			return nil, fmt.Errorf("AWS config unavailable for SNS notifications")
		}
		return services.NewSNSDispatcher(awspkg.NewSNSClient(*obs.AWS), cfg.TopicArn, log), nil
	}

	emailSender, err := sender.New(cfg.Config)
	if err != nil {
		return nil, err
	}
	builder, err := services.NewBuilder(cfg.FromAddress)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.NotificationLog{}); err != nil {
		return nil, fmt.Errorf("migrate notification logs: %w", err)
	}
	svc := services.NewNotificationService(
		repository.NewNotificationRepository(db),
		builder,
		emailSender,
		obs.Metrics,
		log,
	)
	return services.NewQueueDispatcher(svc, cfg.Workers, cfg.QueueSize, log), nil
}
