package services

import (
	"context"
	"fmt"

	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services/common/logger"
	"github.com/yashrajoria/storefront/services/notification-service/models"
	"github.com/yashrajoria/storefront/services/notification-service/repository"
	"github.com/yashrajoria/storefront/services/notification-service/sender"
	"go.uber.org/zap"
)

// NotificationService renders, sends and logs a single notification.
type NotificationService interface {
	Deliver(ctx context.Context, kind models.Kind, summary models.OrderSummary) error
	// ProcessEvent handles a queued event. Deliveries already logged as sent
	// are skipped, which absorbs SQS redelivery.
	ProcessEvent(ctx context.Context, payload *models.EventPayload) error
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
}

type notificationService struct {
	repo    repository.NotificationRepository
	builder *Builder
	sender  sender.EmailSender
	metrics awspkg.Recorder
	logger  *zap.Logger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	builder *Builder,
	emailSender sender.EmailSender,
	metrics awspkg.Recorder,
	logger *zap.Logger,
) NotificationService {
	if metrics == nil {
		metrics = awspkg.NopRecorder{}
	}
	return &notificationService{
		repo:    repo,
		builder: builder,
		sender:  emailSender,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *notificationService) Deliver(ctx context.Context, kind models.Kind, summary models.OrderSummary) error {
	msg, err := s.builder.Build(kind, summary)
	if err != nil {
		return err
	}
	return s.send(ctx, kind, summary, msg)
}

func (s *notificationService) ProcessEvent(ctx context.Context, payload *models.EventPayload) error {
	if !payload.EventType.Valid() {
		return fmt.Errorf("unsupported event type: %s", payload.EventType)
	}
	if payload.RequestID != "" {
		ctx = logger.WithRequestID(ctx, payload.RequestID)
	}

	msg, err := s.builder.Build(payload.EventType, payload.Summary)
	if err != nil {
		return err
	}

	sent, err := s.repo.WasSent(ctx, payload.Summary.OrderID, payload.EventType, msg.To, detailFor(payload.EventType, payload.Summary))
	if err != nil {
		return err
	}
	if sent {
		logger.FromContext(ctx, s.logger).Info("notification already sent, skipping",
			zap.String("order_id", payload.Summary.OrderID),
			zap.String("kind", string(payload.EventType)),
		)
		return nil
	}

	return s.send(ctx, payload.EventType, payload.Summary, msg)
}

func (s *notificationService) send(ctx context.Context, kind models.Kind, summary models.OrderSummary, msg models.Message) error {
	log := logger.FromContext(ctx, s.logger)
	dims := map[string]string{"Kind": string(kind)}

	result, sendErr := s.sender.Send(ctx, msg)

	entry := &models.NotificationLog{
		TenantID:          summary.TenantID,
		OrderID:           summary.OrderID,
		Kind:              kind,
		Detail:            detailFor(kind, summary),
		Recipient:         msg.To,
		Subject:           msg.Subject,
		Status:            models.StatusSent,
		ProviderMessageID: result.MessageID,
	}
	if sendErr != nil {
		entry.Status = models.StatusFailed
		entry.Error = sendErr.Error()
		_ = s.metrics.RecordCount(ctx, awspkg.MetricNotificationsFailed, dims)
	} else {
		_ = s.metrics.RecordCount(ctx, awspkg.MetricNotificationsSent, dims)
	}

	if err := s.repo.SaveLog(ctx, entry); err != nil {
		log.Error("failed to save notification log", zap.Error(err))
	}

	if sendErr != nil {
		return fmt.Errorf("send %s for order %s: %w", kind, summary.OrderID, sendErr)
	}

	log.Info("notification sent",
		zap.String("kind", string(kind)),
		zap.String("order_id", summary.OrderID),
		zap.String("message_id", result.MessageID),
	)
	return nil
}

func (s *notificationService) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	return s.repo.GetLogs(ctx, filter)
}

// detailFor distinguishes two status updates for the same order.
func detailFor(kind models.Kind, summary models.OrderSummary) string {
	if kind == models.KindStatusUpdate {
		return summary.Status
	}
	return ""
}
