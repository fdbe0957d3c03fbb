package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services/notification-service/models"
	"github.com/yashrajoria/storefront/services/notification-service/services"
	"go.uber.org/zap"
)

// snsEnvelope unwraps the SNS -> SQS message wrapper
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// NewHandler returns the SQS message handler. Bodies may be raw event payloads
// or SNS notifications wrapping one. Undecodable bodies are logged and
// acknowledged since redelivery cannot fix them.
func NewHandler(svc services.NotificationService, logger *zap.Logger) func(ctx context.Context, body string) error {
	return func(ctx context.Context, body string) error {
		payload, err := decode(body)
		if err != nil {
			logger.Error("dropping undecodable notification message", zap.Error(err))
			return nil
		}
		return svc.ProcessEvent(ctx, payload)
	}
}

// Poller is satisfied by *awspkg.SQSConsumer.
type Poller interface {
	StartPolling(ctx context.Context, handler awspkg.MessageHandler) error
}

// Run polls until ctx is canceled. Any other exit is logged at error level.
func Run(ctx context.Context, poller Poller, svc services.NotificationService, logger *zap.Logger) {
	err := poller.StartPolling(ctx, NewHandler(svc, logger))
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	logger.Error("SQS polling exited", zap.Error(err))
}

func decode(body string) (*models.EventPayload, error) {
	raw := body

	var env snsEnvelope
	if err := json.Unmarshal([]byte(body), &env); err == nil && env.Type == "Notification" && env.Message != "" {
		raw = env.Message
	}

	var payload models.EventPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("invalid notification payload: %w", err)
	}
	if !payload.EventType.Valid() {
		return nil, fmt.Errorf("unsupported event type %q", payload.EventType)
	}
	return &payload, nil
}
