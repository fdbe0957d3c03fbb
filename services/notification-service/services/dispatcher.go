package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"github.com/yashrajoria/storefront/services/common/logger"
	"github.com/yashrajoria/storefront/services/notification-service/models"
	"go.uber.org/zap"
)

// ErrQueueFull is reported when a notification is dropped because the queue is saturated.
var ErrQueueFull = errors.New("notification queue full")

// ErrDispatcherClosed is reported for notifications submitted after Close.
var ErrDispatcherClosed = errors.New("notification dispatcher closed")

// Dispatcher submits a notification without waiting for it. Outcomes are
// reported on Failures, never to the caller.
type Dispatcher interface {
	Notify(ctx context.Context, kind models.Kind, summary models.OrderSummary)
	Failures() <-chan DispatchFailure
}

// DispatchFailure describes a notification that did not go out.
type DispatchFailure struct {
	Kind    models.Kind
	OrderID string
	Err     error
	At      time.Time
}

// failureSink is a bounded failure channel. When nobody drains it the failure
// is only logged.
type failureSink struct {
	ch     chan DispatchFailure
	logger *zap.Logger
}

func newFailureSink(size int, logger *zap.Logger) failureSink {
	return failureSink{ch: make(chan DispatchFailure, size), logger: logger}
}

func (f failureSink) report(kind models.Kind, orderID string, err error) {
	failure := DispatchFailure{Kind: kind, OrderID: orderID, Err: err, At: time.Now()}
	select {
	case f.ch <- failure:
	default:
		f.logger.Error("notification failure channel full",
			zap.String("kind", string(kind)),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}

func (f failureSink) Failures() <-chan DispatchFailure { return f.ch }

type job struct {
	kind      models.Kind
	summary   models.OrderSummary
	requestID string
}

// QueueDispatcher runs deliveries on a fixed pool of workers fed by a bounded queue.
type QueueDispatcher struct {
	failureSink
	deliver     func(ctx context.Context, kind models.Kind, summary models.OrderSummary) error
	queue       chan job
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueueDispatcher(svc NotificationService, workers, queueSize int, logger *zap.Logger) *QueueDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &QueueDispatcher{
		failureSink: newFailureSink(queueSize, logger),
		deliver:     svc.Deliver,
		queue:       make(chan job, queueSize),
		sendTimeout: 30 * time.Second,
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

func (d *QueueDispatcher) Notify(ctx context.Context, kind models.Kind, summary models.OrderSummary) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.report(kind, summary.OrderID, ErrDispatcherClosed)
		return
	}

	select {
	case d.queue <- job{kind: kind, summary: summary, requestID: logger.RequestID(ctx)}:
	default:
		d.report(kind, summary.OrderID, ErrQueueFull)
	}
}

func (d *QueueDispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		d.run(j)
	}
}

func (d *QueueDispatcher) run(j job) {
	ctx, cancel := context.WithTimeout(logger.WithRequestID(context.Background(), j.requestID), d.sendTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.report(j.kind, j.summary.OrderID, errors.New("notification worker panicked"))
		}
	}()

	if err := d.deliver(ctx, j.kind, j.summary); err != nil {
		d.report(j.kind, j.summary.OrderID, err)
	}
}

// Close stops accepting work and waits for queued notifications until ctx expires.
func (d *QueueDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SNSDispatcher publishes notifications to a topic consumed by notification-service.
type SNSDispatcher struct {
	failureSink
	publisher      awspkg.SNSPublisher
	topicArn       string
	publishTimeout time.Duration
	wg             sync.WaitGroup
}

func NewSNSDispatcher(publisher awspkg.SNSPublisher, topicArn string, logger *zap.Logger) *SNSDispatcher {
	return &SNSDispatcher{
		failureSink:    newFailureSink(64, logger),
		publisher:      publisher,
		topicArn:       topicArn,
		publishTimeout: 10 * time.Second,
	}
}

func (d *SNSDispatcher) Notify(ctx context.Context, kind models.Kind, summary models.OrderSummary) {
	body, err := json.Marshal(models.EventPayload{
		EventType: kind,
		Summary:   summary,
		RequestID: logger.RequestID(ctx),
	})
	if err != nil {
		d.report(kind, summary.OrderID, err)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		pubCtx, cancel := context.WithTimeout(context.Background(), d.publishTimeout)
		defer cancel()
		if err := d.publisher.PublishWithType(pubCtx, d.topicArn, string(kind), body); err != nil {
			d.report(kind, summary.OrderID, err)
		}
	}()
}

// Close waits for in-flight publishes until ctx expires.
func (d *SNSDispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainFailures logs and counts failures until ctx is done.
func DrainFailures(ctx context.Context, d Dispatcher, metrics awspkg.Recorder, log *zap.Logger) {
	if metrics == nil {
		metrics = awspkg.NopRecorder{}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case f := <-d.Failures():
			metric := awspkg.MetricNotificationsFailed
			if errors.Is(f.Err, ErrQueueFull) || errors.Is(f.Err, ErrDispatcherClosed) {
				metric = awspkg.MetricNotificationsDropped
			}
			_ = metrics.RecordCount(context.Background(), metric, map[string]string{"Kind": string(f.Kind)})
			log.Warn("notification not delivered",
				zap.String("kind", string(f.Kind)),
				zap.String("order_id", f.OrderID),
				zap.Error(f.Err),
			)
		}
	}
}
