package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"clinic-booking/config"
	"clinic-booking/internal/infrastructure/metrics"
	"clinic-booking/internal/service"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// TypeBookingNotification is the asynq task type carrying a NotificationEvent.
const TypeBookingNotification = "notification:booking"

const defaultMaxRetry = 5

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewNotificationTask(event service.NotificationEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingNotification, payload), nil
}

// AsynqPublisher enqueues notification events in Redis for an AsynqWorker,
// possibly running in another process.
type AsynqPublisher struct {
	client *asynq.Client
	queue  string
}

func NewAsynqPublisher(redisOpt asynq.RedisClientOpt, queue string) *AsynqPublisher {
	if queue == "" {
		queue = "default"
	}
	return &AsynqPublisher{
		client: asynq.NewClient(redisOpt),
		queue:  queue,
	}
}

func (p *AsynqPublisher) Publish(ctx context.Context, event service.NotificationEvent) error {
	task, err := NewNotificationTask(event)
	if err != nil {
		return err
	}
	_, err = p.client.EnqueueContext(ctx, task, asynq.Queue(p.queue), asynq.MaxRetry(defaultMaxRetry))
	return err
}

func (p *AsynqPublisher) Close() error {
	return p.client.Close()
}

// AsynqWorker consumes notification tasks and hands them to the dispatcher.
type AsynqWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logrus.Logger
}

func NewAsynqWorker(redisOpt asynq.RedisClientOpt, cfg config.NotificationConfig, handler service.NotificationHandler, log *logrus.Logger) *AsynqWorker {
	queue := cfg.Queue
	if queue == "" {
		queue = "default"
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
		Logger:   log,
		LogLevel: asynq.WarnLevel,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingNotification, HandleNotificationTask(handler, log))

	return &AsynqWorker{
		server: server,
		mux:    mux,
		log:    log,
	}
}

// Start runs the server in the background.
func (w *AsynqWorker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start notification worker: %w", err)
	}
	w.log.Info("Asynq notification worker started")
	return nil
}

func (w *AsynqWorker) Stop() {
	w.server.Shutdown()
	w.log.Info("Asynq notification worker stopped")
}

// HandleNotificationTask decodes the task and dispatches it. Malformed
// payloads and unknown event types are not retried.
func HandleNotificationTask(handler service.NotificationHandler, log *logrus.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var event service.NotificationEvent
		if err := json.Unmarshal(task.Payload(), &event); err != nil {
			metrics.IncNotificationFailure("decode")
			log.Warnf("Invalid notification payload: %+v", err)
			return fmt.Errorf("decode notification payload: %v: %w", err, asynq.SkipRetry)
		}

		if err := handler.Handle(ctx, event); err != nil {
			metrics.IncNotificationFailure("handle")
			log.WithFields(logrus.Fields{
				"booking_id": event.BookingID,
				"event":      event.Type,
			}).Warnf("Failed to handle notification event: %+v", err)
			if errors.Is(err, service.ErrUnknownNotificationType) {
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			return err
		}
		return nil
	}
}
