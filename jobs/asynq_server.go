package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/saferound/saferound/internal/bac"
)

// Worker wraps the asynq server and optional cron scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// TaskHandler wires a task type to its handler during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration binds a cron expression to a prepared task.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Handlers  []TaskHandler
	Cron      []CronRegistration
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		for _, entry := range cfg.Cron {
			if entry.Spec == "" || entry.Task == nil {
				continue
			}
			if _, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...); err != nil {
				return nil, err
			}
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}

// Client submits tasks to the queue. A nil Client drops notifications
// silently so the API can run without a worker in development.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// Close releases client resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) enqueueGuardianNotify(ctx context.Context, payload GuardianNotifyPayload) error {
	if c == nil || c.client == nil {
		return nil
	}
	task, err := NewGuardianNotifyTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// NotifyRed implements the drink engine's guardian notifier for red-tier
// BAC estimates.
func (c *Client) NotifyRed(ctx context.Context, userID string, result bac.Result) error {
	return c.enqueueGuardianNotify(ctx, GuardianNotifyPayload{
		UserID: userID,
		BAC:    result.BAC,
		Tier:   string(result.Tier),
	})
}

// NotifyEmergency implements the sobriety handler's emergency notifier.
func (c *Client) NotifyEmergency(ctx context.Context, userID, recommendation string) error {
	return c.enqueueGuardianNotify(ctx, GuardianNotifyPayload{
		UserID:  userID,
		Message: fmt.Sprintf("Sobriety check flagged an emergency: %s", recommendation),
	})
}

// DispatchGuardianNotify implements the groups service dispatcher.
func (c *Client) DispatchGuardianNotify(ctx context.Context, aboutUserID, message string) error {
	return c.enqueueGuardianNotify(ctx, GuardianNotifyPayload{
		UserID:  aboutUserID,
		Message: message,
	})
}
