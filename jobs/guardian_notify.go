package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/saferound/saferound/internal/groups"
	jobmetrics "github.com/saferound/saferound/internal/jobs"
)

// GuardianNotifyJob fans a safety notification out to the user's group.
type GuardianNotifyJob struct {
	Groups  *groups.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewGuardianNotifyJob initialises the handler.
func NewGuardianNotifyJob(groupsService *groups.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *GuardianNotifyJob {
	return &GuardianNotifyJob{Groups: groupsService, Logger: logger, Metrics: metrics}
}

// Handle executes the fan-out. A user without a group is not an error.
func (j *GuardianNotifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Groups == nil {
		return errors.New("guardian notify: handler not configured")
	}
	var payload GuardianNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskGuardianNotify)

	message := payload.Message
	if message == "" && payload.BAC > 0 {
		message = fmt.Sprintf("Estimated BAC %.4f (%s). Please check on them.", payload.BAC, payload.Tier)
	}

	logger := j.logger().With(slog.String("user_id", payload.UserID))
	if err := j.Groups.FanOut(ctx, payload.UserID, message); err != nil {
		if errors.Is(err, groups.ErrNotFound) {
			logger.Info("guardian notify skipped, user has no group")
			return tracker.End(nil)
		}
		logger.Error("guardian notify failed", slog.Any("error", err))
		return tracker.End(err)
	}

	logger.Info("guardian notification recorded", slog.String("tier", payload.Tier))
	return tracker.End(nil)
}

func (j *GuardianNotifyJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
