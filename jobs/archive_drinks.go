package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/saferound/saferound/internal/jobs"
	"github.com/saferound/saferound/internal/platform/db"
)

// DrinkArchiveJob moves drink records older than the retention window into
// the archive table for long-term safety research.
type DrinkArchiveJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewDrinkArchiveJob initialises the archival handler.
func NewDrinkArchiveJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *DrinkArchiveJob {
	return &DrinkArchiveJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle copies aged records into archive_drinks and deletes the originals
// in one transaction, so a failure archives nothing rather than duplicating.
func (j *DrinkArchiveJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("drink archive: handler not configured")
	}
	var payload DrinkArchivePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = 7
	}

	tracker := j.Metrics.Track(TaskDrinkArchive)

	now := j.clock()
	// Records are complete once the previous calendar day has ended.
	cutoff := now.Truncate(24 * time.Hour)
	floor := cutoff.AddDate(0, 0, -payload.RetentionDays)

	logger := j.logger().With(
		slog.Time("cutoff", cutoff),
		slog.Int("retention_days", payload.RetentionDays),
	)
	logger.Info("starting drink record archival")

	var archived int64
	err := db.WithTx(ctx, j.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO archive_drinks (drink_id, user_id, alcohol_grams, ts, archived_at)
			SELECT drink_id, user_id, alcohol_grams, ts, $3
			FROM drink_records
			WHERE ts < $1 AND ts >= $2`,
			cutoff, floor, now)
		if err != nil {
			return err
		}
		archived = tag.RowsAffected()
		if archived == 0 {
			return nil
		}
		_, err = tx.Exec(ctx,
			`DELETE FROM drink_records WHERE ts < $1 AND ts >= $2`, cutoff, floor)
		return err
	})
	if err != nil {
		logger.Error("archival failed", slog.Any("error", err))
		return tracker.End(err)
	}

	logger.Info("completed drink record archival",
		slog.Int64("archived", archived),
		slog.Duration("duration", time.Since(now)),
	)
	return tracker.End(nil)
}

func (j *DrinkArchiveJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
