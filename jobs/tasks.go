// Package jobs defines the asynq task types and background handlers.
package jobs

import (
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"
)

// QueueDefault is the only queue SafeRound uses.
const QueueDefault = "default"

// Task type names.
const (
	TaskGuardianNotify = "guardian:notify"
	TaskDrinkArchive   = "drinks:archive"
)

// GuardianNotifyPayload describes a safety notification to fan out to the
// user's group.
type GuardianNotifyPayload struct {
	UserID  string  `json:"user_id"`
	Message string  `json:"message"`
	BAC     float64 `json:"bac,omitempty"`
	Tier    string  `json:"tier,omitempty"`
}

// NewGuardianNotifyTask builds the notification task.
func NewGuardianNotifyTask(payload GuardianNotifyPayload) (*asynq.Task, error) {
	if payload.UserID == "" {
		return nil, errors.New("jobs: guardian notify requires a user id")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGuardianNotify, data), nil
}

// DrinkArchivePayload configures the retention window for archival.
type DrinkArchivePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewDrinkArchiveTask builds the archival task.
func NewDrinkArchiveTask(retentionDays int) (*asynq.Task, error) {
	if retentionDays <= 0 {
		retentionDays = 7
	}
	data, err := json.Marshal(DrinkArchivePayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDrinkArchive, data), nil
}
