package queue

import (
	"context"
	"encoding/json"

	"github.com/HyunsDev/opize-calendar2notion-server/core/config"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task types consumed by the sync engine worker.
const (
	TypeCalendarRegistered   = "sync:calendar:registered"
	TypeCalendarDisconnected = "sync:calendar:disconnected"
)

// CalendarTaskPayload identifies the calendar a sync task refers to.
type CalendarTaskPayload struct {
	UserID     uuid.UUID `json:"user_id"`
	CalendarID uuid.UUID `json:"calendar_id"`
}

// Queue hands lifecycle signals to the sync engine. The engine also polls
// calendar status and event will_remove markers, so enqueue failures degrade
// to a slower pickup, never to lost work.
type Queue interface {
	EnqueueCalendarRegistered(ctx context.Context, userID, calendarID uuid.UUID) error
	EnqueueCalendarDisconnected(ctx context.Context, userID, calendarID uuid.UUID) error
	Close() error
}

type asynqQueue struct {
	client *asynq.Client
}

func InitQueue(cfg config.RedisConfig) Queue {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	logger.Info("Queue initialized", "addr", cfg.Addr)
	return &asynqQueue{client: client}
}

func (q *asynqQueue) EnqueueCalendarRegistered(ctx context.Context, userID, calendarID uuid.UUID) error {
	return q.enqueue(ctx, TypeCalendarRegistered, userID, calendarID)
}

func (q *asynqQueue) EnqueueCalendarDisconnected(ctx context.Context, userID, calendarID uuid.UUID) error {
	return q.enqueue(ctx, TypeCalendarDisconnected, userID, calendarID)
}

func (q *asynqQueue) enqueue(ctx context.Context, taskType string, userID, calendarID uuid.UUID) error {
	payload, err := json.Marshal(CalendarTaskPayload{UserID: userID, CalendarID: calendarID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(taskType, payload)
	info, err := q.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
	if err != nil {
		return err
	}

	logger.Info("Queue:Enqueued", "type", taskType, "task_id", info.ID, "user_id", userID, "calendar_id", calendarID)
	return nil
}

func (q *asynqQueue) Close() error {
	return q.client.Close()
}
