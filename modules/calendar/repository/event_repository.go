package repository

import (
	"context"

	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// EventRepository mutates the synced items owned by the sync engine. This
// server only ever marks them for removal.
type EventRepository interface {
	// MarkForRemoval sets will_remove on every not-yet-marked event of the
	// calendar and user. It runs on the given executor so the caller can put
	// it in the same transaction as the calendar status flip.
	MarkForRemoval(ctx context.Context, tx sqlx.ExtContext, calendarID, userID uuid.UUID) (int64, error)
}

type eventRepository struct{}

func NewEventRepository() EventRepository {
	return &eventRepository{}
}

func (r *eventRepository) MarkForRemoval(ctx context.Context, tx sqlx.ExtContext, calendarID, userID uuid.UUID) (int64, error) {
	query := `
		UPDATE events
		SET will_remove = true, updated_at = NOW()
		WHERE calendar_id = $1 AND user_id = $2 AND will_remove = false
	`
	result, err := tx.ExecContext(ctx, query, calendarID, userID)
	if err != nil {
		logger.Error("EventRepository:MarkForRemoval", "error", err, "calendar_id", calendarID, "user_id", userID)
		return 0, err
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return count, nil
}
