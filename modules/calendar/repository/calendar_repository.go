package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/HyunsDev/opize-calendar2notion-server/core/database"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrDuplicateActiveName reports a write rejected by the partial unique index
// on (user_id, google_calendar_name) over CONNECTED/PENDING rows. The index is
// what makes the add check-then-write race safe.
var ErrDuplicateActiveName = errors.New("another active calendar already has this name")

const uniqueViolation = "23505"
const activeNameIndex = "idx_calendars_user_active_name"

type CalendarRepository interface {
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID, excludeDisconnected bool) (*entity.Calendar, error)
	FindByGoogleCalendarID(ctx context.Context, userID uuid.UUID, googleCalendarID string) (*entity.Calendar, error)
	FindActiveByName(ctx context.Context, userID uuid.UUID, name string) (*entity.Calendar, error)
	Create(ctx context.Context, calendar *entity.Calendar) error
	Reconnect(ctx context.Context, calendar *entity.Calendar) error
	UpdateName(ctx context.Context, id, userID uuid.UUID, name string) error
	DisconnectTx(ctx context.Context, tx sqlx.ExtContext, id, userID uuid.UUID) error
	WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type calendarRepository struct {
	db database.IDatabase
}

func NewCalendarRepository(db database.IDatabase) CalendarRepository {
	return &calendarRepository{db: db}
}

// GetByIDForUser loads one calendar scoped to its owner. With
// excludeDisconnected set, DISCONNECTED rows are treated as absent.
func (r *calendarRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID, excludeDisconnected bool) (*entity.Calendar, error) {
	query := `
		SELECT id, user_id, google_calendar_id, google_calendar_name, access_role, status, created_at, updated_at
		FROM calendars
		WHERE id = $1 AND user_id = $2
	`
	if excludeDisconnected {
		query += ` AND status != 'DISCONNECTED'`
	}

	var calendar entity.Calendar
	err := r.db.GetContext(ctx, &calendar, query, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CalendarRepository:GetByIDForUser", "error", err, "calendar_id", id, "user_id", userID)
		return nil, err
	}
	return &calendar, nil
}

// FindByGoogleCalendarID finds the user's row for a remote calendar id,
// whatever its status.
func (r *calendarRepository) FindByGoogleCalendarID(ctx context.Context, userID uuid.UUID, googleCalendarID string) (*entity.Calendar, error) {
	query := `
		SELECT id, user_id, google_calendar_id, google_calendar_name, access_role, status, created_at, updated_at
		FROM calendars
		WHERE user_id = $1 AND google_calendar_id = $2
	`
	var calendar entity.Calendar
	err := r.db.GetContext(ctx, &calendar, query, userID, googleCalendarID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CalendarRepository:FindByGoogleCalendarID", "error", err, "user_id", userID)
		return nil, err
	}
	return &calendar, nil
}

// FindActiveByName finds a CONNECTED or PENDING calendar with the given
// display name. DISCONNECTED rows never block a name.
func (r *calendarRepository) FindActiveByName(ctx context.Context, userID uuid.UUID, name string) (*entity.Calendar, error) {
	query := `
		SELECT id, user_id, google_calendar_id, google_calendar_name, access_role, status, created_at, updated_at
		FROM calendars
		WHERE user_id = $1 AND google_calendar_name = $2 AND status IN ('CONNECTED', 'PENDING')
	`
	var calendar entity.Calendar
	err := r.db.GetContext(ctx, &calendar, query, userID, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CalendarRepository:FindActiveByName", "error", err, "user_id", userID)
		return nil, err
	}
	return &calendar, nil
}

func (r *calendarRepository) Create(ctx context.Context, calendar *entity.Calendar) error {
	query := `
		INSERT INTO calendars (user_id, google_calendar_id, google_calendar_name, access_role, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		calendar.UserID, calendar.GoogleCalendarID, calendar.GoogleCalendarName,
		calendar.AccessRole, calendar.Status,
	).Scan(&calendar.ID, &calendar.CreatedAt, &calendar.UpdatedAt)

	if err != nil {
		if isActiveNameViolation(err) {
			return ErrDuplicateActiveName
		}
		logger.Error("CalendarRepository:Create", "error", err, "user_id", calendar.UserID)
		return err
	}
	return nil
}

// Reconnect reuses a previously DISCONNECTED row: overwrites the remote
// fields and puts the calendar back to PENDING.
func (r *calendarRepository) Reconnect(ctx context.Context, calendar *entity.Calendar) error {
	query := `
		UPDATE calendars
		SET google_calendar_id = $1, google_calendar_name = $2, access_role = $3,
		    status = 'PENDING', updated_at = NOW()
		WHERE id = $4 AND user_id = $5
	`
	err := r.db.ExecContext(ctx, query,
		calendar.GoogleCalendarID, calendar.GoogleCalendarName, calendar.AccessRole,
		calendar.ID, calendar.UserID,
	)
	if err != nil {
		if isActiveNameViolation(err) {
			return ErrDuplicateActiveName
		}
		logger.Error("CalendarRepository:Reconnect", "error", err, "calendar_id", calendar.ID)
		return err
	}
	calendar.Status = entity.CalendarStatusPending
	return nil
}

func (r *calendarRepository) UpdateName(ctx context.Context, id, userID uuid.UUID, name string) error {
	query := `
		UPDATE calendars
		SET google_calendar_name = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`
	err := r.db.ExecContext(ctx, query, name, id, userID)
	if err != nil {
		if isActiveNameViolation(err) {
			return ErrDuplicateActiveName
		}
		logger.Error("CalendarRepository:UpdateName", "error", err, "calendar_id", id)
		return err
	}
	return nil
}

// DisconnectTx flips the status inside the caller's transaction so the event
// cascade and the status write land atomically.
func (r *calendarRepository) DisconnectTx(ctx context.Context, tx sqlx.ExtContext, id, userID uuid.UUID) error {
	query := `
		UPDATE calendars
		SET status = 'DISCONNECTED', updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	_, err := tx.ExecContext(ctx, query, id, userID)
	if err != nil {
		logger.Error("CalendarRepository:DisconnectTx", "error", err, "calendar_id", id)
		return err
	}
	return nil
}

func (r *calendarRepository) WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return r.db.WithinTx(ctx, fn)
}

func isActiveNameViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation && pqErr.Constraint == activeNameIndex
	}
	return false
}
