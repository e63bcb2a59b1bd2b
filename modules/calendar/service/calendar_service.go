package service

import (
	"context"
	stderrors "errors"

	"github.com/HyunsDev/opize-calendar2notion-server/core/constants"
	"github.com/HyunsDev/opize-calendar2notion-server/core/errors"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"
	"github.com/HyunsDev/opize-calendar2notion-server/core/queue"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/dto"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/entity"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/gateway"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/repository"
	userEntity "github.com/HyunsDev/opize-calendar2notion-server/modules/user/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CalendarService owns the calendar connection lifecycle: adding, renaming
// and removing a user's link to one Google calendar, validated against the
// live calendar metadata and the Notion database schema.
//
// Every operation returns either a business outcome (expected validation
// result, rendered as a success) or an AppError (hard failure) - never both.
// A nil outcome with a nil error is a plain success.
type CalendarService interface {
	AddCalendar(ctx context.Context, user *userEntity.User, googleCalendarID string) (*dto.CalendarOutcome, *errors.AppError)
	RemoveCalendar(ctx context.Context, user *userEntity.User, calendarID uuid.UUID) (*dto.CalendarOutcome, *errors.AppError)
	RenameCalendar(ctx context.Context, user *userEntity.User, calendarID uuid.UUID) (*dto.CalendarOutcome, *errors.AppError)
}

type calendarService struct {
	repo          repository.CalendarRepository
	eventRepo     repository.EventRepository
	googleFactory gateway.GoogleClientFactory
	notionFactory gateway.NotionClientFactory
	queue         queue.Queue
}

func NewCalendarService(
	repo repository.CalendarRepository,
	eventRepo repository.EventRepository,
	googleFactory gateway.GoogleClientFactory,
	notionFactory gateway.NotionClientFactory,
	q queue.Queue,
) CalendarService {
	return &calendarService{
		repo:          repo,
		eventRepo:     eventRepo,
		googleFactory: googleFactory,
		notionFactory: notionFactory,
		queue:         q,
	}
}

// AddCalendar links a remote calendar to the user. An existing DISCONNECTED
// row for the same remote id is reused and put back to PENDING; the operation
// performs at most one calendar write.
func (s *calendarService) AddCalendar(ctx context.Context, user *userEntity.User, googleCalendarID string) (*dto.CalendarOutcome, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	snapshot, appErr := s.getGoogleCalendar(ctx, user, googleCalendarID)
	if appErr != nil {
		return nil, appErr
	}

	// Reject a second active calendar with the same display name. The check
	// gives the friendly code; the partial unique index makes it race-safe.
	sameName, err := s.repo.FindActiveByName(ctx, user.ID, snapshot.Summary)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to check calendar name", err)
	}
	if sameName != nil {
		return nil, errors.NewAppError(errors.ErrSameNameCalendarExist, "a calendar with the same name already exists", nil)
	}

	oldCalendar, err := s.repo.FindByGoogleCalendarID(ctx, user.ID, googleCalendarID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to check existing calendar", err)
	}

	if oldCalendar != nil && oldCalendar.IsActive() {
		return nil, errors.NewAppError(errors.ErrCalendarAlreadyExist, "this calendar is already connected", nil)
	}

	var calendar *entity.Calendar
	if oldCalendar != nil {
		// DISCONNECTED row for the same remote id: reuse it
		oldCalendar.AccessRole = entity.AccessRole(snapshot.AccessRole)
		oldCalendar.GoogleCalendarID = snapshot.ID
		oldCalendar.GoogleCalendarName = snapshot.Summary
		if err := s.repo.Reconnect(ctx, oldCalendar); err != nil {
			return nil, s.mapWriteError(err, "failed to reconnect calendar")
		}
		calendar = oldCalendar
	} else {
		calendar = &entity.Calendar{
			UserID:             user.ID,
			GoogleCalendarID:   snapshot.ID,
			GoogleCalendarName: snapshot.Summary,
			AccessRole:         entity.AccessRole(snapshot.AccessRole),
			Status:             entity.CalendarStatusPending,
		}
		if err := s.repo.Create(ctx, calendar); err != nil {
			return nil, s.mapWriteError(err, "failed to create calendar")
		}
	}

	logger.Info("CalendarService:AddCalendar:Linked",
		"user_id", user.ID, "calendar_id", calendar.ID, "google_calendar_id", snapshot.ID)

	if err := s.queue.EnqueueCalendarRegistered(ctx, user.ID, calendar.ID); err != nil {
		// sync engine also polls calendar status; enqueue failure only delays pickup
		logger.Error("CalendarService:AddCalendar:Enqueue:Error", "error", err, "calendar_id", calendar.ID)
	}

	return nil, nil
}

// RemoveCalendar soft-retires the calendar. The event cascade mark and the
// status flip run in one transaction so a disconnected calendar can never
// keep unmarked events.
func (s *calendarService) RemoveCalendar(ctx context.Context, user *userEntity.User, calendarID uuid.UUID) (*dto.CalendarOutcome, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	calendar, err := s.repo.GetByIDForUser(ctx, calendarID, user.ID, true)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load calendar", err)
	}
	if calendar == nil {
		return nil, errors.NewAppError(errors.ErrCalendarNotFound, "calendar not found", nil)
	}

	// Destructive removal is disabled for work-mode accounts
	if user.IsWork {
		return dto.NewOutcome(dto.OutcomeUserIsWork), nil
	}

	var marked int64
	txErr := s.repo.WithinTx(ctx, func(tx *sqlx.Tx) error {
		var innerErr error
		marked, innerErr = s.eventRepo.MarkForRemoval(ctx, tx, calendar.ID, user.ID)
		if innerErr != nil {
			return innerErr
		}
		return s.repo.DisconnectTx(ctx, tx, calendar.ID, user.ID)
	})
	if txErr != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to disconnect calendar", txErr)
	}

	logger.Info("CalendarService:RemoveCalendar:Disconnected",
		"user_id", user.ID, "calendar_id", calendar.ID, "events_marked", marked)

	if err := s.queue.EnqueueCalendarDisconnected(ctx, user.ID, calendar.ID); err != nil {
		logger.Error("CalendarService:RemoveCalendar:Enqueue:Error", "error", err, "calendar_id", calendar.ID)
	}

	return nil, nil
}

// RenameCalendar pulls the current display name from Google and, after the
// Notion-side validations pass, persists it. Validation is fully front-loaded:
// no failure path mutates anything. The lookup deliberately skips the status
// filter RemoveCalendar uses, so DISCONNECTED calendars stay renameable.
func (s *calendarService) RenameCalendar(ctx context.Context, user *userEntity.User, calendarID uuid.UUID) (*dto.CalendarOutcome, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	calendar, err := s.repo.GetByIDForUser(ctx, calendarID, user.ID, false)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load calendar", err)
	}
	if calendar == nil {
		return nil, errors.NewAppError(errors.ErrCalendarNotFound, "calendar not found", nil)
	}

	snapshot, appErr := s.getGoogleCalendar(ctx, user, calendar.GoogleCalendarID)
	if appErr != nil {
		return nil, appErr
	}

	if calendar.GoogleCalendarName == snapshot.Summary {
		return dto.NewOutcome(dto.OutcomeAlreadySameName), nil
	}

	props, err := user.ParsedNotionProps()
	if err != nil {
		logger.Error("CalendarService:RenameCalendar:ParsedNotionProps:Error", "error", err, "user_id", user.ID)
		return nil, errors.NewAppError(errors.ErrCalendarPropNotFound, "calendar property mapping is not configured", err)
	}

	notionDatabase, err := s.notionFactory(user.NotionToken()).GetDatabase(ctx, user.NotionDatabaseID)
	if err != nil || notionDatabase == nil {
		logger.Warn("CalendarService:RenameCalendar:NotionDatabaseUnavailable",
			"user_id", user.ID, "database_id", user.NotionDatabaseID, "error", err)
		return nil, errors.NewAppError(errors.ErrNotionDatabaseNotFound, "notion database not found", err)
	}

	var calendarProp *gateway.NotionProperty
	for name := range notionDatabase.Properties {
		prop := notionDatabase.Properties[name]
		if prop.ID == props.Calendar {
			calendarProp = &prop
			break
		}
	}
	if calendarProp == nil {
		// dump both sides for diagnosis; this points at a re-mapped database
		logger.Error("CalendarService:RenameCalendar:CalendarPropNotFound",
			"user_id", user.ID,
			"configured_prop_id", props.Calendar,
			"database_properties", notionDatabase.Properties,
		)
		return nil, errors.NewAppError(errors.ErrCalendarPropNotFound, "calendar property not found", nil)
	}

	if calendarProp.Type != gateway.NotionPropTypeSelect {
		return nil, errors.NewAppError(errors.ErrWrongCalendarPropType, "calendar property is not a select", nil)
	}

	nameInOptions := false
	if calendarProp.Select != nil {
		for _, option := range calendarProp.Select.Options {
			if option.Name == snapshot.Summary {
				nameInOptions = true
				break
			}
		}
	}
	if !nameInOptions {
		return nil, errors.NewAppError(errors.ErrCalendarNameNotMatch, "calendar name does not match any select option", nil)
	}

	if err := s.repo.UpdateName(ctx, calendar.ID, user.ID, snapshot.Summary); err != nil {
		return nil, s.mapWriteError(err, "failed to update calendar name")
	}

	logger.Info("CalendarService:RenameCalendar:Renamed",
		"user_id", user.ID, "calendar_id", calendar.ID,
		"old_name", calendar.GoogleCalendarName, "new_name", snapshot.Summary)

	return dto.NewOutcome(dto.OutcomeCalendarNameChanged), nil
}

// getGoogleCalendar is a translating adapter: it scopes a gateway to the
// user's tokens and converts provider failures into typed ones.
func (s *calendarService) getGoogleCalendar(ctx context.Context, user *userEntity.User, googleCalendarID string) (*gateway.GoogleCalendarSnapshot, *errors.AppError) {
	client := s.googleFactory(user.GoogleAccessToken, user.GoogleRefreshToken)

	snapshot, err := client.GetCalendar(ctx, googleCalendarID)
	if err != nil {
		if stderrors.Is(err, gateway.ErrGoogleCalendarNotFound) {
			return nil, errors.NewAppError(errors.ErrCalendarNotFound, "google calendar not found", err)
		}

		var apiErr *gateway.GoogleAPIError
		if stderrors.As(err, &apiErr) {
			logger.Error("CalendarService:getGoogleCalendar:APIError",
				"user_id", user.ID, "calendar_id", googleCalendarID,
				"status", apiErr.StatusCode, "body", apiErr.Body)
			return nil, errors.NewAppError(errors.GoogleCalendarAPIError(apiErr.StatusCode), "google calendar api error", err)
		}

		logger.Error("CalendarService:getGoogleCalendar:Error",
			"user_id", user.ID, "calendar_id", googleCalendarID, "error", err)
		return nil, errors.NewAppError(errors.GoogleCalendarAPIError(0), "google calendar request failed", err)
	}

	return snapshot, nil
}

func (s *calendarService) mapWriteError(err error, message string) *errors.AppError {
	if stderrors.Is(err, repository.ErrDuplicateActiveName) {
		return errors.NewAppError(errors.ErrSameNameCalendarExist, "a calendar with the same name already exists", err)
	}
	return errors.NewAppError(errors.ErrUpdateFailed, message, err)
}
