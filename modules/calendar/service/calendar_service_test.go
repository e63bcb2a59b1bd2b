package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/HyunsDev/opize-calendar2notion-server/core/errors"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/dto"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/entity"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/gateway"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/repository"
	userEntity "github.com/HyunsDev/opize-calendar2notion-server/modules/user/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCalendarRepo struct {
	rows []*entity.Calendar

	createErr    error
	reconnectErr error
	updateErr    error
	txBeginErr   error

	creates    int
	reconnects int
	renames    []string
}

func (f *fakeCalendarRepo) GetByIDForUser(_ context.Context, id, userID uuid.UUID, excludeDisconnected bool) (*entity.Calendar, error) {
	for _, c := range f.rows {
		if c.ID != id || c.UserID != userID {
			continue
		}
		if excludeDisconnected && c.Status == entity.CalendarStatusDisconnected {
			return nil, nil
		}
		return c, nil
	}
	return nil, nil
}

func (f *fakeCalendarRepo) FindByGoogleCalendarID(_ context.Context, userID uuid.UUID, googleCalendarID string) (*entity.Calendar, error) {
	for _, c := range f.rows {
		if c.UserID == userID && c.GoogleCalendarID == googleCalendarID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCalendarRepo) FindActiveByName(_ context.Context, userID uuid.UUID, name string) (*entity.Calendar, error) {
	for _, c := range f.rows {
		if c.UserID == userID && c.GoogleCalendarName == name && c.IsActive() {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCalendarRepo) Create(_ context.Context, calendar *entity.Calendar) error {
	if f.createErr != nil {
		return f.createErr
	}
	calendar.ID = uuid.New()
	f.rows = append(f.rows, calendar)
	f.creates++
	return nil
}

func (f *fakeCalendarRepo) Reconnect(_ context.Context, calendar *entity.Calendar) error {
	if f.reconnectErr != nil {
		return f.reconnectErr
	}
	calendar.Status = entity.CalendarStatusPending
	f.reconnects++
	return nil
}

func (f *fakeCalendarRepo) UpdateName(_ context.Context, id, userID uuid.UUID, name string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, c := range f.rows {
		if c.ID == id && c.UserID == userID {
			c.GoogleCalendarName = name
			f.renames = append(f.renames, name)
			return nil
		}
	}
	return nil
}

func (f *fakeCalendarRepo) DisconnectTx(_ context.Context, _ sqlx.ExtContext, id, userID uuid.UUID) error {
	for _, c := range f.rows {
		if c.ID == id && c.UserID == userID {
			c.Status = entity.CalendarStatusDisconnected
			return nil
		}
	}
	return nil
}

func (f *fakeCalendarRepo) WithinTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	if f.txBeginErr != nil {
		return f.txBeginErr
	}
	return fn(nil)
}

type fakeEventRepo struct {
	marked  int64
	markErr error
	calls   []uuid.UUID
}

func (f *fakeEventRepo) MarkForRemoval(_ context.Context, _ sqlx.ExtContext, calendarID, _ uuid.UUID) (int64, error) {
	if f.markErr != nil {
		return 0, f.markErr
	}
	f.calls = append(f.calls, calendarID)
	return f.marked, nil
}

type fakeQueue struct {
	registered   []uuid.UUID
	disconnected []uuid.UUID
	err          error
}

func (f *fakeQueue) EnqueueCalendarRegistered(_ context.Context, _, calendarID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.registered = append(f.registered, calendarID)
	return nil
}

func (f *fakeQueue) EnqueueCalendarDisconnected(_ context.Context, _, calendarID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.disconnected = append(f.disconnected, calendarID)
	return nil
}

func (f *fakeQueue) Close() error { return nil }

type fakeGoogleAPI struct {
	snapshot *gateway.GoogleCalendarSnapshot
	err      error
}

func (f *fakeGoogleAPI) GetCalendar(_ context.Context, _ string) (*gateway.GoogleCalendarSnapshot, error) {
	return f.snapshot, f.err
}

type fakeNotionAPI struct {
	database *gateway.NotionDatabase
	err      error
}

func (f *fakeNotionAPI) GetDatabase(_ context.Context, _ string) (*gateway.NotionDatabase, error) {
	return f.database, f.err
}

type serviceFixture struct {
	repo      *fakeCalendarRepo
	eventRepo *fakeEventRepo
	queue     *fakeQueue
	google    *fakeGoogleAPI
	notion    *fakeNotionAPI
	service   CalendarService
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		repo:      &fakeCalendarRepo{},
		eventRepo: &fakeEventRepo{marked: 3},
		queue:     &fakeQueue{},
		google:    &fakeGoogleAPI{},
		notion:    &fakeNotionAPI{},
	}
	f.service = NewCalendarService(
		f.repo,
		f.eventRepo,
		func(_, _ string) gateway.GoogleCalendarAPI { return f.google },
		func(_ string) gateway.NotionAPI { return f.notion },
		f.queue,
	)
	return f
}

func newTestUser() *userEntity.User {
	u := &userEntity.User{
		Name:               "tester",
		Email:              "tester@example.com",
		GoogleAccessToken:  "access",
		GoogleRefreshToken: "refresh",
		NotionDatabaseID:   "db-1",
		NotionProps:        `{"title":"p_title","calendar":"p_cal","date":"p_date","delete":"p_del"}`,
	}
	u.ID = uuid.New()
	return u
}

func selectDatabase(options ...string) *gateway.NotionDatabase {
	opts := make([]gateway.NotionSelectOption, 0, len(options))
	for i, name := range options {
		opts = append(opts, gateway.NotionSelectOption{ID: fmt.Sprintf("opt-%d", i), Name: name})
	}
	return &gateway.NotionDatabase{
		ID: "db-1",
		Properties: map[string]gateway.NotionProperty{
			"Title":    {ID: "p_title", Name: "Title", Type: "title"},
			"Calendar": {ID: "p_cal", Name: "Calendar", Type: gateway.NotionPropTypeSelect, Select: &gateway.NotionSelect{Options: opts}},
		},
	}
}

func seedCalendar(f *serviceFixture, user *userEntity.User, googleID, name string, status entity.CalendarStatus) *entity.Calendar {
	c := &entity.Calendar{
		UserID:             user.ID,
		GoogleCalendarID:   googleID,
		GoogleCalendarName: name,
		AccessRole:         entity.AccessRoleOwner,
		Status:             status,
	}
	c.ID = uuid.New()
	f.repo.rows = append(f.repo.rows, c)
	return c
}

func TestAddCalendar_CreatesPending(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "Work", AccessRole: "owner"}

	outcome, appErr := f.service.AddCalendar(context.Background(), user, "gc-1")

	require.Nil(t, appErr)
	require.Nil(t, outcome)
	require.Len(t, f.repo.rows, 1)
	created := f.repo.rows[0]
	assert.Equal(t, entity.CalendarStatusPending, created.Status)
	assert.Equal(t, "Work", created.GoogleCalendarName)
	assert.Equal(t, entity.AccessRoleOwner, created.AccessRole)
	assert.Equal(t, []uuid.UUID{created.ID}, f.queue.registered)
}

func TestAddCalendar_RejectsActiveSameName(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	seedCalendar(f, user, "gc-other", "Work", entity.CalendarStatusConnected)
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "Work", AccessRole: "reader"}

	outcome, appErr := f.service.AddCalendar(context.Background(), user, "gc-1")

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrSameNameCalendarExist, appErr.Code)
	assert.Equal(t, 0, f.repo.creates)
	assert.Len(t, f.repo.rows, 1)
}

func TestAddCalendar_DisconnectedSameNameDoesNotBlock(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	seedCalendar(f, user, "gc-other", "Work", entity.CalendarStatusDisconnected)
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "Work", AccessRole: "reader"}

	outcome, appErr := f.service.AddCalendar(context.Background(), user, "gc-1")

	require.Nil(t, appErr)
	require.Nil(t, outcome)
	assert.Equal(t, 1, f.repo.creates)
}

func TestAddCalendar_RejectsAlreadyConnected(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	seedCalendar(f, user, "gc-1", "Old Name", entity.CalendarStatusConnected)
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "New Name", AccessRole: "owner"}

	outcome, appErr := f.service.AddCalendar(context.Background(), user, "gc-1")

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCalendarAlreadyExist, appErr.Code)
}

func TestAddCalendar_ReusesDisconnectedRow(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	old := seedCalendar(f, user, "gc-1", "Old Name", entity.CalendarStatusDisconnected)
	old.AccessRole = entity.AccessRoleReader
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "Renamed", AccessRole: "owner"}

	outcome, appErr := f.service.AddCalendar(context.Background(), user, "gc-1")

	require.Nil(t, appErr)
	require.Nil(t, outcome)
	assert.Equal(t, 0, f.repo.creates, "re-add must reuse the row, not insert")
	assert.Equal(t, 1, f.repo.reconnects)
	assert.Len(t, f.repo.rows, 1)
	assert.Equal(t, entity.CalendarStatusPending, old.Status)
	assert.Equal(t, "Renamed", old.GoogleCalendarName)
	assert.Equal(t, entity.AccessRoleOwner, old.AccessRole)
	assert.Equal(t, []uuid.UUID{old.ID}, f.queue.registered)
}

func TestAddCalendar_GoogleNotFound(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	f.google.err = gateway.ErrGoogleCalendarNotFound

	outcome, appErr := f.service.AddCalendar(context.Background(), user, "gc-missing")

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCalendarNotFound, appErr.Code)
	assert.Empty(t, f.repo.rows)
}

func TestAddCalendar_GoogleAPIFailureCarriesStatus(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	f.google.err = &gateway.GoogleAPIError{StatusCode: 503, Body: "backend error"}

	outcome, appErr := f.service.AddCalendar(context.Background(), user, "gc-1")

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorCode("google_calendar_api_error_503"), appErr.Code)
}

func TestAddCalendar_ConcurrentInsertLosesCleanly(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "Work", AccessRole: "owner"}
	f.repo.createErr = repository.ErrDuplicateActiveName

	outcome, appErr := f.service.AddCalendar(context.Background(), user, "gc-1")

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrSameNameCalendarExist, appErr.Code)
}

func TestAddCalendar_EnqueueFailureDoesNotFailTheAdd(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "Work", AccessRole: "owner"}
	f.queue.err = fmt.Errorf("redis down")

	outcome, appErr := f.service.AddCalendar(context.Background(), user, "gc-1")

	require.Nil(t, appErr)
	require.Nil(t, outcome)
	assert.Equal(t, 1, f.repo.creates)
}

func TestRemoveCalendar_NotFound(t *testing.T) {
	f := newFixture()
	user := newTestUser()

	outcome, appErr := f.service.RemoveCalendar(context.Background(), user, uuid.New())

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCalendarNotFound, appErr.Code)
}

func TestRemoveCalendar_DisconnectedLooksAbsent(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	c := seedCalendar(f, user, "gc-1", "Work", entity.CalendarStatusDisconnected)

	outcome, appErr := f.service.RemoveCalendar(context.Background(), user, c.ID)

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCalendarNotFound, appErr.Code)
	assert.Empty(t, f.eventRepo.calls)
}

func TestRemoveCalendar_WorkUserIsBlocked(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	user.IsWork = true
	c := seedCalendar(f, user, "gc-1", "Work", entity.CalendarStatusConnected)

	outcome, appErr := f.service.RemoveCalendar(context.Background(), user, c.ID)

	require.Nil(t, appErr)
	require.NotNil(t, outcome)
	assert.Equal(t, dto.OutcomeUserIsWork, outcome.Code)
	assert.Equal(t, entity.CalendarStatusConnected, c.Status, "blocked removal must not touch the row")
	assert.Empty(t, f.eventRepo.calls)
	assert.Empty(t, f.queue.disconnected)
}

func TestRemoveCalendar_MarksEventsAndDisconnects(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	c := seedCalendar(f, user, "gc-1", "Work", entity.CalendarStatusConnected)

	outcome, appErr := f.service.RemoveCalendar(context.Background(), user, c.ID)

	require.Nil(t, appErr)
	require.Nil(t, outcome)
	assert.Equal(t, entity.CalendarStatusDisconnected, c.Status)
	assert.Equal(t, []uuid.UUID{c.ID}, f.eventRepo.calls)
	assert.Equal(t, []uuid.UUID{c.ID}, f.queue.disconnected)
}

func TestRemoveCalendar_EventMarkFailureAbortsTheFlip(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	c := seedCalendar(f, user, "gc-1", "Work", entity.CalendarStatusConnected)
	f.eventRepo.markErr = fmt.Errorf("deadlock detected")

	outcome, appErr := f.service.RemoveCalendar(context.Background(), user, c.ID)

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUpdateFailed, appErr.Code)
	assert.Empty(t, f.queue.disconnected)
}

func TestRenameCalendar_AlreadySameName(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	c := seedCalendar(f, user, "gc-1", "Work", entity.CalendarStatusConnected)
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "Work", AccessRole: "owner"}
	f.notion.database = selectDatabase("Work")

	outcome, appErr := f.service.RenameCalendar(context.Background(), user, c.ID)

	require.Nil(t, appErr)
	require.NotNil(t, outcome)
	assert.Equal(t, dto.OutcomeAlreadySameName, outcome.Code)
	assert.Empty(t, f.repo.renames)
}

func TestRenameCalendar_DisconnectedCalendarStaysRenameable(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	c := seedCalendar(f, user, "gc-1", "Old", entity.CalendarStatusDisconnected)
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "New", AccessRole: "owner"}
	f.notion.database = selectDatabase("New")

	outcome, appErr := f.service.RenameCalendar(context.Background(), user, c.ID)

	require.Nil(t, appErr)
	require.NotNil(t, outcome)
	assert.Equal(t, dto.OutcomeCalendarNameChanged, outcome.Code)
	assert.Equal(t, "New", c.GoogleCalendarName)
}

func TestRenameCalendar_NotionDatabaseGone(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	c := seedCalendar(f, user, "gc-1", "Old", entity.CalendarStatusConnected)
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "New", AccessRole: "owner"}
	f.notion.database = nil

	outcome, appErr := f.service.RenameCalendar(context.Background(), user, c.ID)

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotionDatabaseNotFound, appErr.Code)
	assert.Equal(t, "Old", c.GoogleCalendarName, "failed validation must not rename")
}

func TestRenameCalendar_PropsNotConfigured(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	user.NotionProps = ""
	c := seedCalendar(f, user, "gc-1", "Old", entity.CalendarStatusConnected)
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "New", AccessRole: "owner"}

	outcome, appErr := f.service.RenameCalendar(context.Background(), user, c.ID)

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCalendarPropNotFound, appErr.Code)
	assert.Equal(t, "Old", c.GoogleCalendarName)
}

func TestRenameCalendar_PropIDNotInSchema(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	user.NotionProps = `{"title":"p_title","calendar":"p_gone","date":"p_date","delete":"p_del"}`
	c := seedCalendar(f, user, "gc-1", "Old", entity.CalendarStatusConnected)
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "New", AccessRole: "owner"}
	f.notion.database = selectDatabase("New")

	outcome, appErr := f.service.RenameCalendar(context.Background(), user, c.ID)

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCalendarPropNotFound, appErr.Code)
	assert.Equal(t, "Old", c.GoogleCalendarName)
}

func TestRenameCalendar_PropIsNotSelect(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	c := seedCalendar(f, user, "gc-1", "Old", entity.CalendarStatusConnected)
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "New", AccessRole: "owner"}
	f.notion.database = &gateway.NotionDatabase{
		ID: "db-1",
		Properties: map[string]gateway.NotionProperty{
			"Calendar": {ID: "p_cal", Name: "Calendar", Type: "rich_text"},
		},
	}

	outcome, appErr := f.service.RenameCalendar(context.Background(), user, c.ID)

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrWrongCalendarPropType, appErr.Code)
	assert.Equal(t, "Old", c.GoogleCalendarName)
}

func TestRenameCalendar_NameNotAmongOptions(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	c := seedCalendar(f, user, "gc-1", "Old", entity.CalendarStatusConnected)
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "New", AccessRole: "owner"}
	f.notion.database = selectDatabase("Old", "Something Else")

	outcome, appErr := f.service.RenameCalendar(context.Background(), user, c.ID)

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCalendarNameNotMatch, appErr.Code)
	assert.Equal(t, "Old", c.GoogleCalendarName)
}

func TestRenameCalendar_Success(t *testing.T) {
	f := newFixture()
	user := newTestUser()
	c := seedCalendar(f, user, "gc-1", "Old", entity.CalendarStatusConnected)
	f.google.snapshot = &gateway.GoogleCalendarSnapshot{ID: "gc-1", Summary: "Team Calendar", AccessRole: "owner"}
	f.notion.database = selectDatabase("Old", "Team Calendar")

	outcome, appErr := f.service.RenameCalendar(context.Background(), user, c.ID)

	require.Nil(t, appErr)
	require.NotNil(t, outcome)
	assert.Equal(t, dto.OutcomeCalendarNameChanged, outcome.Code)
	assert.Equal(t, []string{"Team Calendar"}, f.repo.renames)
	assert.Equal(t, "Team Calendar", c.GoogleCalendarName)
}

func TestRenameCalendar_UnknownCalendar(t *testing.T) {
	f := newFixture()
	user := newTestUser()

	outcome, appErr := f.service.RenameCalendar(context.Background(), user, uuid.New())

	require.Nil(t, outcome)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCalendarNotFound, appErr.Code)
}
