package controller

import (
	"github.com/HyunsDev/opize-calendar2notion-server/core/controller"
	"github.com/HyunsDev/opize-calendar2notion-server/core/errors"
	"github.com/HyunsDev/opize-calendar2notion-server/core/middleware"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/dto"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/calendar/service"
	userEntity "github.com/HyunsDev/opize-calendar2notion-server/modules/user/entity"
	userRepository "github.com/HyunsDev/opize-calendar2notion-server/modules/user/repository"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CalendarController struct {
	base     controller.BaseController
	service  service.CalendarService
	userRepo userRepository.UserRepository
}

func NewCalendarController(svc service.CalendarService, userRepo userRepository.UserRepository) *CalendarController {
	return &CalendarController{
		base:     controller.NewBaseController(),
		service:  svc,
		userRepo: userRepo,
	}
}

// AddCalendar links a Google calendar to the user.
// POST /api/v1/users/:userId/calendar
func (c *CalendarController) AddCalendar(ctx echo.Context) error {
	user, appErr := c.resolveUser(ctx)
	if appErr != nil {
		return c.base.AppError(ctx, appErr)
	}

	var req dto.AddCalendarRequest
	if err := ctx.Bind(&req); err != nil {
		return c.base.BadRequest(ctx, errors.ErrInvalidRequestData, "invalid request body")
	}
	if req.GoogleCalendarID == "" {
		return c.base.BadRequest(ctx, errors.ErrInvalidInput, "googleCalendarId is required")
	}

	outcome, appErr := c.service.AddCalendar(ctx.Request().Context(), user, req.GoogleCalendarID)
	if appErr != nil {
		return c.base.AppError(ctx, appErr)
	}
	if outcome != nil {
		return c.base.Outcome(ctx, outcome.Code)
	}
	return c.base.Empty(ctx)
}

// RenameCalendar syncs the stored display name with Google after validating
// the Notion select options.
// POST /api/v1/users/:userId/calendar/:calendarId/rename
func (c *CalendarController) RenameCalendar(ctx echo.Context) error {
	user, appErr := c.resolveUser(ctx)
	if appErr != nil {
		return c.base.AppError(ctx, appErr)
	}

	calendarID, err := uuid.Parse(ctx.Param("calendarId"))
	if err != nil {
		return c.base.BadRequest(ctx, errors.ErrInvalidInput, "invalid calendar id")
	}

	outcome, appErr := c.service.RenameCalendar(ctx.Request().Context(), user, calendarID)
	if appErr != nil {
		return c.base.AppError(ctx, appErr)
	}
	return c.base.Outcome(ctx, outcome.Code)
}

// RemoveCalendar disconnects the calendar and marks its synced events.
// DELETE /api/v1/users/:userId/calendar/:calendarId
func (c *CalendarController) RemoveCalendar(ctx echo.Context) error {
	user, appErr := c.resolveUser(ctx)
	if appErr != nil {
		return c.base.AppError(ctx, appErr)
	}

	calendarID, err := uuid.Parse(ctx.Param("calendarId"))
	if err != nil {
		return c.base.BadRequest(ctx, errors.ErrInvalidInput, "invalid calendar id")
	}

	outcome, appErr := c.service.RemoveCalendar(ctx.Request().Context(), user, calendarID)
	if appErr != nil {
		return c.base.AppError(ctx, appErr)
	}
	if outcome != nil {
		return c.base.Outcome(ctx, outcome.Code)
	}
	return c.base.Empty(ctx)
}

// resolveUser loads the target user of the route and checks the caller may
// act on it: admins may act on anyone, everyone else only on themselves.
func (c *CalendarController) resolveUser(ctx echo.Context) (*userEntity.User, *errors.AppError) {
	tokenData, ok := middleware.TokenDataFromContext(ctx)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "not authenticated", nil)
	}

	userID, err := uuid.Parse(ctx.Param("userId"))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid user id", nil)
	}

	if tokenData.UserID != userID && !tokenData.IsAdmin {
		return nil, errors.NewAppError(errors.ErrForbidden, "cannot act on another user", nil)
	}

	user, err := c.userRepo.GetByID(ctx.Request().Context(), userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrUserNotFound, "user not found", nil)
	}
	return user, nil
}
