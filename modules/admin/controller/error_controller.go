package controller

import (
	"strconv"

	"github.com/HyunsDev/opize-calendar2notion-server/core/controller"
	"github.com/HyunsDev/opize-calendar2notion-server/core/errors"
	"github.com/HyunsDev/opize-calendar2notion-server/core/params"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/dto"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AdminErrorController struct {
	base    controller.BaseController
	service service.AdminErrorService
}

func NewAdminErrorController(svc service.AdminErrorService) *AdminErrorController {
	return &AdminErrorController{
		base:    controller.NewBaseController(),
		service: svc,
	}
}

// GetErrors lists sync error logs.
// GET /api/v1/admin/errors?page&pageSize&userId&errorCode&isUserConnected
func (c *AdminErrorController) GetErrors(ctx echo.Context) error {
	p := params.FromEchoContext(ctx)

	var filter dto.ErrorLogFilter
	if v := ctx.QueryParam("userId"); v != "" {
		userID, err := uuid.Parse(v)
		if err != nil {
			return c.base.BadRequest(ctx, errors.ErrInvalidInput, "invalid userId")
		}
		filter.UserID = &userID
	}
	if v := ctx.QueryParam("errorCode"); v != "" {
		filter.Code = &v
	}
	if v := ctx.QueryParam("isUserConnected"); v != "" {
		connected, err := strconv.ParseBool(v)
		if err != nil {
			return c.base.BadRequest(ctx, errors.ErrInvalidInput, "invalid isUserConnected")
		}
		filter.IsUserConnected = &connected
	}

	result, appErr := c.service.GetErrors(ctx.Request().Context(), p, filter)
	if appErr != nil {
		return c.base.AppError(ctx, appErr)
	}
	return c.base.Success(ctx, result, "error logs")
}

// DeleteError removes one error log.
// DELETE /api/v1/admin/errors/:errorId
func (c *AdminErrorController) DeleteError(ctx echo.Context) error {
	errorID, err := uuid.Parse(ctx.Param("errorId"))
	if err != nil {
		return c.base.BadRequest(ctx, errors.ErrInvalidInput, "invalid error id")
	}

	if appErr := c.service.DeleteError(ctx.Request().Context(), errorID); appErr != nil {
		return c.base.AppError(ctx, appErr)
	}
	return c.base.Empty(ctx)
}

// ArchiveErrors snapshots unarchived rows to S3.
// POST /api/v1/admin/errors/archive
func (c *AdminErrorController) ArchiveErrors(ctx echo.Context) error {
	result, appErr := c.service.ArchiveErrors(ctx.Request().Context())
	if appErr != nil {
		return c.base.AppError(ctx, appErr)
	}
	return c.base.Success(ctx, result, "archive complete")
}
