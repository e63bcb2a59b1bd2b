package controller

import (
	"net/http"
	"time"

	"github.com/HyunsDev/opize-calendar2notion-server/core/errors"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"

	"github.com/labstack/echo/v4"
)

// Response types
type (
	SuccessResponse struct {
		Status    int       `json:"status"`
		Message   string    `json:"message"`
		Data      any       `json:"data,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ErrorResponse struct {
		Status    string           `json:"status"`
		Code      errors.ErrorCode `json:"code"`
		Message   string           `json:"message,omitempty"`
		Timestamp time.Time        `json:"timestamp"`
	}

	// OutcomeResponse carries a business outcome: an expected, non-exceptional
	// result of a validation decision, rendered as a success.
	OutcomeResponse struct {
		Code string `json:"code"`
	}
)

// BaseController renders the three response shapes every handler uses:
// plain success, business outcome, and typed failure.
type BaseController interface {
	Success(c echo.Context, data any, message string) error
	Empty(c echo.Context) error
	Outcome(c echo.Context, code string) error
	AppError(c echo.Context, appErr *errors.AppError) error
	BadRequest(c echo.Context, code errors.ErrorCode, message string) error
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

func NewErrorBody(code errors.ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Status:    "error",
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func (h *responseHandler) Success(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, &SuccessResponse{
		Status:    http.StatusOK,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// Empty renders a bodyless success.
func (h *responseHandler) Empty(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *responseHandler) Outcome(c echo.Context, code string) error {
	return c.JSON(http.StatusOK, &OutcomeResponse{Code: code})
}

// AppError renders a typed failure with the status mapped from its code.
func (h *responseHandler) AppError(c echo.Context, appErr *errors.AppError) error {
	status := http.StatusInternalServerError
	code := errors.ErrInternalServer
	msg := "internal server error"

	if appErr != nil {
		code = appErr.Code
		msg = appErr.Message
		status = errors.HTTPStatus(code)
	}

	logger.Error("BaseController:AppError",
		"status", status,
		"code", code,
		"message", msg,
		"error", appErr,
	)
	return c.JSON(status, NewErrorBody(code, msg))
}

func (h *responseHandler) BadRequest(c echo.Context, code errors.ErrorCode, message string) error {
	return c.JSON(http.StatusBadRequest, NewErrorBody(code, message))
}
