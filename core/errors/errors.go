package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is the machine-readable code carried by every AppError. Codes are
// plain strings so provider-derived codes (google_calendar_api_error_404) can
// be built at runtime.
type ErrorCode string

// Generic codes
const (
	ErrInternalServer     ErrorCode = "internal_server_error"
	ErrInvalidInput       ErrorCode = "invalid_input"
	ErrInvalidRequestData ErrorCode = "invalid_request_data"
	ErrUnauthorized       ErrorCode = "unauthorized"
	ErrForbidden          ErrorCode = "forbidden"
	ErrNotFound           ErrorCode = "not_found"
	ErrAlreadyExists      ErrorCode = "already_exists"
	ErrGetFailed          ErrorCode = "get_failed"
	ErrCreateFailed       ErrorCode = "create_failed"
	ErrUpdateFailed       ErrorCode = "update_failed"
	ErrDeleteFailed       ErrorCode = "delete_failed"
)

// Calendar lifecycle codes
const (
	ErrCalendarNotFound       ErrorCode = "calendar_not_found"
	ErrSameNameCalendarExist  ErrorCode = "same_name_calendar_exist"
	ErrCalendarAlreadyExist   ErrorCode = "calendar_already_exist"
	ErrNotionDatabaseNotFound ErrorCode = "notion_database_not_found"
	ErrCalendarPropNotFound   ErrorCode = "calendar_prop_not_found"
	ErrWrongCalendarPropType  ErrorCode = "wrong_calendar_prop_type"
	ErrCalendarNameNotMatch   ErrorCode = "calendar_name_not_match"
	ErrUserNotFound           ErrorCode = "user_not_found"
	ErrErrorLogNotFound       ErrorCode = "error_log_not_found"
)

const googleCalendarAPIErrorPrefix = "google_calendar_api_error_"

// GoogleCalendarAPIError builds the code for an upstream Google Calendar
// failure, tagged with the provider's HTTP status.
func GoogleCalendarAPIError(status int) ErrorCode {
	if status <= 0 {
		return ErrorCode(googleCalendarAPIErrorPrefix + "unknown")
	}
	return ErrorCode(fmt.Sprintf("%s%d", googleCalendarAPIErrorPrefix, status))
}

// AppError is the typed failure carried across layers by return value.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message,omitempty"`
	Err     error     `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error code to the status the API surface responds with.
func HTTPStatus(code ErrorCode) int {
	if strings.HasPrefix(string(code), googleCalendarAPIErrorPrefix) {
		return http.StatusInternalServerError
	}

	switch code {
	case ErrInvalidInput, ErrInvalidRequestData,
		ErrSameNameCalendarExist, ErrCalendarAlreadyExist,
		ErrNotionDatabaseNotFound, ErrCalendarPropNotFound,
		ErrWrongCalendarPropType, ErrCalendarNameNotMatch:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound, ErrCalendarNotFound, ErrUserNotFound, ErrErrorLogNotFound:
		return http.StatusNotFound
	case ErrAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
