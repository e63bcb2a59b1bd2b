package entity

import (
	"github.com/HyunsDev/opize-calendar2notion-server/core/entity"

	"github.com/google/uuid"
)

// ErrorFrom tells which side of the sync produced the error.
type ErrorFrom string

const (
	ErrorFromGoogleCalendar ErrorFrom = "GOOGLE_CALENDAR"
	ErrorFromNotion         ErrorFrom = "NOTION"
	ErrorFromSyncBot        ErrorFrom = "SYNCBOT"
	ErrorFromComplex        ErrorFrom = "COMPLEX"
	ErrorFromUnknown        ErrorFrom = "UNKNOWN"
)

// ErrorLevel is the operator-facing severity of a logged sync error.
type ErrorLevel string

const (
	ErrorLevelNotice    ErrorLevel = "NOTICE"
	ErrorLevelWarn      ErrorLevel = "WARN"
	ErrorLevelError     ErrorLevel = "ERROR"
	ErrorLevelCrit      ErrorLevel = "CRIT"
	ErrorLevelEmergency ErrorLevel = "EMERGENCY"
)

// ErrorLog is one recorded sync failure, written by the sync engine and
// inspected through the admin endpoints.
type ErrorLog struct {
	entity.BaseEntity
	UserID      *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Code        string     `db:"code" json:"code"`
	From        ErrorFrom  `db:"error_from" json:"from"`
	Description string     `db:"description" json:"description"`
	Detail      *string    `db:"detail" json:"detail,omitempty"`
	Level       ErrorLevel `db:"level" json:"level"`
	Archived    bool       `db:"archived" json:"archived"`
	FinishWork  *string    `db:"finish_work" json:"finish_work,omitempty"`
}
