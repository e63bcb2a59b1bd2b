package entity

import (
	"github.com/HyunsDev/opize-calendar2notion-server/core/entity"

	"github.com/google/uuid"
)

// CalendarStatus is the connection state of a linked Google calendar.
// Lifecycle operations only ever move DISCONNECTED -> PENDING and
// CONNECTED|PENDING -> DISCONNECTED; promotion to CONNECTED is done by the
// sync engine after the first successful sync.
type CalendarStatus string

const (
	CalendarStatusConnected    CalendarStatus = "CONNECTED"
	CalendarStatusPending      CalendarStatus = "PENDING"
	CalendarStatusDisconnected CalendarStatus = "DISCONNECTED"
)

// AccessRole mirrors the access tier Google reports for the calendar.
type AccessRole string

const (
	AccessRoleNone           AccessRole = "none"
	AccessRoleFreeBusyReader AccessRole = "freeBusyReader"
	AccessRoleReader         AccessRole = "reader"
	AccessRoleWriter         AccessRole = "writer"
	AccessRoleOwner          AccessRole = "owner"
)

// Calendar is a user's link to one remote Google calendar. Rows are soft
// retired by flipping status to DISCONNECTED and reused when the same remote
// calendar is re-added.
type Calendar struct {
	entity.BaseEntity
	UserID             uuid.UUID      `db:"user_id" json:"user_id"`
	GoogleCalendarID   string         `db:"google_calendar_id" json:"google_calendar_id"`
	GoogleCalendarName string         `db:"google_calendar_name" json:"google_calendar_name"`
	AccessRole         AccessRole     `db:"access_role" json:"access_role"`
	Status             CalendarStatus `db:"status" json:"status"`
}

// IsActive reports whether the calendar takes part in name uniqueness and
// duplicate-add checks.
func (c *Calendar) IsActive() bool {
	return c.Status == CalendarStatusConnected || c.Status == CalendarStatusPending
}
