package dto

// AddCalendarRequest is the body of POST /users/:userId/calendar.
type AddCalendarRequest struct {
	GoogleCalendarID string `json:"googleCalendarId" validate:"required"`
}

// Business outcome codes: expected validation results rendered as successes.
const (
	OutcomeUserIsWork          = "user_is_work"
	OutcomeAlreadySameName     = "already_same_name"
	OutcomeCalendarNameChanged = "calendar_name_changed"
)

// CalendarOutcome is the non-failure rejection/result channel of the
// lifecycle operations. A nil *CalendarOutcome means plain success.
type CalendarOutcome struct {
	Code string `json:"code"`
}

func NewOutcome(code string) *CalendarOutcome {
	return &CalendarOutcome{Code: code}
}
