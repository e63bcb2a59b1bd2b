package dto

import (
	coreDto "github.com/HyunsDev/opize-calendar2notion-server/core/dto"
	"github.com/HyunsDev/opize-calendar2notion-server/modules/admin/entity"

	"github.com/google/uuid"
)

// ErrorLogFilter narrows the admin error listing.
type ErrorLogFilter struct {
	UserID          *uuid.UUID
	Code            *string
	IsUserConnected *bool
}

// ErrorLogUser is the slim user summary joined onto each error row.
type ErrorLogUser struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	IsConnected bool      `json:"is_connected"`
}

type ErrorLogResponse struct {
	entity.ErrorLog
	User *ErrorLogUser `json:"user,omitempty"`
}

type PaginatedErrorLogs = coreDto.Pagination[ErrorLogResponse]

// ArchiveResponse reports an archive run.
type ArchiveResponse struct {
	ArchivedCount int    `json:"archived_count"`
	Location      string `json:"location,omitempty"`
}
