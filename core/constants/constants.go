package constants

import "time"

// Timeouts
const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultTimeout        = 10 * time.Second
	ExternalAPITimeout    = 10 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database pool settings
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Redis key prefixes
const (
	RedisKeyTokenBlacklist = "auth:blacklist:"
)

// Pagination defaults
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100
	ErrorArchiveBatch = 500
)

// Notion API
const (
	NotionAPIBase    = "https://api.notion.com/v1"
	NotionAPIVersion = "2022-06-28"
)

// Google Calendar API
const (
	GoogleCalendarAPIBase = "https://www.googleapis.com/calendar/v3"
)
