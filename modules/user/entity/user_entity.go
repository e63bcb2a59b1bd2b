package entity

import (
	"encoding/json"
	"fmt"

	"github.com/HyunsDev/opize-calendar2notion-server/core/entity"
)

// User carries the credentials for both external systems plus the parsed
// mapping from logical property names to Notion property ids.
type User struct {
	entity.BaseEntity
	Name                       string  `db:"name" json:"name"`
	Email                      string  `db:"email" json:"email"`
	GoogleID                   *string `db:"google_id" json:"-"`
	GoogleAccessToken          string  `db:"google_access_token" json:"-"`
	GoogleRefreshToken         string  `db:"google_refresh_token" json:"-"`
	NotionAccessToken          *string `db:"notion_access_token" json:"-"`
	NotionWorkspaceAccessToken *string `db:"notion_workspace_access_token" json:"-"`
	NotionDatabaseID           string  `db:"notion_database_id" json:"notion_database_id"`
	NotionProps                string  `db:"notion_props" json:"-"` // JSON mapping, see NotionPropsMapping
	IsConnected                bool    `db:"is_connected" json:"is_connected"`
	IsWork                     bool    `db:"is_work" json:"is_work"`
	IsAdmin                    bool    `db:"is_admin" json:"is_admin"`
	UserTimeZone               string  `db:"user_time_zone" json:"user_time_zone"`
}

// NotionPropsMapping maps logical property names to the property ids of the
// user's Notion database.
type NotionPropsMapping struct {
	Title       string `json:"title"`
	Calendar    string `json:"calendar"`
	Date        string `json:"date"`
	Delete      string `json:"delete"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// ParsedNotionProps decodes the stored JSON mapping.
func (u *User) ParsedNotionProps() (*NotionPropsMapping, error) {
	if u.NotionProps == "" {
		return nil, fmt.Errorf("user %s has no notion props configured", u.ID)
	}
	var props NotionPropsMapping
	if err := json.Unmarshal([]byte(u.NotionProps), &props); err != nil {
		return nil, fmt.Errorf("failed to parse notion props: %w", err)
	}
	return &props, nil
}

// NotionToken returns the workspace-level token when present, falling back to
// the user-level token.
func (u *User) NotionToken() string {
	if u.NotionWorkspaceAccessToken != nil && *u.NotionWorkspaceAccessToken != "" {
		return *u.NotionWorkspaceAccessToken
	}
	if u.NotionAccessToken != nil {
		return *u.NotionAccessToken
	}
	return ""
}
