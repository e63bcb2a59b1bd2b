package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/HyunsDev/opize-calendar2notion-server/core/constants"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"
)

// Notion property types this server cares about.
const NotionPropTypeSelect = "select"

type NotionSelectOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NotionSelect struct {
	Options []NotionSelectOption `json:"options"`
}

// NotionProperty is one typed column of a Notion database. Select is nil for
// non-select properties.
type NotionProperty struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Select *NotionSelect `json:"select,omitempty"`
}

// NotionDatabase is the workspace database's current schema.
type NotionDatabase struct {
	ID         string                    `json:"id"`
	Properties map[string]NotionProperty `json:"properties"`
}

// NotionAPI is the workspace-database gateway scoped to one token.
type NotionAPI interface {
	// GetDatabase returns (nil, nil) when the database is gone or the token
	// cannot see it; errors are transport-level only.
	GetDatabase(ctx context.Context, databaseID string) (*NotionDatabase, error)
}

// NotionClientFactory builds a gateway scoped to the given token.
type NotionClientFactory func(token string) NotionAPI

type notionClient struct {
	token      string
	baseURL    string
	version    string
	httpClient *http.Client
}

func NewNotionClient(token string) NotionAPI {
	return &notionClient{
		token:      token,
		baseURL:    constants.NotionAPIBase,
		version:    constants.NotionAPIVersion,
		httpClient: &http.Client{Timeout: constants.ExternalAPITimeout},
	}
}

func (n *notionClient) GetDatabase(ctx context.Context, databaseID string) (*NotionDatabase, error) {
	apiURL := fmt.Sprintf("%s/databases/%s", n.baseURL, databaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Notion-Version", n.version)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		logger.Error("NotionClient:GetDatabase:DoRequest:Error", "error", err, "database_id", databaseID)
		return nil, fmt.Errorf("failed to fetch notion database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logger.Warn("NotionClient:GetDatabase:Unavailable",
			"status", resp.StatusCode, "database_id", databaseID, "body", string(body))
		return nil, nil
	}

	var database NotionDatabase
	if err := json.NewDecoder(resp.Body).Decode(&database); err != nil {
		logger.Error("NotionClient:GetDatabase:Decode:Error", "error", err)
		return nil, fmt.Errorf("failed to parse notion database: %w", err)
	}

	return &database, nil
}
