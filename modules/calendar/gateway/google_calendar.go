package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/HyunsDev/opize-calendar2notion-server/core/config"
	"github.com/HyunsDev/opize-calendar2notion-server/core/constants"
	"github.com/HyunsDev/opize-calendar2notion-server/core/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleCalendarSnapshot is Google's current view of one calendar.
type GoogleCalendarSnapshot struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	AccessRole string `json:"accessRole"`
}

// ErrGoogleCalendarNotFound reports that Google knows no such calendar for
// these credentials.
var ErrGoogleCalendarNotFound = errors.New("google calendar not found")

// GoogleAPIError is any non-404 provider failure, tagged with the provider's
// HTTP status.
type GoogleAPIError struct {
	StatusCode int
	Body       string
}

func (e *GoogleAPIError) Error() string {
	return fmt.Sprintf("google calendar api error: status %d", e.StatusCode)
}

// GoogleCalendarAPI is the provider gateway scoped to one user's credentials.
type GoogleCalendarAPI interface {
	GetCalendar(ctx context.Context, googleCalendarID string) (*GoogleCalendarSnapshot, error)
}

// GoogleClientFactory builds a gateway scoped to the given tokens.
type GoogleClientFactory func(accessToken, refreshToken string) GoogleCalendarAPI

type googleCalendarClient struct {
	accessToken  string
	refreshToken string
	baseURL      string
	httpClient   *http.Client
}

func NewGoogleCalendarClient(accessToken, refreshToken string) GoogleCalendarAPI {
	return &googleCalendarClient{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		baseURL:      constants.GoogleCalendarAPIBase,
		httpClient:   &http.Client{Timeout: constants.ExternalAPITimeout},
	}
}

// GetCalendar fetches the user's calendarList entry. A 401 triggers one
// refresh-and-retry before the failure is surfaced.
func (g *googleCalendarClient) GetCalendar(ctx context.Context, googleCalendarID string) (*GoogleCalendarSnapshot, error) {
	snapshot, status, body, err := g.fetchCalendar(ctx, googleCalendarID)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized && g.refreshToken != "" {
		if refreshErr := g.refreshAccessToken(ctx); refreshErr != nil {
			logger.Error("GoogleCalendarClient:GetCalendar:Refresh:Error", "error", refreshErr)
			return nil, &GoogleAPIError{StatusCode: http.StatusUnauthorized, Body: body}
		}
		snapshot, status, body, err = g.fetchCalendar(ctx, googleCalendarID)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case status == http.StatusOK:
		return snapshot, nil
	case status == http.StatusNotFound:
		return nil, ErrGoogleCalendarNotFound
	default:
		return nil, &GoogleAPIError{StatusCode: status, Body: body}
	}
}

func (g *googleCalendarClient) fetchCalendar(ctx context.Context, googleCalendarID string) (*GoogleCalendarSnapshot, int, string, error) {
	apiURL := fmt.Sprintf("%s/users/me/calendarList/%s", g.baseURL, googleCalendarID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		logger.Error("GoogleCalendarClient:fetchCalendar:DoRequest:Error", "error", err, "calendar_id", googleCalendarID)
		return nil, 0, "", fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logger.Warn("GoogleCalendarClient:fetchCalendar:APIError",
			"status", resp.StatusCode, "calendar_id", googleCalendarID, "body", string(body))
		return nil, resp.StatusCode, string(body), nil
	}

	var snapshot GoogleCalendarSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		logger.Error("GoogleCalendarClient:fetchCalendar:Decode:Error", "error", err)
		return nil, 0, "", fmt.Errorf("failed to parse calendar response: %w", err)
	}

	return &snapshot, http.StatusOK, "", nil
}

func (g *googleCalendarClient) refreshAccessToken(ctx context.Context) error {
	cfg, ok := config.GetSafe()
	if !ok {
		return fmt.Errorf("config not initialized")
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleAPI.ClientID,
		ClientSecret: cfg.GoogleAPI.ClientSecret,
		Endpoint:     google.Endpoint,
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	tokenSource := oauthConfig.TokenSource(ctx, &oauth2.Token{
		RefreshToken: g.refreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	})

	newToken, err := tokenSource.Token()
	if err != nil {
		return err
	}

	g.accessToken = newToken.AccessToken
	logger.Info("GoogleCalendarClient:refreshAccessToken:Success")
	return nil
}
