package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGoogleClient(baseURL string) *googleCalendarClient {
	return &googleCalendarClient{
		accessToken: "test-access",
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGetCalendar_ParsesSnapshot(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"gc-1","summary":"Team Calendar","accessRole":"owner"}`))
	}))
	defer srv.Close()

	client := newTestGoogleClient(srv.URL)
	snapshot, err := client.GetCalendar(context.Background(), "gc-1")

	require.NoError(t, err)
	assert.Equal(t, "/users/me/calendarList/gc-1", gotPath)
	assert.Equal(t, "Bearer test-access", gotAuth)
	assert.Equal(t, "gc-1", snapshot.ID)
	assert.Equal(t, "Team Calendar", snapshot.Summary)
	assert.Equal(t, "owner", snapshot.AccessRole)
}

func TestGetCalendar_NotFoundIsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":404}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestGoogleClient(srv.URL)
	snapshot, err := client.GetCalendar(context.Background(), "gc-missing")

	require.Nil(t, snapshot)
	assert.True(t, errors.Is(err, ErrGoogleCalendarNotFound))
}

func TestGetCalendar_ServerFailureCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestGoogleClient(srv.URL)
	snapshot, err := client.GetCalendar(context.Background(), "gc-1")

	require.Nil(t, snapshot)
	var apiErr *GoogleAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "backend unavailable")
}

func TestGetCalendar_UnauthorizedWithoutRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	// no refresh token configured, so the 401 surfaces directly
	client := newTestGoogleClient(srv.URL)
	snapshot, err := client.GetCalendar(context.Background(), "gc-1")

	require.Nil(t, snapshot)
	var apiErr *GoogleAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestGetCalendar_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newTestGoogleClient(srv.URL)
	snapshot, err := client.GetCalendar(context.Background(), "gc-1")

	require.Nil(t, snapshot)
	require.Error(t, err)
	var apiErr *GoogleAPIError
	assert.False(t, errors.As(err, &apiErr), "transport failures must not look like provider responses")
}
