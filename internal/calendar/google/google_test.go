package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	goption "google.golang.org/api/option"

	"lifeledger/internal/core"
)

func fakeCalendarAPI(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/calendarList"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": "me@example.com", "summary": "Me", "primary": true, "backgroundColor": "#89b4fa"},
					{"id": "other@example.com", "summary": "Other"},
				},
			})
		case strings.HasSuffix(r.URL.Path, "/events"):
			assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
			assert.NotEmpty(t, r.URL.Query().Get("timeMin"))
			if r.URL.Query().Get("pageToken") == "" {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"items": []map[string]any{
						{"id": "e1", "summary": "Lunch", "start": map[string]any{"dateTime": "2025-03-10T12:00:00+09:00"}, "end": map[string]any{"dateTime": "2025-03-10T13:00:00+09:00"}},
						{"id": "e2", "summary": "Gone", "status": "cancelled", "start": map[string]any{"date": "2025-03-11"}},
					},
					"nextPageToken": "p2",
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": "e3", "summary": "Trip", "start": map[string]any{"date": "2025-03-12"}, "end": map[string]any{"date": "2025-03-14"}},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	kst := time.FixedZone("KST", 9*3600)
	c, err := New(context.Background(), nil, kst, nil,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestEntriesPagesAndSkipsCancelled(t *testing.T) {
	srv := fakeCalendarAPI(t)
	defer srv.Close()
	c := newTestClient(t, srv)

	w := core.Window{From: core.NewDate(2025, 3, 1), To: core.NewDate(2025, 3, 31)}
	entries, err := c.Entries(context.Background(), w, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "primary", entries[0].CalendarID)
	assert.Equal(t, "2025-03-10T12:00:00+09:00", entries[0].Start)
	assert.Equal(t, "2025-03-12", entries[1].Start)
	assert.Equal(t, "2025-03-14", entries[1].End)
}

func TestEntriesRespectsSelection(t *testing.T) {
	srv := fakeCalendarAPI(t)
	defer srv.Close()
	c := newTestClient(t, srv)

	w := core.Window{From: core.NewDate(2025, 3, 1), To: core.NewDate(2025, 3, 31)}
	entries, err := c.Entries(context.Background(), w, []string{"someone-else"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCalendarsResolvesPrimary(t *testing.T) {
	srv := fakeCalendarAPI(t)
	defer srv.Close()
	c := newTestClient(t, srv)

	infos, err := c.Calendars(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "me@example.com", infos[0].ID)
	assert.Equal(t, "#89b4fa", infos[0].Color)
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveToken(path, &oauth2.Token{AccessToken: "a", RefreshToken: "r"}))

	tok, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "r", tok.RefreshToken)
}

func TestClientOptionsRequiresCredentials(t *testing.T) {
	_, err := Credentials{}.ClientOptions(context.Background())
	assert.Error(t, err)
}
