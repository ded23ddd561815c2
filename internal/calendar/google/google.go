// Package google reads Google Calendar as the external calendar.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	goption "google.golang.org/api/option"

	"lifeledger/internal/calendar"
	"lifeledger/internal/core"
	"lifeledger/internal/log"
)

// Client lists events of a fixed set of calendars. It never writes.
type Client struct {
	svc         *gcal.Service
	calendarIDs []string
	loc         *time.Location
	logger      *log.Logger
}

var _ calendar.Provider = (*Client)(nil)

// Credentials says how to authenticate. Service account credentials win
// over an OAuth client plus token.
type Credentials struct {
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientJSON    string
	OAuthClientFile    string
	OAuthTokenFile     string
	OAuthTokenJSON     string
}

// CredentialsFromEnv reads the same variables oauth-init writes for.
func CredentialsFromEnv() Credentials {
	c := Credentials{
		ServiceAccountJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		ServiceAccountFile: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")),
		OAuthClientJSON:    strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON")),
		OAuthClientFile:    strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_CLIENT_FILE")),
		OAuthTokenFile:     strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_FILE")),
		OAuthTokenJSON:     strings.TrimSpace(os.Getenv("GOOGLE_OAUTH_TOKEN_JSON")),
	}
	if c.ServiceAccountJSON == "" && c.ServiceAccountFile == "" {
		c.ServiceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return c
}

// ClientOptions turns the credentials into API client options.
func (c Credentials) ClientOptions(ctx context.Context) ([]goption.ClientOption, error) {
	switch {
	case c.ServiceAccountJSON != "":
		return []goption.ClientOption{
			goption.WithCredentialsJSON([]byte(c.ServiceAccountJSON)),
			goption.WithScopes(gcal.CalendarReadonlyScope),
		}, nil
	case c.ServiceAccountFile != "":
		b, err := os.ReadFile(c.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return []goption.ClientOption{
			goption.WithCredentialsJSON(b),
			goption.WithScopes(gcal.CalendarReadonlyScope),
		}, nil
	case c.OAuthClientJSON != "" || c.OAuthClientFile != "":
		clientJSON := []byte(c.OAuthClientJSON)
		if len(clientJSON) == 0 {
			b, err := os.ReadFile(c.OAuthClientFile)
			if err != nil {
				return nil, fmt.Errorf("read oauth client file: %w", err)
			}
			clientJSON = b
		}
		cfg, err := goauth.ConfigFromJSON(clientJSON, gcal.CalendarReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("oauth config: %w", err)
		}
		var tok *oauth2.Token
		if c.OAuthTokenJSON != "" {
			tok = &oauth2.Token{}
			if err := decodeJSON(strings.NewReader(c.OAuthTokenJSON), tok); err != nil {
				return nil, fmt.Errorf("decode token: %w", err)
			}
		} else if tok, err = LoadToken(c.OAuthTokenFile); err != nil {
			return nil, err
		}
		return []goption.ClientOption{goption.WithHTTPClient(cfg.Client(ctx, tok))}, nil
	default:
		return nil, errors.New("missing Google credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_OAUTH_CLIENT_FILE)")
	}
}

// LoadToken reads an oauth2 token saved by oauth-init.
func LoadToken(path string) (*oauth2.Token, error) {
	if path == "" {
		path = "token.json"
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := decodeJSON(f, tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return tok, nil
}

// New creates a Client for calendarIDs. An empty list means "primary".
func New(ctx context.Context, calendarIDs []string, loc *time.Location, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	if len(calendarIDs) == 0 {
		calendarIDs = []string{"primary"}
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{svc: svc, calendarIDs: calendarIDs, loc: loc, logger: logger.WithComponent(log.ComponentCalendar)}, nil
}

// NewFromEnv creates a Client from CredentialsFromEnv.
func NewFromEnv(ctx context.Context, calendarIDs []string, loc *time.Location, logger *log.Logger) (*Client, error) {
	opts, err := CredentialsFromEnv().ClientOptions(ctx)
	if err != nil {
		return nil, err
	}
	return New(ctx, calendarIDs, loc, logger, opts...)
}

// Calendars lists the calendars of the account that are configured.
func (c *Client) Calendars(ctx context.Context) ([]calendar.Info, error) {
	configured := make(map[string]bool, len(c.calendarIDs))
	for _, id := range c.calendarIDs {
		configured[id] = true
	}

	var out []calendar.Info
	err := c.svc.CalendarList.List().Pages(ctx, func(page *gcal.CalendarList) error {
		for _, item := range page.Items {
			if !configured[item.Id] && !(item.Primary && configured["primary"]) {
				continue
			}
			out = append(out, calendar.Info{ID: item.Id, Name: item.Summary, Color: item.BackgroundColor})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	return out, nil
}

// Entries lists single (expanded) events of every selected calendar that
// overlap the window.
func (c *Client) Entries(ctx context.Context, w core.Window, calendarIDs []string) ([]core.ExternalEntry, error) {
	timeMin := time.Date(w.From.Year(), w.From.Month(), w.From.Day(), 0, 0, 0, 0, c.loc)
	timeMax := time.Date(w.To.Year(), w.To.Month(), w.To.Day(), 0, 0, 0, 0, c.loc).AddDate(0, 0, 1)

	var out []core.ExternalEntry
	for _, id := range c.calendarIDs {
		if !calendar.Selected(id, calendarIDs) {
			continue
		}
		call := c.svc.Events.List(id).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			ShowDeleted(false)
		err := call.Pages(ctx, func(page *gcal.Events) error {
			for _, ev := range page.Items {
				if e, ok := c.entry(id, ev); ok {
					out = append(out, e)
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("list events of %s: %w", id, err)
		}
	}
	c.logger.DebugContext(ctx, "Google events listed", log.FieldCount, len(out))
	return out, nil
}

func (c *Client) entry(calendarID string, ev *gcal.Event) (core.ExternalEntry, bool) {
	if ev == nil || ev.Status == "cancelled" || ev.Start == nil {
		return core.ExternalEntry{}, false
	}
	e := core.ExternalEntry{
		ID:         ev.Id,
		CalendarID: calendarID,
		Title:      ev.Summary,
		Location:   ev.Location,
		Notes:      ev.Description,
		Color:      ev.ColorId,
		Start:      c.when(ev.Start),
	}
	if ev.End != nil {
		e.End = c.when(ev.End)
	}
	return e, e.Start != ""
}

func (c *Client) when(dt *gcal.EventDateTime) string {
	if dt.Date != "" {
		return dt.Date
	}
	t, err := time.Parse(time.RFC3339, dt.DateTime)
	if err != nil {
		return ""
	}
	return t.In(c.loc).Format(time.RFC3339)
}
