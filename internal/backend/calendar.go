package backend

import (
	"context"
	"fmt"

	"lifeledger/internal/calendar"
	"lifeledger/internal/calendar/google"
	"lifeledger/internal/calendar/ics"
	"lifeledger/internal/config"
	"lifeledger/internal/log"
)

// NewCalendarProvider builds the configured external calendar wrapped in
// the window cache. The none provider is returned uncached.
func NewCalendarProvider(ctx context.Context, cfg *config.Config, logger *log.Logger) (calendar.Provider, *calendar.Cached, error) {
	var inner calendar.Provider
	switch cfg.CalendarProvider {
	case config.CalendarNone, "":
		return calendar.None{}, nil, nil
	case config.CalendarICS:
		sources, err := ics.ParseSources(cfg.ICSSources)
		if err != nil {
			return nil, nil, err
		}
		fetcher := ics.NewFetcher(nil, cfg.ICSCacheDir, logger)
		inner = ics.NewProvider(fetcher, sources, ics.Options{Location: cfg.Location()}, logger)
	case config.CalendarGoogle:
		creds := google.CredentialsFromEnv()
		creds.OAuthClientFile = cfg.GoogleOAuthClientFile
		creds.OAuthClientJSON = cfg.GoogleOAuthClientJSON
		creds.OAuthTokenFile = cfg.GoogleOAuthTokenFile
		creds.OAuthTokenJSON = cfg.GoogleOAuthTokenJSON
		opts, err := creds.ClientOptions(ctx)
		if err != nil {
			return nil, nil, err
		}
		client, err := google.New(ctx, cfg.GoogleCalendarIDs, cfg.Location(), logger, opts...)
		if err != nil {
			return nil, nil, err
		}
		inner = client
	default:
		return nil, nil, fmt.Errorf("unsupported calendar provider: %s", cfg.CalendarProvider)
	}

	cached := calendar.NewCached(inner, cfg.CalendarCacheSize, cfg.CalendarCacheTTL, logger)
	return cached, cached, nil
}
