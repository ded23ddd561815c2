// Package calendar defines the read-only external calendar feed and the
// providers wrapped around it.
package calendar

import (
	"context"

	"lifeledger/internal/core"
)

// Info describes one external calendar a user can select.
type Info struct {
	ID    string
	Name  string
	Color string
}

// Provider reads the external feed. Entries returns every entry whose start
// date falls inside w; an empty calendarIDs means all calendars.
type Provider interface {
	Entries(ctx context.Context, w core.Window, calendarIDs []string) ([]core.ExternalEntry, error)
	Calendars(ctx context.Context) ([]Info, error)
}

// None is the provider used when no external feed is configured.
type None struct{}

func (None) Entries(context.Context, core.Window, []string) ([]core.ExternalEntry, error) {
	return nil, nil
}

func (None) Calendars(context.Context) ([]Info, error) { return nil, nil }

// Selected reports whether calendarID passes the selection. An empty
// selection selects everything.
func Selected(calendarID string, selection []string) bool {
	if len(selection) == 0 {
		return true
	}
	for _, id := range selection {
		if id == calendarID {
			return true
		}
	}
	return false
}
