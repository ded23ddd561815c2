package ics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lifeledger/internal/calendar"
	"lifeledger/internal/core"
	"lifeledger/internal/log"
)

// Provider serves the configured ICS sources as the external calendar.
type Provider struct {
	fetcher        *Fetcher
	sources        []Source
	loc            *time.Location
	maxOccurrences int
	logger         *log.Logger
}

var _ calendar.Provider = (*Provider)(nil)

// Options configures a Provider.
type Options struct {
	// Location is where floating times and all-day dates live. Defaults to time.Local.
	Location       *time.Location
	MaxOccurrences int
}

func NewProvider(fetcher *Fetcher, sources []Source, opts Options, logger *log.Logger) *Provider {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Provider{
		fetcher:        fetcher,
		sources:        sources,
		loc:            opts.Location,
		maxOccurrences: opts.MaxOccurrences,
		logger:         logger.WithComponent(log.ComponentCalendar),
	}
}

// ParseSources reads "id=url,id=url". A bare url gets a positional id.
func ParseSources(s string) ([]Source, error) {
	var out []Source
	for i, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, url, ok := strings.Cut(part, "=")
		if !ok || strings.Contains(id, "://") {
			id, url = fmt.Sprintf("ics%d", i+1), part
		}
		id, url = strings.TrimSpace(id), strings.TrimSpace(url)
		if id == "" || url == "" {
			return nil, fmt.Errorf("invalid ics source %q", part)
		}
		out = append(out, Source{ID: id, URL: url})
	}
	return out, nil
}

func (p *Provider) Calendars(context.Context) ([]calendar.Info, error) {
	out := make([]calendar.Info, len(p.sources))
	for i, s := range p.sources {
		out[i] = calendar.Info{ID: s.ID, Name: s.ID}
	}
	return out, nil
}

// Entries fetches, parses and expands every selected source. A failing
// source is logged and skipped; the call only fails when every selected
// source failed.
func (p *Provider) Entries(ctx context.Context, w core.Window, calendarIDs []string) ([]core.ExternalEntry, error) {
	from := time.Date(w.From.Year(), w.From.Month(), w.From.Day(), 0, 0, 0, 0, p.loc)
	to := time.Date(w.To.Year(), w.To.Month(), w.To.Day(), 23, 59, 59, 0, p.loc)

	var out []core.ExternalEntry
	var errs []error
	tried := 0
	for _, src := range p.sources {
		if !calendar.Selected(src.ID, calendarIDs) {
			continue
		}
		tried++
		entries, err := p.sourceEntries(ctx, src, from, to)
		if err != nil {
			p.logger.WarnContext(ctx, "ICS source failed", log.FieldCalendarID, src.ID, log.FieldError, err)
			errs = append(errs, err)
			continue
		}
		out = append(out, entries...)
	}
	if tried > 0 && len(errs) == tried {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (p *Provider) sourceEntries(ctx context.Context, src Source, from, to time.Time) ([]core.ExternalEntry, error) {
	res, err := p.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	events, skipped, err := Parse(src.ID, res.Body, p.loc)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		p.logger.WarnContext(ctx, "Skipped undecodable VEVENTs", log.FieldCalendarID, src.ID, log.FieldSkipped, skipped)
	}
	exp, err := Expand(events, from, to, p.maxOccurrences)
	if err != nil {
		return nil, err
	}
	if len(exp.Truncated) > 0 || len(exp.BadRules) > 0 {
		p.logger.WarnContext(ctx, "Recurring series not fully expanded",
			log.FieldCalendarID, src.ID, "truncated", exp.Truncated, "bad_rrule", exp.BadRules)
	}

	out := make([]core.ExternalEntry, 0, len(exp.Occurrences))
	for _, o := range exp.Occurrences {
		out = append(out, p.entry(o))
	}
	return out, nil
}

func (p *Provider) entry(o Occurrence) core.ExternalEntry {
	e := core.ExternalEntry{
		ID:         o.UID + "/" + o.InstanceKey,
		CalendarID: o.CalendarID,
		Title:      o.Summary,
		Location:   o.Location,
		Notes:      o.Description,
	}
	if o.AllDay {
		e.Start = o.Start.Format(core.DateLayout)
		e.End = o.End.Format(core.DateLayout)
	} else {
		e.Start = o.Start.In(p.loc).Format(time.RFC3339)
		e.End = o.End.In(p.loc).Format(time.RFC3339)
	}
	return e
}
