package ics

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultMaxOccurrences caps the expansion of a single series.
const DefaultMaxOccurrences = 500

// Occurrence is one concrete instance of an Event.
type Occurrence struct {
	CalendarID  string
	UID         string
	InstanceKey string
	Summary     string
	Description string
	Location    string
	AllDay      bool
	Start       time.Time
	End         time.Time
}

// ExpandResult lists the occurrences plus the series that hit the cap or
// carried an unparsable RRULE.
type ExpandResult struct {
	Occurrences []Occurrence
	Truncated   []string
	BadRules    []string
}

// Expand turns events into occurrences starting inside [from, to].
func Expand(events []Event, from, to time.Time, max int) (ExpandResult, error) {
	var res ExpandResult
	if to.Before(from) {
		return res, fmt.Errorf("expand: range end %s before start %s", to, from)
	}
	if max <= 0 {
		max = DefaultMaxOccurrences
	}

	base := make(map[string][]Event)
	overrides := make(map[string][]Event)
	var order []string
	for _, ev := range events {
		if ev.RecurrenceID != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		if _, seen := base[ev.UID]; !seen {
			order = append(order, ev.UID)
		}
		base[ev.UID] = append(base[ev.UID], ev)
	}

	for _, uid := range order {
		for _, ev := range base[uid] {
			if ev.RRule == "" {
				if !ev.Start.Before(from) && !ev.Start.After(to) {
					res.Occurrences = append(res.Occurrences, occurrence(ev, ev.Start, ev.End))
				}
				continue
			}
			occ, capped, err := expandSeries(ev, overrides[uid], from, to, max)
			if err != nil {
				res.BadRules = append(res.BadRules, uid)
				continue
			}
			if capped {
				res.Truncated = append(res.Truncated, uid)
			}
			res.Occurrences = append(res.Occurrences, occ...)
		}
	}
	return res, nil
}

func expandSeries(ev Event, overrides []Event, from, to time.Time, max int) ([]Occurrence, bool, error) {
	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		return nil, false, err
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	loc := ev.Start.Location()
	starts := set.Between(from.In(loc), to.In(loc), true)
	capped := false
	if len(starts) > max {
		starts, capped = starts[:max], true
	}

	dur := ev.End.Sub(ev.Start)
	out := make([]Occurrence, 0, len(starts))
	for _, s := range starts {
		inst, start, end := ev, s, s.Add(dur)
		for _, o := range overrides {
			if o.RecurrenceID.Equal(s) {
				inst, start, end = o, o.Start, o.End
				break
			}
		}
		out = append(out, occurrence(inst, start, end))
	}
	return out, capped, nil
}

func occurrence(ev Event, start, end time.Time) Occurrence {
	return Occurrence{
		CalendarID:  ev.CalendarID,
		UID:         ev.UID,
		InstanceKey: start.UTC().Format("20060102T150405Z"),
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		AllDay:      ev.AllDay,
		Start:       start,
		End:         end,
	}
}
