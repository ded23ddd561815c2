// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for recurrence expansion. Each
// frequency has a strategy that turns a start date into the capped list of
// occurrence dates.

package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"lifeledger/internal/core"
)

// Frequency is how often a recurring ceremony or schedule repeats.
type Frequency string

const (
	FrequencyNone    Frequency = ""
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Occurrence caps per frequency.
const (
	DailyCap   = 30
	WeeklyCap  = 20
	MonthlyCap = 12
	YearlyCap  = 5
)

// ParseFrequency accepts the frequency names case-insensitively. "none"
// and the empty string mean no recurrence.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case FrequencyNone, "none":
		return FrequencyNone, nil
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return f, nil
	default:
		return FrequencyNone, fmt.Errorf("unknown recurrence frequency: %q", s)
	}
}

// RecurrenceStrategy is the strategy interface for expanding a series.
type RecurrenceStrategy interface {
	// Dates returns the occurrence dates starting with start itself.
	Dates(start core.Date) []core.Date
}

// RRuleStrategy expands with an RFC 5545 rule of fixed frequency and count.
type RRuleStrategy struct {
	Freq  rrule.Frequency
	Count int
}

// Dates returns Count occurrences.
func (s RRuleStrategy) Dates(start core.Date) []core.Date {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    s.Freq,
		Count:   s.Count,
		Dtstart: start.Time,
	})
	if err != nil {
		return []core.Date{start}
	}
	all := r.All()
	out := make([]core.Date, len(all))
	for i, t := range all {
		out[i] = core.Date{Time: t.UTC()}
	}
	return out
}

// ClampedMonthStrategy steps Months at a time and clamps the day to the end
// of shorter months, so a series started on the 31st keeps one row per month.
type ClampedMonthStrategy struct {
	Months int
	Count  int
}

// Dates returns Count occurrences.
func (s ClampedMonthStrategy) Dates(start core.Date) []core.Date {
	out := make([]core.Date, 0, s.Count)
	day := start.Day()
	for i := 0; i < s.Count; i++ {
		first := time.Date(start.Year(), start.Month()+time.Month(i*s.Months), 1, 0, 0, 0, 0, time.UTC)
		lastDay := first.AddDate(0, 1, -1).Day()
		d := day
		if d > lastDay {
			d = lastDay
		}
		out = append(out, core.Date{Time: first.AddDate(0, 0, d-1)})
	}
	return out
}

// recurrenceStrategies maps frequencies to their strategies.
var recurrenceStrategies = map[Frequency]RecurrenceStrategy{
	FrequencyDaily:   RRuleStrategy{Freq: rrule.DAILY, Count: DailyCap},
	FrequencyWeekly:  RRuleStrategy{Freq: rrule.WEEKLY, Count: WeeklyCap},
	FrequencyMonthly: ClampedMonthStrategy{Months: 1, Count: MonthlyCap},
	FrequencyYearly:  ClampedMonthStrategy{Months: 12, Count: YearlyCap},
}

// GetRecurrenceStrategy returns the strategy for a frequency.
func GetRecurrenceStrategy(f Frequency) (RecurrenceStrategy, error) {
	s, ok := recurrenceStrategies[f]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence frequency: %q", f)
	}
	return s, nil
}
