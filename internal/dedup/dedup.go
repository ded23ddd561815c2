// Package dedup drops external calendar entries that are already
// represented by an internal record.
package dedup

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"lifeledger/internal/core"
)

// Matcher decides whether an external event duplicates an internal one.
type Matcher interface {
	Duplicate(internal, external core.UnifiedEvent) bool
}

// NameDateMatcher treats two events as the same when their folded names are
// equal and their dates are at most ToleranceDays apart in either direction.
// Start times are not compared, so two distinct same-name events on
// adjacent days are also merged. Names that fold to empty match each other.
type NameDateMatcher struct {
	ToleranceDays int
}

// DefaultMatcher returns the ±1 day name matcher.
func DefaultMatcher() NameDateMatcher {
	return NameDateMatcher{ToleranceDays: 1}
}

// Duplicate implements Matcher.
func (m NameDateMatcher) Duplicate(internal, external core.UnifiedEvent) bool {
	if FoldName(internal.Name) != FoldName(external.Name) {
		return false
	}
	days, ok := core.DaysBetween(internal.Date, external.Date)
	return ok && days <= m.ToleranceDays
}

// FoldName applies NFC, drops all whitespace and lowercases.
func FoldName(s string) string {
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// Result is the merged list plus what was dropped.
type Result struct {
	Events     []core.UnifiedEvent
	Suppressed []core.UnifiedEvent
}

// Dedupe returns internal unchanged followed by every external event no
// internal event duplicates. A nil matcher uses DefaultMatcher.
func Dedupe(internal, external []core.UnifiedEvent, m Matcher) Result {
	if m == nil {
		m = DefaultMatcher()
	}
	res := Result{Events: make([]core.UnifiedEvent, 0, len(internal)+len(external))}
	res.Events = append(res.Events, internal...)
	for _, ext := range external {
		dup := false
		for _, in := range internal {
			if m.Duplicate(in, ext) {
				dup = true
				break
			}
		}
		if dup {
			res.Suppressed = append(res.Suppressed, ext)
			continue
		}
		res.Events = append(res.Events, ext)
	}
	return res
}
