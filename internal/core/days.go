package core

import (
	"fmt"
	"strings"
)

// DayBucket holds the events shown on one calendar day.
type DayBucket struct {
	Date   string
	Events []UnifiedEvent
}

// DayTotals is the per-day money aggregate used in ledger-only mode.
// Both fields are sums of magnitudes.
type DayTotals struct {
	Income  int64
	Expense int64
}

// Net returns income minus expense.
func (t DayTotals) Net() int64 {
	return t.Income - t.Expense
}

// FilterSet is the set of categories a caller wants to see.
type FilterSet map[Category]struct{}

// NewFilterSet builds a set from the given categories.
func NewFilterSet(cats ...Category) FilterSet {
	fs := make(FilterSet, len(cats))
	for _, c := range cats {
		fs[c] = struct{}{}
	}
	return fs
}

// AllFilters returns a set with every known category.
func AllFilters() FilterSet {
	return NewFilterSet(Categories()...)
}

// ParseFilters parses a comma separated category list. An empty string
// yields AllFilters.
func ParseFilters(s string) (FilterSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AllFilters(), nil
	}
	fs := FilterSet{}
	for _, part := range strings.Split(s, ",") {
		c := Category(strings.ToLower(strings.TrimSpace(part)))
		if c == "" {
			continue
		}
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category filter %q", part)
		}
		fs[c] = struct{}{}
	}
	if len(fs) == 0 {
		return AllFilters(), nil
	}
	return fs, nil
}

// Has reports whether c is in the set.
func (fs FilterSet) Has(c Category) bool {
	_, ok := fs[c]
	return ok
}

// Only reports whether the set contains exactly c.
func (fs FilterSet) Only(c Category) bool {
	return len(fs) == 1 && fs.Has(c)
}

// String lists the set in category display order.
func (fs FilterSet) String() string {
	parts := make([]string, 0, len(fs))
	for _, c := range Categories() {
		if fs.Has(c) {
			parts = append(parts, string(c))
		}
	}
	return strings.Join(parts, ",")
}
