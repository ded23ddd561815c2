// Package dayindex groups reconciled events by calendar day.
package dayindex

import (
	"sort"

	"lifeledger/internal/core"
)

// Index is the per-day view. Totals is only populated in ledger-only mode,
// which is selected when the filter set is exactly {expense}.
type Index struct {
	Days       map[string]core.DayBucket
	Totals     map[string]core.DayTotals
	LedgerOnly bool
}

// Build indexes events with the default palette.
func Build(events []core.UnifiedEvent, filters core.FilterSet) Index {
	return BuildWithPalette(events, filters, DefaultPalette())
}

// BuildWithPalette indexes events, colouring each copy with p. The input
// slice is not modified.
func BuildWithPalette(events []core.UnifiedEvent, filters core.FilterSet, p Palette) Index {
	idx := Index{
		Days:       make(map[string]core.DayBucket),
		LedgerOnly: filters.Only(core.CategoryExpense),
	}
	if idx.LedgerOnly {
		idx.Totals = make(map[string]core.DayTotals)
	}

	for _, e := range events {
		if !filters.Has(effectiveCategory(e.Category)) {
			continue
		}
		e.Color = p.ColorFor(e)

		b := idx.Days[e.Date]
		b.Date = e.Date
		b.Events = append(b.Events, e)
		idx.Days[e.Date] = b

		if idx.LedgerOnly {
			t := idx.Totals[e.Date]
			if e.IsReceived {
				t.Income += e.Amount
			} else {
				t.Expense += e.Amount
			}
			idx.Totals[e.Date] = t
		}
	}

	for d, b := range idx.Days {
		sort.SliceStable(b.Events, func(i, j int) bool {
			x, y := b.Events[i], b.Events[j]
			if x.StartTime != y.StartTime {
				return x.StartTime < y.StartTime
			}
			if x.Name != y.Name {
				return x.Name < y.Name
			}
			return x.ID < y.ID
		})
		idx.Days[d] = b
	}
	return idx
}

// Dates returns the indexed dates in ascending order.
func (idx Index) Dates() []string {
	out := make([]string, 0, len(idx.Days))
	for d := range idx.Days {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Day returns the bucket for date, empty when nothing is indexed there.
func (idx Index) Day(date string) core.DayBucket {
	if b, ok := idx.Days[date]; ok {
		return b
	}
	return core.DayBucket{Date: date}
}

// Len returns the number of indexed events.
func (idx Index) Len() int {
	n := 0
	for _, b := range idx.Days {
		n += len(b.Events)
	}
	return n
}

// Legacy rows without a category are ceremonies.
func effectiveCategory(c core.Category) core.Category {
	if c == "" {
		return core.CategoryCeremony
	}
	return c
}
