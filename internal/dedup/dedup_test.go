package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/core"
)

func ev(id, name, date string) core.UnifiedEvent {
	return core.UnifiedEvent{ID: id, Name: name, Date: date}
}

func TestNameDateMatcher(t *testing.T) {
	m := DefaultMatcher()
	tests := []struct {
		name     string
		in, ext  core.UnifiedEvent
		expected bool
	}{
		{"same day", ev("event:1", "지수 결혼식", "2024-05-18"), ev("external:1", "지수 결혼식", "2024-05-18"), true},
		{"whitespace and case", ev("event:1", "Team  Dinner", "2024-05-18"), ev("external:1", "team dinner", "2024-05-18"), true},
		{"day after", ev("event:1", "dentist", "2024-05-18"), ev("external:1", "Dentist", "2024-05-19"), true},
		{"day before", ev("event:1", "dentist", "2024-05-18"), ev("external:1", "Dentist", "2024-05-17"), true},
		{"two days apart", ev("event:1", "dentist", "2024-05-18"), ev("external:1", "Dentist", "2024-05-20"), false},
		{"different name", ev("event:1", "dentist", "2024-05-18"), ev("external:1", "doctor", "2024-05-18"), false},
		{"empty names", ev("event:1", "", "2024-05-18"), ev("external:1", " ", "2024-05-18"), true},
		{"empty vs named", ev("event:1", "", "2024-05-18"), ev("external:1", "x", "2024-05-18"), false},
		{"bad date", ev("event:1", "x", "2024-05-18"), ev("external:1", "x", "soon"), false},
		{"nfd vs nfc", ev("event:1", "\uac00", "2024-05-18"), ev("external:1", "\u1100\u1161", "2024-05-18"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.Duplicate(tt.in, tt.ext))
			assert.Equal(t, tt.expected, m.Duplicate(tt.ext, tt.in), "symmetric")
		})
	}
}

func TestDedupe(t *testing.T) {
	internal := []core.UnifiedEvent{
		ev("event:1", "결혼식", "2024-05-18"),
		ev("ledger:2", "스타벅스", "2024-05-18"),
	}
	external := []core.UnifiedEvent{
		ev("external:a", "결혼식", "2024-05-19"),
		ev("external:b", "회의", "2024-05-18"),
	}

	res := Dedupe(internal, external, nil)
	require.Len(t, res.Events, 3)
	assert.Equal(t, internal, res.Events[:2])
	assert.Equal(t, "external:b", res.Events[2].ID)
	require.Len(t, res.Suppressed, 1)
	assert.Equal(t, "external:a", res.Suppressed[0].ID)
}

func TestDedupeKeepsInternalDuplicates(t *testing.T) {
	internal := []core.UnifiedEvent{ev("event:1", "a", "2024-01-01"), ev("event:2", "a", "2024-01-01")}
	res := Dedupe(internal, nil, nil)
	assert.Len(t, res.Events, 2)
	assert.Empty(t, res.Suppressed)
}

type neverMatcher struct{}

func (neverMatcher) Duplicate(_, _ core.UnifiedEvent) bool { return false }

func TestDedupeCustomMatcher(t *testing.T) {
	res := Dedupe([]core.UnifiedEvent{ev("event:1", "a", "2024-01-01")}, []core.UnifiedEvent{ev("external:1", "a", "2024-01-01")}, neverMatcher{})
	assert.Len(t, res.Events, 2)
}

func TestZeroToleranceIsSameDayOnly(t *testing.T) {
	m := NameDateMatcher{}
	assert.True(t, m.Duplicate(ev("event:1", "a", "2024-01-01"), ev("external:1", "a", "2024-01-01")))
	assert.False(t, m.Duplicate(ev("event:1", "a", "2024-01-01"), ev("external:1", "a", "2024-01-02")))
}
