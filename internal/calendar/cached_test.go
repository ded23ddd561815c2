package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/core"
)

type countingProvider struct {
	calls   int
	entries []core.ExternalEntry
	err     error
}

func (p *countingProvider) Entries(_ context.Context, _ core.Window, ids []string) ([]core.ExternalEntry, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	var out []core.ExternalEntry
	for _, e := range p.entries {
		if Selected(e.CalendarID, ids) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (p *countingProvider) Calendars(context.Context) ([]Info, error) {
	return []Info{{ID: "work"}, {ID: "home"}}, nil
}

var testWindow = core.DefaultWindow(core.NewDate(2024, 6, 1), 6)

func TestCachedHitsInnerOnce(t *testing.T) {
	inner := &countingProvider{entries: []core.ExternalEntry{{ID: "1", CalendarID: "work"}, {ID: "2", CalendarID: "home"}}}
	c := NewCached(inner, 8, time.Minute, nil)
	ctx := context.Background()

	a, err := c.Entries(ctx, testWindow, []string{"work", "home"})
	require.NoError(t, err)
	b, err := c.Entries(ctx, testWindow, []string{"home", "work"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, inner.calls, "selection order does not change the key")

	only, err := c.Entries(ctx, testWindow, []string{"work"})
	require.NoError(t, err)
	assert.Len(t, only, 1)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: errors.New("offline")}
	c := NewCached(inner, 8, time.Minute, nil)
	_, err := c.Entries(context.Background(), testWindow, nil)
	assert.Error(t, err)
	_, err = c.Entries(context.Background(), testWindow, nil)
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedReturnsCopies(t *testing.T) {
	inner := &countingProvider{entries: []core.ExternalEntry{{ID: "1", Title: "a"}}}
	c := NewCached(inner, 8, time.Minute, nil)
	got, _ := c.Entries(context.Background(), testWindow, nil)
	got[0].Title = "changed"
	again, _ := c.Entries(context.Background(), testWindow, nil)
	assert.Equal(t, "a", again[0].Title)
}

func TestRefresh(t *testing.T) {
	inner := &countingProvider{entries: []core.ExternalEntry{{ID: "1"}}}
	c := NewCached(inner, 8, time.Minute, nil)
	n, err := c.Refresh(context.Background(), testWindow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = c.Refresh(context.Background(), testWindow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, inner.calls)
}

func TestSelected(t *testing.T) {
	assert.True(t, Selected("x", nil))
	assert.True(t, Selected("x", []string{"y", "x"}))
	assert.False(t, Selected("x", []string{"y"}))
}

func TestNone(t *testing.T) {
	got, err := None{}.Entries(context.Background(), testWindow, nil)
	assert.NoError(t, err)
	assert.Empty(t, got)
}
