package calendar

import (
	"context"
	"sort"
	"strings"
	"time"

	"lifeledger/internal/cache"
	"lifeledger/internal/core"
	"lifeledger/internal/log"
)

// Cached memoizes a Provider per (window, selection). Errors are not cached.
type Cached struct {
	inner   Provider
	entries *cache.LRUCache[[]core.ExternalEntry]
	logger  *log.Logger
}

var _ Provider = (*Cached)(nil)

// NewCached wraps inner with a cache holding up to size results for ttl.
func NewCached(inner Provider, size int, ttl time.Duration, logger *log.Logger) *Cached {
	if logger == nil {
		logger = log.Discard()
	}
	return &Cached{
		inner:   inner,
		entries: cache.NewLRUCache[[]core.ExternalEntry](size, ttl),
		logger:  logger.WithComponent(log.ComponentCalendar),
	}
}

// Cache exposes the underlying cache so it can be registered with a
// cache.Manager.
func (c *Cached) Cache() *cache.LRUCache[[]core.ExternalEntry] { return c.entries }

func cacheKey(w core.Window, ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return w.From.String() + "|" + w.To.String() + "|" + strings.Join(sorted, ",")
}

func (c *Cached) Entries(ctx context.Context, w core.Window, calendarIDs []string) ([]core.ExternalEntry, error) {
	key := cacheKey(w, calendarIDs)
	if hit, ok := c.entries.Get(key); ok {
		c.logger.DebugContext(ctx, "Calendar cache hit", log.FieldCount, len(hit))
		return append([]core.ExternalEntry(nil), hit...), nil
	}
	got, err := c.inner.Entries(ctx, w, calendarIDs)
	if err != nil {
		return nil, err
	}
	c.entries.Set(key, append([]core.ExternalEntry(nil), got...))
	return got, nil
}

func (c *Cached) Calendars(ctx context.Context) ([]Info, error) {
	return c.inner.Calendars(ctx)
}

// Refresh drops every cached result and re-reads w for all calendars.
func (c *Cached) Refresh(ctx context.Context, w core.Window) (int, error) {
	c.entries.Purge()
	got, err := c.Entries(ctx, w, nil)
	if err != nil {
		c.logger.WarnContext(ctx, "Calendar refresh failed", log.FieldError, err)
		return 0, err
	}
	c.logger.InfoContext(ctx, "Calendar refreshed", log.FieldCount, len(got), log.FieldOperation, log.OpRefresh)
	return len(got), nil
}
