package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"lifeledger/internal/core"
	"lifeledger/internal/log"
)

// Refresher re-reads the external calendar for a window.
// *calendar.Cached implements it.
type Refresher interface {
	Refresh(ctx context.Context, w core.Window) (int, error)
}

// CalendarRefresher warms the external calendar cache on a cron schedule
// so day views rarely wait on the feed.
type CalendarRefresher struct {
	target Refresher
	spec   string
	months int
	now    func() time.Time
	logger *log.Logger
}

func NewCalendarRefresher(target Refresher, spec string, windowMonths int, logger *log.Logger) *CalendarRefresher {
	if logger == nil {
		logger = log.Discard()
	}
	return &CalendarRefresher{
		target: target,
		spec:   spec,
		months: windowMonths,
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Window is the window refreshed when run at the current time.
func (r *CalendarRefresher) Window() core.Window {
	t := r.now()
	return core.DefaultWindow(core.NewDate(t.Year(), int(t.Month()), t.Day()), r.months)
}

// RunOnce refreshes immediately.
func (r *CalendarRefresher) RunOnce(ctx context.Context) {
	n, err := r.target.Refresh(ctx, r.Window())
	if err != nil {
		r.logger.WarnContext(ctx, "Scheduled calendar refresh failed", log.FieldError, err)
		return
	}
	r.logger.InfoContext(ctx, "Scheduled calendar refresh", log.FieldCount, n)
}

// Run refreshes once, then on schedule until ctx is done.
func (r *CalendarRefresher) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(r.spec, func() { r.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule calendar refresh %q: %w", r.spec, err)
	}

	r.RunOnce(ctx)
	c.Start()
	r.logger.InfoContext(ctx, "Calendar refresh scheduled", "schedule", r.spec)

	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
