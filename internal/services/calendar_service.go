package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"lifeledger/internal/calendar"
	"lifeledger/internal/core"
	"lifeledger/internal/dayindex"
	"lifeledger/internal/dedup"
	"lifeledger/internal/log"
	"lifeledger/internal/normalize"
	"lifeledger/internal/stores"
)

// ReadStore is what a reconciliation pass reads.
type ReadStore interface {
	ListEvents(ctx context.Context, userID string, w core.Window) ([]core.EventRow, error)
	ListTodos(ctx context.Context, userID string, w core.Window) ([]core.TodoRow, error)
	ListLedger(ctx context.Context, userID string, w core.Window) ([]core.LedgerRow, error)
	ListBankTransactions(ctx context.Context, userID string, w core.Window) ([]core.BankTransactionRow, error)
	stores.PreferenceReader
}

// ViewStats describes what a pass dropped.
type ViewStats struct {
	Internal        int            `json:"internal"`
	External        int            `json:"external"`
	Skipped         int            `json:"skipped"`
	SkippedByReason map[string]int `json:"skipped_by_reason,omitempty"`
	Suppressed      int            `json:"suppressed"`
}

// DayView is the reconciled view of one window.
type DayView struct {
	Window  core.Window
	Filters core.FilterSet
	Index   dayindex.Index
	Stats   ViewStats
	// ExternalError is set when the external calendar could not be read
	// and the view holds internal records only.
	ExternalError error
}

// CalendarService runs read, normalize, dedupe and index for a user.
type CalendarService struct {
	store    ReadStore
	provider calendar.Provider
	matcher  dedup.Matcher
	palette  dayindex.Palette
	logger   *log.Logger
}

// NewCalendarService creates the service. A nil provider disables the
// external calendar.
func NewCalendarService(store ReadStore, provider calendar.Provider, logger *log.Logger) *CalendarService {
	if provider == nil {
		provider = calendar.None{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &CalendarService{
		store:    store,
		provider: provider,
		matcher:  dedup.DefaultMatcher(),
		palette:  dayindex.DefaultPalette(),
		logger:   logger.WithComponent(log.ComponentCalendar),
	}
}

// WithMatcher replaces the duplicate matcher.
func (s *CalendarService) WithMatcher(m dedup.Matcher) *CalendarService {
	s.matcher = m
	return s
}

// WithPalette replaces the colour palette.
func (s *CalendarService) WithPalette(p dayindex.Palette) *CalendarService {
	s.palette = p
	return s
}

// Calendars lists the external calendars a user may select.
func (s *CalendarService) Calendars(ctx context.Context) ([]calendar.Info, error) {
	return s.provider.Calendars(ctx)
}

// Fetched is one read of every source.
type Fetched struct {
	Batch       core.SourceBatch
	ExternalErr error
}

// Fetch reads every source for the window. Store reads run concurrently;
// a store error fails the read, a provider error is kept in ExternalErr.
func (s *CalendarService) Fetch(ctx context.Context, userID string, w core.Window) (Fetched, error) {
	prefs, err := s.store.Preferences(ctx, userID)
	if err != nil {
		return Fetched{}, fmt.Errorf("read preferences: %w", err)
	}

	var b core.SourceBatch
	var externalErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		b.Events, err = s.store.ListEvents(gctx, userID, w)
		return wrapRead("events", err)
	})
	g.Go(func() (err error) {
		b.Todos, err = s.store.ListTodos(gctx, userID, w)
		return wrapRead("todos", err)
	})
	g.Go(func() (err error) {
		b.Ledger, err = s.store.ListLedger(gctx, userID, w)
		return wrapRead("ledger", err)
	})
	g.Go(func() (err error) {
		b.Bank, err = s.store.ListBankTransactions(gctx, userID, w)
		return wrapRead("bank transactions", err)
	})
	if prefs.ExternalSyncEnabled {
		g.Go(func() error {
			entries, err := s.provider.Entries(gctx, w, prefs.SelectedCalendarIDs)
			if err != nil {
				externalErr = err
				return nil
			}
			b.External = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Fetched{}, err
	}
	return Fetched{Batch: b, ExternalErr: externalErr}, nil
}

func wrapRead(what string, err error) error {
	if err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	return nil
}

// Reconcile is the single threaded part of a pass.
func (s *CalendarService) Reconcile(ctx context.Context, b core.SourceBatch, filters core.FilterSet) (dayindex.Index, ViewStats) {
	n := normalize.New(s.logger)
	internal, external := n.Batch(ctx, b)
	merged := dedup.Dedupe(internal, external, s.matcher)
	ns := n.Stats()
	return dayindex.BuildWithPalette(merged.Events, filters, s.palette), ViewStats{
		Internal:        len(internal),
		External:        len(external),
		Skipped:         ns.Skipped,
		SkippedByReason: ns.ByReason,
		Suppressed:      len(merged.Suppressed),
	}
}

// DayView reads and reconciles the window for userID.
func (s *CalendarService) DayView(ctx context.Context, userID string, w core.Window, filters core.FilterSet) (*DayView, error) {
	if filters == nil {
		filters = core.AllFilters()
	}
	f, err := s.Fetch(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	if f.ExternalErr != nil {
		s.logger.WarnContext(ctx, "External calendar unavailable, showing internal records only",
			log.FieldUserID, userID, log.FieldError, f.ExternalErr)
	}

	idx, stats := s.Reconcile(ctx, f.Batch, filters)
	if stats.Suppressed > 0 {
		s.logger.DebugContext(ctx, "Suppressed duplicate external entries",
			log.FieldUserID, userID, log.FieldSuppressed, stats.Suppressed)
	}
	return &DayView{
		Window:        w,
		Filters:       filters,
		Index:         idx,
		Stats:         stats,
		ExternalError: f.ExternalErr,
	}, nil
}
