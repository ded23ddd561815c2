// Package normalize converts every persisted record shape into a
// core.UnifiedEvent. A Normalizer is request scoped: it counts the rows it
// had to skip so the caller can report them.
package normalize

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"lifeledger/internal/core"
	"lifeledger/internal/log"
	"lifeledger/internal/taxonomy"
)

// Skip reasons.
const (
	ReasonMissingID   = "missing_id"
	ReasonInvalidDate = "invalid_date"
	ReasonUnknownType = "unknown_shape"
	ReasonBadCategory = "invalid_category"
	ReasonBadBankType = "invalid_transaction_type"
)

// incomeTags are the stored ledger categories that mark an inflow.
var incomeTags = map[string]bool{
	"수입":      true,
	"입금":      true,
	"income":  true,
	"deposit": true,
}

// Stats counts skipped rows by reason.
type Stats struct {
	Skipped  int
	ByReason map[string]int
}

// Normalizer is not safe for concurrent use.
type Normalizer struct {
	logger *log.Logger
	stats  Stats
}

// New returns a Normalizer. A nil logger discards the batch summary.
func New(logger *log.Logger) *Normalizer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Normalizer{
		logger: logger.WithComponent(log.ComponentNormalize),
		stats:  Stats{ByReason: map[string]int{}},
	}
}

// Stats returns a copy of the skip counters.
func (n *Normalizer) Stats() Stats {
	out := Stats{Skipped: n.stats.Skipped, ByReason: make(map[string]int, len(n.stats.ByReason))}
	for k, v := range n.stats.ByReason {
		out.ByReason[k] = v
	}
	return out
}

func (n *Normalizer) skip(kind, id, reason string) *core.SkipError {
	n.stats.Skipped++
	n.stats.ByReason[reason]++
	return &core.SkipError{Kind: kind, ID: id, Reason: reason}
}

// Event normalizes a ceremony or schedule row.
func (n *Normalizer) Event(r core.EventRow) (core.UnifiedEvent, error) {
	if strings.TrimSpace(r.ID) == "" {
		return core.UnifiedEvent{}, n.skip(core.KindEvent, r.ID, ReasonMissingID)
	}
	if _, err := core.ParseDate(r.Date); err != nil {
		return core.UnifiedEvent{}, n.skip(core.KindEvent, r.ID, ReasonInvalidDate)
	}
	cat := core.Category(r.Category)
	if cat != "" && cat != core.CategoryCeremony && cat != core.CategorySchedule {
		return core.UnifiedEvent{}, n.skip(core.KindEvent, r.ID, ReasonBadCategory)
	}
	return core.UnifiedEvent{
		ID:         core.QualifyID(core.KindEvent, r.ID),
		Source:     core.SourceEvents,
		Category:   cat,
		Type:       r.Type,
		Name:       r.Name,
		Date:       strings.TrimSpace(r.Date),
		StartTime:  clock(r.StartTime),
		EndTime:    clock(r.EndTime),
		Location:   r.Location,
		Memo:       r.Memo,
		Amount:     core.Abs(r.Amount),
		IsReceived: r.IsReceived,
		IsPaid:     r.IsPaid,
		Relation:   r.Relation,
	}, nil
}

// Todo normalizes a todo row.
func (n *Normalizer) Todo(r core.TodoRow) (core.UnifiedEvent, error) {
	if strings.TrimSpace(r.ID) == "" {
		return core.UnifiedEvent{}, n.skip(core.KindTodo, r.ID, ReasonMissingID)
	}
	if _, err := core.ParseDate(r.DueDate); err != nil {
		return core.UnifiedEvent{}, n.skip(core.KindTodo, r.ID, ReasonInvalidDate)
	}
	return core.UnifiedEvent{
		ID:          core.QualifyID(core.KindTodo, r.ID),
		Source:      core.SourceEvents,
		Category:    core.CategoryTodo,
		Type:        core.TypeTodo,
		Name:        r.Title,
		Date:        strings.TrimSpace(r.DueDate),
		StartTime:   clock(r.DueTime),
		Memo:        r.Memo,
		IsCompleted: r.IsCompleted,
	}, nil
}

// Ledger normalizes a household ledger row.
func (n *Normalizer) Ledger(r core.LedgerRow) (core.UnifiedEvent, error) {
	if strings.TrimSpace(r.ID) == "" {
		return core.UnifiedEvent{}, n.skip(core.KindLedger, r.ID, ReasonMissingID)
	}
	if _, err := core.ParseDate(r.TransactionDate); err != nil {
		return core.UnifiedEvent{}, n.skip(core.KindLedger, r.ID, ReasonInvalidDate)
	}
	typ := core.TypeReceipt
	if taxonomy.Group(r.CategoryGroup) == taxonomy.GroupAssetTransfer {
		typ = core.TypeTransfer
	}
	name := r.Merchant
	if strings.TrimSpace(name) == "" {
		name = r.Category
	}
	return core.UnifiedEvent{
		ID:         core.QualifyID(core.KindLedger, r.ID),
		Source:     core.SourceLedger,
		Category:   core.CategoryExpense,
		Type:       typ,
		Name:       name,
		Date:       strings.TrimSpace(r.TransactionDate),
		StartTime:  clock(r.TransactionTime),
		Memo:       r.Memo,
		Amount:     core.Abs(r.Amount),
		IsReceived: IsIncomeTag(r.Category),
	}, nil
}

// IsIncomeTag reports whether a stored ledger category marks an inflow.
func IsIncomeTag(category string) bool {
	return incomeTags[strings.ToLower(strings.TrimSpace(category))]
}

// BankTransaction normalizes an imported bank movement.
func (n *Normalizer) BankTransaction(r core.BankTransactionRow) (core.UnifiedEvent, error) {
	if strings.TrimSpace(r.ID) == "" {
		return core.UnifiedEvent{}, n.skip(core.KindBank, r.ID, ReasonMissingID)
	}
	if _, err := core.ParseDate(r.TransactionDate); err != nil {
		return core.UnifiedEvent{}, n.skip(core.KindBank, r.ID, ReasonInvalidDate)
	}
	var received bool
	var name string
	switch r.TransactionType {
	case core.BankDeposit:
		received, name = true, r.SenderName
	case core.BankWithdrawal:
		name = r.ReceiverName
	default:
		return core.UnifiedEvent{}, n.skip(core.KindBank, r.ID, ReasonBadBankType)
	}
	return core.UnifiedEvent{
		ID:         core.QualifyID(core.KindBank, r.ID),
		Source:     core.SourceBankTransactions,
		Category:   core.CategoryExpense,
		Type:       core.TypeTransfer,
		Name:       name,
		Date:       strings.TrimSpace(r.TransactionDate),
		StartTime:  clock(r.TransactionTime),
		Memo:       r.Memo,
		Amount:     core.Abs(r.Amount),
		IsReceived: received,
	}, nil
}

// External normalizes an entry of the external calendar feed. Start and End
// are ISO 8601; a date-only value is an all-day entry and carries no times.
func (n *Normalizer) External(e core.ExternalEntry) (core.UnifiedEvent, error) {
	if strings.TrimSpace(e.ID) == "" {
		return core.UnifiedEvent{}, n.skip(core.KindExternal, e.ID, ReasonMissingID)
	}
	date, start, _ := strings.Cut(e.Start, "T")
	if _, err := core.ParseDate(date); err != nil {
		return core.UnifiedEvent{}, n.skip(core.KindExternal, e.ID, ReasonInvalidDate)
	}
	var end string
	if _, t, ok := strings.Cut(e.End, "T"); ok {
		end = clock(t)
	}
	raw := e.ID
	if e.CalendarID != "" {
		raw = e.CalendarID + ":" + e.ID
	}
	return core.UnifiedEvent{
		ID:        core.QualifyID(core.KindExternal, raw),
		Source:    core.SourceExternal,
		Category:  core.CategorySchedule,
		Type:      core.TypeSchedule,
		Name:      e.Title,
		Date:      date,
		StartTime: clock(start),
		EndTime:   end,
		Location:  e.Location,
		Memo:      e.Notes,
	}, nil
}

// Normalize dispatches on the raw record shape.
func (n *Normalizer) Normalize(raw any) (core.UnifiedEvent, error) {
	switch r := raw.(type) {
	case core.EventRow:
		return n.Event(r)
	case core.TodoRow:
		return n.Todo(r)
	case core.LedgerRow:
		return n.Ledger(r)
	case core.BankTransactionRow:
		return n.BankTransaction(r)
	case core.ExternalEntry:
		return n.External(r)
	default:
		return core.UnifiedEvent{}, n.skip("unknown", fmt.Sprintf("%T", raw), ReasonUnknownType)
	}
}

// Batch normalizes a whole read. Skipped rows are dropped and counted.
func (n *Normalizer) Batch(ctx context.Context, b core.SourceBatch) (internal, external []core.UnifiedEvent) {
	internal = make([]core.UnifiedEvent, 0, len(b.Events)+len(b.Todos)+len(b.Ledger)+len(b.Bank))
	keep := func(ev core.UnifiedEvent, err error) {
		if err == nil {
			internal = append(internal, ev)
		}
	}
	for _, r := range b.Events {
		keep(n.Event(r))
	}
	for _, r := range b.Todos {
		keep(n.Todo(r))
	}
	for _, r := range b.Ledger {
		keep(n.Ledger(r))
	}
	for _, r := range b.Bank {
		keep(n.BankTransaction(r))
	}
	external = make([]core.UnifiedEvent, 0, len(b.External))
	for _, e := range b.External {
		if ev, err := n.External(e); err == nil {
			external = append(external, ev)
		}
	}

	if n.stats.Skipped > 0 {
		reasons := make([]string, 0, len(n.stats.ByReason))
		for r := range n.stats.ByReason {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		args := []any{log.FieldSkipped, n.stats.Skipped}
		for _, r := range reasons {
			args = append(args, r, n.stats.ByReason[r])
		}
		n.logger.WarnContext(ctx, "Skipped malformed records", args...)
	}
	n.logger.DebugContext(ctx, "Normalized batch", "internal", len(internal), "external", len(external))
	return internal, external
}

// clock trims an ISO time-of-day such as "09:30:00+09:00" to HH:MM.
func clock(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 5 {
		return ""
	}
	if hm := s[:5]; core.ValidClock(hm) {
		return hm
	}
	return ""
}
