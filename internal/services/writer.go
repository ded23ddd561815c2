package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lifeledger/internal/amqp"
	"lifeledger/internal/core"
	"lifeledger/internal/log"
	"lifeledger/internal/stores"
	"lifeledger/internal/taxonomy"
)

// Mode selects create or update.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// IncomeLedgerCategory is the stored ledger category of every inflow.
const IncomeLedgerCategory = "수입"

// FormInput is a user submitted record. On update ID is the record id as
// returned by the day view and Source is the source it was read from.
type FormInput struct {
	UserID    string
	ID        string
	Source    core.Source
	Category  core.Category
	Type      string
	Name      string
	Date      string
	StartTime string
	EndTime   string
	Location  string
	Memo      string
	// Amount is a magnitude; the direction comes from IsReceived.
	Amount      int64
	IsReceived  bool
	IsPaid      bool
	IsCompleted bool
	Relation    string

	// Ledger fields. An empty LedgerCategory is classified from Name.
	LedgerCategory string
	SubCategory    string
	PaymentMethod  string

	// Recurrence applies to ceremony and schedule creates only.
	Recurrence Frequency
}

// WriteResult lists the qualified ids written.
type WriteResult struct {
	Source  core.Source
	IDs     []string
	GroupID string
}

// ChangeNotifier publishes change messages. *amqp.Client implements it.
type ChangeNotifier interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// WriteStore is what the writer persists to.
type WriteStore interface {
	stores.EventStore
	stores.TodoStore
	stores.LedgerStore
	stores.BankStore
}

// UnifiedWriter routes form submissions to the store that owns them.
type UnifiedWriter struct {
	store      WriteStore
	notifier   ChangeNotifier
	classifier *taxonomy.Classifier
	resolver   *taxonomy.Resolver
	logger     *log.Logger
	structured *log.StructuredLogger
	newGroupID func() string
}

// NewUnifiedWriter creates a writer. notifier may be nil.
func NewUnifiedWriter(store WriteStore, notifier ChangeNotifier, logger *log.Logger) *UnifiedWriter {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentWriter)
	return &UnifiedWriter{
		store:      store,
		notifier:   notifier,
		classifier: taxonomy.DefaultClassifier(),
		resolver:   taxonomy.NewResolver(taxonomy.Default()),
		logger:     logger,
		structured: log.NewStructuredLogger(logger),
		newGroupID: uuid.NewString,
	}
}

type route int

const (
	routeNone route = iota
	routeEvents
	routeTodos
	routeLedger
	routeBank
)

func (r route) source() core.Source {
	switch r {
	case routeEvents, routeTodos:
		return core.SourceEvents
	case routeLedger:
		return core.SourceLedger
	case routeBank:
		return core.SourceBankTransactions
	default:
		return ""
	}
}

func (r route) kind() string {
	switch r {
	case routeEvents:
		return core.KindEvent
	case routeTodos:
		return core.KindTodo
	case routeLedger:
		return core.KindLedger
	case routeBank:
		return core.KindBank
	default:
		return ""
	}
}

// resolveRoute decides the target store without touching it.
func resolveRoute(in FormInput, mode Mode) (route, string, error) {
	src := in.Source
	var kind, raw string
	if mode == ModeUpdate {
		if strings.TrimSpace(in.ID) == "" {
			return routeNone, "", fmt.Errorf("update without record id: %w", core.ErrNotFound)
		}
		if k, r, err := core.ParseRecordID(in.ID); err == nil {
			kind, raw = k, r
			if src == "" {
				src = core.SourceForKind(k)
			}
		} else {
			raw = in.ID
		}
	}

	if src == core.SourceExternal || kind == core.KindExternal {
		return routeNone, "", core.ErrReadOnlySource
	}

	var rt route
	switch {
	case mode == ModeUpdate && src == core.SourceBankTransactions:
		rt = routeBank
	case in.Category == core.CategoryCeremony || in.Category == core.CategorySchedule:
		rt = routeEvents
	case in.Category == core.CategoryTodo:
		rt = routeTodos
	case in.Category == core.CategoryExpense:
		rt = routeLedger
	default:
		return routeNone, "", fmt.Errorf("%w: category %q source %q", core.ErrUnknownWriteRoute, in.Category, src)
	}

	if src != "" && src != rt.source() {
		return routeNone, "", fmt.Errorf("%w: category %q source %q", core.ErrUnknownWriteRoute, in.Category, src)
	}
	if kind != "" && kind != rt.kind() {
		return routeNone, "", fmt.Errorf("%w: category %q record %q", core.ErrUnknownWriteRoute, in.Category, in.ID)
	}
	return rt, raw, nil
}

func validateDates(in FormInput, rt route) error {
	if rt == routeBank && strings.TrimSpace(in.Date) == "" {
		return nil
	}
	if _, err := core.ParseDate(in.Date); err != nil {
		return err
	}
	for _, c := range []string{in.StartTime, in.EndTime} {
		if c != "" && !core.ValidClock(c) {
			return fmt.Errorf("%w: time %q", core.ErrInvalidDate, c)
		}
	}
	return nil
}

// Write validates, routes and persists one form submission. No store is
// called when the route or the dates are invalid.
func (w *UnifiedWriter) Write(ctx context.Context, in FormInput, mode Mode) (WriteResult, error) {
	rt, raw, err := resolveRoute(in, mode)
	if err != nil {
		return WriteResult{}, err
	}
	if err := validateDates(in, rt); err != nil {
		return WriteResult{}, err
	}

	var res WriteResult
	switch rt {
	case routeEvents:
		res, err = w.writeEvent(ctx, in, mode, raw)
	case routeTodos:
		res, err = w.writeTodo(ctx, in, mode, raw)
	case routeLedger:
		res, err = w.writeLedger(ctx, in, mode, raw)
	case routeBank:
		res, err = w.patchBank(ctx, in, raw)
	}
	res.Source = rt.source()

	op := amqp.OpCreated
	if mode == ModeUpdate {
		op = amqp.OpUpdated
	}
	for _, id := range res.IDs {
		w.structured.LogRecordWritten(ctx, mode.String(), in.UserID, id, string(res.Source))
		w.notify(ctx, res.Source, id, in.UserID, op)
	}
	return res, err
}

func eventRow(in FormInput) core.EventRow {
	return core.EventRow{
		UserID:     in.UserID,
		Category:   string(in.Category),
		Type:       in.Type,
		Name:       in.Name,
		Date:       strings.TrimSpace(in.Date),
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Location:   in.Location,
		Memo:       in.Memo,
		Amount:     core.Abs(in.Amount),
		IsReceived: in.IsReceived,
		IsPaid:     in.IsPaid,
		Relation:   in.Relation,
	}
}

func (w *UnifiedWriter) writeEvent(ctx context.Context, in FormInput, mode Mode, raw string) (WriteResult, error) {
	row := eventRow(in)
	if mode == ModeUpdate {
		row.ID = raw
		if err := w.store.UpdateEvent(ctx, row); err != nil {
			return WriteResult{}, fmt.Errorf("update event: %w", err)
		}
		return WriteResult{IDs: []string{core.QualifyID(core.KindEvent, raw)}}, nil
	}

	if in.Recurrence == FrequencyNone {
		id, err := w.store.InsertEvent(ctx, row)
		if err != nil {
			return WriteResult{}, fmt.Errorf("insert event: %w", err)
		}
		return WriteResult{IDs: []string{core.QualifyID(core.KindEvent, id)}}, nil
	}
	return w.writeSeries(ctx, row, in.Recurrence)
}

// writeSeries inserts one row per occurrence, in order, sharing a group id.
// Rows already inserted stay when a later insert fails.
func (w *UnifiedWriter) writeSeries(ctx context.Context, row core.EventRow, freq Frequency) (WriteResult, error) {
	strategy, err := GetRecurrenceStrategy(freq)
	if err != nil {
		return WriteResult{}, err
	}
	start, err := core.ParseDate(row.Date)
	if err != nil {
		return WriteResult{}, err
	}
	dates := strategy.Dates(start)

	res := WriteResult{GroupID: w.newGroupID()}
	row.GroupID = res.GroupID
	row.Recurrence = string(freq)

	for i, d := range dates {
		err := ctx.Err()
		if err == nil {
			occ := row
			occ.Date = d.String()
			var id string
			if id, err = w.store.InsertEvent(ctx, occ); err == nil {
				res.IDs = append(res.IDs, core.QualifyID(core.KindEvent, id))
				continue
			}
		}
		w.logger.ErrorContext(ctx, "Recurring insert stopped",
			"group_id", res.GroupID, "index", i, "total", len(dates), log.FieldError, err)
		return res, &core.PartialRecurrenceError{
			GroupID:     res.GroupID,
			Index:       i,
			Total:       len(dates),
			InsertedIDs: append([]string(nil), res.IDs...),
			Err:         err,
		}
	}
	return res, nil
}

func (w *UnifiedWriter) writeTodo(ctx context.Context, in FormInput, mode Mode, raw string) (WriteResult, error) {
	row := core.TodoRow{
		UserID:      in.UserID,
		Title:       in.Name,
		DueDate:     strings.TrimSpace(in.Date),
		DueTime:     in.StartTime,
		Memo:        in.Memo,
		IsCompleted: in.IsCompleted,
	}
	if mode == ModeUpdate {
		row.ID = raw
		if err := w.store.UpdateTodo(ctx, row); err != nil {
			return WriteResult{}, fmt.Errorf("update todo: %w", err)
		}
		return WriteResult{IDs: []string{core.QualifyID(core.KindTodo, raw)}}, nil
	}
	id, err := w.store.InsertTodo(ctx, row)
	if err != nil {
		return WriteResult{}, fmt.Errorf("insert todo: %w", err)
	}
	return WriteResult{IDs: []string{core.QualifyID(core.KindTodo, id)}}, nil
}

// LedgerRowFor maps an expense form to the ledger row it is stored as.
func (w *UnifiedWriter) LedgerRowFor(in FormInput) core.LedgerRow {
	row := core.LedgerRow{
		UserID:          in.UserID,
		TransactionDate: strings.TrimSpace(in.Date),
		TransactionTime: in.StartTime,
		Merchant:        in.Name,
		Memo:            in.Memo,
		PaymentMethod:   in.PaymentMethod,
	}
	category := strings.TrimSpace(in.LedgerCategory)
	if category == "" && !in.IsReceived {
		category = w.classifier.Classify(in.Name)
	}
	group := w.resolver.Resolve(category, in.Type)

	if in.IsReceived || group == taxonomy.GroupIncome {
		row.Category = IncomeLedgerCategory
		row.SubCategory = in.SubCategory
		if category != "" && category != IncomeLedgerCategory {
			row.SubCategory = category
		}
		row.CategoryGroup = string(taxonomy.GroupIncome)
		row.Amount = core.Abs(in.Amount)
		return row
	}

	if category == "" {
		category = taxonomy.FallbackCategory
	}
	row.Category = category
	row.SubCategory = in.SubCategory
	row.CategoryGroup = string(group)
	row.Amount = -core.Abs(in.Amount)
	return row
}

func (w *UnifiedWriter) writeLedger(ctx context.Context, in FormInput, mode Mode, raw string) (WriteResult, error) {
	row := w.LedgerRowFor(in)
	if mode == ModeUpdate {
		row.ID = raw
		if err := w.store.UpdateLedger(ctx, row); err != nil {
			return WriteResult{}, fmt.Errorf("update ledger: %w", err)
		}
		return WriteResult{IDs: []string{core.QualifyID(core.KindLedger, raw)}}, nil
	}
	id, err := w.store.InsertLedger(ctx, row)
	if err != nil {
		return WriteResult{}, fmt.Errorf("insert ledger: %w", err)
	}
	return WriteResult{IDs: []string{core.QualifyID(core.KindLedger, id)}}, nil
}

func (w *UnifiedWriter) patchBank(ctx context.Context, in FormInput, raw string) (WriteResult, error) {
	memo := in.Memo
	p := stores.BankPatch{Memo: &memo}
	if c := strings.TrimSpace(in.LedgerCategory); c != "" {
		p.Category = &c
	}
	if n := strings.TrimSpace(in.Name); n != "" {
		p.Counterparty = &n
	}
	if err := w.store.PatchBankTransaction(ctx, in.UserID, raw, p); err != nil {
		return WriteResult{}, fmt.Errorf("update bank transaction: %w", err)
	}
	return WriteResult{IDs: []string{core.QualifyID(core.KindBank, raw)}}, nil
}

// Delete removes a record by its qualified id. source, when set, must
// agree with the id.
func (w *UnifiedWriter) Delete(ctx context.Context, userID, id string, source core.Source) error {
	if source == core.SourceExternal {
		return core.ErrReadOnlySource
	}
	kind, raw, err := core.ParseRecordID(id)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrNotFound, err)
	}
	if kind == core.KindExternal {
		return core.ErrReadOnlySource
	}
	src := core.SourceForKind(kind)
	if source != "" && source != src {
		return fmt.Errorf("%w: record %q source %q", core.ErrUnknownWriteRoute, id, source)
	}

	switch kind {
	case core.KindEvent:
		err = w.store.DeleteEvent(ctx, userID, raw)
	case core.KindTodo:
		err = w.store.DeleteTodo(ctx, userID, raw)
	case core.KindLedger:
		err = w.store.DeleteLedger(ctx, userID, raw)
	case core.KindBank:
		err = w.store.DeleteBankTransaction(ctx, userID, raw)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}

	w.structured.LogRecordWritten(ctx, log.OpDelete, userID, id, string(src))
	w.notify(ctx, src, id, userID, amqp.OpDeleted)
	return nil
}

// notify is best effort: the write already succeeded.
func (w *UnifiedWriter) notify(ctx context.Context, src core.Source, id, userID, op string) {
	if w.notifier == nil {
		return
	}
	err := w.notifier.PublishChange(ctx, amqp.NewChangeMessage(string(src), id, userID, op))
	if err != nil && !errors.Is(err, context.Canceled) {
		w.logger.WarnContext(ctx, "Failed to publish change message",
			log.FieldRecordID, id, log.FieldSource, src, log.FieldError, err)
	}
}
