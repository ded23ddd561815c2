// Package storage is the SQLite backend: embedded migrations, the query
// layer and a repository implementing stores.Store.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"lifeledger/internal/core"
	"lifeledger/internal/log"
	"lifeledger/internal/stores"

	_ "modernc.org/sqlite"
)

var _ stores.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func rangeParams(userID string, w core.Window) ListInRangeParams {
	return ListInRangeParams{UserID: userID, From: w.From.String(), To: w.To.String()}
}

// parseID maps store-local string ids to row ids. A malformed id cannot
// exist, so it is reported as not found.
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, core.ErrNotFound
	}
	return n, nil
}

// affected turns a (rows affected, error) result into core.ErrNotFound
// when nothing matched.
func affected(what string) func(int64, error) error {
	return func(n int64, err error) error {
		if err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
		if n == 0 {
			return core.ErrNotFound
		}
		return nil
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}

func fmtID(id int64) string { return strconv.FormatInt(id, 10) }

// Events

func (r *SQLiteRepository) ListEvents(ctx context.Context, userID string, w core.Window) ([]core.EventRow, error) {
	rows, err := r.queries.ListEventsInRange(ctx, rangeParams(userID, w))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]core.EventRow, len(rows))
	for i, e := range rows {
		out[i] = core.EventRow{
			ID: fmtID(e.ID), UserID: e.UserID, Category: e.Category, Type: e.Type, Name: e.Name,
			Date: e.Date, StartTime: e.StartTime, EndTime: e.EndTime, Location: e.Location, Memo: e.Memo,
			Amount: e.Amount, IsReceived: e.IsReceived, IsPaid: e.IsPaid, Relation: e.Relation,
			GroupID: e.GroupID, Recurrence: e.Recurrence,
		}
	}
	return out, nil
}

func eventModel(row core.EventRow) Event {
	return Event{
		UserID: row.UserID, Category: row.Category, Type: row.Type, Name: row.Name, Date: row.Date,
		StartTime: row.StartTime, EndTime: row.EndTime, Location: row.Location, Memo: row.Memo,
		Amount: row.Amount, IsReceived: row.IsReceived, IsPaid: row.IsPaid, Relation: row.Relation,
		GroupID: row.GroupID, Recurrence: row.Recurrence,
	}
}

func (r *SQLiteRepository) InsertEvent(ctx context.Context, row core.EventRow) (string, error) {
	id, err := r.queries.CreateEvent(ctx, eventModel(row))
	if err != nil {
		return "", fmt.Errorf("create event: %w", err)
	}
	r.logger.DebugContext(ctx, "Event saved", log.FieldRecordID, id, log.FieldDate, row.Date)
	return fmtID(id), nil
}

func (r *SQLiteRepository) UpdateEvent(ctx context.Context, row core.EventRow) error {
	id, err := parseID(row.ID)
	if err != nil {
		return err
	}
	m := eventModel(row)
	m.ID = id
	return affected("update event")(r.queries.UpdateEvent(ctx, m))
}

func (r *SQLiteRepository) DeleteEvent(ctx context.Context, userID, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	return affected("delete event")(r.queries.DeleteEvent(ctx, n, userID))
}

// Todos

func (r *SQLiteRepository) ListTodos(ctx context.Context, userID string, w core.Window) ([]core.TodoRow, error) {
	rows, err := r.queries.ListTodosInRange(ctx, rangeParams(userID, w))
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	out := make([]core.TodoRow, len(rows))
	for i, t := range rows {
		out[i] = core.TodoRow{
			ID: fmtID(t.ID), UserID: t.UserID, Title: t.Title, DueDate: t.DueDate,
			DueTime: t.DueTime, Memo: t.Memo, IsCompleted: t.IsCompleted,
		}
	}
	return out, nil
}

func (r *SQLiteRepository) InsertTodo(ctx context.Context, row core.TodoRow) (string, error) {
	id, err := r.queries.CreateTodo(ctx, Todo{
		UserID: row.UserID, Title: row.Title, DueDate: row.DueDate, DueTime: row.DueTime,
		Memo: row.Memo, IsCompleted: row.IsCompleted,
	})
	if err != nil {
		return "", fmt.Errorf("create todo: %w", err)
	}
	return fmtID(id), nil
}

func (r *SQLiteRepository) UpdateTodo(ctx context.Context, row core.TodoRow) error {
	id, err := parseID(row.ID)
	if err != nil {
		return err
	}
	return affected("update todo")(r.queries.UpdateTodo(ctx, Todo{
		ID: id, UserID: row.UserID, Title: row.Title, DueDate: row.DueDate, DueTime: row.DueTime,
		Memo: row.Memo, IsCompleted: row.IsCompleted,
	}))
}

func (r *SQLiteRepository) DeleteTodo(ctx context.Context, userID, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	return affected("delete todo")(r.queries.DeleteTodo(ctx, n, userID))
}

// Ledger

func ledgerRow(l LedgerEntry) core.LedgerRow {
	return core.LedgerRow{
		ID: fmtID(l.ID), UserID: l.UserID, TransactionDate: l.TransactionDate, TransactionTime: l.TransactionTime,
		Amount: l.Amount, Category: l.Category, SubCategory: l.SubCategory, CategoryGroup: l.CategoryGroup,
		Merchant: l.Merchant, Memo: l.Memo, PaymentMethod: l.PaymentMethod,
	}
}

func ledgerModel(row core.LedgerRow) LedgerEntry {
	return LedgerEntry{
		UserID: row.UserID, TransactionDate: row.TransactionDate, TransactionTime: row.TransactionTime,
		Amount: row.Amount, Category: row.Category, SubCategory: row.SubCategory, CategoryGroup: row.CategoryGroup,
		Merchant: row.Merchant, Memo: row.Memo, PaymentMethod: row.PaymentMethod,
	}
}

func (r *SQLiteRepository) ListLedger(ctx context.Context, userID string, w core.Window) ([]core.LedgerRow, error) {
	rows, err := r.queries.ListLedgerInRange(ctx, rangeParams(userID, w))
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	out := make([]core.LedgerRow, len(rows))
	for i, l := range rows {
		out[i] = ledgerRow(l)
	}
	return out, nil
}

func (r *SQLiteRepository) GetLedger(ctx context.Context, userID, id string) (core.LedgerRow, error) {
	n, err := parseID(id)
	if err != nil {
		return core.LedgerRow{}, err
	}
	l, err := r.queries.GetLedgerEntry(ctx, n, userID)
	if err != nil {
		return core.LedgerRow{}, notFound(err, "get ledger entry")
	}
	return ledgerRow(l), nil
}

func (r *SQLiteRepository) InsertLedger(ctx context.Context, row core.LedgerRow) (string, error) {
	id, err := r.queries.CreateLedgerEntry(ctx, ledgerModel(row))
	if err != nil {
		return "", fmt.Errorf("create ledger entry: %w", err)
	}
	r.logger.DebugContext(ctx, "Ledger entry saved",
		log.FieldRecordID, id, log.FieldAmount, row.Amount, log.FieldCategory, row.Category)
	return fmtID(id), nil
}

func (r *SQLiteRepository) UpdateLedger(ctx context.Context, row core.LedgerRow) error {
	id, err := parseID(row.ID)
	if err != nil {
		return err
	}
	m := ledgerModel(row)
	m.ID = id
	return affected("update ledger entry")(r.queries.UpdateLedgerEntry(ctx, m))
}

func (r *SQLiteRepository) DeleteLedger(ctx context.Context, userID, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	return affected("delete ledger entry")(r.queries.DeleteLedgerEntry(ctx, n, userID))
}

// Bank transactions

func bankRow(b BankTransaction) core.BankTransactionRow {
	return core.BankTransactionRow{
		ID: fmtID(b.ID), UserID: b.UserID, TransactionDate: b.TransactionDate, TransactionTime: b.TransactionTime,
		Amount: b.Amount, TransactionType: b.TransactionType, SenderName: b.SenderName, ReceiverName: b.ReceiverName,
		BankName: b.BankName, Category: b.Category, Memo: b.Memo, BalanceAfter: b.BalanceAfter,
	}
}

func (r *SQLiteRepository) ListBankTransactions(ctx context.Context, userID string, w core.Window) ([]core.BankTransactionRow, error) {
	rows, err := r.queries.ListBankTransactionsInRange(ctx, rangeParams(userID, w))
	if err != nil {
		return nil, fmt.Errorf("list bank transactions: %w", err)
	}
	out := make([]core.BankTransactionRow, len(rows))
	for i, b := range rows {
		out[i] = bankRow(b)
	}
	return out, nil
}

func (r *SQLiteRepository) GetBankTransaction(ctx context.Context, userID, id string) (core.BankTransactionRow, error) {
	n, err := parseID(id)
	if err != nil {
		return core.BankTransactionRow{}, err
	}
	b, err := r.queries.GetBankTransaction(ctx, n, userID)
	if err != nil {
		return core.BankTransactionRow{}, notFound(err, "get bank transaction")
	}
	return bankRow(b), nil
}

func (r *SQLiteRepository) InsertBankTransaction(ctx context.Context, row core.BankTransactionRow) (string, error) {
	id, err := r.queries.CreateBankTransaction(ctx, BankTransaction{
		UserID: row.UserID, TransactionDate: row.TransactionDate, TransactionTime: row.TransactionTime,
		Amount: row.Amount, TransactionType: row.TransactionType, SenderName: row.SenderName,
		ReceiverName: row.ReceiverName, BankName: row.BankName, Category: row.Category, Memo: row.Memo,
		BalanceAfter: row.BalanceAfter,
	})
	if err != nil {
		return "", fmt.Errorf("create bank transaction: %w", err)
	}
	return fmtID(id), nil
}

// PatchBankTransaction reads the row, applies p and writes the editable
// columns back in one transaction.
func (r *SQLiteRepository) PatchBankTransaction(ctx context.Context, userID, id string, p stores.BankPatch) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	cur, err := q.GetBankTransaction(ctx, n, userID)
	if err != nil {
		return notFound(err, "get bank transaction")
	}
	patched := p.Apply(bankRow(cur))
	cur.SenderName, cur.ReceiverName = patched.SenderName, patched.ReceiverName
	cur.Category, cur.Memo = patched.Category, patched.Memo
	if err := affected("update bank transaction")(q.UpdateBankEditable(ctx, cur)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteBankTransaction(ctx context.Context, userID, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	return affected("delete bank transaction")(r.queries.DeleteBankTransaction(ctx, n, userID))
}

// Preferences

func (r *SQLiteRepository) Preferences(ctx context.Context, userID string) (core.Preferences, error) {
	p, err := r.queries.GetUserPreference(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultPreferences(), nil
	}
	if err != nil {
		return core.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	out := core.Preferences{ExternalSyncEnabled: p.ExternalSyncEnabled}
	if err := json.Unmarshal([]byte(p.SelectedCalendarIDs), &out.SelectedCalendarIDs); err != nil {
		r.logger.WarnContext(ctx, "Ignoring malformed calendar selection", log.FieldUserID, userID, log.FieldError, err)
		out.SelectedCalendarIDs = nil
	}
	return out, nil
}

func (r *SQLiteRepository) SavePreferences(ctx context.Context, userID string, p core.Preferences) error {
	ids := p.SelectedCalendarIDs
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode calendar selection: %w", err)
	}
	if err := r.queries.UpsertUserPreference(ctx, UserPreference{
		UserID: userID, ExternalSyncEnabled: p.ExternalSyncEnabled, SelectedCalendarIDs: string(raw),
	}); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
