package storage

import (
	"context"
)

const eventColumns = `id, user_id, category, type, name, date, start_time, end_time, location, memo,
	amount, is_received, is_paid, relation, group_id, recurrence`

func scanEvent(row interface{ Scan(...interface{}) error }) (Event, error) {
	var i Event
	err := row.Scan(
		&i.ID, &i.UserID, &i.Category, &i.Type, &i.Name, &i.Date, &i.StartTime, &i.EndTime,
		&i.Location, &i.Memo, &i.Amount, &i.IsReceived, &i.IsPaid, &i.Relation, &i.GroupID, &i.Recurrence,
	)
	return i, err
}

const listEventsInRange = `SELECT ` + eventColumns + `
FROM events
WHERE user_id = ? AND date >= ? AND date <= ?
ORDER BY date, id`

type ListInRangeParams struct {
	UserID string
	From   string
	To     string
}

func (q *Queries) ListEventsInRange(ctx context.Context, arg ListInRangeParams) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEventsInRange, arg.UserID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Event
	for rows.Next() {
		i, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createEvent = `INSERT INTO events (
	user_id, category, type, name, date, start_time, end_time, location, memo,
	amount, is_received, is_paid, relation, group_id, recurrence
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateEvent(ctx context.Context, e Event) (int64, error) {
	row := q.db.QueryRowContext(ctx, createEvent,
		e.UserID, e.Category, e.Type, e.Name, e.Date, e.StartTime, e.EndTime, e.Location, e.Memo,
		e.Amount, e.IsReceived, e.IsPaid, e.Relation, e.GroupID, e.Recurrence,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateEvent = `UPDATE events SET
	category = ?, type = ?, name = ?, date = ?, start_time = ?, end_time = ?, location = ?, memo = ?,
	amount = ?, is_received = ?, is_paid = ?, relation = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateEvent(ctx context.Context, e Event) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateEvent,
		e.Category, e.Type, e.Name, e.Date, e.StartTime, e.EndTime, e.Location, e.Memo,
		e.Amount, e.IsReceived, e.IsPaid, e.Relation, e.ID, e.UserID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteEvent = `DELETE FROM events WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteEvent(ctx context.Context, id int64, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEvent, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listTodosInRange = `SELECT id, user_id, title, due_date, due_time, memo, is_completed
FROM todos
WHERE user_id = ? AND due_date >= ? AND due_date <= ?
ORDER BY due_date, id`

func (q *Queries) ListTodosInRange(ctx context.Context, arg ListInRangeParams) ([]Todo, error) {
	rows, err := q.db.QueryContext(ctx, listTodosInRange, arg.UserID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Todo
	for rows.Next() {
		var i Todo
		if err := rows.Scan(&i.ID, &i.UserID, &i.Title, &i.DueDate, &i.DueTime, &i.Memo, &i.IsCompleted); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTodo = `INSERT INTO todos (user_id, title, due_date, due_time, memo, is_completed)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateTodo(ctx context.Context, t Todo) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTodo, t.UserID, t.Title, t.DueDate, t.DueTime, t.Memo, t.IsCompleted)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateTodo = `UPDATE todos SET
	title = ?, due_date = ?, due_time = ?, memo = ?, is_completed = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateTodo(ctx context.Context, t Todo) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTodo, t.Title, t.DueDate, t.DueTime, t.Memo, t.IsCompleted, t.ID, t.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTodo = `DELETE FROM todos WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteTodo(ctx context.Context, id int64, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTodo, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const ledgerColumns = `id, user_id, transaction_date, transaction_time, amount, category, sub_category,
	category_group, merchant, memo, payment_method`

func scanLedger(row interface{ Scan(...interface{}) error }) (LedgerEntry, error) {
	var i LedgerEntry
	err := row.Scan(
		&i.ID, &i.UserID, &i.TransactionDate, &i.TransactionTime, &i.Amount, &i.Category, &i.SubCategory,
		&i.CategoryGroup, &i.Merchant, &i.Memo, &i.PaymentMethod,
	)
	return i, err
}

const listLedgerInRange = `SELECT ` + ledgerColumns + `
FROM ledger
WHERE user_id = ? AND transaction_date >= ? AND transaction_date <= ?
ORDER BY transaction_date, id`

func (q *Queries) ListLedgerInRange(ctx context.Context, arg ListInRangeParams) ([]LedgerEntry, error) {
	rows, err := q.db.QueryContext(ctx, listLedgerInRange, arg.UserID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerEntry
	for rows.Next() {
		i, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getLedgerEntry = `SELECT ` + ledgerColumns + ` FROM ledger WHERE id = ? AND user_id = ?`

func (q *Queries) GetLedgerEntry(ctx context.Context, id int64, userID string) (LedgerEntry, error) {
	return scanLedger(q.db.QueryRowContext(ctx, getLedgerEntry, id, userID))
}

const createLedgerEntry = `INSERT INTO ledger (
	user_id, transaction_date, transaction_time, amount, category, sub_category,
	category_group, merchant, memo, payment_method
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateLedgerEntry(ctx context.Context, l LedgerEntry) (int64, error) {
	row := q.db.QueryRowContext(ctx, createLedgerEntry,
		l.UserID, l.TransactionDate, l.TransactionTime, l.Amount, l.Category, l.SubCategory,
		l.CategoryGroup, l.Merchant, l.Memo, l.PaymentMethod,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateLedgerEntry = `UPDATE ledger SET
	transaction_date = ?, transaction_time = ?, amount = ?, category = ?, sub_category = ?,
	category_group = ?, merchant = ?, memo = ?, payment_method = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateLedgerEntry(ctx context.Context, l LedgerEntry) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateLedgerEntry,
		l.TransactionDate, l.TransactionTime, l.Amount, l.Category, l.SubCategory,
		l.CategoryGroup, l.Merchant, l.Memo, l.PaymentMethod, l.ID, l.UserID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteLedgerEntry = `DELETE FROM ledger WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteLedgerEntry(ctx context.Context, id int64, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteLedgerEntry, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const bankColumns = `id, user_id, transaction_date, transaction_time, amount, transaction_type,
	sender_name, receiver_name, bank_name, category, memo, balance_after`

func scanBank(row interface{ Scan(...interface{}) error }) (BankTransaction, error) {
	var i BankTransaction
	err := row.Scan(
		&i.ID, &i.UserID, &i.TransactionDate, &i.TransactionTime, &i.Amount, &i.TransactionType,
		&i.SenderName, &i.ReceiverName, &i.BankName, &i.Category, &i.Memo, &i.BalanceAfter,
	)
	return i, err
}

const listBankInRange = `SELECT ` + bankColumns + `
FROM bank_transactions
WHERE user_id = ? AND transaction_date >= ? AND transaction_date <= ?
ORDER BY transaction_date, id`

func (q *Queries) ListBankTransactionsInRange(ctx context.Context, arg ListInRangeParams) ([]BankTransaction, error) {
	rows, err := q.db.QueryContext(ctx, listBankInRange, arg.UserID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BankTransaction
	for rows.Next() {
		i, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getBankTransaction = `SELECT ` + bankColumns + ` FROM bank_transactions WHERE id = ? AND user_id = ?`

func (q *Queries) GetBankTransaction(ctx context.Context, id int64, userID string) (BankTransaction, error) {
	return scanBank(q.db.QueryRowContext(ctx, getBankTransaction, id, userID))
}

const createBankTransaction = `INSERT INTO bank_transactions (
	user_id, transaction_date, transaction_time, amount, transaction_type,
	sender_name, receiver_name, bank_name, category, memo, balance_after
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateBankTransaction(ctx context.Context, b BankTransaction) (int64, error) {
	row := q.db.QueryRowContext(ctx, createBankTransaction,
		b.UserID, b.TransactionDate, b.TransactionTime, b.Amount, b.TransactionType,
		b.SenderName, b.ReceiverName, b.BankName, b.Category, b.Memo, b.BalanceAfter,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const updateBankEditable = `UPDATE bank_transactions SET
	sender_name = ?, receiver_name = ?, category = ?, memo = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateBankEditable(ctx context.Context, b BankTransaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateBankEditable, b.SenderName, b.ReceiverName, b.Category, b.Memo, b.ID, b.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteBankTransaction = `DELETE FROM bank_transactions WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteBankTransaction(ctx context.Context, id int64, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteBankTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getUserPreference = `SELECT user_id, external_sync_enabled, selected_calendar_ids
FROM user_preferences WHERE user_id = ?`

func (q *Queries) GetUserPreference(ctx context.Context, userID string) (UserPreference, error) {
	var i UserPreference
	err := q.db.QueryRowContext(ctx, getUserPreference, userID).Scan(&i.UserID, &i.ExternalSyncEnabled, &i.SelectedCalendarIDs)
	return i, err
}

const upsertUserPreference = `INSERT INTO user_preferences (user_id, external_sync_enabled, selected_calendar_ids)
VALUES (?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	external_sync_enabled = excluded.external_sync_enabled,
	selected_calendar_ids = excluded.selected_calendar_ids,
	updated_at = CURRENT_TIMESTAMP`

func (q *Queries) UpsertUserPreference(ctx context.Context, p UserPreference) error {
	_, err := q.db.ExecContext(ctx, upsertUserPreference, p.UserID, p.ExternalSyncEnabled, p.SelectedCalendarIDs)
	return err
}
