// Package stores declares the persistence ports the services depend on.
// Implementations live in internal/stores/memory and internal/storage.
package stores

import (
	"context"

	"lifeledger/internal/core"
)

// Ports for outbound adapters. Raw IDs are store-local; the services qualify
// them. Every method scopes by user and returns core.ErrNotFound for rows
// that do not exist or belong to another user.
type (
	EventStore interface {
		ListEvents(ctx context.Context, userID string, w core.Window) ([]core.EventRow, error)
		InsertEvent(ctx context.Context, row core.EventRow) (id string, err error)
		UpdateEvent(ctx context.Context, row core.EventRow) error
		DeleteEvent(ctx context.Context, userID, id string) error
	}

	TodoStore interface {
		ListTodos(ctx context.Context, userID string, w core.Window) ([]core.TodoRow, error)
		InsertTodo(ctx context.Context, row core.TodoRow) (id string, err error)
		UpdateTodo(ctx context.Context, row core.TodoRow) error
		DeleteTodo(ctx context.Context, userID, id string) error
	}

	LedgerStore interface {
		ListLedger(ctx context.Context, userID string, w core.Window) ([]core.LedgerRow, error)
		GetLedger(ctx context.Context, userID, id string) (core.LedgerRow, error)
		InsertLedger(ctx context.Context, row core.LedgerRow) (id string, err error)
		UpdateLedger(ctx context.Context, row core.LedgerRow) error
		DeleteLedger(ctx context.Context, userID, id string) error
	}

	BankStore interface {
		ListBankTransactions(ctx context.Context, userID string, w core.Window) ([]core.BankTransactionRow, error)
		GetBankTransaction(ctx context.Context, userID, id string) (core.BankTransactionRow, error)
		InsertBankTransaction(ctx context.Context, row core.BankTransactionRow) (id string, err error)
		// PatchBankTransaction changes only the user-editable fields.
		PatchBankTransaction(ctx context.Context, userID, id string, p BankPatch) error
		DeleteBankTransaction(ctx context.Context, userID, id string) error
	}

	PreferenceReader interface {
		// Preferences returns core.DefaultPreferences when none are stored.
		Preferences(ctx context.Context, userID string) (core.Preferences, error)
	}

	PreferenceWriter interface {
		SavePreferences(ctx context.Context, userID string, p core.Preferences) error
	}

	// Store is everything a backend provides.
	Store interface {
		EventStore
		TodoStore
		LedgerStore
		BankStore
		PreferenceReader
		PreferenceWriter
		Close() error
	}
)

// BankPatch holds the editable bank transaction fields. Nil means unchanged.
// Counterparty is written to the sender on deposits and the receiver on
// withdrawals.
type BankPatch struct {
	Memo         *string
	Category     *string
	Counterparty *string
}

// Apply returns row with the patch applied.
func (p BankPatch) Apply(row core.BankTransactionRow) core.BankTransactionRow {
	if p.Memo != nil {
		row.Memo = *p.Memo
	}
	if p.Category != nil {
		row.Category = *p.Category
	}
	if p.Counterparty != nil {
		if row.TransactionType == core.BankDeposit {
			row.SenderName = *p.Counterparty
		} else {
			row.ReceiverName = *p.Counterparty
		}
	}
	return row
}
