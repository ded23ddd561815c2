package core

// Persisted shapes as the datastore returns them. Only the normalizer may
// rely on per-shape fields; everything downstream works on UnifiedEvent.
type (
	// EventRow is a ceremony or schedule row of the events store.
	EventRow struct {
		ID         string
		UserID     string
		Category   string // ceremony | schedule | ""
		Type       string
		Name       string
		Date       string
		StartTime  string
		EndTime    string
		Location   string
		Memo       string
		Amount     int64
		IsReceived bool
		IsPaid     bool
		Relation   string
		GroupID    string
		Recurrence string
	}

	// TodoRow is a todo item of the events store.
	TodoRow struct {
		ID          string
		UserID      string
		Title       string
		DueDate     string
		DueTime     string
		Memo        string
		IsCompleted bool
	}

	// LedgerRow is a household ledger entry. Amount is signed as stored.
	LedgerRow struct {
		ID              string
		UserID          string
		TransactionDate string
		TransactionTime string
		Amount          int64
		Category        string
		SubCategory     string
		CategoryGroup   string
		Merchant        string
		Memo            string
		PaymentMethod   string
	}

	// BankTransactionRow is an imported bank account movement.
	BankTransactionRow struct {
		ID              string
		UserID          string
		TransactionDate string
		TransactionTime string
		Amount          int64
		TransactionType string // deposit | withdrawal
		SenderName      string
		ReceiverName    string
		BankName        string
		Category        string
		Memo            string
		BalanceAfter    int64
	}

	// ExternalEntry is one entry of the read-only external calendar feed.
	// Start and End are ISO 8601 and may be date-only for all-day entries.
	ExternalEntry struct {
		ID         string
		CalendarID string
		Title      string
		Start      string
		End        string
		Color      string
		Location   string
		Notes      string
	}
)

// Bank transaction types.
const (
	BankDeposit    = "deposit"
	BankWithdrawal = "withdrawal"
)

// SourceBatch is everything read for one reconciliation pass.
type SourceBatch struct {
	Events   []EventRow
	Todos    []TodoRow
	Ledger   []LedgerRow
	Bank     []BankTransactionRow
	External []ExternalEntry
}
