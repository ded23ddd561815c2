package storage

type Event struct {
	ID         int64
	UserID     string
	Category   string
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

type Todo struct {
	ID          int64
	UserID      string
	Title       string
	DueDate     string
	DueTime     string
	Memo        string
	IsCompleted bool
}

type LedgerEntry struct {
	ID              int64
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

type BankTransaction struct {
	ID              int64
	UserID          string
	TransactionDate string
	TransactionTime string
	Amount          int64
	TransactionType string
	SenderName      string
	ReceiverName    string
	BankName        string
	Category        string
	Memo            string
	BalanceAfter    int64
}

type UserPreference struct {
	UserID              string
	ExternalSyncEnabled bool
	SelectedCalendarIDs string
}
