package core

import (
	"fmt"
	"strings"
)

const (
	SourceEvents           Source = "events"
	SourceLedger           Source = "ledger"
	SourceBankTransactions Source = "bank_transactions"
	SourceExternal         Source = "external"
)

const (
	CategoryCeremony Category = "ceremony"
	CategoryTodo     Category = "todo"
	CategorySchedule Category = "schedule"
	CategoryExpense  Category = "expense"
)

// Free-form event types the rest of the system gives meaning to.
const (
	TypeWedding     = "wedding"
	TypeFuneral     = "funeral"
	TypeBirthday    = "birthday"
	TypeOther       = "other"
	TypeAppointment = "APPOINTMENT"
	TypeReceipt     = "receipt"
	TypeTransfer    = "transfer"
	TypeSchedule    = "schedule"
	TypeTodo        = "todo"
)

type (
	// Source names the store a UnifiedEvent was read from. It decides where
	// updates and deletes are routed.
	Source string

	// Category is the top-level calendar category used for filtering.
	// The empty Category means "unset".
	Category string

	// UnifiedEvent is the canonical in-memory record every source shape is
	// normalized into. It is never persisted in this form.
	UnifiedEvent struct {
		ID          string
		Source      Source
		Category    Category
		Type        string
		Name        string
		Date        string // YYYY-MM-DD
		StartTime   string // HH:MM, empty when unset
		EndTime     string
		Location    string
		Memo        string
		Amount      int64 // magnitude, 0 when not monetary
		IsReceived  bool
		IsPaid      bool
		IsCompleted bool
		Relation    string
		Color       string // assigned by the day index
	}
)

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceEvents, SourceLedger, SourceBankTransactions, SourceExternal:
		return true
	default:
		return false
	}
}

func (s Source) String() string {
	return string(s)
}

// Valid reports whether c is one of the known categories. The empty
// category is not valid but is accepted on events.
func (c Category) Valid() bool {
	switch c {
	case CategoryCeremony, CategoryTodo, CategorySchedule, CategoryExpense:
		return true
	default:
		return false
	}
}

// Categories returns every known category in display order.
func Categories() []Category {
	return []Category{CategoryCeremony, CategoryTodo, CategorySchedule, CategoryExpense}
}

// Writable reports whether the event may be updated or deleted.
func (e UnifiedEvent) Writable() bool {
	return e.Source != SourceExternal
}

// SignedAmount returns Amount with the sign implied by IsReceived.
func (e UnifiedEvent) SignedAmount() int64 {
	if e.IsReceived {
		return e.Amount
	}
	return -e.Amount
}

// Record ID kinds. A qualified ID is "<kind>:<raw id>".
const (
	KindEvent    = "event"
	KindTodo     = "todo"
	KindLedger   = "ledger"
	KindBank     = "bank"
	KindExternal = "external"
)

// QualifyID builds a source-qualified record ID.
func QualifyID(kind, raw string) string {
	return kind + ":" + raw
}

// ParseRecordID splits a qualified ID into its kind and raw ID.
func ParseRecordID(id string) (kind, raw string, err error) {
	kind, raw, ok := strings.Cut(id, ":")
	if !ok || kind == "" || raw == "" {
		return "", "", fmt.Errorf("malformed record id %q", id)
	}
	switch kind {
	case KindEvent, KindTodo, KindLedger, KindBank, KindExternal:
		return kind, raw, nil
	default:
		return "", "", fmt.Errorf("unknown record kind %q in id %q", kind, id)
	}
}

// SourceForKind maps a record ID kind to its source.
func SourceForKind(kind string) Source {
	switch kind {
	case KindEvent, KindTodo:
		return SourceEvents
	case KindLedger:
		return SourceLedger
	case KindBank:
		return SourceBankTransactions
	case KindExternal:
		return SourceExternal
	default:
		return ""
	}
}

// Preferences are the per-user settings read at query time.
type Preferences struct {
	ExternalSyncEnabled bool
	// SelectedCalendarIDs restricts the external feed. Empty means all.
	SelectedCalendarIDs []string
}

// DefaultPreferences returns the settings used when a user has none stored.
func DefaultPreferences() Preferences {
	return Preferences{ExternalSyncEnabled: true}
}
