package normalize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/core"
)

func TestEvent(t *testing.T) {
	n := New(nil)
	ev, err := n.Event(core.EventRow{
		ID: "12", Category: "ceremony", Type: core.TypeWedding, Name: "민수 결혼식",
		Date: "2024-05-18", StartTime: "12:30", Location: "더채플", Amount: -100000,
		IsPaid: true, Relation: "friend",
	})
	require.NoError(t, err)
	assert.Equal(t, "event:12", ev.ID)
	assert.Equal(t, core.SourceEvents, ev.Source)
	assert.Equal(t, core.CategoryCeremony, ev.Category)
	assert.Equal(t, core.TypeWedding, ev.Type)
	assert.Equal(t, "2024-05-18", ev.Date)
	assert.Equal(t, "12:30", ev.StartTime)
	assert.Equal(t, int64(100000), ev.Amount)
	assert.True(t, ev.IsPaid)
	assert.Equal(t, "friend", ev.Relation)
	assert.Empty(t, ev.Color)
}

func TestEventEmptyCategoryKept(t *testing.T) {
	ev, err := New(nil).Event(core.EventRow{ID: "1", Name: "x", Date: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, core.Category(""), ev.Category)
}

func TestTodo(t *testing.T) {
	ev, err := New(nil).Todo(core.TodoRow{ID: "7", Title: "청첩장 보내기", DueDate: "2024-04-01", DueTime: "09:00:00", IsCompleted: true})
	require.NoError(t, err)
	assert.Equal(t, "todo:7", ev.ID)
	assert.Equal(t, core.CategoryTodo, ev.Category)
	assert.Equal(t, core.TypeTodo, ev.Type)
	assert.Equal(t, "09:00", ev.StartTime)
	assert.True(t, ev.IsCompleted)
}

func TestLedger(t *testing.T) {
	tests := []struct {
		name         string
		row          core.LedgerRow
		wantReceived bool
		wantType     string
		wantAmount   int64
		wantName     string
	}{
		{
			name:       "expense",
			row:        core.LedgerRow{ID: "1", TransactionDate: "2024-03-01", Amount: -12000, Category: "식비", CategoryGroup: "variable_expense", Merchant: "스타벅스"},
			wantType:   core.TypeReceipt,
			wantAmount: 12000,
			wantName:   "스타벅스",
		},
		{
			name:         "income tag",
			row:          core.LedgerRow{ID: "2", TransactionDate: "2024-03-25", Amount: 3000000, Category: " 수입 ", SubCategory: "급여"},
			wantReceived: true,
			wantType:     core.TypeReceipt,
			wantAmount:   3000000,
			wantName:     " 수입 ",
		},
		{
			name:         "english income tag",
			row:          core.LedgerRow{ID: "3", TransactionDate: "2024-03-25", Amount: 500, Category: "Deposit"},
			wantReceived: true,
			wantType:     core.TypeReceipt,
			wantAmount:   500,
			wantName:     "Deposit",
		},
		{
			name:       "asset transfer",
			row:        core.LedgerRow{ID: "4", TransactionDate: "2024-03-02", Amount: -500000, Category: "저축", CategoryGroup: "asset_transfer", Merchant: "적금"},
			wantType:   core.TypeTransfer,
			wantAmount: 500000,
			wantName:   "적금",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := New(nil).Ledger(tt.row)
			require.NoError(t, err)
			assert.Equal(t, core.SourceLedger, ev.Source)
			assert.Equal(t, core.CategoryExpense, ev.Category)
			assert.Equal(t, tt.wantReceived, ev.IsReceived)
			assert.Equal(t, tt.wantType, ev.Type)
			assert.Equal(t, tt.wantAmount, ev.Amount)
			assert.Equal(t, tt.wantName, ev.Name)
		})
	}
}

func TestBankTransaction(t *testing.T) {
	n := New(nil)
	dep, err := n.BankTransaction(core.BankTransactionRow{
		ID: "5", TransactionDate: "2024-02-10", TransactionTime: "14:05:33", Amount: 50000,
		TransactionType: core.BankDeposit, SenderName: "김철수", ReceiverName: "나",
	})
	require.NoError(t, err)
	assert.Equal(t, "bank:5", dep.ID)
	assert.True(t, dep.IsReceived)
	assert.Equal(t, "김철수", dep.Name)
	assert.Equal(t, "14:05", dep.StartTime)
	assert.Equal(t, core.TypeTransfer, dep.Type)
	assert.Equal(t, core.CategoryExpense, dep.Category)

	wd, err := n.BankTransaction(core.BankTransactionRow{
		ID: "6", TransactionDate: "2024-02-11", Amount: -30000,
		TransactionType: core.BankWithdrawal, SenderName: "나", ReceiverName: "집주인",
	})
	require.NoError(t, err)
	assert.False(t, wd.IsReceived)
	assert.Equal(t, "집주인", wd.Name)
	assert.Equal(t, int64(30000), wd.Amount)
	assert.Empty(t, wd.StartTime)

	_, err = n.BankTransaction(core.BankTransactionRow{ID: "7", TransactionDate: "2024-02-11", TransactionType: "refund"})
	var skip *core.SkipError
	require.ErrorAs(t, err, &skip)
	assert.Equal(t, ReasonBadBankType, skip.Reason)
}

func TestExternal(t *testing.T) {
	n := New(nil)
	timed, err := n.External(core.ExternalEntry{
		ID: "abc", CalendarID: "work", Title: "팀 회의",
		Start: "2024-06-03T10:00:00+09:00", End: "2024-06-03T11:30:00+09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "external:work:abc", timed.ID)
	assert.Equal(t, core.SourceExternal, timed.Source)
	assert.Equal(t, core.CategorySchedule, timed.Category)
	assert.Equal(t, core.TypeSchedule, timed.Type)
	assert.Equal(t, "2024-06-03", timed.Date)
	assert.Equal(t, "10:00", timed.StartTime)
	assert.Equal(t, "11:30", timed.EndTime)
	assert.False(t, timed.Writable())

	allDay, err := n.External(core.ExternalEntry{ID: "hol", Title: "어린이날", Start: "2024-05-05", End: "2024-05-06"})
	require.NoError(t, err)
	assert.Equal(t, "external:hol", allDay.ID)
	assert.Equal(t, "2024-05-05", allDay.Date)
	assert.Empty(t, allDay.StartTime)
	assert.Empty(t, allDay.EndTime)
}

func TestSkipsAreCounted(t *testing.T) {
	n := New(nil)
	_, err := n.Event(core.EventRow{ID: "1", Date: "2024/01/01"})
	assert.Error(t, err)
	_, err = n.Todo(core.TodoRow{ID: "", DueDate: "2024-01-01"})
	assert.Error(t, err)
	_, err = n.External(core.ExternalEntry{ID: "x", Start: ""})
	assert.Error(t, err)
	_, err = n.Event(core.EventRow{ID: "2", Date: "2024-01-01", Category: "expense"})
	assert.Error(t, err)

	var skip *core.SkipError
	assert.True(t, errors.As(err, &skip))

	st := n.Stats()
	assert.Equal(t, 4, st.Skipped)
	assert.Equal(t, 2, st.ByReason[ReasonInvalidDate])
	assert.Equal(t, 1, st.ByReason[ReasonMissingID])
	assert.Equal(t, 1, st.ByReason[ReasonBadCategory])
}

func TestNormalizeDispatch(t *testing.T) {
	n := New(nil)
	ev, err := n.Normalize(core.LedgerRow{ID: "9", TransactionDate: "2024-01-02", Amount: -1})
	require.NoError(t, err)
	assert.Equal(t, "ledger:9", ev.ID)

	_, err = n.Normalize(42)
	var skip *core.SkipError
	require.ErrorAs(t, err, &skip)
	assert.Equal(t, ReasonUnknownType, skip.Reason)
}

func TestBatch(t *testing.T) {
	n := New(nil)
	internal, external := n.Batch(context.Background(), core.SourceBatch{
		Events:   []core.EventRow{{ID: "1", Category: "schedule", Date: "2024-01-01"}, {ID: "2", Date: "bad"}},
		Todos:    []core.TodoRow{{ID: "3", DueDate: "2024-01-02"}},
		Ledger:   []core.LedgerRow{{ID: "4", TransactionDate: "2024-01-03", Amount: -100}},
		Bank:     []core.BankTransactionRow{{ID: "5", TransactionDate: "2024-01-04", TransactionType: core.BankDeposit}},
		External: []core.ExternalEntry{{ID: "6", Start: "2024-01-05"}, {ID: "", Start: "2024-01-06"}},
	})
	assert.Len(t, internal, 4)
	assert.Len(t, external, 1)
	assert.Equal(t, 2, n.Stats().Skipped)
}

func TestStatsReturnsCopy(t *testing.T) {
	n := New(nil)
	_, _ = n.Event(core.EventRow{})
	st := n.Stats()
	st.ByReason[ReasonMissingID] = 99
	assert.Equal(t, 1, n.Stats().ByReason[ReasonMissingID])
}
