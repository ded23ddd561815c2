package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/amqp"
	"lifeledger/internal/core"
	"lifeledger/internal/stores/memory"
	"lifeledger/internal/taxonomy"
)

const user = "u1"

func march() core.Window {
	return core.Window{From: core.NewDate(2026, 3, 1), To: core.NewDate(2026, 3, 31)}
}

func TestHandleChangeClassifiesLedger(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	id, err := store.InsertLedger(ctx, core.LedgerRow{
		UserID: user, TransactionDate: "2026-03-03", Amount: -5500, Merchant: "스타벅스 강남점",
	})
	require.NoError(t, err)

	w := NewClassifyWorker(store, nil)
	msg := amqp.NewChangeMessage(core.SourceLedger.String(), core.QualifyID(core.KindLedger, id), user, amqp.OpCreated)
	require.NoError(t, w.HandleChange(ctx, msg))

	row, err := store.GetLedger(ctx, user, id)
	require.NoError(t, err)
	assert.Equal(t, "식비", row.Category)
	assert.Equal(t, string(taxonomy.GroupVariableExpense), row.CategoryGroup)
	assert.Equal(t, int64(-5500), row.Amount)
}

func TestHandleChangeSignFollowsCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	salary, err := store.InsertLedger(ctx, core.LedgerRow{
		UserID: user, TransactionDate: "2026-03-25", Amount: -3000000, Merchant: "(주)회사 급여",
	})
	require.NoError(t, err)
	groceries, err := store.InsertLedger(ctx, core.LedgerRow{
		UserID: user, TransactionDate: "2026-03-26", Amount: 42000, Merchant: "이마트",
	})
	require.NoError(t, err)

	w := NewClassifyWorker(store, nil)
	for _, id := range []string{salary, groceries} {
		msg := amqp.NewChangeMessage(core.SourceLedger.String(), core.QualifyID(core.KindLedger, id), user, amqp.OpCreated)
		require.NoError(t, w.HandleChange(ctx, msg))
	}

	row, err := store.GetLedger(ctx, user, salary)
	require.NoError(t, err)
	assert.Equal(t, "수입", row.Category)
	assert.Equal(t, string(taxonomy.GroupIncome), row.CategoryGroup)
	assert.Equal(t, int64(3000000), row.Amount)

	row, err = store.GetLedger(ctx, user, groceries)
	require.NoError(t, err)
	assert.Equal(t, "생활", row.Category)
	assert.Equal(t, int64(-42000), row.Amount)
}

func TestHandleChangeKeepsExplicitCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	id, err := store.InsertLedger(ctx, core.LedgerRow{
		UserID: user, TransactionDate: "2026-03-03", Amount: -5500, Category: "생활", Merchant: "스타벅스",
	})
	require.NoError(t, err)

	w := NewClassifyWorker(store, nil)
	msg := amqp.NewChangeMessage(core.SourceLedger.String(), core.QualifyID(core.KindLedger, id), user, amqp.OpUpdated)
	require.NoError(t, w.HandleChange(ctx, msg))

	row, err := store.GetLedger(ctx, user, id)
	require.NoError(t, err)
	assert.Equal(t, "생활", row.Category)
}

func TestHandleChangeKeepsChosenFallbackCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	id, err := store.InsertLedger(ctx, core.LedgerRow{
		UserID: user, TransactionDate: "2026-03-03", Amount: -5500,
		Category: taxonomy.FallbackCategory, Merchant: "스타벅스",
	})
	require.NoError(t, err)

	w := NewClassifyWorker(store, nil)
	msg := amqp.NewChangeMessage(core.SourceLedger.String(), core.QualifyID(core.KindLedger, id), user, amqp.OpUpdated)
	require.NoError(t, w.HandleChange(ctx, msg))

	row, err := store.GetLedger(ctx, user, id)
	require.NoError(t, err)
	assert.Equal(t, taxonomy.FallbackCategory, row.Category)
	assert.Equal(t, int64(-5500), row.Amount)
}

func TestHandleChangeClassifiesBankCounterparty(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	withdrawal, err := store.InsertBankTransaction(ctx, core.BankTransactionRow{
		UserID: user, TransactionDate: "2026-03-04", Amount: 13500,
		TransactionType: core.BankWithdrawal, ReceiverName: "넷플릭스",
	})
	require.NoError(t, err)
	deposit, err := store.InsertBankTransaction(ctx, core.BankTransactionRow{
		UserID: user, TransactionDate: "2026-03-25", Amount: 3000000,
		TransactionType: core.BankDeposit, SenderName: "(주)회사 급여", ReceiverName: "넷플릭스",
	})
	require.NoError(t, err)

	w := NewClassifyWorker(store, nil)
	for _, id := range []string{withdrawal, deposit} {
		msg := amqp.NewChangeMessage(core.SourceBankTransactions.String(), core.QualifyID(core.KindBank, id), user, amqp.OpCreated)
		require.NoError(t, w.HandleChange(ctx, msg))
	}

	row, err := store.GetBankTransaction(ctx, user, withdrawal)
	require.NoError(t, err)
	assert.Equal(t, "구독", row.Category)

	row, err = store.GetBankTransaction(ctx, user, deposit)
	require.NoError(t, err)
	assert.Equal(t, "수입", row.Category)
}

func TestHandleChangeIgnoresOtherMessages(t *testing.T) {
	ctx := context.Background()
	w := NewClassifyWorker(memory.New(), nil)

	tests := []struct {
		name string
		msg  *amqp.ChangeMessage
	}{
		{"delete", amqp.NewChangeMessage("ledger", "ledger:1", user, amqp.OpDeleted)},
		{"event", amqp.NewChangeMessage("events", "event:1", user, amqp.OpCreated)},
		{"malformed id", amqp.NewChangeMessage("ledger", "nope", user, amqp.OpCreated)},
		{"gone", amqp.NewChangeMessage("ledger", "ledger:404", user, amqp.OpUpdated)},
		{"other user", amqp.NewChangeMessage("bank_transactions", "bank:1", "u2", amqp.OpCreated)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, w.HandleChange(ctx, tt.msg))
		})
	}
}

type failingUpdate struct {
	*memory.Store
}

func (f failingUpdate) UpdateLedger(context.Context, core.LedgerRow) error {
	return errors.New("database is locked")
}

func TestHandleChangeReturnsStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := failingUpdate{memory.New()}
	id, err := store.InsertLedger(ctx, core.LedgerRow{UserID: user, TransactionDate: "2026-03-03", Merchant: "이마트"})
	require.NoError(t, err)

	w := NewClassifyWorker(store, nil)
	msg := amqp.NewChangeMessage("ledger", core.QualifyID(core.KindLedger, id), user, amqp.OpCreated)
	assert.ErrorContains(t, w.HandleChange(ctx, msg), "database is locked")
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	rows := []core.LedgerRow{
		{UserID: user, TransactionDate: "2026-03-02", Merchant: "이마트 성수점"},
		{UserID: user, TransactionDate: "2026-03-03", Merchant: "티머니 교통카드", Category: taxonomy.FallbackCategory},
		{UserID: user, TransactionDate: "2026-03-04", Merchant: "알수없는가게"},
		{UserID: user, TransactionDate: "2026-03-05", Merchant: "넷플릭스", Category: "구독"},
		{UserID: user, TransactionDate: "2026-04-05", Merchant: "쿠팡이츠"},
	}
	for _, r := range rows {
		_, err := store.InsertLedger(ctx, r)
		require.NoError(t, err)
	}
	_, err := store.InsertBankTransaction(ctx, core.BankTransactionRow{
		UserID: user, TransactionDate: "2026-03-06", TransactionType: core.BankWithdrawal, ReceiverName: "한국전력공사",
	})
	require.NoError(t, err)

	w := NewClassifyWorker(store, nil)
	n, err := w.Sweep(ctx, user, march())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.ListLedger(ctx, user, march())
	require.NoError(t, err)
	categories := make([]string, 0, len(got))
	for _, r := range got {
		categories = append(categories, r.Category)
	}
	assert.Equal(t, []string{"생활", taxonomy.FallbackCategory, "", "구독"}, categories)
}

type countingRefresher struct {
	calls   int
	windows []core.Window
	err     error
}

func (c *countingRefresher) Refresh(_ context.Context, w core.Window) (int, error) {
	c.calls++
	c.windows = append(c.windows, w)
	return 7, c.err
}

func TestCalendarRefresherWindow(t *testing.T) {
	r := NewCalendarRefresher(&countingRefresher{}, "*/15 * * * *", 6, nil)
	r.now = func() time.Time { return time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC) }

	w := r.Window()
	assert.Equal(t, "2025-09-15", w.From.String())
	assert.Equal(t, "2026-09-15", w.To.String())
}

func TestCalendarRefresherRunOnce(t *testing.T) {
	target := &countingRefresher{}
	r := NewCalendarRefresher(target, "*/15 * * * *", 1, nil)
	r.RunOnce(context.Background())

	target.err = errors.New("feed down")
	r.RunOnce(context.Background())
	assert.Equal(t, 2, target.calls)
}

func TestCalendarRefresherRun(t *testing.T) {
	target := &countingRefresher{}
	r := NewCalendarRefresher(target, "@every 1h", 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Run(ctx), context.Canceled)
	assert.Equal(t, 1, target.calls)
}

func TestCalendarRefresherBadSchedule(t *testing.T) {
	r := NewCalendarRefresher(&countingRefresher{}, "not a schedule", 1, nil)
	assert.ErrorContains(t, r.Run(context.Background()), "schedule calendar refresh")
}
