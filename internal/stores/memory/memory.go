// Package memory is an in-process Store used by tests and by the memory
// backend. Data is lost on exit.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"lifeledger/internal/core"
	"lifeledger/internal/stores"
)

var _ stores.Store = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	nextID int
	events map[string]core.EventRow
	todos  map[string]core.TodoRow
	ledger map[string]core.LedgerRow
	bank   map[string]core.BankTransactionRow
	prefs  map[string]core.Preferences
}

func New() *Store {
	return &Store{
		events: map[string]core.EventRow{},
		todos:  map[string]core.TodoRow{},
		ledger: map[string]core.LedgerRow{},
		bank:   map[string]core.BankTransactionRow{},
		prefs:  map[string]core.Preferences{},
	}
}

func (s *Store) newID() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}

func (s *Store) Close() error { return nil }

// ListEvents returns the user's events inside w ordered by date then id.
func (s *Store) ListEvents(_ context.Context, userID string, w core.Window) ([]core.EventRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.EventRow
	for _, r := range s.events {
		if r.UserID == userID && w.Contains(r.Date) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].Date, out[i].ID, out[j].Date, out[j].ID) })
	return out, nil
}

func (s *Store) InsertEvent(_ context.Context, row core.EventRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row.ID = s.newID()
	s.events[row.ID] = row
	return row.ID, nil
}

func (s *Store) UpdateEvent(_ context.Context, row core.EventRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.events[row.ID]
	if !ok || cur.UserID != row.UserID {
		return core.ErrNotFound
	}
	row.GroupID, row.Recurrence = cur.GroupID, cur.Recurrence
	s.events[row.ID] = row
	return nil
}

func (s *Store) DeleteEvent(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.events[id]; !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *Store) ListTodos(_ context.Context, userID string, w core.Window) ([]core.TodoRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.TodoRow
	for _, r := range s.todos {
		if r.UserID == userID && w.Contains(r.DueDate) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].DueDate, out[i].ID, out[j].DueDate, out[j].ID) })
	return out, nil
}

func (s *Store) InsertTodo(_ context.Context, row core.TodoRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row.ID = s.newID()
	s.todos[row.ID] = row
	return row.ID, nil
}

func (s *Store) UpdateTodo(_ context.Context, row core.TodoRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.todos[row.ID]; !ok || cur.UserID != row.UserID {
		return core.ErrNotFound
	}
	s.todos[row.ID] = row
	return nil
}

func (s *Store) DeleteTodo(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.todos[id]; !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.todos, id)
	return nil
}

func (s *Store) ListLedger(_ context.Context, userID string, w core.Window) ([]core.LedgerRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.LedgerRow
	for _, r := range s.ledger {
		if r.UserID == userID && w.Contains(r.TransactionDate) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].TransactionDate, out[i].ID, out[j].TransactionDate, out[j].ID)
	})
	return out, nil
}

func (s *Store) GetLedger(_ context.Context, userID, id string) (core.LedgerRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.ledger[id]
	if !ok || r.UserID != userID {
		return core.LedgerRow{}, core.ErrNotFound
	}
	return r, nil
}

func (s *Store) InsertLedger(_ context.Context, row core.LedgerRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row.ID = s.newID()
	s.ledger[row.ID] = row
	return row.ID, nil
}

func (s *Store) UpdateLedger(_ context.Context, row core.LedgerRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.ledger[row.ID]; !ok || cur.UserID != row.UserID {
		return core.ErrNotFound
	}
	s.ledger[row.ID] = row
	return nil
}

func (s *Store) DeleteLedger(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.ledger[id]; !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.ledger, id)
	return nil
}

func (s *Store) ListBankTransactions(_ context.Context, userID string, w core.Window) ([]core.BankTransactionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.BankTransactionRow
	for _, r := range s.bank {
		if r.UserID == userID && w.Contains(r.TransactionDate) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[i].TransactionDate, out[i].ID, out[j].TransactionDate, out[j].ID)
	})
	return out, nil
}

func (s *Store) GetBankTransaction(_ context.Context, userID, id string) (core.BankTransactionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.bank[id]
	if !ok || r.UserID != userID {
		return core.BankTransactionRow{}, core.ErrNotFound
	}
	return r, nil
}

func (s *Store) InsertBankTransaction(_ context.Context, row core.BankTransactionRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row.ID = s.newID()
	s.bank[row.ID] = row
	return row.ID, nil
}

func (s *Store) PatchBankTransaction(_ context.Context, userID, id string, p stores.BankPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bank[id]
	if !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	s.bank[id] = p.Apply(cur)
	return nil
}

func (s *Store) DeleteBankTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.bank[id]; !ok || cur.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.bank, id)
	return nil
}

// Preferences returns the stored preferences or the defaults.
func (s *Store) Preferences(_ context.Context, userID string) (core.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prefs[userID]
	if !ok {
		return core.DefaultPreferences(), nil
	}
	p.SelectedCalendarIDs = append([]string(nil), p.SelectedCalendarIDs...)
	return p, nil
}

func (s *Store) SavePreferences(_ context.Context, userID string, p core.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.SelectedCalendarIDs = append([]string(nil), p.SelectedCalendarIDs...)
	s.prefs[userID] = p
	return nil
}

// less orders by date, then numerically by id.
func less(dateA, idA, dateB, idB string) bool {
	if dateA != dateB {
		return dateA < dateB
	}
	a, errA := strconv.Atoi(idA)
	b, errB := strconv.Atoi(idB)
	if errA == nil && errB == nil {
		return a < b
	}
	return idA < idB
}
