package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		wantKind string
		wantRaw  string
		wantErr  bool
	}{
		{"event", "event:12", KindEvent, "12", false},
		{"todo", "todo:7", KindTodo, "7", false},
		{"ledger", "ledger:3", KindLedger, "3", false},
		{"bank", "bank:99", KindBank, "99", false},
		{"external keeps calendar prefix", "external:work:abc@google.com", KindExternal, "work:abc@google.com", false},
		{"missing separator", "12", "", "", true},
		{"empty raw", "event:", "", "", true},
		{"unknown kind", "invoice:1", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, raw, err := ParseRecordID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantRaw, raw)
		})
	}
}

func TestQualifyIDRoundTrip(t *testing.T) {
	id := QualifyID(KindLedger, "42")
	assert.Equal(t, "ledger:42", id)
	kind, raw, err := ParseRecordID(id)
	require.NoError(t, err)
	assert.Equal(t, SourceLedger, SourceForKind(kind))
	assert.Equal(t, "42", raw)
}

func TestSourceForKind(t *testing.T) {
	assert.Equal(t, SourceEvents, SourceForKind(KindEvent))
	assert.Equal(t, SourceEvents, SourceForKind(KindTodo))
	assert.Equal(t, SourceBankTransactions, SourceForKind(KindBank))
	assert.Equal(t, SourceExternal, SourceForKind(KindExternal))
	assert.Equal(t, Source(""), SourceForKind("nope"))
}

func TestUnifiedEventSignedAmount(t *testing.T) {
	in := UnifiedEvent{Amount: 5000, IsReceived: true}
	out := UnifiedEvent{Amount: 5000}
	assert.Equal(t, int64(5000), in.SignedAmount())
	assert.Equal(t, int64(-5000), out.SignedAmount())
}

func TestUnifiedEventWritable(t *testing.T) {
	assert.True(t, UnifiedEvent{Source: SourceEvents}.Writable())
	assert.True(t, UnifiedEvent{Source: SourceBankTransactions}.Writable())
	assert.False(t, UnifiedEvent{Source: SourceExternal}.Writable())
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("").Valid())
	assert.False(t, Category("holiday").Valid())
}

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	assert.True(t, p.ExternalSyncEnabled)
	assert.Empty(t, p.SelectedCalendarIDs)
}

func TestPartialRecurrenceErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&PartialRecurrenceError{GroupID: "g", Index: 2, Total: 12, InsertedIDs: []string{"a", "b"}, Err: cause})

	var pe *PartialRecurrenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Index)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "occurrence 3 of 12")
}
