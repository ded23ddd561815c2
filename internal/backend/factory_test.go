package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/calendar"
	"lifeledger/internal/config"
	"lifeledger/internal/core"
)

func TestCreateMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	defer res.Cleanup()

	assert.Nil(t, res.Notifier(), "no AMQP configured")
	id, err := res.Store.InsertTodo(context.Background(), core.TodoRow{UserID: "u", Title: "x", DueDate: "2026-01-01"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ll.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)
	require.NoError(t, res.Cleanup())
}

func TestCreateBackendRejectsInvalid(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "sheets"})
	assert.ErrorContains(t, err, "invalid backend type: sheets (valid: sqlite, memory)")
	_, err = NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	assert.Error(t, err)
}

func TestBackendTypes(t *testing.T) {
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
	for _, bt := range GetBackendTypes() {
		assert.True(t, bt.IsValid(), bt.String())
	}
	assert.False(t, BackendType("sheets").IsValid())
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", AMQPURL: "amqp://localhost/", AMQPQueue: "q"}
	bc, err := FromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, bc.Type)
	assert.Equal(t, "q", bc.AMQPQueue)

	_, err = FromAppConfig(&config.Config{DataBackend: "csv"})
	assert.ErrorContains(t, err, "(valid: sqlite, memory)")
	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestNewCalendarProvider(t *testing.T) {
	p, cached, err := NewCalendarProvider(context.Background(), &config.Config{CalendarProvider: config.CalendarNone}, nil)
	require.NoError(t, err)
	assert.IsType(t, calendar.None{}, p)
	assert.Nil(t, cached)

	cfg := &config.Config{
		CalendarProvider:  config.CalendarICS,
		ICSSources:        "home=https://example.com/home.ics",
		Timezone:          "UTC",
		CalendarCacheSize: 4,
		CalendarCacheTTL:  time.Minute,
	}
	p, cached, err = NewCalendarProvider(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, cached)
	infos, err := p.Calendars(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "home", infos[0].ID)
}
