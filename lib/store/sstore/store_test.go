package sstore

import (
	"testing"
	"time"

	"github.com/delving/itemnav/lib/db"
	"github.com/delving/itemnav/lib/db/engines/memory"
	dbtesting "github.com/delving/itemnav/lib/db/testing"
	"github.com/delving/itemnav/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T, clock *dbtesting.Clock) db.KVDB {
	database := memory.NewMemoryDB(&memory.DBOptions{GCInterval: time.Hour, Now: clock.Now})
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestStoreContract(t *testing.T) {
	database := newDB(t, dbtesting.NewClock())
	s := NewSessionStore(database, "abc", time.Hour)

	assert.Equal(t, store.BackendSession, s.Backend())
	assert.Equal(t, "abc", s.SessionID())

	require.NoError(t, s.Set("text", "value"))
	got, ok, err := s.Get("text")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", got)

	require.NoError(t, s.Set("obj", map[string]any{"a": "b"}))
	got, _, err = s.Get("obj")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "b"}, got)

	// keys are namespaced per session
	raw, ok, err := database.Get("session/abc/text")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", string(raw))

	require.NoError(t, s.Remove("text"))
	_, ok, err = s.Get("text")
	require.NoError(t, err)
	assert.False(t, ok)

	// empty keys are no-ops
	require.NoError(t, s.Set("", "ignored"))
	require.NoError(t, s.Remove(""))
	info := database.GetInfo()
	assert.Equal(t, 1, info.Keys)
}

func TestEmptyPayloadIsAbsent(t *testing.T) {
	s := NewSessionStore(newDB(t, dbtesting.NewClock()), "abc", 0)
	require.NoError(t, s.Set("empty", ""))
	_, ok, err := s.Get("empty")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMalformedPayload(t *testing.T) {
	database := newDB(t, dbtesting.NewClock())
	require.NoError(t, database.Set("session/abc/broken", []byte("{broken")))

	_, ok, err := NewSessionStore(database, "abc", 0).Get("broken")
	assert.False(t, ok)
	assert.True(t, store.IsCode(err, store.RetCMalformedValue))
}

func TestSessionsAreIsolated(t *testing.T) {
	database := newDB(t, dbtesting.NewClock())
	a := NewSessionStore(database, "a", time.Hour)
	ab := NewSessionStore(database, "ab", time.Hour)

	require.NoError(t, a.Set("key", "from a"))
	require.NoError(t, ab.Set("key", "from ab"))

	got, _, _ := a.Get("key")
	assert.Equal(t, "from a", got)

	removed, err := a.Clear()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok, _ := a.Get("key")
	assert.False(t, ok)
	got, _, _ = ab.Get("key")
	assert.Equal(t, "from ab", got)
}

func TestWritesRefreshTTL(t *testing.T) {
	clock := dbtesting.NewClock()
	s := NewSessionStore(newDB(t, clock), "abc", 10*time.Minute)

	require.NoError(t, s.Set("key", "v1"))
	clock.Advance(8 * time.Minute)
	require.NoError(t, s.Set("key", "v2"))
	clock.Advance(8 * time.Minute)

	got, ok, err := s.Get("key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", got)

	clock.Advance(3 * time.Minute)
	_, ok, err = s.Get("key")
	require.NoError(t, err)
	assert.False(t, ok)
}
