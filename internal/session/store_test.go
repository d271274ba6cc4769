package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreGetOrCreate(t *testing.T) {
	st := NewStore(Dependencies{}, 0)

	s := st.GetOrCreate("")
	assert.Equal(t, 1, st.Len())

	same := st.GetOrCreate(s.ID().String())
	assert.Same(t, s, same)

	got, ok := st.Get(s.ID().String())
	assert.True(t, ok)
	assert.Same(t, s, got)

	other := st.GetOrCreate("not-a-uuid")
	assert.NotEqual(t, s.ID(), other.ID())
	assert.Equal(t, 2, st.Len())

	_, ok = st.Get("not-a-uuid")
	assert.False(t, ok)
}

func TestStorePrunesIdleSessions(t *testing.T) {
	st := NewStore(Dependencies{}, time.Millisecond)

	old := st.GetOrCreate("")
	time.Sleep(5 * time.Millisecond)
	st.GetOrCreate("")

	_, ok := st.Get(old.ID().String())
	assert.False(t, ok)
	assert.Equal(t, 1, st.Len())
}

func TestStoreGetKeepsSessionAlive(t *testing.T) {
	st := NewStore(Dependencies{}, time.Hour)

	viewed := st.GetOrCreate("")
	idle := st.GetOrCreate("")
	stale := time.Now().Add(-2 * time.Hour)
	viewed.lastActive = stale
	idle.lastActive = stale

	_, ok := st.Get(viewed.ID().String())
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), viewed.LastActive(), time.Minute)

	st.GetOrCreate("")

	_, ok = st.Get(viewed.ID().String())
	assert.True(t, ok)
	_, ok = st.Get(idle.ID().String())
	assert.False(t, ok)
	assert.Equal(t, 2, st.Len())
}
