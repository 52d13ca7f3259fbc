package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterSupersedes(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, "", r.Register("alice", "c1"))

	// reconnect: the old connection is handed back
	assert.Equal(t, "c1", r.Register("alice", "c2"))

	connID, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c2", connID)

	// the superseded connection no longer owns anything
	_, ok = r.UserOf("c1")
	assert.False(t, ok)
}

func TestRegistryRegisterSamePairIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", "c1")
	assert.Equal(t, "", r.Register("alice", "c1"))

	connID, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c1", connID)
}

func TestRegistryUnregisterSupersededIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", "c1")
	r.Register("alice", "c2")

	// the late disconnect of the superseded connection must not evict the
	// user's current one
	user, removed := r.Unregister("c1")
	assert.False(t, removed)
	assert.Equal(t, "", user)

	connID, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c2", connID)

	user, removed = r.Unregister("c2")
	assert.True(t, removed)
	assert.Equal(t, "alice", user)

	_, ok = r.Lookup("alice")
	assert.False(t, ok)
}

func TestRegistryReclaimEvictsPreviousUser(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", "c1")

	// the same connection claims a different identity; alice's mapping
	// must not survive it
	assert.Equal(t, "", r.Register("bob", "c1"))

	_, ok := r.Lookup("alice")
	assert.False(t, ok)

	user, removed := r.Unregister("c1")
	assert.True(t, removed)
	assert.Equal(t, "bob", user)
	assert.Empty(t, r.SnapshotAll())
}

func TestRegistryReclaimWithSupersede(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", "c1")
	r.Register("bob", "c2")

	// c2 re-claims as alice: c1 is superseded and bob's mapping is gone
	assert.Equal(t, "c1", r.Register("alice", "c2"))

	connID, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c2", connID)

	_, ok = r.Lookup("bob")
	assert.False(t, ok)
	_, ok = r.UserOf("c1")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"alice"}, r.SnapshotAll())
}

func TestRegistryUnregisterUnknownConn(t *testing.T) {
	r := NewRegistry()
	_, removed := r.Unregister("ghost")
	assert.False(t, removed)
}

func TestRegistrySnapshotAll(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", "c1")
	r.Register("bob", "c2")
	r.Register("alice", "c3") // reconnect must not duplicate

	assert.ElementsMatch(t, []string{"alice", "bob"}, r.SnapshotAll())

	r.Unregister("c2")
	assert.ElementsMatch(t, []string{"alice"}, r.SnapshotAll())
}

func TestRegistryEmptyArgs(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "", r.Register("", "c1"))
	assert.Equal(t, "", r.Register("alice", ""))
	assert.Empty(t, r.SnapshotAll())
}
