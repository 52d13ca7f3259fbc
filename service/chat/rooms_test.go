package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouterJoinLeaveIdempotent(t *testing.T) {
	r := NewRouter(NewRegistry())

	r.Join("c1", "room")
	r.Join("c1", "room")
	assert.ElementsMatch(t, []string{"c1"}, r.ResolveRoom("room", ""))

	r.Leave("c1", "room")
	r.Leave("c1", "room") // second leave is harmless
	assert.Empty(t, r.ResolveRoom("room", ""))
}

func TestRouterLeaveAll(t *testing.T) {
	r := NewRouter(NewRegistry())
	r.Join("c1", "a")
	r.Join("c1", "b")
	r.Join("c2", "a")

	r.LeaveAll("c1")
	assert.ElementsMatch(t, []string{"c2"}, r.ResolveRoom("a", ""))
	assert.Empty(t, r.ResolveRoom("b", ""))
}

func TestResolveRoomExcludesSender(t *testing.T) {
	r := NewRouter(NewRegistry())
	r.Join("c1", "room")
	r.Join("c2", "room")

	assert.ElementsMatch(t, []string{"c2"}, r.ResolveRoom("room", "c1"))
}

func TestResolveRoomSoleOccupantNoSelfEcho(t *testing.T) {
	r := NewRouter(NewRegistry())
	r.Join("c1", "room")

	// typing alone in a room reaches nobody, not even yourself
	assert.Empty(t, r.ResolveRoom("room", "c1"))
}

func TestResolveUsers(t *testing.T) {
	reg := NewRegistry()
	reg.Register("alice", "c1")
	reg.Register("bob", "c2")
	// carol is offline
	r := NewRouter(reg)

	got := r.ResolveUsers([]string{"alice", "bob", "carol"}, "")
	assert.ElementsMatch(t, []string{"c1", "c2"}, got)
}

func TestResolveUsersExcludesSenderAndDedups(t *testing.T) {
	reg := NewRegistry()
	reg.Register("alice", "c1")
	reg.Register("bob", "c2")
	r := NewRouter(reg)

	got := r.ResolveUsers([]string{"alice", "bob", "bob", "alice", ""}, "alice")
	assert.ElementsMatch(t, []string{"c2"}, got)
}

func TestResolveUsersAllOffline(t *testing.T) {
	r := NewRouter(NewRegistry())
	assert.Empty(t, r.ResolveUsers([]string{"alice", "bob"}, ""))
}
