package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "SProject/tools/errs"
)

func TestSetupSecondClaimRejected(t *testing.T) {
	srv := NewServer(Config{}, nil)
	sess := &Session{srv: srv, cli: newClient("c1", nil)}

	require.NoError(t, sess.onSetup(json.RawMessage(`"alice"`)))

	// the identity claim is one-shot; re-claiming as someone else on the
	// same connection is an invalid transition
	err := sess.onSetup(json.RawMessage(`"bob"`))
	assert.True(t, errs.ErrInvalidState.Is(err))

	connID, ok := srv.reg.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c1", connID)

	_, ok = srv.reg.Lookup("bob")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"alice"}, srv.OnlineUsers())
}

func TestEventsBeforeSetupRejected(t *testing.T) {
	srv := NewServer(Config{}, nil)
	sess := &Session{srv: srv, cli: newClient("c1", nil)}

	err := sess.onJoinChat(json.RawMessage(`"room-1"`))
	assert.True(t, errs.ErrInvalidState.Is(err))

	err = sess.onTyping(json.RawMessage(`"room-1"`))
	assert.True(t, errs.ErrInvalidState.Is(err))
}
