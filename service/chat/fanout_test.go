package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvFrame(t *testing.T, c *Client) *Frame {
	t.Helper()
	select {
	case payload := <-c.send:
		var f Frame
		require.NoError(t, json.Unmarshal(payload, &f))
		return &f
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return nil
	}
}

func TestFanoutDeliversToEveryRecipient(t *testing.T) {
	f := NewFanout(2, 16)
	a := newClient("c1", nil)
	b := newClient("c2", nil)

	require.NoError(t, f.Dispatch(EvtGetMessage, map[string]any{"content": "hi"}, []*Client{a, b}))

	for _, c := range []*Client{a, b} {
		frame := recvFrame(t, c)
		assert.Equal(t, "getMessage", frame.Event)
	}
}

func TestFanoutNoRecipientsIsNoop(t *testing.T) {
	f := NewFanout(1, 4)
	assert.NoError(t, f.Dispatch(EvtGetMessage, "x", nil))
}

func TestFanoutEncodeFailureNeverPartiallyDelivers(t *testing.T) {
	f := NewFanout(1, 4)
	a := newClient("c1", nil)

	err := f.Dispatch(EvtGetMessage, make(chan int), []*Client{a})
	require.Error(t, err)

	select {
	case <-a.send:
		t.Fatal("malformed event must not reach any recipient")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowClientOnlyLosesItsOwnFrames(t *testing.T) {
	f := NewFanout(1, 16)
	slow := newClient("slow", nil)
	fast := newClient("fast", nil)

	// fill the slow client's queue so further pushes drop
	for i := 0; i < sendQueueSize; i++ {
		slow.Push([]byte("x"))
	}

	require.NoError(t, f.Dispatch(EvtGetMessage, map[string]any{"n": 1}, []*Client{slow, fast}))

	frame := recvFrame(t, fast)
	assert.Equal(t, "getMessage", frame.Event)
	assert.Len(t, slow.send, sendQueueSize)
}
