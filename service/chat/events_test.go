package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "SProject/tools/errs"
)

func TestParseFrame(t *testing.T) {
	typ, f, err := ParseFrame([]byte(`{"event":"setup","data":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, EvtSetup, typ)
	assert.Equal(t, "setup", f.Event)
}

func TestParseFrameMalformed(t *testing.T) {
	_, _, err := ParseFrame([]byte(`{not json`))
	require.Error(t, err)
	assert.True(t, errs.ErrInvalidParam.Is(err))
}

func TestParseFrameUnknownEvent(t *testing.T) {
	_, f, err := ParseFrame([]byte(`{"event":"selfdestruct","data":{}}`))
	require.Error(t, err)
	assert.True(t, errs.ErrInvalidParam.Is(err))
	require.NotNil(t, f)
	assert.Equal(t, "selfdestruct", f.Event)
}

func TestParseFrameOutboundNameRejectedInbound(t *testing.T) {
	// outbound-only names are not accepted from clients
	_, _, err := ParseFrame([]byte(`{"event":"getOnlineUsers","data":{}}`))
	assert.Error(t, err)
}

func TestEncodeFrameRoundTrip(t *testing.T) {
	raw, err := EncodeFrame(EvtGetMessage, map[string]any{"content": "hi"})
	require.NoError(t, err)

	var f Frame
	require.NoError(t, json.Unmarshal(raw, &f))
	assert.Equal(t, "getMessage", f.Event)

	var m map[string]any
	require.NoError(t, json.Unmarshal(f.Data, &m))
	assert.Equal(t, "hi", m["content"])
}

func TestParseSetup(t *testing.T) {
	p, err := parseSetup(json.RawMessage(`"alice"`))
	require.NoError(t, err)
	assert.Equal(t, "alice", p.UserID)

	p, err = parseSetup(json.RawMessage(`{"userId":"bob"}`))
	require.NoError(t, err)
	assert.Equal(t, "bob", p.UserID)

	_, err = parseSetup(json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestParseRoom(t *testing.T) {
	room, err := parseRoom(json.RawMessage(`"conv-1"`))
	require.NoError(t, err)
	assert.Equal(t, "conv-1", room)

	room, err = parseRoom(json.RawMessage(`{"room":"conv-2"}`))
	require.NoError(t, err)
	assert.Equal(t, "conv-2", room)

	_, err = parseRoom(json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestParseNewMessage(t *testing.T) {
	p, err := parseNewMessage(json.RawMessage(`{
		"message":{"sender":"alice","content":"hi"},
		"conversation":{"_id":"conv-1","members":["alice","bob"]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "alice", senderOf(p.Message))
	assert.Equal(t, []string{"alice", "bob"}, refIDs(p.Conversation["members"]))
}

func TestParseNewMessagePopulatedSender(t *testing.T) {
	// populated documents carry the sender as an object
	p, err := parseNewMessage(json.RawMessage(`{
		"message":{"sender":{"_id":"alice","username":"al"}},
		"conversation":{"_id":"conv-1"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "alice", senderOf(p.Message))
}

func TestParseNewMessageRejectsIncomplete(t *testing.T) {
	cases := []string{
		`{"conversation":{"members":["a","b"]}}`,                       // no message
		`{"message":{"sender":"alice"}}`,                               // no conversation
		`{"message":{"content":"hi"},"conversation":{"_id":"c"}}`,      // no sender
		`{"message":{"sender":"alice"},"conversation":{"members":[]}}`, // unresolvable members
	}
	for _, c := range cases {
		_, err := parseNewMessage(json.RawMessage(c))
		assert.Error(t, err, c)
	}
}

func TestParseChangeGroupInfo(t *testing.T) {
	p, err := parseChangeGroupInfo(json.RawMessage(`{
		"userChange":{"_id":"alice"},
		"group":{"_id":"g1","members":["alice","bob","carol"]},
		"message":{"sender":"alice","type":"notification"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "alice", refID(p.UserChange))
	assert.Len(t, refIDs(p.Group["members"]), 3)

	_, err = parseChangeGroupInfo(json.RawMessage(`{"group":{"members":["a"]}}`))
	assert.Error(t, err)
}

func TestParseFriendRequestNeedsReceiver(t *testing.T) {
	m, err := parseFriendRequest(json.RawMessage(`{"receiver":"bob","requester":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, "bob", refID(m["receiver"]))

	_, err = parseFriendRequest(json.RawMessage(`{"requester":"alice"}`))
	assert.Error(t, err)
}

func TestParseNotificationNeedsRecipients(t *testing.T) {
	m, err := parseNotification(json.RawMessage(`{"to":["bob","carol"],"type":"like"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, refIDs(m["to"]))

	_, err = parseNotification(json.RawMessage(`{"to":[]}`))
	assert.Error(t, err)
}

func TestRefID(t *testing.T) {
	assert.Equal(t, "x", refID("x"))
	assert.Equal(t, "x", refID(map[string]any{"_id": "x"}))
	assert.Equal(t, "", refID(nil))
	assert.Equal(t, "", refID(42))

	assert.Equal(t, []string{"a", "b"}, refIDs([]any{"a", map[string]any{"_id": "b"}, 7}))
	assert.Nil(t, refIDs("not-a-list"))
}
