package chat

import (
	"encoding/json"

	decode "SProject/tools/decode"
	errs "SProject/tools/errs"
)

// EventType is the typed discriminator for everything that crosses a
// websocket. The wire stays name-tagged for compatibility with the
// existing clients; names never leak past ParseFrame/Encode.
type EventType int

const (
	EvtUnknown EventType = iota

	// inbound
	EvtSetup
	EvtJoinChat
	EvtLeaveChat
	EvtNewMessage
	EvtCreateConversation
	EvtChangeGroupInfo
	EvtTyping
	EvtStopTyping
	EvtSendFriendRequest
	EvtSendNotification

	// outbound
	EvtOnlineUsers
	EvtGetMessage
	EvtGetConversation
	EvtGetChangeGroupInfo
	EvtGetFriendRequest
	EvtGetNotification
)

var wireNames = map[EventType]string{
	EvtSetup:              "setup",
	EvtJoinChat:           "join chat",
	EvtLeaveChat:          "leave chat",
	EvtNewMessage:         "newMessage",
	EvtCreateConversation: "createConversation",
	EvtChangeGroupInfo:    "change-group-info",
	EvtTyping:             "typing",
	EvtStopTyping:         "stop typing",
	EvtSendFriendRequest:  "send-friend-request",
	EvtSendNotification:   "send-notification",

	EvtOnlineUsers:        "getOnlineUsers",
	EvtGetMessage:         "getMessage",
	EvtGetConversation:    "getConversation",
	EvtGetChangeGroupInfo: "get-change-group-info",
	EvtGetFriendRequest:   "get-friend-request",
	EvtGetNotification:    "get-notification",
}

var inboundByName = func() map[string]EventType {
	m := make(map[string]EventType)
	for t, n := range wireNames {
		if t >= EvtSetup && t <= EvtSendNotification {
			m[n] = t
		}
	}
	// typing indicators reuse the same name in both directions
	m["typing"] = EvtTyping
	m["stop typing"] = EvtStopTyping
	return m
}()

func (t EventType) WireName() string { return wireNames[t] }

// Frame is one name-tagged envelope on the wire.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func ParseFrame(raw []byte) (EventType, *Frame, error) {
	f := &Frame{}
	if err := json.Unmarshal(raw, f); err != nil {
		return EvtUnknown, nil, errs.ErrInvalidParam.WithDetail("malformed frame: " + err.Error())
	}
	t, ok := inboundByName[f.Event]
	if !ok {
		return EvtUnknown, f, errs.ErrInvalidParam.WithDetail("unknown event " + f.Event)
	}
	return t, f, nil
}

func EncodeFrame(t EventType, data any) ([]byte, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Frame{Event: t.WireName(), Data: b})
}

// ---- typed payloads ----
//
// Multi-argument Socket.IO events arrive as one object keyed by argument
// name ({"message": ..., "conversation": ...}); single-argument events
// carry the object (or bare string) directly.

// SetupPayload is the one-shot identity claim. Clients send either a bare
// string or {"userId": ...}.
type SetupPayload struct {
	UserID string `json:"userId"`
}

func parseSetup(data json.RawMessage) (*SetupPayload, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s != "" {
		return &SetupPayload{UserID: s}, nil
	}
	m, err := asMap(data)
	if err != nil {
		return nil, err
	}
	p, err := decode.DecodeMap[SetupPayload](m)
	if err != nil || p.UserID == "" {
		return nil, errs.ErrInvalidParam.WithDetail("setup requires userId")
	}
	return p, nil
}

func parseRoom(data json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s != "" {
		return s, nil
	}
	m, err := asMap(data)
	if err != nil {
		return "", err
	}
	type roomPayload struct {
		Room string `json:"room"`
	}
	p, err := decode.DecodeMap[roomPayload](m)
	if err != nil || p.Room == "" {
		return "", errs.ErrInvalidParam.WithDetail("room id required")
	}
	return p.Room, nil
}

// NewMessagePayload routes a freshly persisted chat message.
type NewMessagePayload struct {
	Message      map[string]any `json:"message"`
	Conversation map[string]any `json:"conversation"`
}

func parseNewMessage(data json.RawMessage) (*NewMessagePayload, error) {
	m, err := asMap(data)
	if err != nil {
		return nil, err
	}
	p, err := decode.DecodeMap[NewMessagePayload](m)
	if err != nil {
		return nil, errs.ErrInvalidParam.WithDetail(err.Error())
	}
	if p.Message == nil || p.Conversation == nil {
		return nil, errs.ErrInvalidParam.WithDetail("newMessage requires message and conversation")
	}
	if senderOf(p.Message) == "" {
		return nil, errs.ErrInvalidParam.WithDetail("message.sender missing")
	}
	if len(refIDs(p.Conversation["members"])) == 0 && refID(p.Conversation["_id"]) == "" {
		return nil, errs.ErrInvalidParam.WithDetail("conversation members or id required")
	}
	return p, nil
}

// CreateConversationPayload announces a new conversation to its members.
type CreateConversationPayload struct {
	Creator      string         `json:"creator"`
	Conversation map[string]any `json:"conversation"`
}

func parseCreateConversation(data json.RawMessage) (*CreateConversationPayload, error) {
	m, err := asMap(data)
	if err != nil {
		return nil, err
	}
	p, err := decode.DecodeMap[CreateConversationPayload](m)
	if err != nil {
		return nil, errs.ErrInvalidParam.WithDetail(err.Error())
	}
	if p.Creator == "" || p.Conversation == nil {
		return nil, errs.ErrInvalidParam.WithDetail("createConversation requires creator and conversation")
	}
	return p, nil
}

// ChangeGroupInfoPayload carries a group mutation plus the system message
// that describes it. Every member gets the message; everyone but the
// originator additionally gets the group diff.
type ChangeGroupInfoPayload struct {
	UserChange map[string]any `json:"userChange"`
	Group      map[string]any `json:"group"`
	Message    map[string]any `json:"message"`
}

func parseChangeGroupInfo(data json.RawMessage) (*ChangeGroupInfoPayload, error) {
	m, err := asMap(data)
	if err != nil {
		return nil, err
	}
	p, err := decode.DecodeMap[ChangeGroupInfoPayload](m)
	if err != nil {
		return nil, errs.ErrInvalidParam.WithDetail(err.Error())
	}
	if p.UserChange == nil || p.Group == nil || p.Message == nil {
		return nil, errs.ErrInvalidParam.WithDetail("change-group-info requires userChange, group and message")
	}
	if len(refIDs(p.Group["members"])) == 0 {
		return nil, errs.ErrInvalidParam.WithDetail("group.members missing")
	}
	return p, nil
}

func parseFriendRequest(data json.RawMessage) (map[string]any, error) {
	m, err := asMap(data)
	if err != nil {
		return nil, err
	}
	if refID(m["receiver"]) == "" {
		return nil, errs.ErrInvalidParam.WithDetail("friendRequest.receiver missing")
	}
	return m, nil
}

func parseNotification(data json.RawMessage) (map[string]any, error) {
	m, err := asMap(data)
	if err != nil {
		return nil, err
	}
	if len(refIDs(m["to"])) == 0 {
		return nil, errs.ErrInvalidParam.WithDetail("notification.to missing")
	}
	return m, nil
}

// ---- reference helpers ----
//
// Documents arrive either populated ({"_id": "...", ...}) or as bare id
// strings depending on which client path emitted them.

func asMap(data json.RawMessage) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errs.ErrInvalidParam.WithDetail("object payload expected")
	}
	return m, nil
}

func refID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if id, ok := t["_id"].(string); ok {
			return id
		}
	}
	return ""
}

func refIDs(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, it := range arr {
		if id := refID(it); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func senderOf(message map[string]any) string {
	return refID(message["sender"])
}
