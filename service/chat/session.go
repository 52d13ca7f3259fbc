package chat

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"SProject/logger"
	errs "SProject/tools/errs"
)

// Session is the per-connection control loop. It walks
// connecting -> active -> closed: a one-shot setup claim registers the
// user, then inbound frames demultiplex through the handler table, and the
// disconnect path below runs exactly once no matter how the connection
// dies.
type Session struct {
	srv    *Server
	cli    *Client
	userID string // set by setup; empty while connecting

	closeOnce sync.Once
}

// sessionHandlers is the inbound dispatch table. Typed events only; the
// wire name is gone by the time a frame lands here.
var sessionHandlers = map[EventType]func(*Session, json.RawMessage) error{
	EvtSetup:              (*Session).onSetup,
	EvtJoinChat:           (*Session).onJoinChat,
	EvtLeaveChat:          (*Session).onLeaveChat,
	EvtNewMessage:         (*Session).onNewMessage,
	EvtCreateConversation: (*Session).onCreateConversation,
	EvtChangeGroupInfo:    (*Session).onChangeGroupInfo,
	EvtTyping:             (*Session).onTyping,
	EvtStopTyping:         (*Session).onStopTyping,
	EvtSendFriendRequest:  (*Session).onSendFriendRequest,
	EvtSendNotification:   (*Session).onSendNotification,
}

func (s *Server) runSession(cli *Client) {
	sess := &Session{srv: s, cli: cli}
	defer sess.shutdown()

	for {
		mt, data, err := cli.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s", cli.ID)
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s: %v", cli.ID, err)
			} else {
				logger.Infof("[ws] read err conn=%s: %v", cli.ID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		t, f, perr := ParseFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Warnf("[ws] bad frame conn=%s err=%v sample=%q", cli.ID, perr, sample)
			continue
		}

		h := sessionHandlers[t]
		if h == nil {
			logger.Warnf("[ws] no handler for %s conn=%s", t.WireName(), cli.ID)
			continue
		}

		if err := h(sess, f.Data); err != nil {
			logger.Warnf("[ws] %s conn=%s user=%s: %v", t.WireName(), cli.ID, sess.userID, err)
		}
	}
}

// shutdown is the closed transition. Idempotent, and safe to run even when
// setup never completed, so half-open connections cannot leak registry
// entries.
func (sess *Session) shutdown() {
	sess.closeOnce.Do(func() {
		srv, cli := sess.srv, sess.cli
		srv.removeClient(cli.ID)
		srv.router.LeaveAll(cli.ID)
		cli.Close()

		user, removed := srv.reg.Unregister(cli.ID)
		if removed {
			srv.announceOffline(user)
			srv.broadcastPresence()
			logger.Infof("[ws] offline user=%s conn=%s", user, cli.ID)
		}
	})
}

func (sess *Session) requireActive() error {
	if sess.userID == "" {
		return errs.ErrInvalidState.WithDetail("setup required before this event")
	}
	return nil
}

// onSetup consumes the one-shot identity claim. The identity is opaque and
// trusted verbatim; the auth collaborator already vouched for it.
func (sess *Session) onSetup(data json.RawMessage) error {
	if sess.userID != "" {
		return errs.ErrInvalidState.WithDetail("setup already completed for this connection")
	}
	p, err := parseSetup(data)
	if err != nil {
		return err
	}
	sess.userID = p.UserID

	superseded := sess.srv.reg.Register(p.UserID, sess.cli.ID)
	if superseded != "" {
		// Same user reconnected; the orphaned connection is closed
		// explicitly so it can never double-deliver. Its own disconnect
		// path becomes a harmless no-op unregister.
		if old := sess.srv.client(superseded); old != nil {
			old.Close()
		}
		logger.Infof("[ws] superseded conn=%s user=%s", superseded, p.UserID)
	}

	sess.srv.announceOnline(p.UserID)
	sess.srv.broadcastPresence()
	logger.Infof("[ws] online user=%s conn=%s", p.UserID, sess.cli.ID)
	return nil
}

func (sess *Session) onJoinChat(data json.RawMessage) error {
	if err := sess.requireActive(); err != nil {
		return err
	}
	room, err := parseRoom(data)
	if err != nil {
		return err
	}
	sess.srv.router.Join(sess.cli.ID, room)
	return nil
}

func (sess *Session) onLeaveChat(data json.RawMessage) error {
	if err := sess.requireActive(); err != nil {
		return err
	}
	room, err := parseRoom(data)
	if err != nil {
		return err
	}
	sess.srv.router.Leave(sess.cli.ID, room)
	return nil
}

// onNewMessage routes a freshly persisted message to every other
// conversation member who is online right now. Offline members simply miss
// the live event and catch up through the query API.
func (sess *Session) onNewMessage(data json.RawMessage) error {
	if err := sess.requireActive(); err != nil {
		return err
	}
	p, err := parseNewMessage(data)
	if err != nil {
		return err
	}
	sender := senderOf(p.Message)
	members, err := sess.conversationMembers(p.Conversation)
	if err != nil {
		return err
	}
	conns := sess.srv.router.ResolveUsers(members, sender)
	return sess.srv.fanout.Dispatch(EvtGetMessage, p.Message, sess.srv.clientsByID(conns))
}

func (sess *Session) onCreateConversation(data json.RawMessage) error {
	if err := sess.requireActive(); err != nil {
		return err
	}
	p, err := parseCreateConversation(data)
	if err != nil {
		return err
	}
	members, err := sess.conversationMembers(p.Conversation)
	if err != nil {
		return err
	}
	conns := sess.srv.router.ResolveUsers(members, p.Creator)
	return sess.srv.fanout.Dispatch(EvtGetConversation,
		map[string]any{"conversation": p.Conversation},
		sess.srv.clientsByID(conns))
}

// onChangeGroupInfo pushes the system message to every member, and the
// group diff to everyone except the member who made the change.
func (sess *Session) onChangeGroupInfo(data json.RawMessage) error {
	if err := sess.requireActive(); err != nil {
		return err
	}
	p, err := parseChangeGroupInfo(data)
	if err != nil {
		return err
	}
	members := refIDs(p.Group["members"])
	changer := refID(p.UserChange)

	msgConns := sess.srv.router.ResolveUsers(members, "")
	if err := sess.srv.fanout.Dispatch(EvtGetMessage, p.Message, sess.srv.clientsByID(msgConns)); err != nil {
		return err
	}

	infoConns := sess.srv.router.ResolveUsers(members, changer)
	return sess.srv.fanout.Dispatch(EvtGetChangeGroupInfo,
		map[string]any{"userChange": p.UserChange, "group": p.Group},
		sess.srv.clientsByID(infoConns))
}

func (sess *Session) onTyping(data json.RawMessage) error {
	return sess.relayTyping(EvtTyping, data)
}

func (sess *Session) onStopTyping(data json.RawMessage) error {
	return sess.relayTyping(EvtStopTyping, data)
}

// relayTyping is room-scoped and ephemeral: never persisted, delivered only
// to connections currently joined to the room, never echoed to the sender.
func (sess *Session) relayTyping(t EventType, data json.RawMessage) error {
	if err := sess.requireActive(); err != nil {
		return err
	}
	room, err := parseRoom(data)
	if err != nil {
		return err
	}
	conns := sess.srv.router.ResolveRoom(room, sess.cli.ID)
	return sess.srv.fanout.Dispatch(t, room, sess.srv.clientsByID(conns))
}

func (sess *Session) onSendFriendRequest(data json.RawMessage) error {
	if err := sess.requireActive(); err != nil {
		return err
	}
	m, err := parseFriendRequest(data)
	if err != nil {
		return err
	}
	receiver := refID(m["receiver"])
	conns := sess.srv.router.ResolveUsers([]string{receiver}, sess.userID)
	return sess.srv.fanout.Dispatch(EvtGetFriendRequest, m, sess.srv.clientsByID(conns))
}

func (sess *Session) onSendNotification(data json.RawMessage) error {
	if err := sess.requireActive(); err != nil {
		return err
	}
	m, err := parseNotification(data)
	if err != nil {
		return err
	}
	recipients := refIDs(m["to"])
	conns := sess.srv.router.ResolveUsers(recipients, sess.userID)
	return sess.srv.fanout.Dispatch(EvtGetNotification, m, sess.srv.clientsByID(conns))
}

// conversationMembers prefers the member list carried inline and falls
// back to the persisted conversation when the client only sent an id.
func (sess *Session) conversationMembers(conversation map[string]any) ([]string, error) {
	if members := refIDs(conversation["members"]); len(members) > 0 {
		return members, nil
	}
	convID := refID(conversation["_id"])
	if convID == "" || sess.srv.store == nil {
		return nil, errs.ErrInvalidParam.WithDetail("conversation members unresolvable")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	members, err := sess.srv.store.ConversationMembers(ctx, convID)
	if err != nil {
		return nil, err
	}
	return members, nil
}
