package chat

import "sync"

// Router owns room membership and answers "which live connections should
// receive this event". Rooms group connections under a conversation id for
// ephemeral broadcasts (typing indicators); persisted member lists resolve
// through the presence registry instead, so offline members are silently
// dropped rather than queued.
type Router struct {
	reg *Registry

	mu     sync.RWMutex
	byRoom map[string]map[string]struct{} // roomID -> set of connID
	byConn map[string]map[string]struct{} // connID -> set of roomID
}

func NewRouter(reg *Registry) *Router {
	return &Router{
		reg:    reg,
		byRoom: make(map[string]map[string]struct{}),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Join adds connID to room. Idempotent.
func (r *Router) Join(connID, roomID string) {
	if connID == "" || roomID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byRoom[roomID] == nil {
		r.byRoom[roomID] = make(map[string]struct{})
	}
	r.byRoom[roomID][connID] = struct{}{}
	if r.byConn[connID] == nil {
		r.byConn[connID] = make(map[string]struct{})
	}
	r.byConn[connID][roomID] = struct{}{}
}

// Leave removes connID from room. Idempotent.
func (r *Router) Leave(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(connID, roomID)
}

// LeaveAll drops every membership of connID; called on disconnect.
func (r *Router) LeaveAll(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for roomID := range r.byConn[connID] {
		r.leaveLocked(connID, roomID)
	}
}

func (r *Router) leaveLocked(connID, roomID string) {
	if m := r.byRoom[roomID]; m != nil {
		delete(m, connID)
		if len(m) == 0 {
			delete(r.byRoom, roomID)
		}
	}
	if m := r.byConn[connID]; m != nil {
		delete(m, roomID)
		if len(m) == 0 {
			delete(r.byConn, connID)
		}
	}
}

// ResolveUsers maps user ids to live connection ids, skipping exclude and
// everyone who is offline.
func (r *Router) ResolveUsers(userIDs []string, exclude string) []string {
	out := make([]string, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	for _, uid := range userIDs {
		if uid == "" || uid == exclude {
			continue
		}
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		if connID, ok := r.reg.Lookup(uid); ok {
			out = append(out, connID)
		}
	}
	return out
}

// ResolveRoom lists the connections subscribed to room, minus excludeConn.
// The sender always excludes its own connection: no self-echo, even when it
// is the sole occupant.
func (r *Router) ResolveRoom(roomID, excludeConn string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byRoom[roomID]
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for connID := range m {
		if connID == excludeConn {
			continue
		}
		out = append(out, connID)
	}
	return out
}
