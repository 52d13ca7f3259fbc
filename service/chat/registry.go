package chat

import "sync"

// Registry is the in-memory presence table: which users currently hold a
// live connection, and through which one. A user has at most one live
// connection at a time; a later register for the same user supersedes the
// earlier mapping and the superseded connection id is handed back to the
// caller, who decides whether to close it.
//
// Presence is transient on purpose. Nothing here is persisted; after a
// restart the table is rebuilt from fresh setup claims.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]string // userID -> connID
	byConn map[string]string // connID -> userID
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]string),
		byConn: make(map[string]string),
	}
}

// Register upserts the mapping for user. It returns the connection id that
// got superseded, "" if there was none. Registering the same pair twice is
// a no-op.
func (r *Registry) Register(userID, connID string) (superseded string) {
	if userID == "" || connID == "" {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byUser[userID]
	if ok && old == connID {
		return ""
	}
	// the connection may be re-claiming a different identity; drop its
	// previous user so the double index can never diverge
	if prev, claimed := r.byConn[connID]; claimed && prev != userID {
		if cur, live := r.byUser[prev]; live && cur == connID {
			delete(r.byUser, prev)
		}
	}
	if ok {
		delete(r.byConn, old)
		superseded = old
	}
	r.byUser[userID] = connID
	r.byConn[connID] = userID
	return superseded
}

// Unregister removes the entry owned by connID. A connection that was
// superseded earlier no longer owns a mapping, so its late disconnect is a
// harmless no-op and never evicts the user's current connection.
func (r *Registry) Unregister(connID string) (userID string, removed bool) {
	if connID == "" {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byConn[connID]
	if !ok {
		return "", false
	}
	delete(r.byConn, connID)
	if cur, ok := r.byUser[user]; ok && cur == connID {
		delete(r.byUser, user)
	}
	return user, true
}

// Lookup returns the live connection id for user.
func (r *Registry) Lookup(userID string) (connID string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok = r.byUser[userID]
	return connID, ok
}

// UserOf returns the user bound to connID.
func (r *Registry) UserOf(connID string) (userID string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok = r.byConn[connID]
	return userID, ok
}

// SnapshotAll lists every currently online user.
func (r *Registry) SnapshotAll() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		out = append(out, u)
	}
	return out
}
