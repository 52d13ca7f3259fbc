package chat

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"SProject/logger"
	storage "SProject/service/storage"
	ids "SProject/tools/ids"
	safe "SProject/tools/safe"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// DirectoryStore is the read-only collaborator surface the hub needs:
// resolving a conversation id to its persisted member list when a client
// event does not carry the members inline.
type DirectoryStore interface {
	ConversationMembers(ctx context.Context, conversationID string) ([]string, error)
}

type Config struct {
	NodeID        string
	PresenceTTL   time.Duration
	FanoutWorkers int
	FanoutQueue   int
}

func (c *Config) norm() {
	if c.NodeID == "" {
		c.NodeID = "social-gw-1"
	}
	if c.PresenceTTL <= 0 {
		c.PresenceTTL = 90 * time.Second
	}
}

// Server is the realtime hub: it owns the presence registry, the room
// router, the fan-out workers and the set of live clients.
type Server struct {
	conf   Config
	reg    *Registry
	router *Router
	fanout *Fanout
	store  DirectoryStore

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewServer(conf Config, store DirectoryStore) *Server {
	conf.norm()
	reg := NewRegistry()
	return &Server{
		conf:    conf,
		reg:     reg,
		router:  NewRouter(reg),
		fanout:  NewFanout(conf.FanoutWorkers, conf.FanoutQueue),
		store:   store,
		clients: make(map[string]*Client),
	}
}

func (s *Server) Registry() *Registry { return s.reg }
func (s *Server) Router() *Router     { return s.router }

// HandleWS upgrades the request and runs the connection session until the
// peer goes away.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade failed: %v", err)
		return
	}

	cli := newClient(ids.GenerateString(), ws)
	s.addClient(cli)
	safe.Go(cli.writePump)

	s.runSession(cli)
}

// OnlineUsers answers "who is currently online" from the registry.
func (s *Server) OnlineUsers() []string {
	return s.reg.SnapshotAll()
}

// PushToUsers delivers an event to every listed user who is currently
// connected; offline recipients are silently skipped. Used by the REST
// handlers to fan out mutations they just persisted.
func (s *Server) PushToUsers(t EventType, data any, userIDs []string, excludeUser string) {
	connIDs := s.router.ResolveUsers(userIDs, excludeUser)
	if err := s.fanout.Dispatch(t, data, s.clientsByID(connIDs)); err != nil {
		logger.Warnf("[ws] push %s: %v", t.WireName(), err)
	}
}

func (s *Server) addClient(c *Client) {
	s.mu.Lock()
	s.clients[c.ID] = c
	s.mu.Unlock()
}

func (s *Server) removeClient(id string) {
	s.mu.Lock()
	delete(s.clients, id)
	s.mu.Unlock()
}

func (s *Server) client(id string) *Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clients[id]
}

func (s *Server) clientsByID(connIDs []string) []*Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Client, 0, len(connIDs))
	for _, id := range connIDs {
		if c, ok := s.clients[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) allClients() []*Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

// broadcastPresence pushes the current online snapshot to every live
// connection so each peer's UI can reconcile.
func (s *Server) broadcastPresence() {
	snapshot := s.reg.SnapshotAll()
	if err := s.fanout.Dispatch(EvtOnlineUsers, snapshot, s.allClients()); err != nil {
		logger.Warnf("[ws] presence broadcast: %v", err)
	}
}

func (s *Server) announceOnline(userID string) {
	storage.AnnounceOnline(userID, s.conf.NodeID, s.conf.PresenceTTL)
}

func (s *Server) announceOffline(userID string) {
	storage.AnnounceOffline(userID, s.conf.NodeID)
}
