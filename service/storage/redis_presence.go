package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"SProject/logger"
)

// Best-effort presence mirror. The in-memory registry inside service/chat
// is the single source of truth for fan-out; this package only announces
// online/offline to Redis so sibling services (and ops tooling) can observe
// liveness. Every call degrades to a no-op when Redis is not configured.

type Config struct {
	Addr     string
	Password string
	DB       int
}

const presenceChannel = "social:presence"

var (
	rdb *redis.Client
	ctx = context.Background()
)

func InitRedis(c Config) error {
	cli := redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	if err := cli.Ping(ctx).Err(); err != nil {
		return err
	}
	rdb = cli
	return nil
}

// presence key: social:presence:<user>
// value: node id, TTL bounds staleness if the gateway dies without cleanup
func presenceKey(user string) string { return "social:presence:" + user }

type presenceEvent struct {
	UserID string `json:"user_id"`
	NodeID string `json:"node_id"`
	Online bool   `json:"online"`
	TS     int64  `json:"ts"`
}

// AnnounceOnline mirrors a user coming online.
func AnnounceOnline(user, nodeID string, ttl time.Duration) {
	if rdb == nil || user == "" {
		return
	}
	if err := rdb.Set(ctx, presenceKey(user), nodeID, ttl).Err(); err != nil {
		logger.Warnf("[presence] mirror online user=%s: %v", user, err)
		return
	}
	publish(presenceEvent{UserID: user, NodeID: nodeID, Online: true, TS: time.Now().UnixMilli()})
}

// AnnounceOffline mirrors a user going offline.
func AnnounceOffline(user, nodeID string) {
	if rdb == nil || user == "" {
		return
	}
	if err := rdb.Del(ctx, presenceKey(user)).Err(); err != nil {
		logger.Warnf("[presence] mirror offline user=%s: %v", user, err)
		return
	}
	publish(presenceEvent{UserID: user, NodeID: nodeID, Online: false, TS: time.Now().UnixMilli()})
}

// Lookup reports whether the mirror believes the user is online. Used by
// ops tooling only, never by the fan-out path.
func Lookup(user string) (nodeID string, online bool, err error) {
	if rdb == nil {
		return "", false, errors.New("redis not initialized")
	}
	val, err := rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func publish(ev presenceEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := rdb.Publish(ctx, presenceChannel, b).Err(); err != nil {
		logger.Warnf("[presence] publish: %v", err)
	}
}
