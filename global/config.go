package global

import (
	"os"
	"strconv"
	"time"

	"SProject/logger"
	mgo "SProject/service/mgo"
	storage "SProject/service/storage"
	ids "SProject/tools/ids"
)

// AppConfig carries everything the gateway needs at boot. Values come from
// the environment with local-dev defaults, same knobs the original deploy
// used.
type AppConfig struct {
	Port      int
	NodeID    int64
	MongoURI  string
	MongoDB   string
	RedisAddr string
	RedisPass string
	RedisDB   int
	JWTSecret string

	PresenceTTL time.Duration
}

var App AppConfig

func Load() AppConfig {
	App = AppConfig{
		Port:        envInt("PORT", 8800),
		NodeID:      int64(envInt("NODE_ID", 1)),
		MongoURI:    envStr("DB_CONNECTION", "mongodb://localhost:27017"),
		MongoDB:     envStr("DB_NAME", "social"),
		RedisAddr:   envStr("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:   envStr("REDIS_PASSWORD", ""),
		RedisDB:     envInt("REDIS_DB", 0),
		JWTSecret:   envStr("JWT_SECRET", "dev-secret-do-not-ship"),
		PresenceTTL: time.Duration(envInt("PRESENCE_TTL_SEC", 90)) * time.Second,
	}
	return App
}

func GetJwtSecret() []byte { return []byte(App.JWTSecret) }

func ConfigIds() {
	ids.SetNodeID(App.NodeID)
}

func ConfigRedis() {
	err := storage.InitRedis(storage.Config{
		Addr: App.RedisAddr, Password: App.RedisPass, DB: App.RedisDB,
	})
	if err != nil {
		// Presence mirroring is best-effort; the gateway still runs.
		logger.Warnf("[global] redis unavailable, presence mirror disabled: %v", err)
	}
}

func ConfigMgo() error {
	return mgo.Init(mgo.Config{
		URI:         App.MongoURI,
		Database:    App.MongoDB,
		MaxPoolSize: 20,
		MaxRetry:    3,
	})
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
