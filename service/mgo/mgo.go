package mgo

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config represents the MongoDB configuration.
type Config struct {
	URI         string
	Database    string
	Username    string
	Password    string
	AuthSource  string
	MaxPoolSize int
	MaxRetry    int
}

var (
	mu sync.RWMutex
	db *mongo.Database
)

// Init connects to MongoDB and keeps a package-level handle, retrying a few
// times so the gateway survives a store that is still coming up.
func Init(cfg Config) error {
	if cfg.URI == "" {
		return errors.New("mongo uri is required")
	}
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			Username:   cfg.Username,
			Password:   cfg.Password,
			AuthSource: cfg.AuthSource,
		})
	}

	retry := cfg.MaxRetry
	if retry <= 0 {
		retry = 1
	}
	var (
		cli *mongo.Client
		err error
	)
	for i := 0; i < retry; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		cli, err = connect(ctx, opts)
		cancel()
		if err == nil {
			break
		}
		time.Sleep(time.Second / 2)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to connect to MongoDB uri=%s", cfg.URI)
	}

	mu.Lock()
	db = cli.Database(cfg.Database)
	mu.Unlock()
	return nil
}

func connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return cli, nil
}

func GetDB() *mongo.Database {
	mu.RLock()
	defer mu.RUnlock()
	if db == nil {
		panic("mongo not initialized: call mgo.Init first")
	}
	return db
}
