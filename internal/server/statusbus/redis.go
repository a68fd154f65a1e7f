package statusbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lighthouse-crew/profilesync/internal/logging"
)

const dialTimeout = 5 * time.Second

// RedisPublisher publishes status events as JSON on one pub/sub channel.
// The frontend gateway subscribes and forwards them to the browser.
type RedisPublisher struct {
	rdb     *goredis.Client
	channel string
	logger  logging.Logger
}

// NewRedisPublisher connects to redis and verifies the connection with a
// ping before returning.
func NewRedisPublisher(addr, channel string, l logging.Logger) (*RedisPublisher, error) {
	if channel == "" {
		channel = "profile_save_status"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisPublisher{
		rdb:     rdb,
		channel: channel,
		logger:  l.With("module", "statusbus"),
	}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, raw).Err()
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
