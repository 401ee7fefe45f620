package events

import (
	"context"
	"fmt"
	"time"

	"aguamarket/internal/pkg/config"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix namespaces marketplace events on the shared Redis instance.
const ChannelPrefix = "aguamarket:"

// Publisher pushes a settled notification onto the realtime fan-out.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	return p.client.Publish(ctx, ChannelPrefix+topic, payload).Err()
}
