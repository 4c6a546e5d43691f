package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Redis fans change events out to every instance through one pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
	log     *slog.Logger
}

// NewRedis parses url, verifies connectivity and returns a Feed.
func NewRedis(ctx context.Context, url, channel string, log *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Redis{client: client, channel: channel, log: log}, nil
}

func (r *Redis) Publish(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, b).Err()
}

func (r *Redis) Subscribe(ctx context.Context, fn func(Event)) error {
	ps := r.client.Subscribe(ctx, r.channel)
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				// payload is advisory; reload anyway
				r.log.Warn("malformed change event", "err", err)
			}
			fn(ev)
		}
	}
}

func (r *Redis) Close() error { return r.client.Close() }
