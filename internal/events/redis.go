package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultChannel is the pub/sub channel shared by every process of one event.
const DefaultChannel = "donations:events"

// RedisPublisher publishes lifecycle events on a Redis channel so every API
// process (and the operator CLI) sees them.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher wraps an existing client.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if err := p.client.Publish(ctx, p.channel, e.Encode()).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", e.Kind, err)
	}
	return nil
}

// Relay forwards events received from Redis to a local handler.
type Relay struct {
	client  *redis.Client
	channel string
	logger  zerolog.Logger
}

// NewRelay builds a relay for channel.
func NewRelay(client *redis.Client, channel string, logger zerolog.Logger) *Relay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Relay{client: client, channel: channel, logger: logger}
}

// Run blocks until ctx is cancelled, invoking handle for every event.
func (r *Relay) Run(ctx context.Context, handle func(context.Context, Event)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		_ = sub.Close()
	}()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", r.channel, err)
	}
	r.logger.Info().Str("channel", r.channel).Msg("event relay subscribed")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			e, err := Decode([]byte(msg.Payload))
			if err != nil {
				r.logger.Warn().Err(err).Msg("drop malformed event")
				continue
			}
			handle(ctx, e)
		}
	}
}
