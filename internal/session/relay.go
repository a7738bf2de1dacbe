package session

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"mealtap/internal/cache"
)

// EventsChannel is the Redis channel carrying session events between instances.
const EventsChannel = "auth:events"

// RedisRelay publishes events over Redis and feeds events received from any
// instance, this one included, into the local hub.
type RedisRelay struct {
	cache *cache.Client
	hub   *Hub
	log   *zap.Logger
}

// NewRedisRelay creates a relay.
func NewRedisRelay(cache *cache.Client, hub *Hub, log *zap.Logger) *RedisRelay {
	return &RedisRelay{cache: cache, hub: hub, log: log}
}

// Publish sends ev to every instance. If Redis is unreachable the event is
// delivered locally only.
func (r *RedisRelay) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := r.cache.Publish(ctx, EventsChannel, payload); err != nil {
		r.log.Warn("relay publish failed, delivering locally", zap.Error(err))
		return r.hub.Publish(ctx, ev)
	}
	return nil
}

// Run consumes the channel until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) {
	sub := r.cache.Subscribe(ctx, EventsChannel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.log.Warn("relay: bad event payload", zap.Error(err))
				continue
			}
			_ = r.hub.Publish(ctx, ev)
		}
	}
}
