package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

type relayClient interface {
	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(ctx context.Context, channels ...string) (*goredis.PubSub, error)
}

const (
	relayRetryMin = 500 * time.Millisecond
	relayRetryMax = 30 * time.Second
)

// ErrRelayNotConsuming reports that an event reached the relay channel but
// this process is not subscribed to it, so local subscribers need a direct
// broadcast.
var ErrRelayNotConsuming = errors.New("relay consumer is not running")

// RedisRelay fans events across API instances over a redis pub/sub channel.
type RedisRelay struct {
	client    relayClient
	channel   string
	logg      *logger.Logger
	consuming atomic.Bool
	retryMin  time.Duration
	retryMax  time.Duration
}

func NewRedisRelay(client relayClient, channel string, logg *logger.Logger) *RedisRelay {
	if logg == nil {
		logg = logger.Nop()
	}
	return &RedisRelay{client: client, channel: channel, logg: logg, retryMin: relayRetryMin, retryMax: relayRetryMax}
}

func (r *RedisRelay) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload); err != nil {
		return err
	}
	if !r.consuming.Load() {
		return ErrRelayNotConsuming
	}
	return nil
}

// Run subscribes to the relay channel and rebroadcasts every message on bus
// until ctx is cancelled. Failed or dropped subscriptions are retried with
// capped exponential backoff.
func (r *RedisRelay) Run(ctx context.Context, bus *Bus) error {
	wait := r.retryMin
	for {
		ps, err := r.client.Subscribe(ctx, r.channel)
		if err == nil {
			wait = r.retryMin
			r.logg.Info(r.logg.WithField(ctx, "channel", r.channel), "events.relay_started")
			r.consuming.Store(true)
			r.consume(ctx, ps.Channel(), bus)
			r.consuming.Store(false)
			_ = ps.Close()
		} else {
			r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
				"channel": r.channel,
				"error":   err.Error(),
				"retry":   wait.String(),
			}), "events.relay_subscribe_failed")
		}
		if ctx.Err() != nil {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		if err != nil {
			wait = min(wait*2, r.retryMax)
		}
	}
}

func (r *RedisRelay) consume(ctx context.Context, msgs <-chan *goredis.Message, bus *Bus) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			evt, err := decodeMessage(msg.Payload)
			if err != nil {
				r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "events.relay_decode_failed")
				continue
			}
			bus.Broadcast(evt)
		}
	}
}

func decodeMessage(payload string) (Event, error) {
	var evt Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return Event{}, err
	}
	if !evt.Type.IsValid() {
		return Event{}, fmt.Errorf("unknown event type %q", evt.Type)
	}
	return evt, nil
}
