package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/metrics"
)

const (
	defaultBuffer = 32
	relayTimeout  = 2 * time.Second
)

var ErrBusClosed = errors.New("event bus closed")

// Publisher is the surface domain services depend on.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Relay forwards events to other processes. Events come back through
// Bus.Broadcast once the relay delivers them, including to this process.
type Relay interface {
	Publish(ctx context.Context, evt Event) error
}

type Options struct {
	Buffer  int
	Relay   Relay
	Logger  *logger.Logger
	Metrics *metrics.EventMetrics
}

// Bus fans events out to subscribers. Delivery is best effort: a subscriber
// whose buffer is full misses the event, and Publish never blocks on I/O.
type Bus struct {
	mu       sync.RWMutex
	subs     map[*Subscription]struct{}
	closed   bool
	buffer   int
	relay    Relay
	logg     *logger.Logger
	metrics  *metrics.EventMetrics
	inflight sync.WaitGroup
}

func NewBus(opts Options) *Bus {
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Bus{
		subs:    make(map[*Subscription]struct{}),
		buffer:  opts.Buffer,
		relay:   opts.Relay,
		logg:    opts.Logger,
		metrics: opts.Metrics,
	}
}

// Subscription is one consumer's view of the bus.
type Subscription struct {
	ch   chan Event
	bus  *Bus
	once sync.Once
}

// Events is closed when the subscription or the bus is closed.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) Close() {
	s.bus.remove(s)
}

func (b *Bus) Subscribe() (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	sub := &Subscription{ch: make(chan Event, b.buffer), bus: b}
	b.subs[sub] = struct{}{}
	b.metrics.SetSubscribers(len(b.subs))
	return sub, nil
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	sub.once.Do(func() { close(sub.ch) })
	b.metrics.SetSubscribers(len(b.subs))
}

// Publish hands evt to the relay when one is configured, otherwise broadcasts
// locally. Relay failures fall back to a local broadcast.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if b.relay == nil {
		b.Broadcast(evt)
		return
	}

	b.mu.RLock()
	closed := b.closed
	if !closed {
		b.inflight.Add(1)
	}
	b.mu.RUnlock()
	if closed {
		return
	}

	go func() {
		defer b.inflight.Done()
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), relayTimeout)
		defer cancel()
		err := b.relay.Publish(rctx, evt)
		if errors.Is(err, ErrRelayNotConsuming) {
			b.Broadcast(evt)
			return
		}
		if err != nil {
			b.metrics.IncRelayError()
			b.logg.Warn(b.logg.WithFields(rctx, map[string]any{"event": evt.Type, "error": err.Error()}), "events.relay_publish_failed")
			b.Broadcast(evt)
		}
	}()
}

// Broadcast delivers evt to every local subscriber without blocking.
func (b *Bus) Broadcast(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	b.metrics.IncPublished(string(evt.Type))
	for sub := range b.subs {
		select {
		case sub.ch <- evt:
		default:
			b.metrics.IncDropped(string(evt.Type))
			b.logg.Debug(b.logg.WithField(context.Background(), "event", evt.Type), "events.delivery_dropped")
		}
	}
}

func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close waits for in-flight relay publishes, then closes every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.inflight.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		delete(b.subs, sub)
		sub.once.Do(func() { close(sub.ch) })
	}
	b.metrics.SetSubscribers(0)
}
