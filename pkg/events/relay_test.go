package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeRelayClient struct {
	channel  string
	payload  any
	subErr   error
	attempts atomic.Int32
}

func (f *fakeRelayClient) Publish(_ context.Context, channel string, payload any) error {
	f.channel = channel
	f.payload = payload
	return nil
}

func (f *fakeRelayClient) Subscribe(context.Context, ...string) (*goredis.PubSub, error) {
	f.attempts.Add(1)
	if f.subErr != nil {
		return nil, f.subErr
	}
	return nil, errors.New("no pubsub in tests")
}

func TestRedisRelayPublishEncodesEvent(t *testing.T) {
	client := &fakeRelayClient{}
	relay := NewRedisRelay(client, "mk:events", nil)

	evt, err := DisputeCreated(DisputeCreatedPayload{DisputeID: uuid.New(), VendorID: uuid.New(), BuyerID: uuid.New()})
	require.NoError(t, err)
	require.NoError(t, relay.Publish(context.Background(), evt))

	require.Equal(t, "mk:events", client.channel)
	raw, ok := client.payload.([]byte)
	require.True(t, ok)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, evt.ID, decoded.ID)
	require.Equal(t, TypeDisputeCreated, decoded.Type)
}

func TestRedisRelayConsumeRebroadcasts(t *testing.T) {
	bus := NewBus(Options{})
	defer bus.Close()
	sub, err := bus.Subscribe()
	require.NoError(t, err)

	relay := NewRedisRelay(&fakeRelayClient{}, "mk:events", nil)

	evt, err := OrderStatusUpdated(OrderStatusUpdatedPayload{OrderID: uuid.New(), BuyerID: uuid.New(), Status: "shipped"})
	require.NoError(t, err)
	raw, err := json.Marshal(evt)
	require.NoError(t, err)

	msgs := make(chan *goredis.Message, 3)
	msgs <- &goredis.Message{Channel: "mk:events", Payload: "not-json"}
	msgs <- &goredis.Message{Channel: "mk:events", Payload: `{"event":"bogus"}`}
	msgs <- &goredis.Message{Channel: "mk:events", Payload: string(raw)}
	close(msgs)

	done := make(chan struct{})
	go func() {
		relay.consume(context.Background(), msgs, bus)
		close(done)
	}()

	select {
	case got := <-sub.Events():
		require.Equal(t, evt.ID, got.ID)
		require.Equal(t, TypeOrderStatusUpdated, got.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for relayed event")
	}
	<-done
}

func TestRedisRelayRetriesSubscribeUntilCancelled(t *testing.T) {
	client := &fakeRelayClient{subErr: errors.New("connection refused")}
	relay := NewRedisRelay(client, "mk:events", nil)
	relay.retryMin = time.Millisecond
	relay.retryMax = 4 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx, NewBus(Options{})) }()

	require.Eventually(t, func() bool { return client.attempts.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}

func TestBusDeliversLocallyWhileRelayIsNotConsuming(t *testing.T) {
	client := &fakeRelayClient{subErr: errors.New("connection refused")}
	relay := NewRedisRelay(client, "mk:events", nil)
	bus := NewBus(Options{Relay: relay})
	defer bus.Close()
	sub, err := bus.Subscribe()
	require.NoError(t, err)

	evt, err := OrderStatusUpdated(OrderStatusUpdatedPayload{OrderID: uuid.New(), BuyerID: uuid.New(), Status: "delivered"})
	require.NoError(t, err)
	bus.Publish(context.Background(), evt)

	select {
	case got := <-sub.Events():
		require.Equal(t, evt.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("event was lost while the relay consumer was down")
	}
	require.Equal(t, "mk:events", client.channel)
}
