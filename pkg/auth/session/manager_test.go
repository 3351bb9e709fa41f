package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/angelmondragon/marketplace-backend/pkg/redis"
)

type memoryStore struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", redisclient.Nil
	}
	return v, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryStore) SessionKey(id string) string { return "mk:session:" + id }

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	mgr, err := newManager(store, time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	userID := uuid.New()
	sessionID, err := mgr.Create(ctx, userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if store.data["mk:session:"+sessionID] != userID.String() {
		t.Fatalf("expected session to map to user")
	}
	if store.ttls["mk:session:"+sessionID] != time.Hour {
		t.Fatalf("expected session ttl to match token ttl")
	}

	ok, err := mgr.HasSession(ctx, sessionID)
	if err != nil || !ok {
		t.Fatalf("expected live session, got ok=%v err=%v", ok, err)
	}

	if err := mgr.Revoke(ctx, sessionID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = mgr.HasSession(ctx, sessionID)
	if err != nil || ok {
		t.Fatalf("expected revoked session, got ok=%v err=%v", ok, err)
	}
}

func TestManagerErrors(t *testing.T) {
	if _, err := newManager(newMemoryStore(), 0); err == nil {
		t.Fatalf("expected zero ttl to be rejected")
	}

	store := newMemoryStore()
	mgr, _ := newManager(store, time.Minute)
	if _, err := mgr.Create(context.Background(), uuid.Nil); err == nil {
		t.Fatalf("expected nil user to be rejected")
	}

	store.err = errors.New("redis down")
	if _, err := mgr.HasSession(context.Background(), "abc"); err == nil {
		t.Fatalf("expected store errors to propagate")
	}
	if ok, err := mgr.HasSession(context.Background(), " "); ok || err != nil {
		t.Fatalf("blank session should be absent without error")
	}
}
