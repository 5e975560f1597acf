package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"groq-chat-relay/internal/domain/model"
)

// fakeClient is a map-backed RedisClient.
type fakeClient struct {
	data map[string]string
}

func newFakeClient() *fakeClient { return &fakeClient{data: map[string]string{}} }

func (f *fakeClient) Ping(context.Context) error { return nil }

func (f *fakeClient) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		return fmt.Errorf("unexpected value type %T", value)
	}
	return nil
}

func (f *fakeClient) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return v, nil
}

func (f *fakeClient) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeClient) Close() error { return nil }

func TestRoundTrip(t *testing.T) {
	store := NewSessionStore(newFakeClient())
	ctx := context.Background()

	s := model.NewSession("s1")
	s.Title = "groceries"
	s.AddMessage(model.RoleUser, "milk?")
	if err := store.Save(ctx, model.Collection{"s1": s}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out["s1"] == nil || out["s1"].Title != "groceries" || len(out["s1"].Messages) != 1 {
		t.Fatalf("loaded %+v", out["s1"])
	}
}

func TestLoadAbsentKeyYieldsEmptyCollection(t *testing.T) {
	out, err := NewSessionStore(newFakeClient()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("got %v, want empty collection", out)
	}
}

func TestLoadCorruptRecordYieldsEmptyCollection(t *testing.T) {
	client := newFakeClient()
	client.data[storageKey] = "{definitely not json"
	out, err := NewSessionStore(client).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("got %v, want empty collection", out)
	}
}

func TestSaveUsesWellKnownKey(t *testing.T) {
	client := newFakeClient()
	store := NewSessionStore(client)
	if err := store.Save(context.Background(), model.Collection{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := client.data[storageKey]; !ok {
		t.Fatalf("keys = %v, want %q", client.data, storageKey)
	}
}
