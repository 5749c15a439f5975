package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(ttl time.Duration) (*ResultCache, *MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.now
	return New(store, ttl), store, clock
}

func TestMemoryStore_LazyExpiry(t *testing.T) {
	_, store, clock := newTestCache(time.Hour)
	ctx := context.Background()

	store.Set(ctx, "k", []byte("v"), time.Minute)
	if v, ok, _ := store.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("Get = %q, %v; want v, true", v, ok)
	}

	clock.advance(time.Minute)
	if store.Len() != 1 {
		t.Fatal("expired entry should remain until read")
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("entry should be expired at its deadline")
	}
	if store.Len() != 0 {
		t.Error("expired entry should be dropped on read")
	}
}

func TestRemember_ServesFromCacheWithinTTL(t *testing.T) {
	c, _, clock := newTestCache(time.Hour)
	ctx := context.Background()
	key := Key{Op: "ask", Input: "Apa itu rendang?", Username: "u1", Epoch: "on-abc"}

	calls := 0
	compute := func(context.Context) (string, error) {
		calls++
		return "jawaban", nil
	}
	degraded := func(err error) string { return err.Error() }

	for i := 0; i < 2; i++ {
		if got := Remember(ctx, c, key, compute, degraded); got != "jawaban" {
			t.Fatalf("call %d = %q", i, got)
		}
	}
	if calls != 1 {
		t.Fatalf("compute calls within TTL = %d, want 1", calls)
	}

	clock.advance(time.Hour + time.Second)
	Remember(ctx, c, key, compute, degraded)
	if calls != 2 {
		t.Errorf("compute calls after TTL = %d, want 2", calls)
	}
}

func TestRemember_KeyComponentsSeparateEntries(t *testing.T) {
	c, _, _ := newTestCache(time.Hour)
	ctx := context.Background()
	base := Key{Op: "ask", Input: "q", Username: "u1", Epoch: "off"}

	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}
	degraded := func(error) int { return -1 }

	keys := []Key{
		base,
		{Op: "search", Input: "q", Username: "u1", Epoch: "off"},
		{Op: "ask", Input: "q2", Username: "u1", Epoch: "off"},
		{Op: "ask", Input: "q", Username: "u2", Epoch: "off"},
		{Op: "ask", Input: "q", Username: "u1", Epoch: "on-123"},
	}
	for _, k := range keys {
		Remember(ctx, c, k, compute, degraded)
	}
	if calls != len(keys) {
		t.Errorf("compute calls = %d, want %d", calls, len(keys))
	}
}

func TestRemember_DegradedOnErrorIsNotStored(t *testing.T) {
	c, store, _ := newTestCache(time.Hour)
	ctx := context.Background()
	key := Key{Op: "search", Input: "ayam", Username: "u1", Epoch: "off"}

	got := Remember(ctx, c, key,
		func(context.Context) ([]int, error) { return nil, errors.New("boom") },
		func(error) []int { return []int{} },
	)
	if got == nil || len(got) != 0 {
		t.Errorf("degraded = %v, want empty non-nil slice", got)
	}
	if store.Len() != 0 {
		t.Error("degraded value should not be cached")
	}
}

func TestRemember_RecoversPanic(t *testing.T) {
	c, _, _ := newTestCache(time.Hour)
	key := Key{Op: "ask", Input: "q", Username: "u1"}

	got := Remember(context.Background(), c, key,
		func(context.Context) (string, error) { panic("kaboom") },
		func(err error) string { return "degraded: " + err.Error() },
	)
	if got != "degraded: panic: kaboom" {
		t.Errorf("got %q", got)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store down")
}

func TestRemember_StoreFailureActsAsMiss(t *testing.T) {
	c := New(failingStore{}, time.Hour)
	got := Remember(context.Background(), c, Key{Op: "ask", Input: "q"},
		func(context.Context) (string, error) { return "ok", nil },
		func(error) string { return "degraded" },
	)
	if got != "ok" {
		t.Errorf("got %q, want ok", got)
	}
}

func TestRemember_NilCacheComputes(t *testing.T) {
	got := Remember(context.Background(), nil, Key{Op: "ask"},
		func(context.Context) (string, error) { return "direct", nil },
		func(error) string { return "degraded" },
	)
	if got != "direct" {
		t.Errorf("got %q", got)
	}
}

func TestNew_DefaultTTL(t *testing.T) {
	if New(NewMemoryStore(), 0).TTL() != DefaultTTL {
		t.Error("zero ttl should fall back to DefaultTTL")
	}
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	if _, err := NewRedisStore(context.Background(), "not-a-url", ""); err == nil {
		t.Error("expected error for invalid redis url")
	}
}
