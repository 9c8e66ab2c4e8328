package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newDualStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, client := newTestRedis(t)
	store, err := New(Options{
		Redis:       client,
		RedisPrefix: "nc-test",
		FilePath:    filepath.Join(t.TempDir(), "cache.db"),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestNewRequiresBackend(t *testing.T) {
	if _, err := New(Options{}); err != ErrNoBackend {
		t.Fatalf("New = %v, want ErrNoBackend", err)
	}
}

func TestPutGetDual(t *testing.T) {
	store, _ := newDualStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "5000001", "ProGamer99"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	v, ok, err := store.Get(ctx, "5000001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || v != "ProGamer99" {
		t.Fatalf("Get = (%q, %v), want (ProGamer99, true)", v, ok)
	}
}

func TestGetMiss(t *testing.T) {
	store, _ := newDualStore(t)

	v, ok, err := store.Get(context.Background(), "999")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok || v != "" {
		t.Fatalf("Get = (%q, %v), want miss", v, ok)
	}
}

func TestPutFirstWriteWins(t *testing.T) {
	store, _ := newDualStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "42", "Original"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "42", "Imposter"); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	v, ok, err := store.Get(ctx, "42")
	if err != nil || !ok {
		t.Fatalf("Get = (%q, %v, %v)", v, ok, err)
	}
	if v != "Original" {
		t.Fatalf("Get = %q, want Original (first write wins)", v)
	}
}

func TestGetFallsBackToFileOnRedisOutage(t *testing.T) {
	store, mr := newDualStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "77", "Survivor"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	mr.Close()

	v, ok, err := store.Get(ctx, "77")
	if err != nil {
		t.Fatalf("Get after redis outage failed: %v", err)
	}
	if !ok || v != "Survivor" {
		t.Fatalf("Get = (%q, %v), want (Survivor, true)", v, ok)
	}
}

func TestPutSurvivesSingleBackendFailure(t *testing.T) {
	mr, client := newTestRedis(t)

	var hookCalls []string
	store, err := New(Options{
		Redis:       client,
		RedisPrefix: "nc-test",
		FilePath:    filepath.Join(t.TempDir(), "cache.db"),
		OnError: func(backend string, err error) {
			hookCalls = append(hookCalls, backend)
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	mr.Close()

	ctx := context.Background()
	if err := store.Put(ctx, "7", "StillStored"); err != nil {
		t.Fatalf("Put with one backend down failed: %v", err)
	}
	if len(hookCalls) == 0 || hookCalls[0] != "redis" {
		t.Fatalf("error hook calls = %v, want redis failure reported", hookCalls)
	}

	v, ok, err := store.Get(ctx, "7")
	if err != nil || !ok || v != "StillStored" {
		t.Fatalf("Get = (%q, %v, %v), want (StillStored, true, nil)", v, ok, err)
	}
}

func TestFileOnlyStore(t *testing.T) {
	store, err := New(Options{FilePath: filepath.Join(t.TempDir(), "cache.db")})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.Put(ctx, "1", "FileOnly"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	v, ok, err := store.Get(ctx, "1")
	if err != nil || !ok || v != "FileOnly" {
		t.Fatalf("Get = (%q, %v, %v)", v, ok, err)
	}
}

func TestRedisOnlyStore(t *testing.T) {
	_, client := newTestRedis(t)
	store, err := New(Options{Redis: client, RedisPrefix: "solo"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if err := store.Put(ctx, "2", "RedisOnly"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	v, ok, err := store.Get(ctx, "2")
	if err != nil || !ok || v != "RedisOnly" {
		t.Fatalf("Get = (%q, %v, %v)", v, ok, err)
	}
}

func TestEntriesMergesBackends(t *testing.T) {
	store, _ := newDualStore(t)
	ctx := context.Background()

	pairs := map[string]string{
		"100": "Alpha",
		"200": "Bravo",
		"300": "Charlie",
	}
	for id, name := range pairs {
		if err := store.Put(ctx, id, name); err != nil {
			t.Fatalf("Put(%s) failed: %v", id, err)
		}
	}

	entries, err := store.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != len(pairs) {
		t.Fatalf("Entries len = %d, want %d", len(entries), len(pairs))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].PlayerID >= entries[i].PlayerID {
			t.Fatalf("Entries not sorted: %v", entries)
		}
	}
	for _, e := range entries {
		if pairs[e.PlayerID] != e.Username {
			t.Fatalf("entry %v does not match put data", e)
		}
	}
}
