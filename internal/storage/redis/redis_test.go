package redis

import (
	"context"
	"reflect"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, "todo:"), mr
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	if _, ok, err := s.Get(ctx, "tasks"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "tasks", `[{"id":1}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, err := mr.Get("todo:tasks"); err != nil || got != `[{"id":1}]` {
		t.Fatalf("expected prefixed key in redis, got %q err=%v", got, err)
	}
	v, ok, err := s.Get(ctx, "tasks")
	if err != nil || !ok || v != `[{"id":1}]` {
		t.Fatalf("unexpected value %q ok=%v err=%v", v, ok, err)
	}
	if err := s.Remove(ctx, "tasks"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if mr.Exists("todo:tasks") {
		t.Fatal("expected key deleted")
	}
}

func TestStoreGetError(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	mr.SetError("server is busy")

	if _, _, err := s.Get(ctx, "tasks"); err == nil {
		t.Fatal("expected error from redis")
	}
}

func TestStoreKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for _, k := range []string{"chat:2:tasks", "chat:1:tasks", "tasks"} {
		if err := s.Set(ctx, k, "[]"); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	keys, err := s.Keys(ctx, "chat:")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if want := []string{"chat:1:tasks", "chat:2:tasks"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
}

func TestOpen(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	s, err := Open(context.Background(), "redis://"+mr.Addr()+"/0", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, err := Open(context.Background(), "not-a-url", ""); err == nil {
		t.Fatal("expected url parse error")
	}
}
