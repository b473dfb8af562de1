package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(func() time.Time { return now })
	ctx := context.Background()

	if err := m.Set(ctx, "k", map[string]int{"n": 1}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var got map[string]int
	if err := m.Get(ctx, "k", &got); err != nil || got["n"] != 1 {
		t.Fatalf("Get = %v, %v", got, err)
	}

	now = now.Add(time.Minute)
	if err := m.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v, want ErrCacheMiss after ttl", err)
	}
}

func TestMemoryNoTTLAndDelete(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()
	m.Set(ctx, "a", "x", 0)
	var s string
	if err := m.Get(ctx, "a", &s); err != nil || s != "x" {
		t.Fatalf("Get = %q, %v", s, err)
	}
	m.Delete(ctx, "a")
	if err := m.Get(ctx, "a", &s); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v after delete", err)
	}
}

func TestMemorySetNX(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()
	if ok, err := m.SetNX(ctx, "id", 1, time.Hour); !ok || err != nil {
		t.Fatalf("first SetNX = %v, %v", ok, err)
	}
	if ok, _ := m.SetNX(ctx, "id", 2, time.Hour); ok {
		t.Error("second SetNX succeeded")
	}
}
