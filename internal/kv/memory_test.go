package kv

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, found, _ := m.Get(ctx, "k"); found {
		t.Fatal("Get on empty store should miss")
	}
	if err := m.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, found, err := m.Get(ctx, "k")
	if err != nil || !found || val != "v" {
		t.Fatalf("Get = %q, %v, %v", val, found, err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := m.Get(ctx, "k"); found {
		t.Fatal("Get after Delete should miss")
	}
}

func TestMemorySetNX(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ok, err := m.SetNX(ctx, "k", "first", 0)
	if err != nil || !ok {
		t.Fatalf("first SetNX = %v, %v", ok, err)
	}
	ok, err = m.SetNX(ctx, "k", "second", 0)
	if err != nil || ok {
		t.Fatalf("second SetNX = %v, %v, want false", ok, err)
	}
	if val, _, _ := m.Get(ctx, "k"); val != "first" {
		t.Errorf("value after duplicate SetNX = %q, want first", val)
	}

	_ = m.Delete(ctx, "k")
	if ok, _ := m.SetNX(ctx, "k", "third", 0); !ok {
		t.Error("SetNX after Delete should succeed")
	}
}

func TestMemorySetNXExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	if ok, _ := m.SetNX(ctx, "k", "v", time.Minute); !ok {
		t.Fatal("SetNX should succeed")
	}
	if _, found, _ := m.Get(ctx, "k"); !found {
		t.Fatal("key should be live before the ttl")
	}

	now = now.Add(2 * time.Minute)
	if _, found, _ := m.Get(ctx, "k"); found {
		t.Fatal("key should expire after the ttl")
	}
	if ok, _ := m.SetNX(ctx, "k", "v2", time.Minute); !ok {
		t.Fatal("SetNX should succeed again once the old entry expired")
	}
}

func TestMemoryPushFrontOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	// LPUSH semantics: each value in turn goes to the head.
	if err := m.PushFront(ctx, "l", "a", "b"); err != nil {
		t.Fatalf("PushFront: %v", err)
	}
	if err := m.PushFront(ctx, "l", "c"); err != nil {
		t.Fatalf("PushFront: %v", err)
	}

	got, err := m.Range(ctx, "l", 0, -1)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	want := []string{"c", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("Range = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Range[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMemoryRangeBounds(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.PushFront(ctx, "l", "a", "b", "c") // list: c b a

	cases := []struct {
		name        string
		start, stop int64
		want        int
	}{
		{"full", 0, -1, 3},
		{"prefix", 0, 1, 2},
		{"stop beyond end", 0, 99, 3},
		{"start beyond end", 5, 9, 0},
		{"inverted", 2, 1, 0},
		{"negative start", -2, -1, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.Range(ctx, "l", tc.start, tc.stop)
			if err != nil {
				t.Fatalf("Range: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("Range(%d, %d) = %v, want %d elements", tc.start, tc.stop, got, tc.want)
			}
		})
	}

	if got, _ := m.Range(ctx, "missing", 0, -1); len(got) != 0 {
		t.Errorf("Range on missing key = %v, want empty", got)
	}
}
