package kv

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store/List/Pinger. It backs the fingerprint
// cache when Redis is absent and stands in for the remote tier in tests.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	lists map[string][]string
	now   func() time.Time
}

type memoryItem struct {
	value   string
	expires time.Time // zero = no expiry
}

func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]memoryItem),
		lists: make(map[string][]string),
		now:   time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.liveItem(key)
	if !ok {
		return "", false, nil
	}
	return it.value, true, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryItem{value: value}
	return nil
}

func (m *Memory) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.liveItem(key); ok {
		return false, nil
	}
	it := memoryItem{value: value}
	if ttl > 0 {
		it.expires = m.now().Add(ttl)
	}
	m.items[key] = it
	return true, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) PushFront(ctx context.Context, key string, values ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Each value is pushed to the head in turn, matching LPUSH.
	for _, v := range values {
		m.lists[key] = append([]string{v}, m.lists[key]...)
	}
	return nil
}

func (m *Memory) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	n := int64(len(list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

// liveItem returns key's entry, expiring it lazily. Caller holds mu.
func (m *Memory) liveItem(key string) (memoryItem, bool) {
	it, ok := m.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !it.expires.IsZero() && m.now().After(it.expires) {
		delete(m.items, key)
		return memoryItem{}, false
	}
	return it, true
}
