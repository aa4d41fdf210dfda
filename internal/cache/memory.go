package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"KWatch/internal/model"
)

type entry struct {
	series  model.PriceSeries
	expires time.Time
}

// Memory is an in-process TTL cache.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates a Memory cache. A non-positive ttl keeps entries until Clear.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, symbol string) (model.PriceSeries, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToUpper(symbol)
	e, ok := m.entries[key]
	if !ok {
		return model.PriceSeries{}, false
	}
	if m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return model.PriceSeries{}, false
	}
	return e.series, true
}

func (m *Memory) Set(_ context.Context, series model.PriceSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[strings.ToUpper(series.Symbol)] = entry{
		series:  series,
		expires: m.now().Add(m.ttl),
	}
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]entry)
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
