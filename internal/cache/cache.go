// Package cache implements the time-boxed result cache that fronts the
// marketplace's read-mostly queries (shop directory, special offers, per-shop
// detail bundles, and per-(origin, shop) distance pairs).
//
// The package provides a Store interface with two implementations: an
// in-memory store (the default) and a Redis-backed store for deployments that
// share a cache across processes. Both obey the same lifecycle per key:
//
//	EMPTY -> (fetch succeeds) -> VALID(until now+ttl) -> (ttl elapses OR
//	explicit invalidation) -> EMPTY
//
// There is no stale-while-revalidate: a miss always triggers a fresh
// synchronous fetch before the caller proceeds, and a failed fetch stores
// nothing (no negative caching).
//
// The in-memory store evicts the oldest-inserted entry when full - a
// deliberately simple policy, distinct from LRU - and takes an injectable
// clock so expiry and sweep behavior are testable without wall time.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Clock abstracts time.Now so tests can simulate time passage.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// Store is the minimal cache contract consumed by the service layer.
//
// Get returns the cached value only while it is present and unexpired.
// Set stores a value with expiry now+ttl; a ttl <= 0 means "no expiry"
// (the entry lives until explicit invalidation or a capacity eviction).
// Invalidate forces a key to read as absent regardless of remaining ttl;
// write paths must call it before returning their response so an immediately
// following read observes fresh data.
type Store interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
	InvalidatePrefix(ctx context.Context, prefix string)
	Clear(ctx context.Context)
}

// DefaultCapacity bounds the in-memory store when no option overrides it.
const DefaultCapacity = 150

type entry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

// Memory is the process-local Store implementation. All methods are safe for
// concurrent use; a single mutex guards the map so get/set/invalidate remain
// atomic with respect to each other.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]entry
	order    []string // insertion order, oldest first, for FIFO eviction
	capacity int
	clock    Clock
}

// MemoryOption customizes a Memory store.
type MemoryOption func(*Memory)

// WithCapacity overrides the maximum number of entries. Values < 1 are ignored.
func WithCapacity(n int) MemoryOption {
	return func(m *Memory) {
		if n >= 1 {
			m.capacity = n
		}
	}
}

// WithClock injects a test clock.
func WithClock(c Clock) MemoryOption {
	return func(m *Memory) {
		if c != nil {
			m.clock = c
		}
	}
}

// NewMemory constructs an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:  make(map[string]entry),
		capacity: DefaultCapacity,
		clock:    systemClock{},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Get implements Store. Expired entries are removed on access.
func (m *Memory) Get(_ context.Context, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !m.clock.Now().Before(e.expiresAt) {
		m.removeLocked(key)
		return nil, false
	}
	return e.value, true
}

// Set implements Store. Updating an existing key keeps its insertion
// position; inserting into a full store first evicts the oldest entry.
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = m.clock.Now().Add(ttl)
	}

	if _, exists := m.entries[key]; !exists {
		if len(m.entries) >= m.capacity && len(m.order) > 0 {
			m.removeLocked(m.order[0])
		}
		m.order = append(m.order, key)
	}
	m.entries[key] = entry{value: value, expiresAt: expires}
}

// Invalidate implements Store.
func (m *Memory) Invalidate(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(key)
}

// InvalidatePrefix implements Store. It removes every key that starts with
// prefix; cache keys are structured hierarchically ("shops:", "distance:")
// precisely so that collection-level invalidation stays a prefix match.
func (m *Memory) InvalidatePrefix(_ context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			m.removeLocked(key)
		}
	}
}

// Clear implements Store.
func (m *Memory) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
	m.order = nil
}

// Len returns the number of live entries, counting entries that have expired
// but not yet been swept.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep removes every expired entry in one pass. Entries without an expiry
// (the distance pairs) survive; they are bounded by capacity eviction and by
// explicit prefix invalidation from the sweeper loop instead.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	removed := 0
	for key, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			m.removeLocked(key)
			removed++
		}
	}
	return removed
}

// StartSweeper launches a background goroutine that runs Sweep every interval
// plus a bulk clear of no-expiry distance entries, until ctx is cancelled.
// It returns immediately; call it once from main.
func (m *Memory) StartSweeper(ctx context.Context, interval time.Duration, bulkPrefixes ...string) {
	if interval <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Sweep()
				for _, p := range bulkPrefixes {
					m.InvalidatePrefix(ctx, p)
				}
			}
		}
	}()
}

// removeLocked deletes key from both the map and the order queue.
// Callers must hold m.mu.
func (m *Memory) removeLocked(key string) {
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
