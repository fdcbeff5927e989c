package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestStore(t *testing.T, opts ...MemoryOption) (*Memory, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]MemoryOption{WithClock(clk)}, opts...)
	return NewMemory(opts...), clk
}

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestStore(t)

	m.Set(ctx, "k", "v", 100*time.Millisecond)
	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestMemory_ExpiryReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestStore(t)

	m.Set(ctx, "k", "v", 100*time.Millisecond)
	clk.Advance(150 * time.Millisecond)

	_, ok := m.Get(ctx, "k")
	assert.False(t, ok, "expired entry must read as absent")
	assert.Equal(t, 0, m.Len(), "expired entry is removed on access")
}

func TestMemory_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestStore(t)

	m.Set(ctx, "distance:1", 4.2, 0)
	clk.Advance(24 * time.Hour)

	got, ok := m.Get(ctx, "distance:1")
	require.True(t, ok)
	assert.Equal(t, 4.2, got)
}

func TestMemory_InvalidateBeforeTTL(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestStore(t)

	m.Set(ctx, "k", "v", time.Hour)
	m.Invalidate(ctx, "k")

	_, ok := m.Get(ctx, "k")
	assert.False(t, ok, "invalidated entry must read as absent before ttl")
}

func TestMemory_FIFOEviction(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestStore(t, WithCapacity(3))

	m.Set(ctx, "a", 1, time.Hour)
	m.Set(ctx, "b", 2, time.Hour)
	m.Set(ctx, "c", 3, time.Hour)

	// Touch "a" so LRU would keep it; FIFO must still evict it first.
	_, ok := m.Get(ctx, "a")
	require.True(t, ok)

	m.Set(ctx, "d", 4, time.Hour)

	_, ok = m.Get(ctx, "a")
	assert.False(t, ok, "oldest-inserted entry must be evicted")
	for _, k := range []string{"b", "c", "d"} {
		_, ok := m.Get(ctx, k)
		assert.True(t, ok, "entry %q should survive", k)
	}
	assert.Equal(t, 3, m.Len())
}

func TestMemory_UpdateKeepsInsertionPosition(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestStore(t, WithCapacity(2))

	m.Set(ctx, "a", 1, time.Hour)
	m.Set(ctx, "b", 2, time.Hour)
	m.Set(ctx, "a", 10, time.Hour) // update, not re-insert

	m.Set(ctx, "c", 3, time.Hour) // must evict "a" (still oldest)

	_, ok := m.Get(ctx, "a")
	assert.False(t, ok)
	got, ok := m.Get(ctx, "b")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestMemory_InvalidatePrefix(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestStore(t)

	m.Set(ctx, "shops:all", "dir", time.Hour)
	m.Set(ctx, "shops:7:detail", "bundle", time.Hour)
	m.Set(ctx, "offers:all", "offers", time.Hour)

	m.InvalidatePrefix(ctx, "shops:")

	_, ok := m.Get(ctx, "shops:all")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "shops:7:detail")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "offers:all")
	assert.True(t, ok, "other prefixes must survive")
}

func TestMemory_Sweep(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestStore(t)

	m.Set(ctx, "short", 1, time.Second)
	m.Set(ctx, "long", 2, time.Hour)
	m.Set(ctx, "forever", 3, 0)

	clk.Advance(2 * time.Second)
	removed := m.Sweep()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, m.Len())
	_, ok := m.Get(ctx, "long")
	assert.True(t, ok)
	_, ok = m.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestStore(t)

	m.Set(ctx, "a", 1, time.Hour)
	m.Set(ctx, "b", 2, time.Hour)
	m.Clear(ctx)

	assert.Equal(t, 0, m.Len())
}

func TestGetOrFetch_MissFetchesAndStores(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestStore(t)

	calls := 0
	fetch := func(context.Context) ([]string, error) {
		calls++
		return []string{"x", "y"}, nil
	}

	got, err := GetOrFetch(ctx, m, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got)
	assert.Equal(t, 1, calls)

	// Second call is served from cache.
	got, err = GetOrFetch(ctx, m, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got)
	assert.Equal(t, 1, calls, "hit must not re-fetch")
}

func TestGetOrFetch_ErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestStore(t)

	boom := errors.New("upstream down")
	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 42, nil
	}

	_, err := GetOrFetch(ctx, m, "k", time.Minute, fetch)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Len(), "failed fetch must leave the key empty")

	got, err := GetOrFetch(ctx, m, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, calls)
}

func TestGetOrFetch_DecodesJSONBytes(t *testing.T) {
	// Values from the Redis tier arrive as JSON bytes.
	ctx := context.Background()
	m, _ := newTestStore(t)

	type row struct {
		Name string `json:"name"`
	}
	raw, err := json.Marshal(row{Name: "Kirana Store"})
	require.NoError(t, err)
	m.Set(ctx, "k", raw, time.Minute)

	got, err := GetOrFetch(ctx, m, "k", time.Minute, func(context.Context) (row, error) {
		t.Fatal("fetch must not run on a decodable hit")
		return row{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Kirana Store", got.Name)
}

func TestStartSweeper_ReturnsImmediately(t *testing.T) {
	// main calls StartSweeper synchronously before the HTTP server starts;
	// it must hand the loop to a goroutine and come straight back.
	m, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		m.StartSweeper(ctx, 10*time.Minute, PrefixDistance)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("StartSweeper must not block the caller while the context is live")
	}
}

func TestStartSweeper_BulkClearsDistancePairs(t *testing.T) {
	m, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.Set(ctx, KeyDistance(12.97, 77.59, 3), 1.25, 0)
	require.Equal(t, 1, m.Len())

	m.StartSweeper(ctx, time.Millisecond, PrefixDistance)
	require.Eventually(t, func() bool { return m.Len() == 0 },
		time.Second, 5*time.Millisecond, "distance pair was not bulk-cleared")
}

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "shops:7:detail", KeyShopDetail(7))
	assert.Equal(t, "distance:12.970000,77.590000:3", KeyDistance(12.97, 77.59, 3))
}
