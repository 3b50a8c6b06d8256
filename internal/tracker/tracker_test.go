// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/pagectlgo/internal/fetch"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockFetcher returns its queued responses in order, then repeats the last.
type mockFetcher struct {
	mu        sync.Mutex
	calls     map[string]int
	responses map[string][]string
	fail      map[string]error
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		calls:     map[string]int{},
		responses: map[string][]string{},
		fail:      map[string]error{},
	}
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[url]++
	if err, ok := m.fail[url]; ok {
		return "", err
	}
	rs := m.responses[url]
	if len(rs) == 0 {
		return "body of " + url, nil
	}
	i := m.calls[url] - 1
	if i >= len(rs) {
		i = len(rs) - 1
	}
	return rs[i], nil
}

func (m *mockFetcher) Calls(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

const ttl = 10 * time.Second

func TestAccessCount_NeverSeen(t *testing.T) {
	tr := New(newMockFetcher(), ttl)
	assert.Equal(t, 0, tr.AccessCount("http://example.com/never"))
	assert.Empty(t, tr.Counts())
	assert.Empty(t, tr.Stats())
}

func TestGet_CountsEveryCall(t *testing.T) {
	f := newMockFetcher()
	clock := newFakeClock()
	tr := New(f, ttl, WithClock(clock))

	url := "http://example.com/x"
	for i := 1; i <= 25; i++ {
		_, err := tr.Get(context.Background(), url)
		require.NoError(t, err)
		assert.Equal(t, i, tr.AccessCount(url))
		clock.Advance(3 * time.Second)
	}

	// 25 calls spaced 3s apart over a 10s TTL: a fetch on calls 1,5,9,...
	assert.Equal(t, 7, f.Calls(url))
}

func TestGet_HitWithinTTL(t *testing.T) {
	f := newMockFetcher()
	f.responses["u"] = []string{"first", "second"}
	clock := newFakeClock()
	tr := New(f, ttl, WithClock(clock))

	v1, err := tr.Get(context.Background(), "u")
	require.NoError(t, err)

	clock.Advance(ttl - time.Millisecond)
	v2, err := tr.Get(context.Background(), "u")
	require.NoError(t, err)

	assert.Equal(t, "first", v1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, f.Calls("u"))
	assert.Equal(t, 2, tr.AccessCount("u"))
}

func TestGet_RefetchAfterTTL(t *testing.T) {
	f := newMockFetcher()
	f.responses["u"] = []string{"first", "second"}
	clock := newFakeClock()
	tr := New(f, ttl, WithClock(clock))

	_, err := tr.Get(context.Background(), "u")
	require.NoError(t, err)

	clock.Advance(ttl)
	v, err := tr.Get(context.Background(), "u")
	require.NoError(t, err)

	assert.Equal(t, "second", v)
	assert.Equal(t, 2, f.Calls("u"))
	assert.Equal(t, 2, tr.AccessCount("u"))
}

func TestGet_IndependentKeys(t *testing.T) {
	f := newMockFetcher()
	f.responses["a"] = []string{"A1", "A2"}
	f.responses["b"] = []string{"B1", "B2"}
	clock := newFakeClock()
	tr := New(f, ttl, WithClock(clock))

	vb, err := tr.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "B1", vb)

	clock.Advance(5 * time.Second)
	for i := 0; i < 3; i++ {
		va, err := tr.Get(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, "A1", va)
	}

	assert.Equal(t, 3, tr.AccessCount("a"))
	assert.Equal(t, 1, tr.AccessCount("b"))

	vb, err = tr.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "B1", vb)
	assert.Equal(t, 1, f.Calls("b"))
	assert.Equal(t, 1, f.Calls("a"))
	assert.Equal(t, 2, tr.AccessCount("b"))
}

func TestGet_FailureCountsButDoesNotCache(t *testing.T) {
	f := newMockFetcher()
	boom := &fetch.Error{URL: "u", StatusCode: 503}
	f.fail["u"] = boom
	tr := New(f, ttl, WithClock(newFakeClock()))

	for i := 0; i < 3; i++ {
		v, err := tr.Get(context.Background(), "u")
		require.Error(t, err)
		assert.Equal(t, "", v)
		assert.ErrorIs(t, err, fetch.ErrFetch)

		var fe *fetch.Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, 503, fe.StatusCode)
	}

	assert.Equal(t, 3, tr.AccessCount("u"))
	assert.Equal(t, 3, f.Calls("u"))

	stats := tr.Stats()
	require.Len(t, stats, 1)
	assert.False(t, stats[0].Cached)

	// Recovery: once the fetch succeeds it is cached and counted.
	delete(f.fail, "u")
	v, err := tr.Get(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "body of u", v)
	_, err = tr.Get(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, 5, tr.AccessCount("u"))
	assert.Equal(t, 4, f.Calls("u"))
}

// TTL = 10s; t=0 fetch PAGE1, t=5 hit, t=11 fetch PAGE2.
func TestGet_Scenario(t *testing.T) {
	f := newMockFetcher()
	url := "http://example.com/x"
	f.responses[url] = []string{"PAGE1", "PAGE2"}
	clock := newFakeClock()
	t0 := clock.Now()
	tr := New(f, ttl, WithClock(clock))

	v, err := tr.Get(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, "PAGE1", v)
	assert.Equal(t, 1, tr.AccessCount(url))
	e, ok := tr.cache.Peek(url)
	require.True(t, ok)
	assert.Equal(t, "PAGE1", e.Value)
	assert.Equal(t, t0, e.StoredAt)

	clock.Advance(5 * time.Second)
	v, err = tr.Get(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, "PAGE1", v)
	assert.Equal(t, 2, tr.AccessCount(url))
	assert.Equal(t, 1, f.Calls(url))

	clock.Advance(6 * time.Second)
	v, err = tr.Get(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, "PAGE2", v)
	assert.Equal(t, 3, tr.AccessCount(url))
	assert.Equal(t, 2, f.Calls(url))
	e, _ = tr.cache.Peek(url)
	assert.Equal(t, "PAGE2", e.Value)
	assert.Equal(t, t0.Add(11*time.Second), e.StoredAt)
}

func TestGet_StoredAtIsAfterFetch(t *testing.T) {
	clock := newFakeClock()
	t0 := clock.Now()
	slow := fetch.FetcherFunc(func(context.Context, string) (string, error) {
		clock.Advance(4 * time.Second)
		return "slow", nil
	})
	tr := New(slow, ttl, WithClock(clock))

	_, err := tr.Get(context.Background(), "u")
	require.NoError(t, err)

	e, ok := tr.cache.Peek("u")
	require.True(t, ok)
	assert.Equal(t, t0.Add(4*time.Second), e.StoredAt)
}

func TestGet_PassesContext(t *testing.T) {
	type key struct{}
	var got any
	f := fetch.FetcherFunc(func(ctx context.Context, _ string) (string, error) {
		got = ctx.Value(key{})
		return "", ctx.Err()
	})
	tr := New(f, ttl)

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "v"))
	cancel()
	_, err := tr.Get(ctx, "u")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "v", got)
	assert.Equal(t, 1, tr.AccessCount("u"))
}

func TestGet_ConcurrentCountsNotLost(t *testing.T) {
	f := newMockFetcher()
	tr := New(f, ttl, WithClock(newFakeClock()))

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				url := fmt.Sprintf("u%d", i%3)
				_, err := tr.Get(context.Background(), url)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for _, n := range tr.Counts() {
		total += n
	}
	assert.Equal(t, workers*perWorker, total)
	for i := 0; i < 3; i++ {
		assert.GreaterOrEqual(t, f.Calls(fmt.Sprintf("u%d", i)), 1)
	}
}

func TestStats(t *testing.T) {
	f := newMockFetcher()
	f.responses["b"] = []string{"12345"}
	f.fail["c"] = errors.New("nope")
	clock := newFakeClock()
	tr := New(f, ttl, WithClock(clock))

	_, _ = tr.Get(context.Background(), "b")
	_, _ = tr.Get(context.Background(), "b")
	clock.Advance(ttl)
	_, _ = tr.Get(context.Background(), "c")
	_, _ = tr.Get(context.Background(), "a")

	stats := tr.Stats()
	require.Len(t, stats, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{stats[0].URL, stats[1].URL, stats[2].URL})

	assert.Equal(t, Stat{URL: "a", Count: 1, Cached: true, Fresh: true, StoredAt: clock.Now(), Bytes: len("body of a")}, stats[0])
	assert.Equal(t, 2, stats[1].Count)
	assert.True(t, stats[1].Cached)
	assert.False(t, stats[1].Fresh)
	assert.Equal(t, 5, stats[1].Bytes)
	assert.Equal(t, Stat{URL: "c", Count: 1}, stats[2])

	assert.Equal(t, ttl, tr.TTL())
}
