// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tracker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/staranto/pagectlgo/internal/cache"
	"github.com/staranto/pagectlgo/internal/fetch"
)

// Tracker counts every request for a URL and serves page content from an
// expiring cache, falling through to its Fetcher on a miss.
//
// The mutex guards the counters and the cache but is released while the
// Fetcher runs. Two concurrent misses for the same URL will therefore both
// fetch, and the last one to finish wins the cache slot.
type Tracker struct {
	mu       sync.Mutex
	fetcher  fetch.Fetcher
	clock    Clock
	cache    *cache.Expiring[string, string]
	counters Counters
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock replaces the system clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// New returns a Tracker that caches results from f for ttl.
func New(f fetch.Fetcher, ttl time.Duration, opts ...Option) *Tracker {
	t := &Tracker{
		fetcher:  f,
		clock:    SystemClock{},
		cache:    cache.New[string, string](ttl),
		counters: Counters{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get returns the content for url. The access count is bumped before anything
// else, so cache hits and failed fetches count the same as successful ones.
// A failed fetch stores nothing.
func (t *Tracker) Get(ctx context.Context, url string) (string, error) {
	t.mu.Lock()
	n := t.counters.Incr(url)
	value, ok := t.cache.Lookup(url, t.clock.Now())
	t.mu.Unlock()

	if ok {
		log.Debugf("cache hit: %s (count=%d)", url, n)
		return value, nil
	}
	log.Debugf("cache miss: %s (count=%d)", url, n)

	value, err := t.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", url, err)
	}

	t.mu.Lock()
	t.cache.Store(url, value, t.clock.Now())
	t.mu.Unlock()

	return value, nil
}

// AccessCount returns how many times url has been requested, 0 if never.
func (t *Tracker) AccessCount(url string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters.Get(url)
}

// Counts returns a copy of every access count.
func (t *Tracker) Counts() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters.snapshot()
}

func (t *Tracker) TTL() time.Duration {
	return t.cache.TTL()
}

// Stat summarizes one URL for reporting.
type Stat struct {
	URL      string    `json:"url" yaml:"url"`
	Count    int       `json:"count" yaml:"count"`
	Cached   bool      `json:"cached" yaml:"cached"`
	Fresh    bool      `json:"fresh" yaml:"fresh"`
	StoredAt time.Time `json:"stored_at,omitempty" yaml:"stored_at,omitempty"`
	Bytes    int       `json:"bytes" yaml:"bytes"`
}

// Stats reports every URL that has been requested, sorted by URL.
func (t *Tracker) Stats() []Stat {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	stats := make([]Stat, 0, len(t.counters))
	for url, count := range t.counters {
		s := Stat{URL: url, Count: count}
		if e, ok := t.cache.Peek(url); ok {
			s.Cached = true
			s.Fresh = t.cache.Fresh(e.StoredAt, now)
			s.StoredAt = e.StoredAt
			s.Bytes = len(e.Value)
		}
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].URL < stats[j].URL })
	return stats
}
