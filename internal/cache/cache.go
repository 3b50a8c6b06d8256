// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"time"
)

// Entry is a single stored value. Entries are replaced wholesale on Store and
// are never mutated in place.
type Entry[V any] struct {
	Value V
	// StoredAt is the time the value was stored, not the time it was last read.
	StoredAt time.Time
}

// Expiring holds at most one Entry per key and decides, per lookup, whether
// that entry is still fresh. It does no locking of its own; callers that share
// an Expiring across goroutines must serialize access.
type Expiring[K comparable, V any] struct {
	ttl     time.Duration
	entries map[K]Entry[V]
}

// New returns an empty Expiring with the given TTL. ttl must be positive.
func New[K comparable, V any](ttl time.Duration) *Expiring[K, V] {
	if ttl <= 0 {
		panic("cache: ttl must be positive")
	}
	return &Expiring[K, V]{
		ttl:     ttl,
		entries: make(map[K]Entry[V]),
	}
}

// Lookup returns the stored value for key if it exists and now is strictly
// less than ttl past its StoredAt. Missing and expired keys both return
// false.
func (c *Expiring[K, V]) Lookup(key K, now time.Time) (V, bool) {
	e, ok := c.entries[key]
	if !ok || now.Sub(e.StoredAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Store inserts or replaces the entry for key.
func (c *Expiring[K, V]) Store(key K, value V, now time.Time) {
	c.entries[key] = Entry[V]{Value: value, StoredAt: now}
}

// Peek returns the raw entry for key without regard to freshness.
func (c *Expiring[K, V]) Peek(key K) (Entry[V], bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Fresh reports whether an entry stored at storedAt is still valid at now.
func (c *Expiring[K, V]) Fresh(storedAt, now time.Time) bool {
	return now.Sub(storedAt) < c.ttl
}

func (c *Expiring[K, V]) Len() int {
	return len(c.entries)
}

func (c *Expiring[K, V]) TTL() time.Duration {
	return c.ttl
}
