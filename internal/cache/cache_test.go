// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestLookup_Empty(t *testing.T) {
	c := New[string, string](10 * time.Second)
	v, ok := c.Lookup("http://example.com/x", epoch)
	assert.False(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, 0, c.Len())
}

func TestLookup_Freshness(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{name: "same instant", elapsed: 0, want: true},
		{name: "half ttl", elapsed: 5 * time.Second, want: true},
		{name: "just before ttl", elapsed: 10*time.Second - time.Nanosecond, want: true},
		{name: "exactly ttl", elapsed: 10 * time.Second, want: false},
		{name: "past ttl", elapsed: 11 * time.Second, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New[string, string](10 * time.Second)
			c.Store("k", "PAGE1", epoch)

			v, ok := c.Lookup("k", epoch.Add(tt.elapsed))
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, "PAGE1", v)
			} else {
				assert.Equal(t, "", v)
			}
		})
	}
}

func TestStore_Replaces(t *testing.T) {
	c := New[string, string](10 * time.Second)
	c.Store("k", "PAGE1", epoch)
	c.Store("k", "PAGE2", epoch.Add(11*time.Second))

	assert.Equal(t, 1, c.Len())

	e, ok := c.Peek("k")
	assert.True(t, ok)
	assert.Equal(t, "PAGE2", e.Value)
	assert.Equal(t, epoch.Add(11*time.Second), e.StoredAt)

	v, ok := c.Lookup("k", epoch.Add(15*time.Second))
	assert.True(t, ok)
	assert.Equal(t, "PAGE2", v)
}

func TestPeek_IgnoresFreshness(t *testing.T) {
	c := New[string, []byte](time.Second)
	c.Store("k", []byte("x"), epoch)

	_, ok := c.Lookup("k", epoch.Add(time.Hour))
	assert.False(t, ok)

	e, ok := c.Peek("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("x"), e.Value)
	assert.False(t, c.Fresh(e.StoredAt, epoch.Add(time.Hour)))
}

func TestIndependentKeys(t *testing.T) {
	c := New[string, string](10 * time.Second)
	c.Store("a", "A", epoch)
	c.Store("b", "B", epoch.Add(5*time.Second))

	_, ok := c.Lookup("a", epoch.Add(12*time.Second))
	assert.False(t, ok)

	v, ok := c.Lookup("b", epoch.Add(12*time.Second))
	assert.True(t, ok)
	assert.Equal(t, "B", v)
}

func TestNew_NonPositiveTTLPanics(t *testing.T) {
	assert.Panics(t, func() { New[string, string](0) })
	assert.Panics(t, func() { New[string, string](-time.Second) })
	assert.Equal(t, 3*time.Second, New[int, int](3*time.Second).TTL())
}
