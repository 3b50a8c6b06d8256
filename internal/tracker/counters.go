// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tracker

// Counters tracks how many times each key has been requested. Counts only go
// up and are never reset.
type Counters map[string]int

// Incr bumps the count for key, starting at 1, and returns the new count.
func (c Counters) Incr(key string) int {
	c[key]++
	return c[key]
}

// Get returns the count for key, or 0 if it has never been seen.
func (c Counters) Get(key string) int {
	return c[key]
}

func (c Counters) snapshot() map[string]int {
	out := make(map[string]int, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
