// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"sort"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/pagectlgo/internal/tracker"
)

// statLess compares two stats on a single column. Unknown columns compare
// equal.
var statLess = map[string]func(a, b tracker.Stat) int{
	"url": func(a, b tracker.Stat) int { return strings.Compare(a.URL, b.URL) },
	"count": func(a, b tracker.Stat) int {
		return a.Count - b.Count
	},
	"size": func(a, b tracker.Stat) int {
		return a.Bytes - b.Bytes
	},
	// Older entries sort first, uncached entries last.
	"age": func(a, b tracker.Stat) int {
		switch {
		case !a.Cached && !b.Cached:
			return 0
		case !a.Cached:
			return 1
		case !b.Cached:
			return -1
		}
		return a.StoredAt.Compare(b.StoredAt)
	},
}

// SortStats orders stats in place by spec, a comma-separated list of columns
// where a leading "-" reverses that column. The sort is stable, so an empty
// spec keeps the incoming (URL) order.
func SortStats(stats []tracker.Stat, spec string) {
	if spec == "" {
		return
	}

	type key struct {
		cmp  func(a, b tracker.Stat) int
		desc bool
	}

	var keys []key
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(strings.ToLower(field))
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")

		cmp, ok := statLess[field]
		if !ok {
			log.Warnf("ignoring unknown sort key %q", field)
			continue
		}
		keys = append(keys, key{cmp: cmp, desc: desc})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		for _, k := range keys {
			c := k.cmp(stats[i], stats[j])
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
