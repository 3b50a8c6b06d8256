// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides a simple in-memory, time-expiring store used to
// avoid repeated expensive operations, such as page fetches, for a fixed TTL.
package cache
