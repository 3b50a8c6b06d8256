// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package tracker layers per-URL access counting and TTL caching over a
// fetch.Fetcher.
package tracker
