// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package fetch implements the capabilities that retrieve page content by URL.
// Fetchers are opaque to callers: they either return the text of the page or
// an *Error.
package fetch
