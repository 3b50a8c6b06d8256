// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/apex/log"
)

// ErrFetch matches every *Error via errors.Is.
var ErrFetch = errors.New("fetch failed")

// Fetcher retrieves the textual content found at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f(ctx, url).
func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// Error reports a failure to produce content for URL. StatusCode is set when
// the remote end answered with a non-success status.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: failed", e.URL)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrFetch }

// Mux routes a URL to a Fetcher by its scheme.
type Mux struct {
	routes map[string]Fetcher
}

func NewMux() *Mux {
	return &Mux{routes: make(map[string]Fetcher)}
}

// Handle registers f for scheme, replacing any previous registration.
func (m *Mux) Handle(scheme string, f Fetcher) *Mux {
	m.routes[strings.ToLower(scheme)] = f
	return m
}

// Fetch implements Fetcher.
func (m *Mux) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &Error{URL: rawURL, Err: err}
	}

	f, ok := m.routes[strings.ToLower(u.Scheme)]
	if !ok {
		return "", &Error{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	log.Debugf("fetch %s via %T", rawURL, f)
	return f.Fetch(ctx, rawURL)
}
