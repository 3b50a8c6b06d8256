// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
)

// HTTP fetches http and https URLs with a GET request. Any non-2xx response is
// a failure.
type HTTP struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// HTTPOption customizes an HTTP fetcher.
type HTTPOption func(*HTTP)

// WithClient replaces the default pooled client.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// WithTimeout bounds each request. Zero means no bound beyond ctx.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) { h.timeout = d }
}

func WithUserAgent(ua string) HTTPOption {
	return func(h *HTTP) { h.userAgent = ua }
}

func NewHTTP(opts ...HTTPOption) *HTTP {
	h := &HTTP{
		client:    cleanhttp.DefaultPooledClient(),
		userAgent: "pagectl",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Fetch implements Fetcher.
func (h *HTTP) Fetch(ctx context.Context, url string) (string, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &Error{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return "", &Error{URL: url, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{URL: url, StatusCode: resp.StatusCode}
	}

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return "", &Error{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	log.WithFields(log.Fields{
		"status":  resp.StatusCode,
		"bytes":   doc.Len(),
		"elapsed": time.Since(start).String(),
	}).Debugf("fetched %s", url)

	return doc.String(), nil
}
