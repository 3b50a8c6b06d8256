// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// PAGECTL_LOG env variable. Output goes to stderr so that page content on
// stdout is never interleaved with log lines.
func InitLogger() {
	level, err := log.ParseLevel(strings.ToLower(os.Getenv("PAGECTL_LOG")))
	if err != nil {
		level = log.ErrorLevel
	}
	log.SetHandler(NewCustomHandler(os.Stderr))
	log.SetLevel(level)
}

// CustomHandler formats log messages as one line each.
type CustomHandler struct {
	mu sync.Mutex
	w  io.Writer
}

func NewCustomHandler(w io.Writer) *CustomHandler {
	return &CustomHandler{w: w}
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	level := strings.ToUpper(e.Level.String())

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", timestamp.Format("2006-01-02 15:04:05"), level, e.Message)

	names := e.Fields.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}
