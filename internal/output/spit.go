// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v2"

	"github.com/staranto/pagectlgo/internal/config"
	"github.com/staranto/pagectlgo/internal/tracker"
)

// ErrNoMatch is returned by Content when a query finds nothing in the page.
var ErrNoMatch = errors.New("query matched nothing")

// Options control how results are rendered.
type Options struct {
	// Format is one of text, json, yaml or raw.
	Format string
	Color  bool
	Titles bool
	// Sort is a comma-separated list of stat columns, each optionally
	// prefixed with "-" for descending order.
	Sort string
	// Now anchors relative ages in text output. Zero means time.Now().
	Now time.Time
}

// Content writes a fetched page to w. With a non-empty query the page is
// treated as JSON and only the gjson match is written; text/raw formats
// print strings unquoted, json/yaml print the raw JSON fragment.
func Content(w io.Writer, body string, query string, format string) error {
	if query == "" {
		_, err := io.WriteString(w, body)
		if err == nil && (len(body) == 0 || body[len(body)-1] != '\n') {
			_, err = io.WriteString(w, "\n")
		}
		return err
	}

	if !gjson.Valid(body) {
		return fmt.Errorf("cannot query %q: page is not valid JSON", query)
	}

	result := gjson.Get(body, query)
	if !result.Exists() {
		return fmt.Errorf("%w: %s", ErrNoMatch, query)
	}
	log.Debugf("query %s matched %s", query, result.Type)

	switch format {
	case "json", "yaml":
		_, err := fmt.Fprintln(w, result.Raw)
		return err
	default:
		_, err := fmt.Fprintln(w, result.String())
		return err
	}
}

// Stats renders access statistics in the requested format.
func Stats(w io.Writer, stats []tracker.Stat, opts Options) error {
	SortStats(stats, opts.Sort)

	switch opts.Format {
	case "json", "raw":
		jsonOutput, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonOutput))
		return err
	case "yaml":
		yamlOutput, err := yaml.Marshal(stats)
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		_, err = w.Write(yamlOutput)
		return err
	default:
		TableWriter(stats, opts, w)
		return nil
	}
}

var statHeaders = []string{"url", "count", "state", "age", "size"}

// statRow flattens a Stat into display cells.
func statRow(s tracker.Stat, now time.Time) []string {
	state, age, size := "-", "-", "-"
	if s.Cached {
		state = "stale"
		if s.Fresh {
			state = "fresh"
		}
		age = humanize.RelTime(s.StoredAt, now, "ago", "from now")
		size = humanize.Bytes(uint64(s.Bytes))
	}
	return []string{s.URL, strconv.Itoa(s.Count), state, age, size}
}

// TableWriter renders stats in a tabular form honoring color, titles and
// padding options.
func TableWriter(stats []tracker.Stat, opts Options, w io.Writer) {
	if len(stats) == 0 {
		return
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, statRow(s, now))
	}

	pad, _ := config.GetInt("padding", 2)

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(statHeaders...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}
