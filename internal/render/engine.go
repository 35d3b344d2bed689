// Package render turns report configurations and stock records into the
// HTML, print and flipbook output documents.
package render

import (
	"sort"
	"strings"
	"time"

	"github.com/finstrategist/stockreport/internal/stockdata"
)

// Meta carries the report-level substitution values.
type Meta struct {
	Title  string
	Author string
}

// Engine resolves bracketed shortcode tokens against a stock record and
// report metadata. Unresolved tokens are left verbatim.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an engine using the wall clock for [Current Date].
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineAt returns an engine with a fixed clock.
func NewEngineAt(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Substitute replaces every recognized token in the template. When a
// record is supplied each of its columns becomes a token, [Chart]
// expands to the chart widget for the record's Ticker, and
// [Target Price] falls back to the Price column when the source has no
// Target Price column. Replacement runs longest-token-first in a single
// non-overlapping pass so tokens that contain other tokens' names are
// never clipped.
func (e *Engine) Substitute(template string, record *stockdata.Record, meta Meta) string {
	type pair struct{ token, value string }

	pairs := []pair{
		{"[Current Date]", e.now().Format("2006-01-02 15:04:05")},
		{"[Report Title]", meta.Title},
		{"[Author]", meta.Author},
	}

	if record != nil {
		for _, col := range record.Columns() {
			pairs = append(pairs, pair{"[" + col + "]", record.Get(col)})
		}
		pairs = append(pairs, pair{"[Chart]", ChartWidget(record.Get("Ticker"))})
		if !record.Has("Target Price") {
			pairs = append(pairs, pair{"[Target Price]", record.Get("Price")})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return len(pairs[i].token) > len(pairs[j].token)
	})

	oldnew := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		oldnew = append(oldnew, p.token, p.value)
	}
	return strings.NewReplacer(oldnew...).Replace(template)
}
