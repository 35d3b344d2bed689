// Package stockdata reads delimited stock data files into ordered records.
package stockdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrSourceNotFound reports a missing data source file.
var ErrSourceNotFound = errors.New("data source file not found")

// Record is one data row keyed by header name. Column order is preserved
// from the source file; keys are matched exactly as they appear in the
// header row after BOM stripping and trimming.
type Record struct {
	columns []string
	values  map[string]string
}

// Get returns the value for a column, or empty string when absent.
func (r Record) Get(column string) string {
	return r.values[column]
}

// Has reports whether the record carries the given column.
func (r Record) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Columns returns the header names in source order.
func (r Record) Columns() []string {
	return r.columns
}

// Loader parses CSV sources into records, caching results per absolute
// path. A Loader is scoped to a single generation call so that the three
// render targets share one file read; it must not be reused across
// requests.
type Loader struct {
	cache map[string][]Record
}

// NewLoader returns an empty per-call loader.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string][]Record)}
}

// Load reads the source file and returns its records in file order,
// truncated to limit when limit is positive. Rows whose field count does
// not match the header row are dropped silently.
func (l *Loader) Load(path string, limit int) ([]Record, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	records, ok := l.cache[abs]
	if !ok {
		records, err = parseFile(abs)
		if err != nil {
			return nil, err
		}
		l.cache[abs] = records
	}

	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

func parseFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("open data source: %w", err)
	}
	defer func() { _ = f.Close() }()

	// Tolerate UTF-8/UTF-16 byte order marks from spreadsheet exports.
	decoder := unicode.BOMOverride(encoding.Nop.NewDecoder())
	reader := csv.NewReader(transform.NewReader(f, decoder))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headerRow, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}

	headers := make([]string, len(headerRow))
	for i, h := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("read data row: %w", err)
		}
		if len(row) != len(headers) {
			continue
		}
		values := make(map[string]string, len(headers))
		for i, h := range headers {
			values[h] = row[i]
		}
		records = append(records, Record{columns: headers, values: values})
	}
	return records, nil
}

// NewRecord builds a record from parallel column/value slices. Intended
// for tests and callers that synthesize rows outside a CSV source.
func NewRecord(columns, values []string) Record {
	m := make(map[string]string, len(columns))
	for i, c := range columns {
		if i < len(values) {
			m[c] = values[i]
		}
	}
	return Record{columns: columns, values: m}
}
