// Package importer implements the tabular import pipeline for purchase
// order lines: parse a delimited file, validate every row independently,
// and hold the result as a session until the caller confirms or cancels.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// File-shape failures are terminal for the import attempt: the pipeline
// reports them and stays idle. Row-level problems are never surfaced this
// way — they land on the row's error list instead.
var (
	ErrUnsupportedFile = errors.New("unsupported file type, expected .csv or .xlsx")
	ErrEmptyFile       = errors.New("file is empty")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
	ErrTooFewLines     = errors.New("file must contain a header row and at least one data row")
)

// Defaults supplies the fill-in values for optional import columns.
type Defaults struct {
	UOM      string
	Currency string
	TaxRate  decimal.Decimal
}

// Parse runs phases one and two of the pipeline over raw file content and
// returns the parsed session. The header row is discarded, blank lines are
// skipped, and every remaining line becomes one candidate row addressed by
// its 1-based physical line number (the first data row is line 2). An .xlsx
// upload is read sheet-first and fed through the same row building.
func Parse(filename string, data []byte, defaults Defaults) (*Session, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyFile)
	}

	var records [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		var err error
		records, err = csvRecords(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	case ".xlsx":
		var err error
		records, err = sheetRecords(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFile)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s: %w", filename, ErrTooFewLines)
	}

	s := &Session{Filename: filename}
	for i, fields := range records {
		if i == 0 {
			// Header row, always discarded.
			continue
		}
		if isBlank(fields) {
			continue
		}
		s.rows = append(s.rows, buildRow(i+1, fields, defaults))
	}

	return s, nil
}

// csvRecords splits raw CSV bytes into one record per physical line,
// preserving blank lines so row addressing stays aligned with the file. A
// UTF-8 byte-order-mark is tolerated and stripped.
func csvRecords(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	text := strings.TrimRight(string(data), "\r\n")
	if text == "" {
		return nil, ErrEmptyFile
	}

	var records [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			records = append(records, nil)
			continue
		}
		records = append(records, splitFields(line))
	}

	return records, nil
}

// splitFields splits one CSV line on commas, honoring double quotes: a
// quote toggles the inside-field state and a comma inside a quoted span is
// literal text, not a delimiter. The quotes themselves are not part of the
// field value.
func splitFields(line string) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, field.String())

	return fields
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}
