package massbalance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrColumnNotFound is returned when a requested column is missing from the header
	ErrColumnNotFound = errors.New("massbalance: column not found")
	// ErrDuplicateYear is returned when a year appears in more than one complete row
	ErrDuplicateYear = errors.New("massbalance: duplicate year")
)

// missingTokens are the cell values read as missing, matching the pandas defaults
var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw cell counts as a missing value
func IsMissing(cell string) bool {
	_, ok := missingTokens[strings.TrimSpace(cell)]
	return ok
}

// ReadOptions describes how to pull a series out of a delimited file
type ReadOptions struct {
	Delimiter   rune    // Field separator, ';' when zero
	YearColumn  string  // Header of the year column
	ValueColumn string  // Header (or unique header prefix) of the mass-balance column
	Divisor     float64 // Raw values are divided by this, 1 when zero
	Encoding    string  // utf-8 (default), latin1 or windows-1252
}

// Table is the raw header and rows of a delimited file
type Table struct {
	Header []string
	Rows   [][]string
}

// DropIncomplete returns a table holding only the rows in which no cell is
// missing. Rows shorter than the header count as incomplete.
func (t Table) DropIncomplete() Table {
	out := Table{Header: t.Header}
	for _, row := range t.Rows {
		if len(row) < len(t.Header) {
			continue
		}
		complete := true
		for _, cell := range row {
			if IsMissing(cell) {
				complete = false
				break
			}
		}
		if complete {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Column returns the index of the header equal to name. If no header is
// equal, a single header starting with name is accepted; this covers unit
// suffixes that were mangled by a wrong text encoding.
func (t Table) Column(name string) (int, error) {
	name = strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}

	match := -1
	for i, h := range t.Header {
		if strings.HasPrefix(strings.TrimSpace(h), name) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %q matches both %q and %q", ErrColumnNotFound, name, t.Header[match], h)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %q (have %q)", ErrColumnNotFound, name, t.Header)
	}
	return match, nil
}

// LoadFile reads the series from the file at path
func LoadFile(path string, opts ReadOptions) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mass-balance file: %w", err)
	}
	defer f.Close()

	s, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadCSV parses a delimited table, drops incomplete rows and returns the
// year-ordered series of scaled values
func ReadCSV(r io.Reader, opts ReadOptions) (Series, error) {
	table, err := ReadTable(r, opts)
	if err != nil {
		return nil, err
	}
	return table.DropIncomplete().Series(opts)
}

// ReadTable parses a delimited file with a header row
func ReadTable(r io.Reader, opts ReadOptions) (Table, error) {
	dec, err := decoder(opts.Encoding)
	if err != nil {
		return Table{}, err
	}

	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.Comma = opts.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to parse delimited file: %w", err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("%w: file has no header row", ErrColumnNotFound)
	}

	return Table{Header: records[0], Rows: records[1:]}, nil
}

// Series converts the year and value columns of every row into a series.
// Any cell that does not parse is an error; call DropIncomplete first to
// discard rows with missing values.
func (t Table) Series(opts ReadOptions) (Series, error) {
	yearCol, err := t.Column(opts.YearColumn)
	if err != nil {
		return nil, err
	}
	valueCol, err := t.Column(opts.ValueColumn)
	if err != nil {
		return nil, err
	}

	divisor := opts.Divisor
	if divisor == 0 {
		divisor = 1
	}

	series := make(Series, 0, len(t.Rows))
	seen := make(map[int]struct{}, len(t.Rows))
	for i, row := range t.Rows {
		// Header is line 1
		line := i + 2

		if len(row) <= yearCol || len(row) <= valueCol {
			return nil, fmt.Errorf("row %d: has %d fields, need %d", line, len(row), max(yearCol, valueCol)+1)
		}

		year, err := parseYear(row[yearCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if _, dup := seen[year]; dup {
			return nil, fmt.Errorf("%w: %d (row %d)", ErrDuplicateYear, year, line)
		}
		seen[year] = struct{}{}

		raw, err := strconv.ParseFloat(strings.TrimSpace(row[valueCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid mass balance %q: %w", line, row[valueCol], err)
		}

		series = append(series, Observation{Year: year, Value: raw / divisor})
	}

	series.sortByYear()
	return series, nil
}

// parseYear accepts integer years, also when written as "1952.0"
func parseYear(cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	if y, err := strconv.Atoi(cell); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid year %q", cell)
	}
	return int(f), nil
}

func decoder(name string) (transform.Transformer, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "latin1", "latin-1", "iso-8859-1":
		enc = charmap.ISO8859_1
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	default:
		return nil, fmt.Errorf("unsupported text encoding %q", name)
	}
	return enc.NewDecoder(), nil
}
