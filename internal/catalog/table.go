// Package catalog ingests the course catalog CSV and turns each row into a
// cleaned Course ready for vectorization.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// RequiredColumns lists the columns every catalog file must carry.
var RequiredColumns = []string{
	"title",
	"description",
	"skill_tags",
	"duration_weeks",
	"effort_hours",
	"level",
	"price",
	"rating",
	"provider",
	"url",
}

// SchemaError reports required columns absent from a catalog.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ErrNoHeader is returned when a catalog file has no header row.
var ErrNoHeader = errors.New("catalog has no header row")

// Table is a row-oriented view of the raw catalog. Cells are kept as text.
type Table struct {
	Header []string
	Rows   [][]string

	cols map[string]int
}

// NewTable builds a Table from a header and rows. Rows shorter than the
// header are padded with empty cells.
func NewTable(header []string, rows [][]string) Table {
	t := Table{Header: make([]string, len(header)), cols: make(map[string]int, len(header))}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		t.Header[i] = name
		if _, dup := t.cols[name]; !dup {
			t.cols[name] = i
		}
	}
	t.Rows = make([][]string, len(rows))
	for i, r := range rows {
		if len(r) < len(header) {
			padded := make([]string, len(header))
			copy(padded, r)
			r = padded
		}
		t.Rows[i] = r
	}
	return t
}

// Has reports whether the table has column name.
func (t Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Cell returns the value of column name in row i, or "" when absent.
func (t Table) Cell(i int, name string) string {
	c, ok := t.cols[name]
	if !ok || i < 0 || i >= len(t.Rows) || c >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][c]
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Validate returns a *SchemaError when any required column is absent.
func (t Table) Validate() error {
	var missing []string
	for _, c := range RequiredColumns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &SchemaError{Missing: missing}
}

// ParseCSV reads a catalog table from r. The first record is the header.
func ParseCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return Table{}, ErrNoHeader
	}
	if err != nil {
		return Table{}, fmt.Errorf("cannot read catalog header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("cannot read catalog record %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return NewTable(header, rows), nil
}

// ReadCSV opens path and parses it with ParseCSV.
func ReadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("cannot open catalog %s: %w", path, err)
	}
	defer f.Close()

	t, err := ParseCSV(f)
	if err != nil {
		return Table{}, fmt.Errorf("cannot read catalog %s: %w", path, err)
	}
	return t, nil
}
