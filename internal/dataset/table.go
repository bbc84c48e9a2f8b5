// Package dataset implements the immutable tabular value held by a session.
//
// A Table is row-major with ordered, unique column names. Cells are nil
// (missing), float64, string or bool. Every operation returns a new Table;
// the receiver is never modified, so a table handed to a script can be read
// freely without affecting the copy held by the session.
package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Sentinel errors for table operations.
var (
	// ErrUnknownColumn is returned when an operation names a column the
	// table does not have.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrShape is returned when row widths do not match the header.
	ErrShape = errors.New("row width does not match columns")
)

// Table is an immutable tabular dataset.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

// New builds a table from columns and rows. Cells are normalized with
// Normalize. Column names must be unique and every row must have exactly
// len(columns) cells.
func New(columns []string, rows [][]any) (*Table, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := idx[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		idx[c] = i
	}

	data := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrShape, i, len(row), len(columns))
		}
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = Normalize(v)
		}
		data[i] = cells
	}

	return &Table{
		columns: append([]string(nil), columns...),
		index:   idx,
		rows:    data,
	}, nil
}

// build wraps already-normalized data without copying. Callers must not
// retain references to cols or rows.
func build(cols []string, rows [][]any) *Table {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return &Table{columns: cols, index: idx, rows: rows}
}

// FromStrings builds a table from a header row and raw string records, as
// read from a delimited file or a spreadsheet. Header names are normalized
// with NormalizeHeader. Short records are padded with missing cells; records
// longer than the header get generated column names. A column whose every
// non-empty cell parses as a number becomes numeric; empty cells are nil.
func FromStrings(header []string, records [][]string) *Table {
	width := len(header)
	for _, rec := range records {
		width = max(width, len(rec))
	}
	full := make([]string, width)
	copy(full, header)
	cols := NormalizeHeader(full)

	numeric := make([]bool, width)
	for j := range width {
		numeric[j] = true
		for _, rec := range records {
			if j >= len(rec) {
				continue
			}
			s := strings.TrimSpace(rec[j])
			if s == "" {
				continue
			}
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				numeric[j] = false
				break
			}
		}
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, width)
		for j := range width {
			if j >= len(rec) {
				continue
			}
			s := rec[j]
			trimmed := strings.TrimSpace(s)
			switch {
			case trimmed == "":
				row[j] = nil
			case numeric[j]:
				f, _ := strconv.ParseFloat(trimmed, 64)
				row[j] = f
			default:
				row[j] = s
			}
		}
		rows[i] = row
	}

	return build(cols, rows)
}

// NormalizeHeader trims and NFC-normalizes column names, names blank
// columns column_<i> (1-based) and suffixes duplicates with _2, _3, ...
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := norm.NFC.String(strings.TrimSpace(h))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if used[name] {
			for k := 2; ; k++ {
				candidate := fmt.Sprintf("%s_%d", name, k)
				if !used[candidate] {
					name = candidate
					break
				}
			}
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// FromRecords builds a table from a slice of records. Columns named in order
// come first; other keys follow in the order records introduce them (sorted
// within a record). A record missing a column gets a nil cell.
func FromRecords(records []map[string]any, order ...string) (*Table, error) {
	var cols []string
	seen := make(map[string]bool)
	for _, c := range order {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, rec := range records {
		for _, k := range sortedKeys(rec) {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = rec[c]
		}
		rows[i] = row
	}
	return New(cols, rows)
}

// FromColumns builds a table from named columns of equal length. Columns are
// placed in the given order, then any remaining names in sorted order.
func FromColumns(data map[string][]any, order ...string) (*Table, error) {
	var cols []string
	seen := make(map[string]bool)
	for _, c := range order {
		if _, ok := data[c]; ok && !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	keys := make(map[string]any, len(data))
	for k := range data {
		keys[k] = nil
	}
	for _, k := range sortedKeys(keys) {
		if !seen[k] {
			seen[k] = true
			cols = append(cols, k)
		}
	}

	n := -1
	for _, c := range cols {
		if n >= 0 && len(data[c]) != n {
			return nil, fmt.Errorf("%w: column %q has %d values, want %d", ErrShape, c, len(data[c]), n)
		}
		n = len(data[c])
	}

	rows := make([][]any, max(n, 0))
	for i := range rows {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = data[c][i]
		}
		rows[i] = row
	}
	return New(cols, rows)
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.columns)
}

// HasColumn reports whether the table has a column named name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) col(name string) (int, error) {
	j, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return j, nil
}

// Column returns a copy of the values in the named column.
func (t *Table) Column(name string) ([]any, error) {
	j, err := t.col(name)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, nil
}

// Row returns row i as a record. Negative indexes count from the end.
func (t *Table) Row(i int) (map[string]any, error) {
	if i < 0 {
		i += len(t.rows)
	}
	if i < 0 || i >= len(t.rows) {
		return nil, fmt.Errorf("row %d out of range [0, %d)", i, len(t.rows))
	}
	return t.record(i), nil
}

func (t *Table) record(i int) map[string]any {
	rec := make(map[string]any, len(t.columns))
	for j, c := range t.columns {
		rec[c] = t.rows[i][j]
	}
	return rec
}

// Records returns every row as a record.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.rows))
	for i := range t.rows {
		out[i] = t.record(i)
	}
	return out
}

// Equal reports whether both tables have the same columns and cells.
func (t *Table) Equal(o *Table) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || len(t.columns) != len(o.columns) || len(t.rows) != len(o.rows) {
		return false
	}
	for i, c := range t.columns {
		if o.columns[i] != c {
			return false
		}
	}
	for i, row := range t.rows {
		for j, v := range row {
			if !cellEqual(v, o.rows[i][j]) {
				return false
			}
		}
	}
	return true
}
