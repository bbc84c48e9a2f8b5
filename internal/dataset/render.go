package dataset

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// MaxDisplayRows is the number of rows String renders before eliding.
const MaxDisplayRows = 20

// String renders the table as a bordered text grid followed by its shape.
// Only the first MaxDisplayRows rows are shown.
func (t *Table) String() string {
	shape := fmt.Sprintf("[%d rows x %d columns]", len(t.rows), len(t.columns))
	if len(t.columns) == 0 {
		return "Empty table\n" + shape
	}

	grid := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.columns...)

	shown := min(len(t.rows), MaxDisplayRows)
	for _, row := range t.rows[:shown] {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatCell(v)
		}
		grid.Row(cells...)
	}

	var b strings.Builder
	b.WriteString(grid.String())
	b.WriteString("\n")
	if shown < len(t.rows) {
		fmt.Fprintf(&b, "... %d more rows\n", len(t.rows)-shown)
	}
	b.WriteString(shape)
	return b.String()
}

// CSV renders the whole table as comma-separated text with a header row.
// Missing cells are written as empty fields.
func (t *Table) CSV() (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(t.columns); err != nil {
		return "", err
	}
	rec := make([]string, len(t.columns))
	for _, row := range t.rows {
		for j, v := range row {
			if v == nil {
				rec[j] = ""
				continue
			}
			rec[j] = FormatCell(v)
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}
