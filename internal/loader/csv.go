package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/itsmostafa/dataexplore/internal/dataset"
)

var errNoColumns = errors.New("no columns to parse from file")

// readCSV parses a comma-separated file. A UTF-8 or UTF-16 byte order mark
// is honored and stripped; ragged rows are allowed.
func readCSV(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	r := csv.NewReader(decoded)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, errNoColumns
	}
	return fromRows(rows), nil
}
