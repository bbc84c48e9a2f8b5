// Package loader reads tabular files from disk into tables.
//
// Exactly two formats are supported, chosen by file suffix (case
// insensitive): delimited text (.csv) and spreadsheets (.xlsx). The first
// row of a file is the header.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/itsmostafa/dataexplore/internal/dataset"
)

// Format identifies a supported file format.
type Format string

const (
	FormatCSV  Format = "CSV"
	FormatXLSX Format = "XLSX"
)

// ErrUnsupportedFormat is matched by every UnsupportedFormatError.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// UnsupportedFormatError reports a file suffix outside the supported set.
type UnsupportedFormatError struct {
	// Ext is the offending extension, lower-cased, including the dot.
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("Unsupported file type: %s. Only .csv and .xlsx are supported.", e.Ext)
}

// Is reports whether target is ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// Result is a successfully loaded file.
type Result struct {
	Table  *dataset.Table
	Format Format

	// Sheet is the sheet that was read; empty for CSV.
	Sheet string
}

// Detect returns the format implied by the suffix of path.
func Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", &UnsupportedFormatError{Ext: ext}
	}
}

// Load reads the file at path. sheet selects a spreadsheet sheet; when empty
// the first sheet is read. sheet is ignored for CSV files.
func Load(ctx context.Context, path, sheet string) (*Result, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		t, err := readCSV(path)
		if err != nil {
			return nil, err
		}
		return &Result{Table: t, Format: format}, nil
	default:
		t, used, err := readXLSX(path, sheet)
		if err != nil {
			return nil, err
		}
		return &Result{Table: t, Format: format, Sheet: used}, nil
	}
}

func fromRows(rows [][]string) *dataset.Table {
	if len(rows) == 0 {
		return dataset.FromStrings(nil, nil)
	}
	return dataset.FromStrings(rows[0], rows[1:])
}
