package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func writeWorkbook(t *testing.T, sheets map[string][][]any, order ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ext  string
	}{
		{path: "a.csv", want: FormatCSV},
		{path: "/tmp/A.CSV", want: FormatCSV},
		{path: "book.xlsx", want: FormatXLSX},
		{path: "book.Xlsx", want: FormatXLSX},
		{path: "data.json", ext: ".json"},
		{path: "legacy.xls", ext: ".xls"},
		{path: "noext", ext: ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Detect(tt.path)
			if tt.want == "" {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				var ufe *UnsupportedFormatError
				require.ErrorAs(t, err, &ufe)
				assert.Equal(t, tt.ext, ufe.Ext)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnsupportedFormatError_Message(t *testing.T) {
	err := &UnsupportedFormatError{Ext: ".txt"}
	assert.Equal(t, "Unsupported file type: .txt. Only .csv and .xlsx are supported.", err.Error())
}

func TestLoad_CSV(t *testing.T) {
	path := writeFile(t, "people.csv", []byte("name,age\nann,31\nbob,\n"))

	res, err := Load(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, res.Format)
	assert.Empty(t, res.Sheet)
	assert.Equal(t, []string{"name", "age"}, res.Table.Columns())
	assert.Equal(t, 2, res.Table.Len())

	ages, err := res.Table.Column("age")
	require.NoError(t, err)
	assert.Equal(t, []any{31.0, nil}, ages)
}

func TestLoad_CSVStripsByteOrderMark(t *testing.T) {
	path := writeFile(t, "bom.csv", []byte("\xef\xbb\xbfid,v\n1,2\n"))

	res, err := Load(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "v"}, res.Table.Columns())
}

func TestLoad_CSVQuotedFields(t *testing.T) {
	path := writeFile(t, "q.csv", []byte("a,b\n\"x, y\",\"line1\nline2\"\n"))

	res, err := Load(context.Background(), path, "")
	require.NoError(t, err)
	rec, err := res.Table.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "x, y", rec["a"])
	assert.Equal(t, "line1\nline2", rec["b"])
}

func TestLoad_CSVErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := Load(context.Background(), writeFile(t, "empty.csv", nil), "")
		assert.ErrorIs(t, err, errNoColumns)
	})

	t.Run("malformed quotes", func(t *testing.T) {
		_, err := Load(context.Background(), writeFile(t, "bad.csv", []byte("a\n\"unterminated\n")), "")
		assert.Error(t, err)
	})
}

func TestLoad_Unsupported(t *testing.T) {
	_, err := Load(context.Background(), "whatever.parquet", "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, writeFile(t, "a.csv", []byte("a\n1\n")), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_XLSX(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		"Sales": {
			{"region", "units"},
			{"north", 12},
			{"south", 7},
		},
		"Costs": {
			{"item", "cost"},
			{"rent", 1000.5},
		},
	}, "Sales", "Costs")

	t.Run("first sheet by default", func(t *testing.T) {
		res, err := Load(context.Background(), path, "")
		require.NoError(t, err)
		assert.Equal(t, FormatXLSX, res.Format)
		assert.Equal(t, "Sales", res.Sheet)
		assert.Equal(t, []string{"region", "units"}, res.Table.Columns())

		units, err := res.Table.Column("units")
		require.NoError(t, err)
		assert.Equal(t, []any{12.0, 7.0}, units)
	})

	t.Run("named sheet", func(t *testing.T) {
		res, err := Load(context.Background(), path, "Costs")
		require.NoError(t, err)
		assert.Equal(t, "Costs", res.Sheet)

		cost, err := res.Table.Column("cost")
		require.NoError(t, err)
		assert.Equal(t, []any{1000.5}, cost)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		_, err := Load(context.Background(), path, "Missing")
		assert.Error(t, err)
	})
}

func TestLoad_XLSXCorrupt(t *testing.T) {
	_, err := Load(context.Background(), writeFile(t, "broken.xlsx", []byte("not a zip")), "")
	assert.Error(t, err)
}
