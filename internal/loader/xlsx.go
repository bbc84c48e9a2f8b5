package loader

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/itsmostafa/dataexplore/internal/dataset"
)

// readXLSX reads one sheet of a workbook, returning the table and the name
// of the sheet read. Cell values are read raw, without number formatting.
func readXLSX(path, sheet string) (*dataset.Table, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, "", fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", err
	}
	return fromRows(rows), sheet, nil
}
