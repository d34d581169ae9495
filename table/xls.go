package table

import (
	"fmt"
	"io"

	"github.com/carbocation/gsmerge"
	"github.com/extrame/xls"
)

// ReadXLS reads the first sheet of an Excel workbook, as GenomeScan sometimes
// delivers its samplesheet. The first row is the header.
func ReadXLS(r io.ReadSeeker, charset string) (*Table, error) {
	if charset == "" {
		charset = "utf-8"
	}

	spreadsheet, err := xls.OpenReader(r, charset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gsmerge.ErrFormat, err)
	}
	if spreadsheet.NumSheets() < 1 {
		return nil, fmt.Errorf("%w: workbook has no sheets", gsmerge.ErrFormat)
	}

	sheet := spreadsheet.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: first sheet of the workbook is nil", gsmerge.ErrFormat)
	}

	var t *Table
	for rowID := 0; rowID <= int(sheet.MaxRow); rowID++ {
		// Like blank lines in a delimited file, rows without cells are skipped
		row := sheetRow(sheet, rowID)
		if row == nil {
			continue
		}

		cells := make([]string, 0, row.LastCol()+1)
		for colID := 0; colID <= row.LastCol(); colID++ {
			cells = append(cells, row.Col(colID))
		}

		if t == nil {
			header := trimTrailingEmpty(cells)
			if len(header) == 0 {
				return nil, fmt.Errorf("%w: empty header row", gsmerge.ErrFormat)
			}
			t = New(header)
			continue
		}

		cells = trimTrailingEmpty(cells)
		if len(cells) > len(t.Header) {
			return nil, fmt.Errorf("%w: row %d has %d fields but the header has %d", gsmerge.ErrFormat, rowID, len(cells), len(t.Header))
		}
		t.Rows = append(t.Rows, pad(cells, len(t.Header)))
	}

	if t == nil {
		return nil, fmt.Errorf("%w: no header row", gsmerge.ErrFormat)
	}

	return t, nil
}

// sheetRow returns nil for a row that holds no cells. WorkSheet.Row panics on
// those.
func sheetRow(sheet *xls.WorkSheet, rowID int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()

	return sheet.Row(rowID)
}

// Excel reports formatted-but-empty cells past the last real value
func trimTrailingEmpty(cells []string) []string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}

	return cells[:end]
}
