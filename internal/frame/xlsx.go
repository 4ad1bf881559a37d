package frame

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions configures spreadsheet parsing.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	MaxRows    int    // cap on data rows loaded (0 = unlimited)
}

// OpenXLSX loads an XLSX sheet into a frame. The first row is the header.
// Venue books are distributed as spreadsheets as often as delimited text.
func OpenXLSX(path string, opts XLSXOptions) (*Frame, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, eris.Wrapf(ErrMissingInput, "frame: %s", path)
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "frame: open xlsx %s", path)
	}

	sheet, err := pickSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Wrapf(ErrEmptyResult, "frame: xlsx sheet %q has no rows", sheet.Name)
	}

	header := rowToStrings(sheet.Rows[0])
	fr, err := New(header)
	if err != nil {
		return nil, err
	}

	for _, row := range sheet.Rows[1:] {
		if opts.MaxRows > 0 && fr.Len() >= opts.MaxRows {
			break
		}
		cells := rowToStrings(row)
		if len(cells) > len(header) {
			cells = cells[:len(header)]
		}
		if err := fr.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	return fr, nil
}

func pickSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("frame: xlsx sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("frame: xlsx sheet index %d out of range (file has %d sheets)",
			opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
