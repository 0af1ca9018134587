// Package workbook reads the financial workbook straight from an .xlsx file.
package workbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"painel/internal/core"
	ports "painel/internal/sheets"
)

// Reader loads every sheet of an .xlsx workbook.
type Reader struct {
	path string
}

var _ ports.SnapshotReader = (*Reader)(nil)

func New(path string) *Reader {
	return &Reader{path: path}
}

// ReadSnapshot opens the workbook and converts each sheet, in workbook order.
// The first row of each sheet is the header.
func (r *Reader) ReadSnapshot(ctx context.Context) (core.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return core.Snapshot{}, err
	}
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets []core.Sheet
	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return core.Snapshot{}, err
		}
		grid, err := readGrid(f, name)
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, ports.FromGrid(name, grid))
	}
	return core.Snapshot{Sheets: sheets, Summary: ports.Summarize(sheets)}, nil
}

func readGrid(f *excelize.File, sheet string) ([][]any, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	grid := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, raw := range row {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			typ, err := f.GetCellType(sheet, name)
			if err != nil {
				return nil, err
			}
			cells[j] = convert(typ, raw)
		}
		grid[i] = cells
	}
	return grid, nil
}

// convert maps a raw cell onto the grid cell types. Text cells stay text even
// when they look numeric, so codes like "0042" keep their zeros.
func convert(typ excelize.CellType, raw string) any {
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return raw
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
		return d
	}
	return raw
}
