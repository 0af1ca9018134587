package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"painel/internal/core"
	"painel/internal/rows"
)

const defaultSheet = "Dados"

var columnWidths = map[string]float64{"A": 14, "B": 48, "C": 16, "D": 18, "E": 60}

// WriteRowsXLSX writes the normalized rows of recs as a single-sheet workbook.
func WriteRowsXLSX(w io.Writer, recs []core.Record, sheet string) error {
	if len(recs) == 0 {
		return ErrNothingToExport
	}
	if sheet == "" {
		sheet = defaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(RowHeaders))
	for i, h := range RowHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range recs {
		row := rows.Normalize(rec)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{row.Line, row.Description, row.Value.InexactFloat64(), row.Date, row.Notes}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	numFmt := "#,##0.00"
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}
	if err := f.SetColStyle(sheet, "C", money); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}
	for col, width := range columnWidths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
