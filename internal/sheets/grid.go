package sheets

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"painel/internal/core"
)

// ColumnKey is the record key of the zero-based column i.
func ColumnKey(i int) string {
	return "col_" + strconv.Itoa(i)
}

// FromGrid converts a cell grid into a sheet. The first row is the header and
// is skipped. Records keep their 1-based spreadsheet line; rows without any
// cell are dropped. Cells may be string, float64, int, bool or nil.
func FromGrid(name string, grid [][]any) core.Sheet {
	sheet := core.Sheet{Name: name}
	for i, row := range grid {
		if i == 0 {
			continue
		}
		var fields core.Fields
		for j, cell := range row {
			v, ok := cellValue(cell)
			if !ok {
				continue
			}
			fields = append(fields, core.Field{Key: ColumnKey(j), Value: v})
		}
		if len(fields) == 0 {
			continue
		}
		sheet.Records = append(sheet.Records, core.Record{Line: i + 1, Fields: fields})
	}
	return sheet
}

func cellValue(cell any) (core.Value, bool) {
	switch c := cell.(type) {
	case nil:
		return core.Value{}, false
	case string:
		if strings.TrimSpace(c) == "" {
			return core.Value{}, false
		}
		return core.StringValue(c), true
	case float64:
		return core.FloatValue(c), true
	case int:
		return core.IntValue(int64(c)), true
	case int64:
		return core.IntValue(c), true
	case bool:
		return core.BoolValue(c), true
	case decimal.Decimal:
		return core.NumberValue(c), true
	}
	return core.Value{}, false
}

// Summarize computes the line-by-line verification of sheets: rows and
// filled cells per sheet and every non-zero numeric cell.
func Summarize(sheets []core.Sheet) core.Summary {
	summary := core.Summary{Sheets: make(map[string]core.SheetStats, len(sheets))}
	for _, s := range sheets {
		stats := core.SheetStats{Rows: len(s.Records)}
		for _, rec := range s.Records {
			filled := rec.Fields.Filled()
			if filled > 0 {
				stats.RowsWithData++
			}
			stats.FilledCells += filled
			for _, f := range rec.Fields {
				if f.Value.IsNumber() && !f.Value.Num.IsZero() {
					summary.General.NumericValues = append(summary.General.NumericValues, core.NumericFinding{
						Sheet:  s.Name,
						Line:   rec.Line,
						Column: f.Key,
						Value:  f.Value.Num,
					})
				}
			}
		}
		summary.Sheets[s.Name] = stats
		summary.General.RowsWithData += stats.RowsWithData
		summary.General.FilledCells += stats.FilledCells
		summary.SheetTypes = append(summary.SheetTypes, core.SheetInfo{Name: s.Name, Lines: stats.Rows})
	}
	return summary
}
