// Package rows turns raw spreadsheet records into normalized rows.
//
// Sheets carry no reliable header, so columns are recognized by sniffing:
// each heuristic walks the cells in column order and takes the first match.
// A record with unusual column order can therefore yield the "wrong"
// description or value; that is accepted behavior.
package rows

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"painel/internal/core"
)

const (
	NoDescription  = "Sem descrição"
	NotesSeparator = " | "
	maxNotes       = 3
)

var yearTokens = []string{"2024", "2025", "2026"}

// Normalize extracts the canonical row from a record.
func Normalize(rec core.Record) core.Row {
	row := core.Row{
		Line:        rec.Line,
		Description: NoDescription,
		Value:       decimal.Zero,
		Raw:         rec.Fields,
	}

	descFound, valueFound, dateFound := false, false, false
	for _, f := range rec.Fields {
		v := f.Value
		switch {
		case v.IsString():
			if !descFound && utf8.RuneCountInString(v.Str) > 3 {
				row.Description = v.Str
				descFound = true
			}
			if !dateFound && hasYear(v.Str) {
				row.Date = v.Str
				dateFound = true
			}
		case v.IsNumber():
			if !valueFound && v.Num.IsPositive() {
				row.Value = v.Num
				valueFound = true
			}
		}
	}

	row.Notes = notes(rec.Fields, row.Description, row.Date)
	return row
}

// NormalizeAll normalizes records preserving their order.
func NormalizeAll(recs []core.Record) []core.Row {
	out := make([]core.Row, len(recs))
	for i, rec := range recs {
		out[i] = Normalize(rec)
	}
	return out
}

func hasYear(s string) bool {
	for _, y := range yearTokens {
		if strings.Contains(s, y) {
			return true
		}
	}
	return false
}

// notes collects the remaining text cells that are neither the description nor the date.
func notes(fields core.Fields, description, date string) string {
	var parts []string
	for _, f := range fields {
		if len(parts) == maxNotes {
			break
		}
		v := f.Value
		if !v.IsString() || utf8.RuneCountInString(v.Str) <= 2 {
			continue
		}
		if v.Str == description || v.Str == date {
			continue
		}
		parts = append(parts, v.Str)
	}
	return strings.Join(parts, NotesSeparator)
}
