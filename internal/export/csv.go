// Package export writes table data as CSV or XLSX downloads.
package export

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"painel/internal/core"
	"painel/internal/rows"
)

// DefaultFilename is used when the caller does not name the download.
const DefaultFilename = "dados_financeiros.csv"

var ErrNothingToExport = errors.New("nothing to export")

// RowHeaders are the columns of the normalized export.
var RowHeaders = []string{"Linha Original", "Descrição", "Valor", "Data", "Observações"}

// WriteRowsCSV writes one normalized row per record. Text columns are quoted
// with embedded quotes doubled; the line number and value are written bare.
func WriteRowsCSV(w io.Writer, recs []core.Record) error {
	if len(recs) == 0 {
		return ErrNothingToExport
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(RowHeaders, ","))
	for _, rec := range recs {
		row := rows.Normalize(rec)
		bw.WriteByte('\n')
		bw.WriteString(strings.Join([]string{
			strconv.Itoa(row.Line),
			quote(row.Description),
			row.Value.String(),
			quote(row.Date),
			quote(row.Notes),
		}, ","))
	}
	return bw.Flush()
}

// WriteRawCSV writes the records' own cells. The header is the union of keys
// in first-seen order and every cell is quoted; falsy cells are written empty.
func WriteRawCSV(w io.Writer, recs []core.Record) error {
	if len(recs) == 0 {
		return ErrNothingToExport
	}
	headers := unionKeys(recs)

	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(headers, ","))
	cells := make([]string, len(headers))
	for _, rec := range recs {
		for i, h := range headers {
			v, _ := rec.Fields.Get(h)
			if v.Truthy() {
				cells[i] = quote(v.String())
			} else {
				cells[i] = `""`
			}
		}
		bw.WriteByte('\n')
		bw.WriteString(strings.Join(cells, ","))
	}
	return bw.Flush()
}

func unionKeys(recs []core.Record) []string {
	seen := map[string]bool{}
	var keys []string
	for _, rec := range recs {
		for _, k := range rec.Fields.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Filename returns name with ext, falling back to the default download name.
func Filename(name, ext string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSuffix(DefaultFilename, ".csv")
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.HasSuffix(strings.ToLower(name), ext) {
		return name
	}
	return name + ext
}
