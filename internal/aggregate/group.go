package aggregate

import (
	"strings"

	"painel/internal/core"
)

type monthRule struct {
	prefix string
	name   string
}

// Month buckets are recognized by substring, checked in calendar order.
var monthRules = []monthRule{
	{"01/", "Janeiro"},
	{"02/", "Fevereiro"},
	{"03/", "Março"},
	{"04/", "Abril"},
	{"05/", "Maio"},
	{"06/", "Junho"},
	{"07/", "Julho"},
	{"08/", "Agosto"},
}

type keywordRule struct {
	keyword string
	name    string
}

var keywordRules = []keywordRule{
	{"sus", "SUS"},
	{"acordo", "Acordos"},
	{"pagamento", "Pagamentos"},
	{"entrada", "Entradas"},
}

// MonthOf returns the month bucket of a date string: "01/" or "janeiro"
// through "08/" or "agosto", matched accent-insensitively; anything else is Other.
func MonthOf(date string) string {
	folded := core.Fold(date)
	for _, m := range monthRules {
		if strings.Contains(folded, m.prefix) || strings.Contains(folded, core.Fold(m.name)) {
			return m.name
		}
	}
	return Other
}

// GroupByMonth buckets rows by MonthOf(row.Date), in first-seen order.
func GroupByMonth(rs []core.Row) []Bucket {
	var out []Bucket
	index := map[string]int{}
	for _, r := range rs {
		month := MonthOf(r.Date)
		i, ok := index[month]
		if !ok {
			i = len(out)
			index[month] = i
			out = append(out, Bucket{Name: month})
		}
		out[i].Rows = append(out[i].Rows, r)
	}
	return out
}

// KeywordOf classifies a record by the first text cell that mentions one of
// the keywords. Within a cell the keywords are tried in priority order.
func KeywordOf(fields core.Fields) string {
	for _, f := range fields {
		if !f.Value.IsString() {
			continue
		}
		text := core.Lower(f.Value.Str)
		for _, k := range keywordRules {
			if strings.Contains(text, k.keyword) {
				return k.name
			}
		}
	}
	return Other
}

// GroupByKeyword buckets records by KeywordOf, in first-seen order.
func GroupByKeyword(recs []core.Record) []KeywordGroup {
	var out []KeywordGroup
	index := map[string]int{}
	for _, rec := range recs {
		name := KeywordOf(rec.Fields)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, KeywordGroup{Name: name})
		}
		out[i].Records = append(out[i].Records, rec)
	}
	return out
}
