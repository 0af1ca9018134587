package table

import (
	"strconv"
	"strings"

	"painel/internal/core"
	"painel/internal/rows"
)

// Predicate narrows a filtered table further.
type Predicate func(core.Row) bool

// Matches reports whether any shown field of row contains term, ignoring case.
// Zero values and empty strings are never searched.
func Matches(row core.Row, term string) bool {
	needle := core.Lower(term)
	for _, s := range searchable(row) {
		if strings.Contains(core.Lower(s), needle) {
			return true
		}
	}
	return false
}

func searchable(row core.Row) []string {
	out := make([]string, 0, 5)
	if row.Line != 0 {
		out = append(out, strconv.Itoa(row.Line))
	}
	for _, s := range []string{row.Description, row.Date, row.Notes} {
		if s != "" {
			out = append(out, s)
		}
	}
	if !row.Value.IsZero() {
		out = append(out, row.Value.String())
	}
	return out
}

// Filter keeps the rows matching term (empty term matches everything) and pred (nil matches everything).
func Filter(rs []core.Row, term string, pred Predicate) []core.Row {
	idx := FilterIndexes(rs, term, pred)
	out := make([]core.Row, len(idx))
	for i, j := range idx {
		out[i] = rs[j]
	}
	return out
}

// FilterIndexes is Filter returning the positions of the kept rows in rs.
func FilterIndexes(rs []core.Row, term string, pred Predicate) []int {
	term = strings.TrimSpace(term)
	out := make([]int, 0, len(rs))
	for i, r := range rs {
		if term != "" && !Matches(r, term) {
			continue
		}
		if pred != nil && !pred(r) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// MonthPredicate matches rows whose date or description mention month. An empty month yields nil.
func MonthPredicate(month string) Predicate {
	month = strings.TrimSpace(month)
	if month == "" {
		return nil
	}
	needle := core.Lower(month)
	return func(r core.Row) bool {
		return strings.Contains(core.Lower(r.Date), needle) ||
			strings.Contains(core.Lower(r.Description), needle)
	}
}

// FilterRecords keeps the records whose normalized rows match term and month,
// the same way the dashboard tables filter.
func FilterRecords(recs []core.Record, term, month string) []core.Record {
	idx := FilterIndexes(rows.NormalizeAll(recs), term, MonthPredicate(month))
	out := make([]core.Record, len(idx))
	for i, j := range idx {
		out[i] = recs[j]
	}
	return out
}
