package table

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/core"
	"painel/internal/rows"
)

func sampleRows() []core.Row {
	return []core.Row{
		{Line: 2, Description: "Energia ELÉTRICA", Value: decimal.NewFromInt(1500), Date: "07/2025"},
		{Line: 3, Description: "Água", Value: decimal.Zero, Date: "julho 2025", Notes: "parcela 1"},
		{Line: 14, Description: "Aluguel", Value: decimal.RequireFromString("980.5"), Date: "06/2025"},
		{Line: 0, Description: "Sem descrição"},
	}
}

func TestFilter(t *testing.T) {
	rs := sampleRows()

	tests := []struct {
		name  string
		term  string
		pred  Predicate
		lines []int
	}{
		{"empty term keeps all", "", nil, []int{2, 3, 14, 0}},
		{"case insensitive", "elétrica", nil, []int{2}},
		{"matches value", "1500", nil, []int{2}},
		{"matches line", "14", nil, []int{14}},
		{"matches notes", "PARCELA", nil, []int{3}},
		{"zero value and line are not searched", "0", nil, []int{2, 3, 14}},
		{"month predicate", "", MonthPredicate("Julho"), []int{3}},
		{"term and predicate", "2025", MonthPredicate("07/"), []int{2}},
		{"no match", "inexistente", nil, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(rs, tt.term, tt.pred)
			lines := make([]int, 0, len(got))
			for _, r := range got {
				lines = append(lines, r.Line)
			}
			assert.Equal(t, tt.lines, lines)
		})
	}
}

func TestFilterIdempotent(t *testing.T) {
	rs := sampleRows()
	for _, term := range []string{"", "a", "2025", "energia", "x"} {
		once := Filter(rs, term, MonthPredicate("2025"))
		twice := Filter(once, term, MonthPredicate("2025"))
		require.Equal(t, once, twice, term)
	}
}

func TestMonthPredicateEmpty(t *testing.T) {
	assert.Nil(t, MonthPredicate("  "))
}

func TestFilterRecords(t *testing.T) {
	recs := []core.Record{
		{Line: 7, Fields: core.Fields{{Key: "a", Value: core.StringValue("Luz")}, {Key: "b", Value: core.IntValue(0)}}},
		{Line: 14, Fields: core.Fields{{Key: "a", Value: core.StringValue("Aluguel JULHO")}, {Key: "b", Value: core.IntValue(120)}}},
	}

	lines := func(rs []core.Record) []int {
		out := []int{}
		for _, r := range rs {
			out = append(out, r.Line)
		}
		return out
	}

	assert.Equal(t, []int{7, 14}, lines(FilterRecords(recs, "", "")))
	assert.Equal(t, []int{14}, lines(FilterRecords(recs, "14", "")), "line numbers are searched like the table")
	assert.Equal(t, []int{14}, lines(FilterRecords(recs, "0", "")))
	assert.Equal(t, []int{7}, lines(FilterRecords(recs, "luz", "")))
	assert.Equal(t, []int{14}, lines(FilterRecords(recs, "", "julho")))
	assert.Empty(t, FilterRecords(recs, "luz", "julho"))

	rs := rows.NormalizeAll(recs)
	for _, term := range []string{"", "14", "luz", "aluguel"} {
		got := FilterRecords(recs, term, "")
		assert.Len(t, got, len(Filter(rs, term, nil)), term)
	}
}

func TestFilterIndexes(t *testing.T) {
	rs := sampleRows()
	assert.Equal(t, []int{0, 1, 2}, FilterIndexes(rs, "a", MonthPredicate("2025")))
	assert.Equal(t, []int{2}, FilterIndexes(rs, "aluguel", nil))
	assert.Empty(t, FilterIndexes(rs, "nada", nil))
}
