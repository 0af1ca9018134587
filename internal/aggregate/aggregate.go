// Package aggregate computes totals, groupings and statistics over normalized rows.
package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"painel/internal/core"
	"painel/internal/rows"
)

// Other is the bucket for rows that match no month or keyword.
const Other = "Outros"

// CategoryTotal is the summed value of one category.
type CategoryTotal struct {
	Category core.Category   `json:"categoria"`
	Label    string          `json:"nome"`
	Total    decimal.Decimal `json:"total"`
	Rows     int             `json:"linhas"`
}

// Bucket groups rows under a name, keeping first-seen order.
type Bucket struct {
	Name string     `json:"nome"`
	Rows []core.Row `json:"-"`
}

// KeywordGroup groups raw records under a keyword category.
type KeywordGroup struct {
	Name    string        `json:"nome"`
	Records []core.Record `json:"-"`
}

// Cashflow is the income/expense split of a list of rows.
type Cashflow struct {
	Income  decimal.Decimal `json:"entradas"`
	Expense decimal.Decimal `json:"saidas"`
	Balance decimal.Decimal `json:"saldo"`
}

// Total sums the normalized values of rows.
func Total(rs []core.Row) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rs {
		total = total.Add(r.Value)
	}
	return total
}

// TotalRecords normalizes records and sums their values.
func TotalRecords(recs []core.Record) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range recs {
		total = total.Add(rows.Normalize(rec).Value)
	}
	return total
}

// TotalsByCategory sums each category's records. lookup returns the records of a category.
func TotalsByCategory(lookup func(core.Category) []core.Record) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		recs := lookup(c)
		out = append(out, CategoryTotal{
			Category: c,
			Label:    c.Label(),
			Total:    TotalRecords(recs),
			Rows:     len(recs),
		})
	}
	return out
}

// NumericValues lists every non-zero numeric cell of records, in order.
func NumericValues(recs []core.Record) []decimal.Decimal {
	var out []decimal.Decimal
	for _, rec := range recs {
		for _, f := range rec.Fields {
			if f.Value.IsNumber() && !f.Value.Num.IsZero() {
				out = append(out, f.Value.Num)
			}
		}
	}
	return out
}

// CalculateStats describes values. An empty list yields zero stats.
func CalculateStats(values []decimal.Decimal) core.Stats {
	if len(values) == 0 {
		return core.Stats{Total: decimal.Zero, Mean: decimal.Zero, Max: decimal.Zero, Min: decimal.Zero}
	}
	total := decimal.Sum(values[0], values[1:]...)
	return core.Stats{
		Total: total,
		Mean:  total.Div(decimal.NewFromInt(int64(len(values)))),
		Max:   decimal.Max(values[0], values[1:]...),
		Min:   decimal.Min(values[0], values[1:]...),
		Count: len(values),
	}
}

// SummarizeCashflow splits rows into income (description or notes mention
// "entrada") and expense (everything else).
func SummarizeCashflow(rs []core.Row) Cashflow {
	cf := Cashflow{Income: decimal.Zero, Expense: decimal.Zero}
	for _, r := range rs {
		text := core.Lower(r.Description + " " + r.Notes)
		if strings.Contains(text, "entrada") {
			cf.Income = cf.Income.Add(r.Value)
		} else {
			cf.Expense = cf.Expense.Add(r.Value)
		}
	}
	cf.Balance = cf.Income.Sub(cf.Expense)
	return cf
}

// BalanceClass is the css class for the balance sign.
func (c Cashflow) BalanceClass() string {
	return core.SignClass(c.Balance)
}

// MetricsFrom computes the dashboard metrics from the category records and
// the summary document. Verification counts take precedence over derived ones.
func MetricsFrom(lookup func(core.Category) []core.Record, summary core.Summary) core.Metrics {
	m := core.Metrics{
		GrandTotal:       summary.GrandTotal(),
		Overdue:          len(lookup(core.Overdue)),
		JulyPayments:     len(lookup(core.JulyPayments)),
		ActiveAgreements: len(lookup(core.Agreements)) + len(lookup(core.SupplierAgreements)),
		RowsWithData:     summary.General.RowsWithData,
		FilledCells:      summary.General.FilledCells,
		NumericValues:    len(summary.General.NumericValues),
	}
	if m.RowsWithData == 0 && m.FilledCells == 0 {
		for _, c := range core.Categories() {
			for _, rec := range lookup(c) {
				n := rec.Fields.Filled()
				if n > 0 {
					m.RowsWithData++
				}
				m.FilledCells += n
			}
		}
	}
	return m
}
