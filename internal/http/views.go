package http

import (
	"encoding/json"

	"painel/internal/aggregate"
	"painel/internal/core"
	"painel/internal/rows"
	"painel/internal/table"
)

// filteredTable is a filtered table with each row's position in the full
// table and the source record behind each row.
type filteredTable struct {
	Rows    []core.Row
	Records []core.Record
	Index   []int
}

type rowView struct {
	Key         string
	Index       int
	Line        int
	Description string
	Value       string
	Date        string
	Notes       string
	Status      core.Badge
	Kind        core.Badge
}

type rowDetailView struct {
	rowView
	Raw string
}

type tableView struct {
	Key        string
	Title      string
	Rows       []rowView
	Matches    int
	TotalValue string
	Window     table.Window
	Term       string
	Month      string
	Loaded     bool
}

type julyView struct {
	Count   int
	Income  string
	Expense string
	Balance string
	Class   string
}

type metricsView struct {
	GrandTotal       string
	Overdue          string
	JulyPayments     string
	ActiveAgreements string
	RowsWithData     string
	FilledCells      string
	NumericValues    string
}

type dashboardView struct {
	Date     string
	Loaded   bool
	LoadedAt string
	Metrics  metricsView
	Tables   []tableView
	July     julyView
	Charts   []string
	Months   []monthOption
}

func newRowView(key core.Table, index int, r core.Row) rowView {
	return rowView{
		Key:         string(key),
		Index:       index,
		Line:        r.Line,
		Description: r.Description,
		Value:       core.FormatBRL(r.Value),
		Date:        core.FormatDate(r.Date),
		Notes:       r.Notes,
		Status:      rows.StatusOf(r),
		Kind:        rows.KindOf(r),
	}
}

func newRowDetailView(key core.Table, index int, r core.Row) rowDetailView {
	raw, err := json.MarshalIndent(r.Raw, "", "  ")
	if err != nil {
		raw = []byte("{}")
	}
	return rowDetailView{rowView: newRowView(key, index, r), Raw: string(raw)}
}

func newMetricsView(m core.Metrics) metricsView {
	return metricsView{
		GrandTotal:       core.FormatBRL(m.GrandTotal),
		Overdue:          core.FormatCount(m.Overdue),
		JulyPayments:     core.FormatCount(m.JulyPayments),
		ActiveAgreements: core.FormatCount(m.ActiveAgreements),
		RowsWithData:     core.FormatCount(m.RowsWithData),
		FilledCells:      core.FormatCount(m.FilledCells),
		NumericValues:    core.FormatCount(m.NumericValues),
	}
}

func newJulyView(rs []core.Row) julyView {
	cf := aggregate.SummarizeCashflow(rs)
	return julyView{
		Count:   len(rs),
		Income:  core.FormatBRL(cf.Income),
		Expense: core.FormatBRL(cf.Expense),
		Balance: core.FormatBRL(cf.Balance),
		Class:   cf.BalanceClass(),
	}
}
