package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Categories of the financial workbook. Each one maps to a named sheet.
const (
	Overdue            Category = "contas_atraso"
	JulyPayments       Category = "pagamentos_julho"
	Agreements         Category = "acordos"
	SupplierAgreements Category = "acordos_fornecedores"
)

// Dashboard tables. The agreements table concatenates both agreement categories.
const (
	TableOverdue    Table = "atraso"
	TableJuly       Table = "julho"
	TableAgreements Table = "acordos"
)

type (
	// Category identifies one sheet of the workbook.
	Category string

	// Table identifies one of the dashboard tables.
	Table string

	// Record is one raw spreadsheet row: the source line number and its cells in column order.
	Record struct {
		Line   int
		Fields Fields
	}

	// Row is the canonical shape produced by field-sniffing a Record.
	Row struct {
		Line        int
		Description string
		Value       decimal.Decimal
		Date        string
		Notes       string
		Raw         Fields
	}

	// Badge is a display label paired with the css class used to style it.
	Badge struct {
		Text  string
		Class string
	}

	// Sheet is a named list of records in source order.
	Sheet struct {
		Name    string
		Records []Record
	}

	// Snapshot is one loaded pair of documents: the records of every sheet and the summary.
	Snapshot struct {
		Sheets  []Sheet
		Summary Summary
	}
)

// Status badges
var (
	StatusPaid    = Badge{Text: "Pago", Class: "pago"}
	StatusOverdue = Badge{Text: "Em Atraso", Class: "atraso"}
	StatusPending = Badge{Text: "Pendente", Class: "pendente"}
	StatusOnTime  = Badge{Text: "Em Dia", Class: "em-dia"}
)

// Transaction type badges
var (
	TypeIncome  = Badge{Text: "Entrada", Class: "entrada"}
	TypeExpense = Badge{Text: "Saída", Class: "saida"}
	TypeOther   = Badge{Text: "Outros", Class: "outros"}
)

var (
	ErrDataLoad        = errors.New("failed to load financial data")
	ErrNotLoaded       = errors.New("financial data not loaded")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownTable    = errors.New("unknown table")
)

var categories = []Category{Overdue, JulyPayments, Agreements, SupplierAgreements}

var sheetNames = map[Category]string{
	Overdue:            "PLANILHA ATRAS. JAN. A JUL 2025",
	JulyPayments:       "PLANILHA PAGTOS JULHO 2025",
	Agreements:         "PLANILHA ACORDO ",
	SupplierAgreements: "PLANILHA PAGTOS ACORDOS FORN.",
}

var categoryLabels = map[Category]string{
	Overdue:            "Contas em Atraso",
	JulyPayments:       "Pagamentos Julho",
	Agreements:         "Acordos",
	SupplierAgreements: "Acordos Fornecedores",
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory validates a category key.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if _, ok := sheetNames[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// SheetName is the exact name of the sheet backing the category, trailing spaces included.
func (c Category) SheetName() string {
	return sheetNames[c]
}

// Label is the human readable name of the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Tables returns every dashboard table in display order.
func Tables() []Table {
	return []Table{TableOverdue, TableJuly, TableAgreements}
}

// ParseTable validates a table key.
func ParseTable(s string) (Table, error) {
	t := Table(strings.TrimSpace(s))
	switch t {
	case TableOverdue, TableJuly, TableAgreements:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTable, s)
}

// Categories lists the categories whose records make up the table, in order.
func (t Table) Categories() []Category {
	switch t {
	case TableOverdue:
		return []Category{Overdue}
	case TableJuly:
		return []Category{JulyPayments}
	case TableAgreements:
		return []Category{Agreements, SupplierAgreements}
	}
	return nil
}

// Title is the heading shown above the table.
func (t Table) Title() string {
	switch t {
	case TableOverdue:
		return "Contas em Atraso"
	case TableJuly:
		return "Pagamentos de Julho 2025"
	case TableAgreements:
		return "Acordos e Acordos com Fornecedores"
	}
	return string(t)
}

// ExportFilename is the default download name for the table's CSV export.
func (t Table) ExportFilename() string {
	switch t {
	case TableOverdue:
		return "contas_atraso_completas"
	case TableJuly:
		return "pagamentos_julho_completos"
	case TableAgreements:
		return "acordos_completos"
	}
	return "dados_financeiros"
}
