package rows

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"painel/internal/core"
)

// Placeholders used by the per-column extractors of the detailed tables.
const (
	DescriptionUnavailable = "Descrição não disponível"
	SupplierUnknown        = "Fornecedor não identificado"
	InstallmentsUnknown    = "N/A"
)

// Description returns the first text cell longer than five characters outside the first column.
func Description(fields core.Fields) string {
	for _, f := range fields {
		if f.Value.IsString() && utf8.RuneCountInString(f.Value.Str) > 5 && !strings.Contains(f.Key, "col_0") {
			return f.Value.Str
		}
	}
	return DescriptionUnavailable
}

// Value returns the first positive numeric cell, or zero.
func Value(fields core.Fields) decimal.Decimal {
	for _, f := range fields {
		if f.Value.IsNumber() && f.Value.Num.IsPositive() {
			return f.Value.Num
		}
	}
	return decimal.Zero
}

// Date returns the first text cell mentioning 2025, or "".
func Date(fields core.Fields) string {
	for _, f := range fields {
		if f.Value.IsString() && strings.Contains(f.Value.Str, "2025") {
			return f.Value.Str
		}
	}
	return ""
}

// Supplier returns the first text cell longer than three characters that is not a date.
func Supplier(fields core.Fields) string {
	for _, f := range fields {
		if f.Value.IsString() && utf8.RuneCountInString(f.Value.Str) > 3 && !strings.Contains(f.Value.Str, "2025") {
			return f.Value.Str
		}
	}
	return SupplierUnknown
}

// Installments returns the first text cell mentioning installments ("parc").
func Installments(fields core.Fields) string {
	for _, f := range fields {
		if f.Value.IsString() && core.ContainsLower(f.Value.Str, "parc") {
			return f.Value.Str
		}
	}
	return InstallmentsUnknown
}

// Kind classifies the record as income or expense from its description.
func Kind(fields core.Fields) core.Badge {
	return kindOf(core.Lower(Description(fields)))
}

// Status classifies the record's payment status from its description.
func Status(fields core.Fields) core.Badge {
	desc := core.Lower(Description(fields))
	switch {
	case strings.Contains(desc, "pago"), strings.Contains(desc, "quitado"):
		return core.StatusPaid
	case strings.Contains(desc, "atraso"), strings.Contains(desc, "vencido"):
		return core.StatusOverdue
	case strings.Contains(desc, "pendente"):
		return core.StatusPending
	}
	return core.StatusOnTime
}

// StatusOf classifies a normalized row from its description and notes.
func StatusOf(row core.Row) core.Badge {
	text := core.Lower(row.Description + " " + row.Notes)
	switch {
	case strings.Contains(text, "pago"):
		return core.StatusPaid
	case strings.Contains(text, "atraso"):
		return core.StatusOverdue
	case strings.Contains(text, "pendente"):
		return core.StatusPending
	}
	return core.StatusOnTime
}

// KindOf classifies a normalized row from its description.
func KindOf(row core.Row) core.Badge {
	return kindOf(core.Lower(row.Description))
}

func kindOf(desc string) core.Badge {
	switch {
	case strings.Contains(desc, "entrada"):
		return core.TypeIncome
	case strings.Contains(desc, "saída"), strings.Contains(desc, "pagamento"):
		return core.TypeExpense
	}
	return core.TypeOther
}
