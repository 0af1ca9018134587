package core

import "github.com/shopspring/decimal"

type (
	// NumericFinding is one numeric cell reported by the line-by-line verification.
	NumericFinding struct {
		Sheet  string          `json:"aba,omitempty"`
		Line   int             `json:"linha,omitempty"`
		Column string          `json:"coluna,omitempty"`
		Value  decimal.Decimal `json:"valor"`
	}

	// GeneralStats is the verification document's overall section.
	GeneralStats struct {
		RowsWithData  int              `json:"total_linhas_com_dados"`
		FilledCells   int              `json:"total_celulas_preenchidas"`
		NumericValues []NumericFinding `json:"valores_numericos_encontrados"`
	}

	// SheetStats is the verification document's per-sheet section.
	SheetStats struct {
		Rows         int `json:"total_linhas"`
		RowsWithData int `json:"linhas_com_dados"`
		FilledCells  int `json:"celulas_preenchidas"`
	}

	// FinancialSummary is the executive summary's financial section.
	FinancialSummary struct {
		GrandTotal decimal.Decimal `json:"total_geral"`
	}

	// SheetInfo names a sheet and its line count.
	SheetInfo struct {
		Name  string `json:"nome"`
		Lines int    `json:"linhas"`
	}

	// Summary holds whichever summary sections the summary document carried.
	// The line-by-line verification fills General and Sheets; the executive
	// summary fills Financial and SheetTypes.
	Summary struct {
		General    GeneralStats          `json:"resumo_geral"`
		Sheets     map[string]SheetStats `json:"abas,omitempty"`
		Financial  FinancialSummary      `json:"resumo_financeiro"`
		SheetTypes []SheetInfo           `json:"tipos_planilhas,omitempty"`
	}

	// Metrics are the headline numbers of the dashboard, recomputed on every load.
	Metrics struct {
		GrandTotal       decimal.Decimal `json:"total_geral"`
		Overdue          int             `json:"contas_atraso"`
		JulyPayments     int             `json:"pagamentos_julho"`
		ActiveAgreements int             `json:"acordos_ativos"`
		RowsWithData     int             `json:"linhas_com_dados"`
		FilledCells      int             `json:"celulas_preenchidas"`
		NumericValues    int             `json:"valores_numericos"`
	}

	// Stats describe a list of amounts.
	Stats struct {
		Total decimal.Decimal `json:"total"`
		Mean  decimal.Decimal `json:"media"`
		Max   decimal.Decimal `json:"maximo"`
		Min   decimal.Decimal `json:"minimo"`
		Count int             `json:"count"`
	}
)

// GrandTotal is the sum of every numeric value found by the verification, or
// the executive summary's total when the verification listed none.
func (s Summary) GrandTotal() decimal.Decimal {
	if len(s.General.NumericValues) == 0 {
		return s.Financial.GrandTotal
	}
	total := decimal.Zero
	for _, v := range s.General.NumericValues {
		total = total.Add(v.Value)
	}
	return total
}
