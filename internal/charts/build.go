package charts

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"painel/internal/core"
)

// Input is the loaded data the data-bound charts draw from.
type Input struct {
	Sheets          []core.SheetInfo
	OverdueTotal    decimal.Decimal
	JulyTotal       decimal.Decimal
	AgreementsTotal decimal.Decimal
}

// Sample series shown until real monthly and yearly history exists.
var (
	monthLabels     = []string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul"}
	monthlyIncome   = []float64{850000, 920000, 780000, 1100000, 950000, 1050000, 980000}
	monthlyExpenses = []float64{650000, 720000, 580000, 800000, 750000, 850000, 780000}

	yearLabels     = []string{"2023", "2024", "2025"}
	yearlyRevenue  = []float64{8500000, 9200000, 10500000}
	yearlyExpenses = []float64{7200000, 7800000, 8900000}

	agreementLabels = []string{"Em Dia", "Atrasados", "Vencendo", "Quitados"}
	agreementCounts = []float64{15, 3, 5, 8}
)

const cashflowDays = 30

// Build returns the named chart's configuration.
func Build(name string, in Input) (Config, error) {
	switch name {
	case Distribution:
		return BuildDistribution(in), nil
	case Values:
		return BuildValues(in), nil
	case Monthly:
		return BuildMonthly(), nil
	case Yearly:
		return BuildYearly(), nil
	case AgreementStatus:
		return BuildAgreementStatus(), nil
	case CashflowTrend:
		return BuildCashflow(), nil
	}
	return Config{}, fmt.Errorf("unknown chart %q", name)
}

// BuildDistribution is a doughnut of line counts per sheet.
func BuildDistribution(in Input) Config {
	labels := make([]string, len(in.Sheets))
	data := make([]float64, len(in.Sheets))
	for i, s := range in.Sheets {
		labels[i] = strings.Replace(s.Name, "PLANILHA ", "", 1)
		data[i] = float64(s.Lines)
	}

	opts := baseOptions()
	opts.Plugins.Legend.Position = "right"
	return Config{
		Type: "doughnut",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Data:            data,
				BackgroundColor: []string{Primary, Success, Alert, Warning},
				BorderColor:     "#ffffff",
				BorderWidth:     2,
			}},
		},
		Options: opts,
	}
}

// BuildValues is a bar chart of the overdue, July and agreement totals.
func BuildValues(in Input) Config {
	colors := []string{Alert, Success, Info}
	opts := baseOptions()
	opts.Plugins.Legend.Display = false
	opts.Scales = currencyScales()
	return Config{
		Type: "bar",
		Data: Data{
			Labels: []string{"Contas em Atraso", "Pagamentos Julho", "Acordos"},
			Datasets: []Dataset{{
				Label:           "Valores (R$)",
				Data:            []float64{in.OverdueTotal.InexactFloat64(), in.JulyTotal.InexactFloat64(), in.AgreementsTotal.InexactFloat64()},
				BackgroundColor: colors,
				BorderColor:     colors,
				BorderWidth:     2,
				BorderRadius:    8,
				BorderSkipped:   boolPtr(false),
			}},
		},
		Options:      opts,
		CurrencyAxis: true,
	}
}

// BuildMonthly is a line chart of monthly income and expenses (sample series).
func BuildMonthly() Config {
	line := func(label, color string, data []float64) Dataset {
		return Dataset{
			Label:                label,
			Data:                 append([]float64(nil), data...),
			BorderColor:          color,
			BackgroundColor:      color + "20",
			Fill:                 true,
			Tension:              0.4,
			PointBackgroundColor: color,
			PointBorderColor:     "#ffffff",
			PointBorderWidth:     2,
			PointRadius:          intPtr(6),
		}
	}
	opts := baseOptions()
	opts.Scales = currencyScales()
	opts.Interaction = &Interaction{Intersect: false, Mode: "index"}
	return Config{
		Type: "line",
		Data: Data{
			Labels: append([]string(nil), monthLabels...),
			Datasets: []Dataset{
				line("Entradas", Success, monthlyIncome),
				line("Saídas", Alert, monthlyExpenses),
			},
		},
		Options:      opts,
		CurrencyAxis: true,
	}
}

// BuildYearly is a grouped bar chart of yearly revenue and expenses (sample series).
func BuildYearly() Config {
	bar := func(label, color string, data []float64) Dataset {
		return Dataset{
			Label:           label,
			Data:            append([]float64(nil), data...),
			BackgroundColor: color,
			BorderColor:     color,
			BorderWidth:     2,
			BorderRadius:    6,
		}
	}
	opts := baseOptions()
	opts.Scales = currencyScales()
	return Config{
		Type: "bar",
		Data: Data{
			Labels: append([]string(nil), yearLabels...),
			Datasets: []Dataset{
				bar("Receitas", Success, yearlyRevenue),
				bar("Despesas", Alert, yearlyExpenses),
			},
		},
		Options:      opts,
		CurrencyAxis: true,
	}
}

// BuildAgreementStatus is a pie of agreements by status (sample counts).
func BuildAgreementStatus() Config {
	opts := baseOptions()
	opts.Plugins.Legend.Position = "bottom"
	return Config{
		Type: "pie",
		Data: Data{
			Labels: append([]string(nil), agreementLabels...),
			Datasets: []Dataset{{
				Data:            append([]float64(nil), agreementCounts...),
				BackgroundColor: []string{Success, Alert, Warning, Neutral},
				BorderColor:     "#ffffff",
				BorderWidth:     2,
			}},
		},
		Options: opts,
	}
}

// DailyBalance is the simulated July balance of day d.
func DailyBalance(d int) float64 {
	return 500000 + math.Sin(float64(d)*0.2)*100000 + float64(d)*5000
}

// BuildCashflow is an area chart of the simulated daily balance for July.
func BuildCashflow() Config {
	labels := make([]string, cashflowDays)
	data := make([]float64, cashflowDays)
	for d := 1; d <= cashflowDays; d++ {
		labels[d-1] = fmt.Sprintf("%d/07", d)
		data[d-1] = DailyBalance(d)
	}

	opts := baseOptions()
	opts.Plugins.Legend.Display = false
	opts.Scales = currencyScales()
	opts.Interaction = &Interaction{Intersect: false, Mode: "index"}
	return Config{
		Type: "line",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:            "Saldo Diário",
				Data:             data,
				BorderColor:      Primary,
				BackgroundColor:  Primary + "30",
				Fill:             true,
				Tension:          0.4,
				PointRadius:      intPtr(0),
				PointHoverRadius: 6,
			}},
		},
		Options:      opts,
		CurrencyAxis: true,
	}
}
