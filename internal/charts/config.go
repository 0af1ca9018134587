// Package charts builds the dashboard's chart configurations.
//
// Configurations follow the Chart.js JSON shape so the page script can hand
// them to the library unchanged. Currency tick and tooltip callbacks cannot be
// expressed in JSON; CurrencyAxis asks the script to attach them.
package charts

// Palette
const (
	Primary = "#1e40af"
	Success = "#059669"
	Alert   = "#dc2626"
	Warning = "#d97706"
	Info    = "#0891b2"
	Neutral = "#6b7280"
)

// Chart names
const (
	Distribution    = "distribution"
	Values          = "values"
	Monthly         = "monthly"
	Yearly          = "yearly"
	AgreementStatus = "agreements"
	CashflowTrend   = "cashflow"
)

// Names lists every chart in page order.
func Names() []string {
	return []string{Distribution, Values, Monthly, Yearly, AgreementStatus, CashflowTrend}
}

type (
	Config struct {
		Type         string  `json:"type"`
		Data         Data    `json:"data"`
		Options      Options `json:"options"`
		CurrencyAxis bool    `json:"currencyAxis,omitempty"`
	}

	Data struct {
		Labels   []string  `json:"labels"`
		Datasets []Dataset `json:"datasets"`
	}

	Dataset struct {
		Label                string    `json:"label,omitempty"`
		Data                 []float64 `json:"data"`
		BackgroundColor      any       `json:"backgroundColor,omitempty"`
		BorderColor          any       `json:"borderColor,omitempty"`
		BorderWidth          int       `json:"borderWidth,omitempty"`
		BorderRadius         int       `json:"borderRadius,omitempty"`
		BorderSkipped        *bool     `json:"borderSkipped,omitempty"`
		Fill                 bool      `json:"fill,omitempty"`
		Tension              float64   `json:"tension,omitempty"`
		PointRadius          *int      `json:"pointRadius,omitempty"`
		PointHoverRadius     int       `json:"pointHoverRadius,omitempty"`
		PointBackgroundColor string    `json:"pointBackgroundColor,omitempty"`
		PointBorderColor     string    `json:"pointBorderColor,omitempty"`
		PointBorderWidth     int       `json:"pointBorderWidth,omitempty"`
	}

	Options struct {
		Responsive          bool            `json:"responsive"`
		MaintainAspectRatio bool            `json:"maintainAspectRatio"`
		Plugins             Plugins         `json:"plugins"`
		Scales              map[string]Axis `json:"scales,omitempty"`
		Interaction         *Interaction    `json:"interaction,omitempty"`
		Animation           Animation       `json:"animation"`
	}

	Plugins struct {
		Legend Legend `json:"legend"`
	}

	Legend struct {
		Display  bool   `json:"display"`
		Position string `json:"position,omitempty"`
	}

	Axis struct {
		BeginAtZero bool  `json:"beginAtZero,omitempty"`
		Grid        *Grid `json:"grid,omitempty"`
	}

	Grid struct {
		Display bool   `json:"display"`
		Color   string `json:"color,omitempty"`
	}

	Interaction struct {
		Intersect bool   `json:"intersect"`
		Mode      string `json:"mode"`
	}

	Animation struct {
		Duration int    `json:"duration"`
		Easing   string `json:"easing"`
	}
)

func baseOptions() Options {
	return Options{
		Responsive:          true,
		MaintainAspectRatio: false,
		Plugins:             Plugins{Legend: Legend{Display: true, Position: "top"}},
		Animation:           Animation{Duration: 1000, Easing: "easeInOutQuart"},
	}
}

func currencyScales() map[string]Axis {
	return map[string]Axis{
		"y": {BeginAtZero: true, Grid: &Grid{Display: true, Color: "rgba(0, 0, 0, 0.05)"}},
		"x": {Grid: &Grid{Display: false}},
	}
}

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

// Clone returns a copy of c that shares no slices with it.
func (c Config) Clone() Config {
	out := c
	out.Data.Labels = append([]string(nil), c.Data.Labels...)
	out.Data.Datasets = make([]Dataset, len(c.Data.Datasets))
	for i, ds := range c.Data.Datasets {
		ds.Data = append([]float64(nil), ds.Data...)
		if colors, ok := ds.BackgroundColor.([]string); ok {
			ds.BackgroundColor = append([]string(nil), colors...)
		}
		out.Data.Datasets[i] = ds
	}
	if c.Options.Scales != nil {
		out.Options.Scales = make(map[string]Axis, len(c.Options.Scales))
		for k, v := range c.Options.Scales {
			out.Options.Scales[k] = v
		}
	}
	return out
}
