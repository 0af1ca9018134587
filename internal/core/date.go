package core

import (
	"fmt"
	"strings"
	"time"
)

var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var weekdayNames = [7]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders ISO-like dates as dd/mm/yyyy. Empty input renders as "-"
// and anything that is not an ISO date is returned unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	if !strings.Contains(s, "-") {
		return s
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}

// FormatLongDate renders t in the long Brazilian form, e.g. "domingo, 19 de outubro de 2026".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d",
		weekdayNames[t.Weekday()], t.Day(), Lower(MonthNames[t.Month()-1]), t.Year())
}
