package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"painel/internal/core"
)

const maxQueryLength = 100

// monthOption is one entry of the month filter.
type monthOption struct {
	Value string
	Label string
}

// monthOptions lists the month filter values: "01/" matches dates like 01/2025.
func monthOptions() []monthOption {
	out := make([]monthOption, len(core.MonthNames))
	for i, name := range core.MonthNames {
		out[i] = monthOption{Value: fmt.Sprintf("%02d/", i+1), Label: name}
	}
	return out
}

// sanitizeInput removes control characters, trims whitespace and bounds the length.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != 9 {
			return -1
		}
		return r
	}, s)
	if r := []rune(s); len(r) > maxQueryLength {
		s = string(r[:maxQueryLength])
	}
	return s
}

// parsePage reads a zero-based page index. ok is false when the parameter is absent or invalid.
func parsePage(v string) (page int, ok bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	p, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return p, true
}

func isTruthyParam(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "sim", "on":
		return true
	}
	return false
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"count": core.FormatCount,
		"inc":   func(i int) int { return i + 1 },
		"dec":   func(i int) int { return i - 1 },
	}
}
