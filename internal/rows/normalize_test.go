package rows

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/core"
)

func record(t *testing.T, line int, js string) core.Record {
	t.Helper()
	var f core.Fields
	require.NoError(t, json.Unmarshal([]byte(js), &f))
	return core.Record{Line: line, Fields: f}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		js    string
		desc  string
		value string
		date  string
		notes string
	}{
		{
			name:  "agreement row",
			js:    `{"colA":"ACORDO FORNECEDOR X","colB":1500,"colC":"10/2025"}`,
			desc:  "ACORDO FORNECEDOR X",
			value: "1500",
			date:  "10/2025",
		},
		{
			name:  "empty record",
			js:    `{}`,
			desc:  NoDescription,
			value: "0",
		},
		{
			name:  "short strings are skipped",
			js:    `{"a":"abc","b":"ENERGIA","c":-20,"d":0,"e":35.9}`,
			desc:  "ENERGIA",
			value: "35.9",
			notes: "abc",
		},
		{
			name:  "first match wins and notes are capped",
			js:    `{"a":"Fornecedor A","b":"Fornecedor B","c":"vence 05/07/2024","d":"15/07/2025","e":"obs um","f":"obs dois","g":"ok"}`,
			desc:  "Fornecedor A",
			value: "0",
			date:  "vence 05/07/2024",
			notes: "Fornecedor B | 15/07/2025 | obs um",
		},
		{
			name:  "date doubles as description",
			js:    `{"a":"julho/2025","b":100}`,
			desc:  "julho/2025",
			value: "100",
			date:  "julho/2025",
		},
		{
			name:  "numbers as text are not values",
			js:    `{"a":"1.500,00","b":"Conta de luz"}`,
			desc:  "1.500,00",
			value: "0",
			notes: "Conta de luz",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Normalize(record(t, 7, tt.js))
			assert.Equal(t, 7, row.Line)
			assert.Equal(t, tt.desc, row.Description)
			assert.True(t, row.Value.Equal(decimal.RequireFromString(tt.value)), "value %s", row.Value)
			assert.Equal(t, tt.date, row.Date)
			assert.Equal(t, tt.notes, row.Notes)
		})
	}
}

func TestNormalizeInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	words := []string{"", "a", "ab", "abc", "abcd", "PAGAMENTO", "10/2025", "acordo 2026", "pendente"}

	for i := 0; i < 500; i++ {
		var fields core.Fields
		for j := 0; j < rng.Intn(8); j++ {
			key := "col_" + strconv.Itoa(j)
			switch rng.Intn(4) {
			case 0:
				fields = append(fields, core.Field{Key: key, Value: core.StringValue(words[rng.Intn(len(words))])})
			case 1:
				fields = append(fields, core.Field{Key: key, Value: core.FloatValue(rng.Float64()*2000 - 1000)})
			case 2:
				fields = append(fields, core.Field{Key: key, Value: core.BoolValue(rng.Intn(2) == 0)})
			default:
				fields = append(fields, core.Field{Key: key})
			}
		}
		row := Normalize(core.Record{Line: i, Fields: fields})
		require.False(t, row.Value.IsNegative(), "value must never be negative")
		require.NotEmpty(t, row.Description)
	}
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	recs := []core.Record{
		record(t, 3, `{"a":"primeira linha"}`),
		record(t, 1, `{"a":"segunda linha"}`),
	}
	out := NormalizeAll(recs)
	require.Len(t, out, 2)
	assert.Equal(t, "primeira linha", out[0].Description)
	assert.Equal(t, 1, out[1].Line)
}
