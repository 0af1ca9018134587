package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/core"
	"painel/internal/dataset"
	"painel/internal/sheets/memory"
)

func str(k, v string) core.Field { return core.Field{Key: k, Value: core.StringValue(v)} }
func num(k string, v int64) core.Field {
	return core.Field{Key: k, Value: core.IntValue(v)}
}

func testSheets() []core.Sheet {
	return []core.Sheet{
		{Name: "PLANILHA ATRAS. JAN. A JUL 2025", Records: []core.Record{
			{Line: 2, Fields: core.Fields{str("col_0", "Energia elétrica"), num("col_1", 300), str("col_2", "05/2025")}},
			{Line: 3, Fields: core.Fields{str("col_0", "Aluguel sede"), num("col_1", 1200), str("col_2", "07/2025")}},
		}},
		{Name: "PLANILHA PAGTOS JULHO 2025", Records: []core.Record{
			{Line: 2, Fields: core.Fields{str("col_0", "ENTRADA SUS"), num("col_1", 5000)}},
			{Line: 3, Fields: core.Fields{str("col_0", "Pagamento fornecedor"), num("col_1", 800)}},
		}},
		{Name: "PLANILHA ACORDO ", Records: []core.Record{
			{Line: 2, Fields: core.Fields{str("col_0", "ACORDO FORNECEDOR X"), num("col_1", 1500), str("col_2", "10/2025")}},
		}},
		{Name: "PLANILHA PAGTOS ACORDOS FORN.", Records: []core.Record{
			{Line: 2, Fields: core.Fields{str("col_0", "Parcela acordo Y"), num("col_1", 250)}},
		}},
	}
}

type testEnv struct {
	srv    *Server
	source *memory.Store
	store  *dataset.Store
}

func newTestEnv(t *testing.T, load bool, opts Options) testEnv {
	t.Helper()
	source := memory.NewFromSheets(testSheets()...)
	store := dataset.New(source)
	if load {
		_, err := store.Load(context.Background())
		require.NoError(t, err)
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2025, 7, 31, 9, 0, 0, 0, time.UTC) }
	}
	srv := NewServer(opts, store)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return testEnv{srv: srv, source: source, store: store}
}

func (e testEnv) do(method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, false, Options{})

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/readyz").Code)

	_, err := env.store.Load(context.Background())
	require.NoError(t, err)
	rr := env.do(http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ready"`)
}

func TestMiddlewareHeaders(t *testing.T) {
	env := newTestEnv(t, true, Options{})
	rr := env.do(http.MethodGet, "/healthz")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "cdn.jsdelivr.net")
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, true, Options{})
	rr := env.do(http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "quinta-feira, 31 de julho de 2025")
	assert.Contains(t, body, "Energia elétrica")
	assert.Contains(t, body, "ACORDO FORNECEDOR X")
	assert.Contains(t, body, "Parcela acordo Y")
	assert.Contains(t, body, "R$ 5.000,00")
	assert.Contains(t, body, `id="chart-cashflow"`)
	assert.Contains(t, body, `value="07/"`)
}

func TestDashboardBeforeLoad(t *testing.T) {
	env := newTestEnv(t, false, Options{})
	rr := env.do(http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ainda não carregados")
	assert.Contains(t, rr.Body.String(), "Nenhum dado encontrado")
}

func TestTablePartial(t *testing.T) {
	env := newTestEnv(t, true, Options{PageSize: 1})

	tests := []struct {
		name     string
		target   string
		contains []string
		excludes []string
	}{
		{
			name:     "first page",
			target:   "/ui/table/atraso?page=0",
			contains: []string{"Energia elétrica", "2 registros"},
			excludes: []string{"Aluguel sede"},
		},
		{
			name:     "second page",
			target:   "/ui/table/atraso?page=1",
			contains: []string{"Aluguel sede", `/ui/row/atraso/1`},
			excludes: []string{"Energia elétrica"},
		},
		{
			name:     "page past the end",
			target:   "/ui/table/atraso?page=5",
			contains: []string{"Nenhum dado encontrado"},
		},
		{
			name:     "search term",
			target:   "/ui/table/atraso?q=ALUGUEL",
			contains: []string{"Aluguel sede", "1 registros", "R$ 1.200,00"},
			excludes: []string{"Energia elétrica"},
		},
		{
			name:     "month filter",
			target:   "/ui/table/atraso?mes=05/",
			contains: []string{"Energia elétrica"},
			excludes: []string{"Aluguel sede"},
		},
		{
			name:     "july shows transaction type",
			target:   "/ui/table/julho?page=0",
			contains: []string{"type-entrada"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rr.Code)
			for _, s := range tt.contains {
				assert.Contains(t, rr.Body.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, rr.Body.String(), s)
			}
		})
	}
}

func TestTablePartialHugePage(t *testing.T) {
	env := newTestEnv(t, true, Options{PageSize: 15})

	for _, page := range []int{math.MaxInt/15 + 1, math.MaxInt} {
		rr := env.do(http.MethodGet, "/ui/table/atraso?page="+strconv.Itoa(page))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Nenhum dado encontrado")
		assert.Contains(t, rr.Body.String(), "2 registros")
	}
}

func TestPartialTemplateFailure(t *testing.T) {
	env := newTestEnv(t, true, Options{})
	env.srv.templates = template.Must(template.New("broken").Parse(`{{define "table"}}<table>{{.Missing}}</table>{{end}}`))

	rr := env.do(http.MethodGet, "/ui/table/atraso")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `<div class="placeholder">Erro ao renderizar a tabela</div>`, rr.Body.String())
}

func TestTablePartialRemembersPage(t *testing.T) {
	env := newTestEnv(t, true, Options{PageSize: 1})

	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/ui/table/atraso?page=1").Code)
	rr := env.do(http.MethodGet, "/ui/table/atraso")
	assert.Contains(t, rr.Body.String(), "Aluguel sede")

	rr = env.do(http.MethodGet, "/ui/table/atraso?q=energia")
	assert.Contains(t, rr.Body.String(), "Energia elétrica")
	rr = env.do(http.MethodGet, "/ui/table/atraso")
	assert.Contains(t, rr.Body.String(), "Energia elétrica")
}

func TestTablePartialUnknownTable(t *testing.T) {
	env := newTestEnv(t, true, Options{})
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/ui/table/nope").Code)
}

func TestRowDetail(t *testing.T) {
	env := newTestEnv(t, true, Options{})

	rr := env.do(http.MethodGet, "/ui/row/acordos/1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Parcela acordo Y")
	assert.Contains(t, rr.Body.String(), "col_0")
	assert.Contains(t, rr.Body.String(), "R$ 250,00")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/ui/row/acordos/9").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/ui/row/acordos/x").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/ui/row/nope/0").Code)
}

func TestAPIBeforeLoad(t *testing.T) {
	env := newTestEnv(t, false, Options{})
	for _, path := range []string{"/api/metrics", "/api/summary", "/api/charts", "/api/charts/values"} {
		assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, path).Code, path)
	}
}

func TestAPI(t *testing.T) {
	env := newTestEnv(t, true, Options{})

	rr := env.do(http.MethodGet, "/api/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	assert.EqualValues(t, 2, m["contas_atraso"])
	assert.EqualValues(t, 2, m["pagamentos_julho"])
	assert.EqualValues(t, 2, m["acordos_ativos"])

	rr = env.do(http.MethodGet, "/api/summary")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "totais_por_categoria")

	rr = env.do(http.MethodGet, "/api/charts")
	require.Equal(t, http.StatusOK, rr.Code)
	var all struct {
		Order  []string                   `json:"order"`
		Charts map[string]json.RawMessage `json:"charts"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	assert.Len(t, all.Order, 6)
	assert.Len(t, all.Charts, 6)

	rr = env.do(http.MethodGet, "/api/charts/distribution")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"doughnut"`)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/charts/nope").Code)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, true, Options{})

	rr := env.do(http.MethodGet, "/export/atraso.csv")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "contas_atraso_completas.csv")
	assert.True(t, strings.HasPrefix(rr.Body.String(), "Linha Original,Descrição,Valor,Data,Observações"))
	assert.Contains(t, rr.Body.String(), `2,"Energia elétrica",300,"05/2025"`)

	rr = env.do(http.MethodGet, "/export/atraso.csv?q=aluguel&raw=1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "Energia")
	assert.Contains(t, rr.Body.String(), `"Aluguel sede"`)

	// The download holds exactly the rows the table shows, line numbers included.
	rr = env.do(http.MethodGet, "/ui/table/julho?q=2")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ENTRADA SUS")
	assert.NotContains(t, rr.Body.String(), "Pagamento fornecedor")
	rr = env.do(http.MethodGet, "/export/julho.csv?q=2")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `2,"ENTRADA SUS",5000`)
	assert.NotContains(t, rr.Body.String(), "Pagamento fornecedor")

	rr = env.do(http.MethodGet, "/export/atraso.csv?charset=windows-1252")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, bytes.Contains(rr.Body.Bytes(), []byte("Descri\xe7\xe3o")))

	rr = env.do(http.MethodGet, "/export/acordos.xlsx")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")))

	rr = env.do(http.MethodGet, "/export/atraso.csv?q=inexistente")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), "Nenhum dado para exportar")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/export/atraso.pdf").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/export/nope.csv").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/export/atraso.csv?charset=ebcdic").Code)
}

func TestReload(t *testing.T) {
	env := newTestEnv(t, true, Options{})

	rr := env.do(http.MethodPost, "/reload")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), "dashboard:reloaded")
	assert.Contains(t, rr.Body.String(), `"records":6`)

	env.source.Fail(errors.New("documento indisponível"))
	rr = env.do(http.MethodPost, "/reload")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Header().Get("HX-Trigger"), "Erro ao carregar dados financeiros")

	// the previous data stays available
	assert.True(t, env.store.Loaded())
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/metrics").Code)
}

func TestReloadRefreshesCachedTables(t *testing.T) {
	env := newTestEnv(t, true, Options{})
	assert.Contains(t, env.do(http.MethodGet, "/ui/table/atraso?q=luz").Body.String(), "Nenhum dado encontrado")

	sheets := testSheets()
	sheets[0].Records = append(sheets[0].Records, core.Record{
		Line: 4, Fields: core.Fields{str("col_0", "Conta de luz"), num("col_1", 90)},
	})
	env.source.Set(core.Snapshot{Sheets: sheets})
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/reload").Code)

	assert.Contains(t, env.do(http.MethodGet, "/ui/table/atraso?q=luz").Body.String(), "Conta de luz")
}

func TestReloadRateLimited(t *testing.T) {
	env := newTestEnv(t, true, Options{RateLimitPerMinute: 1})

	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/reload").Code)
	rr := env.do(http.MethodPost, "/reload")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	// reads are not limited
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz").Code)
}

func TestOpsMetrics(t *testing.T) {
	env := newTestEnv(t, true, Options{})
	env.do(http.MethodGet, "/ui/table/atraso?q=energia")
	env.do(http.MethodGet, "/ui/table/atraso?q=energia")

	rr := env.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `dataset_records{category="contas_atraso"} 2`)
	assert.Contains(t, rr.Body.String(), "cache_hits_total 1")
	assert.Contains(t, rr.Body.String(), "charts_rendered 6")
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, true, Options{})
	rr := env.do(http.MethodGet, "/static/dashboard.js")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "abc", sanitizeInput("  a\x00b\x07c "))
	assert.Len(t, []rune(sanitizeInput(strings.Repeat("é", 300))), maxQueryLength)
}

func TestParsePage(t *testing.T) {
	p, ok := parsePage(" 3 ")
	assert.True(t, ok)
	assert.Equal(t, 3, p)
	_, ok = parsePage("")
	assert.False(t, ok)
	_, ok = parsePage("x")
	assert.False(t, ok)
}
