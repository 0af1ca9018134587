package http

import (
	"net/http"

	"painel/internal/charts"
)

func (s *Server) requireLoaded(w http.ResponseWriter) bool {
	if s.store.Loaded() {
		return true
	}
	writeJSONError(w, http.StatusServiceUnavailable, "dados financeiros não carregados")
	return false
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !s.requireLoaded(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.store.Metrics())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !s.requireLoaded(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.store.DetailedSummary())
}

// handleCharts returns every rendered chart configuration keyed by name.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if !s.requireLoaded(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order":  charts.Names(),
		"charts": s.charts.All(),
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !s.requireLoaded(w) {
		return
	}
	cfg, ok := s.charts.Get(r.PathValue("name"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "gráfico desconhecido")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
