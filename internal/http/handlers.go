package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"painel/internal/charts"
	"painel/internal/core"
	"painel/internal/log"
)

const reloadTimeout = 60 * time.Second

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady reports ready once templates are parsed and the data is loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if at, ok := s.store.LoadedAt(); ok {
		checks["data"] = map[string]interface{}{
			"status":    "ok",
			"loaded_at": at.Format(time.RFC3339),
			"sheets":    len(s.store.SheetNames()),
		}
	} else {
		checks["data"] = "not_loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	stats := s.tableCache.Stats()
	checks["cache"] = map[string]interface{}{
		"table_entries": stats.Size,
		"status":        "ok",
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleOpsMetrics provides request, cache and security counters in plain text format
func (s *Server) handleOpsMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	cacheStats := s.tableCache.Stats()
	metrics := s.store.Metrics()

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP dataset_records Records per category in the loaded data\n")
	fmt.Fprintf(w, "# TYPE dataset_records gauge\n")
	for _, c := range core.Categories() {
		fmt.Fprintf(w, "dataset_records{category=%q} %d\n", string(c), len(s.store.Records(c)))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP dataset_numeric_values Numeric values found by the verification\n")
	fmt.Fprintf(w, "# TYPE dataset_numeric_values gauge\n")
	fmt.Fprintf(w, "dataset_numeric_values %d\n\n", metrics.NumericValues)

	fmt.Fprintf(w, "# HELP cache_hits_total Total table cache hits\n")
	fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
	fmt.Fprintf(w, "cache_hits_total %d\n\n", cacheStats.Hits)

	fmt.Fprintf(w, "# HELP cache_misses_total Total table cache misses\n")
	fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
	fmt.Fprintf(w, "cache_misses_total %d\n\n", cacheStats.Misses)

	fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n")
	fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries{type=\"tables\"} %d\n\n", cacheStats.Size)

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP charts_rendered Charts currently rendered\n")
	fmt.Fprintf(w, "# TYPE charts_rendered gauge\n")
	fmt.Fprintf(w, "charts_rendered %d\n\n", len(s.charts.Names()))

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", time.Since(s.startedAt).Seconds())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := dashboardView{
		Date:    core.FormatLongDate(s.now()),
		Loaded:  s.store.Loaded(),
		Metrics: newMetricsView(s.store.Metrics()),
		July:    newJulyView(s.store.Rows(core.JulyPayments)),
		Charts:  charts.Names(),
		Months:  monthOptions(),
	}
	if at, ok := s.store.LoadedAt(); ok {
		data.LoadedAt = at.Format("02/01/2006 15:04")
	}
	for _, t := range core.Tables() {
		data.Tables = append(data.Tables, s.buildTable(r.Context(), t, 0, "", ""))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender)
		http.Error(w, "Erro ao renderizar o painel", http.StatusInternalServerError)
	}
}

// handleReload re-reads both documents. The previous data stays in place on failure.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), reloadTimeout)
	defer cancel()

	res, err := s.store.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Reload failed",
			log.FieldError, err,
			log.FieldOperation, log.OpLoad)
		NewHTMXResponse().
			Status(http.StatusServiceUnavailable).
			TriggerErrorNotification("Erro ao carregar dados financeiros").
			BodyJSON(map[string]string{"error": loadErrorMessage(err)}).
			Write(w)
		return
	}

	s.logger.InfoContext(r.Context(), "Financial data reloaded",
		log.FieldSheets, res.Sheets,
		log.FieldRows, res.Records)
	NewHTMXResponse().
		TriggerDataReloaded(res.Records).
		TriggerSuccessNotification("Dados financeiros atualizados").
		BodyJSON(map[string]interface{}{
			"status":    "ok",
			"sheets":    res.Sheets,
			"records":   res.Records,
			"loaded_at": res.LoadedAt.Format(time.RFC3339),
		}).
		Write(w)
}

func loadErrorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "tempo esgotado ao carregar os dados"
	}
	return err.Error()
}
