// Package http serves the financial dashboard: the page, its HTMX partials,
// the JSON API and the downloads.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"painel/internal/cache"
	"painel/internal/charts"
	"painel/internal/dataset"
	"painel/internal/log"
	"painel/internal/middleware/ratelimit"
	"painel/internal/middleware/security"
	"painel/internal/middleware/trace"
	"painel/internal/table"
	appweb "painel/web"
)

const (
	tableCacheSize     = 200
	cacheCleanupPeriod = 10 * time.Minute
	staticMaxAge       = 3600
)

// Options configures a Server.
type Options struct {
	Addr               string
	PageSize           int
	CacheTTL           time.Duration
	RateLimitPerMinute int
	Logger             *log.Logger
	// Now overrides the clock used for the dashboard date.
	Now func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	store     *dataset.Store
	charts    *charts.Manager
	pager     *table.Pager
	pageSize  int
	logger    *log.Logger
	now       func() time.Time
	startedAt time.Time

	tableCache   *cache.LRUCache[filteredTable]
	cacheManager *cache.Manager

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
// Charts and cached tables are rebuilt after every successful load of store.
func NewServer(opts Options, store *dataset.Store) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = table.DefaultPageSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	mux := http.NewServeMux()
	detector := security.NewDetector(logger)

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:            store,
		charts:           charts.NewManager(logger),
		pager:            table.NewPager(),
		pageSize:         opts.PageSize,
		logger:           logger.WithComponent(log.ComponentHTTP),
		now:              opts.Now,
		startedAt:        time.Now(),
		tableCache:       cache.NewLRUCache[filteredTable](tableCacheSize, opts.CacheTTL),
		cacheManager:     cache.NewManager(logger),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Methods:           []string{http.MethodPost},
		}, logger),
	}

	s.cacheManager.Register(s.tableCache)
	s.cacheManager.StartCleanup(cacheCleanupPeriod)
	store.OnLoad(s.onLoad)
	if store.Loaded() {
		s.charts.RenderAll(store.ChartInput())
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err, log.FieldComponent, log.ComponentTemplate)
		t = nil
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleOpsMetrics)

	// UI partials
	mux.HandleFunc("GET /ui/table/{key}", s.handleTable)
	mux.HandleFunc("GET /ui/row/{key}/{index}", s.handleRowDetail)

	// JSON API
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/charts", s.handleCharts)
	mux.HandleFunc("GET /api/charts/{name}", s.handleChart)

	// Downloads
	mux.HandleFunc("GET /export/{file}", s.handleExport)

	mux.HandleFunc("POST /reload", s.handleReload)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(detector.ExtractClientIP, s.onRateLimited)

	var h http.Handler = mux
	h = limit(h)
	h = headers.Middleware(h)
	h = detector.Middleware(h)
	h = log.RequestIDMiddleware(trace.RequestID)(h)
	h = log.Middleware(s.logger)(h)
	h = s.traceMiddleware.Middleware(h)
	s.Handler = h

	return s
}

// onLoad keeps derived state in step with the store.
func (s *Server) onLoad(ctx context.Context, res dataset.LoadResult, err error) {
	if err != nil {
		return
	}
	purged := s.cacheManager.PurgeAll()
	s.pager.ResetAll()
	s.charts.RenderAll(s.store.ChartInput())
	s.logger.DebugContext(ctx, "Dashboard state refreshed",
		log.FieldRows, res.Records,
		"cache_entries_purged", purged)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		Header("Retry-After", "60").
		TriggerErrorNotification("Muitas requisições. Tente novamente em instantes.").
		Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		s.charts.DestroyAll()
		if err := s.Server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("http shutdown: %w", err)
		}
	})
	return shutdownErr
}
