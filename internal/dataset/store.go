// Package dataset holds the loaded financial data and answers every read the
// dashboard makes against it.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"painel/internal/aggregate"
	"painel/internal/charts"
	"painel/internal/core"
	"painel/internal/log"
	"painel/internal/rows"
	"painel/internal/sheets"
)

const DefaultLoadTimeout = 30 * time.Second

// LoadResult describes one finished load.
type LoadResult struct {
	Sheets   int
	Records  int
	LoadedAt time.Time
}

// LoadHook observes every load attempt. err is nil on success.
type LoadHook func(ctx context.Context, res LoadResult, err error)

// DetailedSummary combines metrics, category totals and per-sheet statistics.
type DetailedSummary struct {
	Metrics   core.Metrics               `json:"metricas_gerais"`
	Totals    []aggregate.CategoryTotal  `json:"totais_por_categoria"`
	Sheets    map[string]core.SheetStats `json:"estatisticas_por_aba"`
	UpdatedAt time.Time                  `json:"data_ultima_atualizacao"`
}

// Store owns the current snapshot. Loads replace it atomically; a failed load
// keeps whatever was loaded before.
type Store struct {
	source  sheets.SnapshotReader
	logger  *log.Logger
	timeout time.Duration
	now     func() time.Time

	group singleflight.Group

	mu    sync.RWMutex
	state *state
	hooks []LoadHook
}

// Option configures a Store.
type Option func(*Store)

// WithLoadTimeout bounds each load. Zero or negative keeps the default.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for load timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(source sheets.SnapshotReader, opts ...Option) *Store {
	s := &Store{
		source:  source,
		logger:  log.Discard(),
		timeout: DefaultLoadTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentDataset)
	return s
}

// OnLoad registers a hook run after every load attempt.
func (s *Store) OnLoad(h LoadHook) {
	s.mu.Lock()
	s.hooks = append(s.hooks, h)
	s.mu.Unlock()
}

// Load reads a fresh snapshot from the source. Concurrent calls share one read.
// Failures wrap core.ErrDataLoad and leave the previous snapshot in place.
func (s *Store) Load(ctx context.Context) (LoadResult, error) {
	v, err, shared := s.group.Do("load", func() (any, error) {
		return s.load(ctx)
	})
	if shared {
		s.logger.DebugContext(ctx, "Load shared with concurrent caller")
	}
	if err != nil {
		return LoadResult{}, err
	}
	return v.(LoadResult), nil
}

func (s *Store) load(ctx context.Context) (LoadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	snap, err := s.source.ReadSnapshot(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", core.ErrDataLoad, err)
		s.logger.ErrorContext(ctx, "Failed to load financial data",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err,
			"timeout", errors.Is(err, context.DeadlineExceeded))
		s.runHooks(ctx, LoadResult{}, err)
		return LoadResult{}, err
	}

	st := newState(snap, s.now())
	res := LoadResult{Sheets: len(snap.Sheets), Records: st.records, LoadedAt: st.loadedAt}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Financial data loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldSheets, res.Sheets,
		log.FieldRows, res.Records,
		log.FieldDuration, s.now().Sub(start).Milliseconds())
	s.runHooks(ctx, res, nil)
	return res, nil
}

func (s *Store) runHooks(ctx context.Context, res LoadResult, err error) {
	s.mu.RLock()
	hooks := append([]LoadHook(nil), s.hooks...)
	s.mu.RUnlock()
	for _, h := range hooks {
		h(ctx, res, err)
	}
}

func (s *Store) current() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loaded reports whether a snapshot has been loaded.
func (s *Store) Loaded() bool {
	return s.current() != nil
}

// LoadedAt is the time of the last successful load.
func (s *Store) LoadedAt() (time.Time, bool) {
	st := s.current()
	if st == nil {
		return time.Time{}, false
	}
	return st.loadedAt, true
}

// Snapshot returns a copy of the loaded snapshot.
func (s *Store) Snapshot() (core.Snapshot, error) {
	st := s.current()
	if st == nil {
		return core.Snapshot{}, core.ErrNotLoaded
	}
	out := core.Snapshot{Summary: st.snap.Summary, Sheets: make([]core.Sheet, len(st.snap.Sheets))}
	for i, sh := range st.snap.Sheets {
		out.Sheets[i] = core.Sheet{Name: sh.Name, Records: append([]core.Record(nil), sh.Records...)}
	}
	return out, nil
}

// SheetNames lists the loaded sheets in source order.
func (s *Store) SheetNames() []string {
	st := s.current()
	if st == nil {
		return nil
	}
	return append([]string(nil), st.names...)
}

// Sheet finds a sheet by exact name, then trimmed name, then fuzzy match.
func (s *Store) Sheet(name string) ([]core.Record, bool) {
	st := s.current()
	if st == nil {
		return nil, false
	}
	i, ok := st.lookup(name)
	if !ok {
		return nil, false
	}
	return append([]core.Record(nil), st.snap.Sheets[i].Records...), true
}

// Records returns the records of the category's sheet. Missing sheets yield nil.
func (s *Store) Records(c core.Category) []core.Record {
	st := s.current()
	if st == nil {
		return nil
	}
	i, ok := st.byCategory[c]
	if !ok {
		return nil
	}
	return append([]core.Record(nil), st.snap.Sheets[i].Records...)
}

func (s *Store) Overdue() []core.Record            { return s.Records(core.Overdue) }
func (s *Store) JulyPayments() []core.Record       { return s.Records(core.JulyPayments) }
func (s *Store) Agreements() []core.Record         { return s.Records(core.Agreements) }
func (s *Store) SupplierAgreements() []core.Record { return s.Records(core.SupplierAgreements) }

// Rows returns the category's records normalized.
func (s *Store) Rows(c core.Category) []core.Row {
	return rows.NormalizeAll(s.Records(c))
}

// TableRecords concatenates the records of every category shown in the table.
func (s *Store) TableRecords(t core.Table) []core.Record {
	var out []core.Record
	for _, c := range t.Categories() {
		out = append(out, s.Records(c)...)
	}
	return out
}

// TableRows returns the table's records normalized.
func (s *Store) TableRows(t core.Table) []core.Row {
	return rows.NormalizeAll(s.TableRecords(t))
}

// Summary returns the loaded summary document.
func (s *Store) Summary() core.Summary {
	st := s.current()
	if st == nil {
		return core.Summary{}
	}
	return st.snap.Summary
}

// Verification is the line-by-line verification part of the summary.
func (s *Store) Verification() core.Summary {
	sum := s.Summary()
	return core.Summary{General: sum.General, Sheets: sum.Sheets}
}

// Executive is the executive summary part of the summary.
func (s *Store) Executive() core.Summary {
	sum := s.Summary()
	return core.Summary{Financial: sum.Financial, SheetTypes: sum.SheetTypes}
}

// Metrics computes the dashboard metrics. Zero metrics before the first load.
func (s *Store) Metrics() core.Metrics {
	if !s.Loaded() {
		return core.Metrics{}
	}
	return aggregate.MetricsFrom(s.Records, s.Summary())
}

// TotalsByCategory sums the normalized values of every category.
func (s *Store) TotalsByCategory() []aggregate.CategoryTotal {
	return aggregate.TotalsByCategory(s.Records)
}

// DetailedSummary is the full summary served to API clients.
func (s *Store) DetailedSummary() DetailedSummary {
	sheets := s.Summary().Sheets
	if sheets == nil {
		sheets = map[string]core.SheetStats{}
	}
	return DetailedSummary{
		Metrics:   s.Metrics(),
		Totals:    s.TotalsByCategory(),
		Sheets:    sheets,
		UpdatedAt: s.now(),
	}
}

// ChartInput gathers the data the data-bound charts draw from.
func (s *Store) ChartInput() charts.Input {
	in := charts.Input{
		Sheets:          s.Summary().SheetTypes,
		OverdueTotal:    aggregate.TotalRecords(s.Overdue()),
		JulyTotal:       aggregate.TotalRecords(s.JulyPayments()),
		AgreementsTotal: aggregate.TotalRecords(s.TableRecords(core.TableAgreements)),
	}
	if len(in.Sheets) == 0 {
		if st := s.current(); st != nil {
			for _, sh := range st.snap.Sheets {
				in.Sheets = append(in.Sheets, core.SheetInfo{Name: sh.Name, Lines: len(sh.Records)})
			}
		}
	}
	return in
}
