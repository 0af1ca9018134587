package charts

import (
	"sync"
	"time"

	"painel/internal/log"
)

// Chart is one rendered chart.
type Chart struct {
	Name       string
	Config     Config
	RenderedAt time.Time
}

// Manager owns the rendered charts. Rendering a name that already exists
// destroys the previous chart first, so at most one chart lives per name.
type Manager struct {
	mu     sync.RWMutex
	charts map[string]*Chart
	order  []string
	logger *log.Logger
	now    func() time.Time
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		charts: make(map[string]*Chart),
		logger: logger.WithComponent(log.ComponentCharts),
		now:    time.Now,
	}
}

// Render stores cfg under name, replacing any previous chart.
func (m *Manager) Render(name string, cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.charts[name]; ok {
		m.destroyLocked(name)
	}
	m.charts[name] = &Chart{Name: name, Config: cfg.Clone(), RenderedAt: m.now()}
	m.order = append(m.order, name)
	m.logger.Debug("Chart rendered", log.FieldChart, name, log.FieldOperation, log.OpRender)
}

// RenderAll rebuilds every chart from in.
func (m *Manager) RenderAll(in Input) {
	for _, name := range Names() {
		cfg, err := Build(name, in)
		if err != nil {
			m.logger.Error("Failed to build chart", log.FieldChart, name, log.FieldError, err)
			continue
		}
		m.Render(name, cfg)
	}
}

// Get returns a copy of the named chart's configuration.
func (m *Manager) Get(name string) (Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.charts[name]
	if !ok {
		return Config{}, false
	}
	return c.Config.Clone(), true
}

// All returns copies of every chart configuration keyed by name.
func (m *Manager) All() map[string]Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Config, len(m.charts))
	for name, c := range m.charts {
		out[name] = c.Config.Clone()
	}
	return out
}

// Update replaces the data of an existing chart. It reports false when no chart has that name.
func (m *Manager) Update(name string, data Data) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.charts[name]
	if !ok {
		return false
	}
	cfg := Config{Data: data}.Clone()
	c.Config.Data = cfg.Data
	c.RenderedAt = m.now()
	return true
}

// Destroy removes the named chart. It reports whether a chart was removed.
func (m *Manager) Destroy(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.charts[name]; !ok {
		return false
	}
	m.destroyLocked(name)
	return true
}

// DestroyAll removes every chart.
func (m *Manager) DestroyAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.charts)
	m.order = nil
}

// Names returns the rendered chart names in render order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

func (m *Manager) destroyLocked(name string) {
	delete(m.charts, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.logger.Debug("Chart destroyed", log.FieldChart, name)
}
