// Package table paginates and filters the dashboard tables.
package table

import "sync"

const (
	DefaultPageSize = 15
	CompactPageSize = 10
	MaxPageButtons  = 10
	windowLead      = 5
)

// Page returns the items of the zero-based page. Pages outside the data return an empty slice.
func Page[T any](items []T, page, size int) []T {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 0 || page >= TotalPages(len(items), size) {
		return []T{}
	}
	start := page * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages is ceil(n/size).
func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Window describes the page buttons shown under a table.
type Window struct {
	Current int   `json:"pagina"`
	Total   int   `json:"total_paginas"`
	Pages   []int `json:"paginas"`
	HasPrev bool  `json:"anterior"`
	HasNext bool  `json:"proxima"`
}

// NewWindow builds the button window [max(0, current-5), min(total, start+max)).
func NewWindow(current, total, max int) Window {
	if max <= 0 {
		max = MaxPageButtons
	}
	start := current - windowLead
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + max
	if end > total {
		end = total
	}

	pages := make([]int, 0, max)
	for p := start; p < end; p++ {
		pages = append(pages, p)
	}
	return Window{
		Current: current,
		Total:   total,
		Pages:   pages,
		HasPrev: current > 0,
		HasNext: current < total-1,
	}
}

// Pager remembers the current page of each table.
type Pager struct {
	mu    sync.RWMutex
	pages map[string]int
}

func NewPager() *Pager {
	return &Pager{pages: make(map[string]int)}
}

// Get returns the current page of key, zero when unset.
func (p *Pager) Get(key string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pages[key]
}

// Set stores the current page of key. Negative pages are stored as zero.
func (p *Pager) Set(key string, page int) {
	if page < 0 {
		page = 0
	}
	p.mu.Lock()
	p.pages[key] = page
	p.mu.Unlock()
}

// Reset moves key back to the first page.
func (p *Pager) Reset(key string) {
	p.Set(key, 0)
}

// ResetAll moves every table back to the first page.
func (p *Pager) ResetAll() {
	p.mu.Lock()
	clear(p.pages)
	p.mu.Unlock()
}
