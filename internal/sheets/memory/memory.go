package memory

import (
	"context"
	"sync"

	"painel/internal/core"
	ports "painel/internal/sheets"
)

// Store serves a fixed snapshot. It backs demos and tests.
type Store struct {
	mu    sync.Mutex
	snap  core.Snapshot
	err   error
	reads int
}

var _ ports.SnapshotReader = (*Store)(nil)

func New(snap core.Snapshot) *Store {
	return &Store{snap: snap}
}

// NewFromSheets builds a store whose summary is computed from the sheets themselves.
func NewFromSheets(sheets ...core.Sheet) *Store {
	return New(core.Snapshot{Sheets: sheets, Summary: ports.Summarize(sheets)})
}

// ReadSnapshot returns a copy of the stored snapshot, or the configured failure.
func (s *Store) ReadSnapshot(ctx context.Context) (core.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return core.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return core.Snapshot{}, s.err
	}
	out := s.snap
	out.Sheets = make([]core.Sheet, len(s.snap.Sheets))
	for i, sh := range s.snap.Sheets {
		out.Sheets[i] = core.Sheet{Name: sh.Name, Records: append([]core.Record(nil), sh.Records...)}
	}
	return out, nil
}

// Set replaces the snapshot served by subsequent reads.
func (s *Store) Set(snap core.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Fail makes subsequent reads return err. A nil err restores normal reads.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Reads reports how many times the snapshot was read.
func (s *Store) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
