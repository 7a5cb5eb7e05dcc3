// Package tableview file: internal/tableview/store.go
package tableview

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStaleResponse is returned by Refresh when a newer refresh started meanwhile.
// The stale rows are dropped.
var ErrStaleResponse = errors.New("stale response discarded")

// FetchFunc loads the full, unfiltered row set.
type FetchFunc func(ctx context.Context) ([]Row, error)

// Store holds the unfiltered rows of one view. Rows are replaced wholesale on each
// successful refresh and never mutated in place.
type Store struct {
	mu         sync.RWMutex
	rows       []Row
	loaded     bool
	loadedAt   time.Time
	lastErr    error
	generation uint64
	cancel     context.CancelFunc
	// pending is closed once the latest generation settles; nil when idle.
	pending chan struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{rows: []Row{}}
}

// Snapshot is a consistent read of the store.
type Snapshot struct {
	Rows       []Row
	Loaded     bool
	LoadedAt   time.Time
	LastError  error
	Generation uint64
}

// Snapshot returns the current rows and status.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Rows:       s.rows,
		Loaded:     s.loaded,
		LoadedAt:   s.loadedAt,
		LastError:  s.lastErr,
		Generation: s.generation,
	}
}

// Rows returns the current row set.
func (s *Store) Rows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Refresh fetches a new row set. Starting a refresh cancels the previous in-flight
// one, and only the latest generation may commit. On fetch failure the previous rows
// are kept and the error is recorded.
func (s *Store) Refresh(ctx context.Context, fetch FetchFunc) (uint64, error) {
	fetchCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.cancel = cancel
	if s.pending == nil {
		s.pending = make(chan struct{})
	}
	s.mu.Unlock()

	rows, err := fetch(fetchCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		cancel()
		return gen, ErrStaleResponse
	}
	s.cancel = nil
	cancel()
	s.settle()

	if err != nil {
		s.lastErr = err
		return gen, err
	}
	if rows == nil {
		rows = []Row{}
	}
	s.rows = rows
	s.loaded = true
	s.loadedAt = time.Now()
	s.lastErr = nil
	return gen, nil
}

// Replace commits rows directly, superseding any in-flight refresh.
func (s *Store) Replace(rows []Row) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.settle()
	if rows == nil {
		rows = []Row{}
	}
	s.generation++
	s.rows = rows
	s.loaded = true
	s.loadedAt = time.Now()
	s.lastErr = nil
	return s.generation
}

// Wait blocks until the latest refresh has settled, then returns the snapshot.
// A caller whose refresh was superseded uses it to read the newer result.
func (s *Store) Wait(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	pending := s.pending
	s.mu.RUnlock()
	if pending != nil {
		select {
		case <-pending:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
	return s.Snapshot(), nil
}

// settle wakes Wait callers. s.mu must be held.
func (s *Store) settle() {
	if s.pending != nil {
		close(s.pending)
		s.pending = nil
	}
}

// Close cancels any in-flight refresh.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.settle()
}
