// Package store holds client-side state owned by a single store per concern.
// State changes only through store methods, and subscribers are told after
// every change.
package store

import "sync"

// subscribers is the fan-out list shared by every store. Snapshots are
// versioned by the store under its own lock; delivery is serialized and skips
// anything older than what subscribers have already seen, so the last value a
// subscriber receives is always the latest state.
type subscribers[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)

	latest     uint64
	pending    T
	hasPending bool
	delivering bool
}

func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(T))
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fns, id)
			s.mu.Unlock()
		})
	}
}

// publish delivers v, taken at version seq. Callbacks run without the lock
// held and may call back into the store; such nested changes are delivered by
// the outer publish once the current round returns.
func (s *subscribers[T]) publish(seq uint64, v T) {
	s.mu.Lock()
	if seq <= s.latest {
		s.mu.Unlock()
		return
	}
	s.latest = seq
	s.pending = v
	s.hasPending = true
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	defer func() {
		s.mu.Lock()
		s.delivering = false
		s.mu.Unlock()
	}()

	for s.hasPending {
		cur := s.pending
		var zero T
		s.pending = zero
		s.hasPending = false
		fns := make([]func(T), 0, len(s.fns))
		for _, fn := range s.fns {
			fns = append(fns, fn)
		}
		s.mu.Unlock()
		for _, fn := range fns {
			fn(cur)
		}
		s.mu.Lock()
	}
	s.mu.Unlock()
}

// generation orders overlapping fetches: a response is applied only if no
// later fetch has been applied already.
type generation struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

func (g *generation) begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.issued
}

// commit reports whether the fetch numbered n may be applied and records it.
func (g *generation) commit(n uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n < g.applied {
		return false
	}
	g.applied = n
	return true
}

// invalidate drops every fetch issued so far, e.g. on sign-out.
func (g *generation) invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	g.applied = g.issued
}
