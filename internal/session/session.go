// Package session holds the per-round prover session. The refinement driver
// opens one session per round, passes it to every interpolation query and
// closes it when the round ends; nothing outlives the round.
package session

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/specialistvlad/argcegar/internal/ctxlog"
)

// Session caches prover answers for one refinement round. It is safe for
// concurrent use, since a timed-out query may still be running when the
// round closes it.
type Session struct {
	round int

	mu     sync.Mutex
	cache  map[uint64]any
	hits   int
	misses int
	closed bool
}

// New opens the session of a refinement round.
func New(ctx context.Context, round int) *Session {
	ctxlog.FromContext(ctx).Debug("Opened prover session.", "round", round)
	return &Session{round: round, cache: make(map[uint64]any)}
}

// Round returns the round number the session belongs to.
func (s *Session) Round() int { return s.round }

// Lookup returns a cached answer.
func (s *Session) Lookup(key uint64) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache[key]
	if ok {
		s.hits++
	} else {
		s.misses++
	}
	return v, ok
}

// Store caches an answer. It is a no-op on a closed session.
func (s *Session) Store(key uint64, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cache[key] = v
}

// Stats returns the cache hits and misses so far.
func (s *Session) Stats() (hits, misses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}

// Close drops the cache. Later lookups miss and stores are ignored.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Closed prover session.",
		"round", s.round, "entries", len(s.cache), "hits", s.hits, "misses", s.misses)
	s.closed = true
	s.cache = map[uint64]any{}
	return nil
}

// Key hashes the parts of a query into a cache key.
func Key(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
