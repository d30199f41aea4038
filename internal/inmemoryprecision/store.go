// Package inmemoryprecision provides an ephemeral, thread-safe, in-memory
// implementation of the precisionstore.Store interface.
//
// # Concurrency Model
//
// Unlike inmemoryarg, which guards its arena with a RWMutex, this store uses
// sync.Map. Keys are independent: each node's precision is written once when
// the node is added and replaced wholesale by refinement.
package inmemoryprecision

import (
	"sync"

	"github.com/specialistvlad/argcegar/internal/domain"
	"github.com/specialistvlad/argcegar/internal/nodeid"
	"github.com/specialistvlad/argcegar/internal/precisionstore"
)

// Store is an in-memory implementation of precisionstore.Store.
type Store struct {
	precisions sync.Map // Key: nodeid.Ref, Value: domain.Precision
}

var _ precisionstore.Store = (*Store)(nil)

// New creates a new, empty precision store.
func New() *Store {
	return &Store{}
}

func (s *Store) Set(ref nodeid.Ref, p domain.Precision) {
	s.precisions.Store(ref, p)
}

func (s *Store) Get(ref nodeid.Ref) (domain.Precision, bool) {
	v, ok := s.precisions.Load(ref)
	if !ok {
		return nil, false
	}
	return v.(domain.Precision), true
}

func (s *Store) Delete(ref nodeid.Ref) {
	s.precisions.Delete(ref)
}

func (s *Store) Range(fn func(ref nodeid.Ref, p domain.Precision) bool) {
	s.precisions.Range(func(k, v any) bool {
		return fn(k.(nodeid.Ref), v.(domain.Precision))
	})
}
