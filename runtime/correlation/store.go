package correlation

import "sync"

// Store tracks in-flight groups by id
type Store[T any] struct {
	mu     sync.Mutex
	groups map[string]*Group[T]
}

// NewStore creates a group store
func NewStore[T any]() *Store[T] {
	return &Store[T]{groups: make(map[string]*Group[T])}
}

// Create registers a new group. If it already exists the existing pointer is
// returned with created set to false.
func (s *Store[T]) Create(g *Group[T]) (*Group[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.groups[g.ID]; ok {
		return existing, false
	}
	s.groups[g.ID] = g
	return g, true
}

// Delete removes a group
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	delete(s.groups, id)
	s.mu.Unlock()
}
