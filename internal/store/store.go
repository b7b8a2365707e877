package store

import (
	"sync"

	"CafeteriaScanner/internal/domain"
)

// Store is the in-memory order collection, ordered newest-first by insertion
// time. It is the single source of truth read by aggregation and any
// presentation layer.
type Store struct {
	mu       sync.RWMutex
	orders   []domain.Order
	ids      map[string]struct{}
	revision uint64
}

// New builds an empty store.
func New() *Store {
	return &Store{ids: map[string]struct{}{}}
}

// Append inserts the order at the front. An order whose ID is already present
// is dropped, which makes retrying and overlapping sync paths safe. Returns
// whether the order was actually inserted.
func (s *Store) Append(order domain.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[order.ID]; ok {
		return false
	}

	s.ids[order.ID] = struct{}{}
	s.orders = append([]domain.Order{order}, s.orders...)
	s.revision++
	return true
}

// All returns a snapshot of the current contents in insertion order,
// newest first. The returned slice is a copy.
func (s *Store) All() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]domain.Order, len(s.orders))
	copy(snapshot, s.orders)
	return snapshot
}

// Len reports the number of stored orders.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// Revision increases by one on every effective append. Observers can compare
// revisions to detect changes without diffing snapshots.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}
