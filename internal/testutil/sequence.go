package testutil

import "sync"

// Sequence hands out deterministic, strictly increasing row ids for fake
// transports.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Sequence struct {
	mu   sync.Mutex
	next int64
}

// NewSequence creates a sequence whose first Next() returns start.
func NewSequence(start int64) *Sequence {
	return &Sequence{next: start}
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return id
}

// Peek returns the id the next call to Next() will return.
func (s *Sequence) Peek() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
