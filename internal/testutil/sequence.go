package testutil

import "sync"

// Sequence hands out fixture ids.
//
// Safe for concurrent use. Reset lets one scenario run twice with identical
// ids.
type Sequence struct {
	mu  sync.Mutex
	cur int64
}

// NewSequence creates a sequence whose first Next returns 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next increments and returns the next id.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur++
	return s.cur
}

// Current returns the last id handed out without advancing.
func (s *Sequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Reset rewinds the sequence to 0.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = 0
}
