// Package sequence provides the monotonic id generators used for movies,
// screenings, bookings, payments and notifications. Generators are seeded
// from the loaded collections at startup instead of living as hidden global
// counters on the types themselves.
package sequence

import "sync"

type Sequence struct {
	mu   sync.Mutex
	next int64
}

// New returns a sequence whose first Next call yields start.
func New(start int64) *Sequence {
	return &Sequence{next: start}
}

func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	return id
}

// Observe raises the sequence floor above an id seen in persisted data.
func (s *Sequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id >= s.next {
		s.next = id + 1
	}
}
