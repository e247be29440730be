package dashboard

import (
	"sync"
)

// Ticket marks the arrival order of a selection event
type Ticket uint64

// Sequencer keeps overlapping selection computations from delivering out of
// order. Tickets are issued when a selection is received; a result is only
// delivered if its ticket is newer than the last delivered one.
type Sequencer struct {
	mu        sync.Mutex
	issued    Ticket
	delivered Ticket
}

// Next issues the ticket for a newly received selection
func (s *Sequencer) Next() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Deliver calls fn if t is newer than every delivered ticket and reports
// whether it did. fn runs under the sequencer lock, so deliveries never
// interleave.
func (s *Sequencer) Deliver(t Ticket, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t <= s.delivered {
		return false
	}
	s.delivered = t
	fn()
	return true
}

// Latest returns the most recently issued ticket
func (s *Sequencer) Latest() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}
