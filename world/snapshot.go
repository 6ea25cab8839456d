package world

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// snapshot lazily captures one instant per compile generation. The lock is
// the world's only defence against a compiler that queries the date from
// multiple goroutines.
type snapshot struct {
	mu   sync.Mutex
	at   time.Time
	held bool
}

func (s *snapshot) capture(c clock.Clock) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held {
		s.at = c.Now()
		s.held = true
	}
	return s.at
}

func (s *snapshot) reset() {
	s.mu.Lock()
	s.held = false
	s.mu.Unlock()
}
