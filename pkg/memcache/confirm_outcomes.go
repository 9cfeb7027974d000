package mem

import (
	"sync"
	"time"
)

// OutcomeStore remembers the final status of a payment reference so repeated
// client polls can be answered without another provider round trip.
type OutcomeStore interface {
	Set(reference string, status string, ttl time.Duration)

	// Get returns the stored status if present and not expired.
	Get(reference string) (string, bool)
}

type entry struct {
	status    string
	expiresAt time.Time
}

type Outcomes struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
	// sets counts writes; every sweepEvery writes drop expired entries.
	sets int
}

const sweepEvery = 256

func NewOutcomes() *Outcomes {
	return &Outcomes{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *Outcomes) Set(reference string, status string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.data[reference] = entry{
		status:    status,
		expiresAt: now.Add(ttl),
	}

	s.sets++
	if s.sets%sweepEvery == 0 {
		for k, e := range s.data {
			if now.After(e.expiresAt) {
				delete(s.data, k)
			}
		}
	}
}

func (s *Outcomes) Get(reference string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[reference]
	if !ok || s.now().After(e.expiresAt) {
		return "", false
	}
	return e.status, true
}

func (s *Outcomes) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
