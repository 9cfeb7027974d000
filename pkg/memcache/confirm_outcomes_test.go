package mem

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOutcomesExpire(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewOutcomes()
	s.now = func() time.Time { return now }

	s.Set("pi_1", "completed", time.Minute)
	status, ok := s.Get("pi_1")
	assert.True(t, ok)
	assert.Equal(t, "completed", status)

	now = now.Add(2 * time.Minute)
	_, ok = s.Get("pi_1")
	assert.False(t, ok)

	_, ok = s.Get("pi_missing")
	assert.False(t, ok)
}

func TestOutcomesZeroTTLIsNoop(t *testing.T) {
	s := NewOutcomes()
	s.Set("pi_1", "completed", 0)
	_, ok := s.Get("pi_1")
	assert.False(t, ok)
}

func TestOutcomesSweepExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewOutcomes()
	s.now = func() time.Time { return now }

	for i := 0; i < sweepEvery-1; i++ {
		s.Set(fmt.Sprintf("pi_%d", i), "completed", time.Second)
	}
	now = now.Add(time.Minute)
	s.Set("pi_fresh", "failed", time.Hour)

	assert.Equal(t, 1, s.Len())
}
