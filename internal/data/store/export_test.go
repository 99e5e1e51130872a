package store

import "time"

func SetOTPClock(s *InMemoryOTPStore, now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
