package service

import "time"

// SetEventsClock replaces the time source of s.
func SetEventsClock(s *Events, now func() time.Time) {
	s.now = now
}
