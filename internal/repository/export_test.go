package repository

import "time"

// SetClock replaces the time source of r.
func SetClock[T any, PT Record[T]](r *Repository[T, PT], now func() time.Time) {
	r.now = now
}
