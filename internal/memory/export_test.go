package memory

import "time"

// SetNowFunc overrides the store clock for tests and returns a restore func.
func SetNowFunc(f func() time.Time) func() {
	old := now
	now = f
	return func() { now = old }
}
