package keys

import "time"

// Clock returns a monotonic millisecond tick.
type Clock func() uint64

var processStart = time.Now()

// MonotonicMs is the default Clock. It never returns 0 so that a zero tick can
// mean "no input recorded yet".
func MonotonicMs() uint64 {
	return uint64(time.Since(processStart).Milliseconds()) + 1
}

// Elapsed returns now-then, or 0 when the clock went backwards.
func Elapsed(now, then uint64) uint64 {
	if now < then {
		return 0
	}
	return now - then
}
