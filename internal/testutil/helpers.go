package testutil

import "sync/atomic"

// Ptr returns a pointer to v. Chord literals need it for the optional key.
//
//	testutil.Ptr(uint32(0x41))
func Ptr[T any](v T) *T { return &v }

// FakeClock is a settable millisecond clock.
type FakeClock struct {
	ms atomic.Uint64
}

// NewFakeClock starts the clock at start.
func NewFakeClock(start uint64) *FakeClock {
	c := &FakeClock{}
	c.ms.Store(start)
	return c
}

// Now returns the current reading; pass c.Now where a keys.Clock is wanted.
func (c *FakeClock) Now() uint64 { return c.ms.Load() }

// Advance moves the clock forward by d milliseconds.
func (c *FakeClock) Advance(d uint64) { c.ms.Add(d) }

// Set jumps to an absolute reading.
func (c *FakeClock) Set(ms uint64) { c.ms.Store(ms) }
