// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht11

import (
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/physic"
)

// Tick is a raw value of a free-running counter. The counter wraps around, so
// only the difference between two ticks is meaningful.
type Tick uint32

// Clock is the timing source used during a transaction.
//
// Ticks is used to measure the width of data bits. Sleep is used for the wake
// and release pulses, and for the 1µs polls that bound every wait.
type Clock interface {
	// Ticks returns the current counter value.
	Ticks() Tick
	// Frequency returns the fixed frequency of the counter.
	Frequency() physic.Frequency
	// Sleep blocks for at least d.
	Sleep(d time.Duration)
}

// ElapsedMicros converts the number of ticks between start and end to whole
// microseconds for a counter running at f.
//
// The difference is computed modulo 2^32 so a counter that wrapped between
// start and end still yields the right value.
func ElapsedMicros(start, end Tick, f physic.Frequency) uint32 {
	hz := uint64(f / physic.Hertz)
	if hz == 0 {
		return 0
	}
	return uint32(uint64(end-start) * 1000000 / hz)
}

// spinLimit is the longest delay served by busy waiting. The scheduler cannot
// honor shorter sleeps.
const spinLimit = time.Millisecond

type hostClock struct {
	c     clockwork.Clock
	epoch time.Time
}

// NewHostClock returns a Clock counting nanoseconds of the monotonic clock of
// c. The counter runs at 1GHz and wraps every ~4.29s. If c is nil, the real
// clock is used.
func NewHostClock(c clockwork.Clock) Clock {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &hostClock{c: c, epoch: c.Now()}
}

func (h *hostClock) Ticks() Tick {
	return Tick(h.c.Since(h.epoch))
}

func (h *hostClock) Frequency() physic.Frequency {
	return physic.GigaHertz
}

func (h *hostClock) Sleep(d time.Duration) {
	if d >= spinLimit {
		h.c.Sleep(d)
		return
	}
	start := h.c.Now()
	for h.c.Since(start) < d {
	}
}
