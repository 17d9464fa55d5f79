// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht11

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// line drives the data wire shared with the sensor.
//
// The first pin error is kept and makes later drive calls no-ops.
type line struct {
	pin   gpio.PinIO
	clock Clock
	err   error
}

// driveLow sets the pin as output and pulls the wire low.
func (l *line) driveLow() {
	if l.err != nil {
		return
	}
	l.err = l.pin.Out(gpio.Low)
}

// driveHighThenRelease drives the wire high for d, then turns the pin into a
// pulled-up input so the sensor can drive the wire.
func (l *line) driveHighThenRelease(d time.Duration) {
	if l.err != nil {
		return
	}
	if l.err = l.pin.Out(gpio.High); l.err != nil {
		return
	}
	l.clock.Sleep(d)
	l.err = l.pin.In(gpio.PullUp, gpio.NoEdge)
}

// read samples the wire. true is high.
func (l *line) read() bool {
	return l.pin.Read() == gpio.High
}

// waitFor polls the wire once per microsecond until it reads level, for at
// most limit polls. It returns the number of polls spent and false if the
// limit was reached.
func (l *line) waitFor(level bool, limit int) (int, bool) {
	n := 0
	for l.read() != level && n < limit {
		l.clock.Sleep(time.Microsecond)
		n++
	}
	return n, n < limit
}

// measureHigh returns for how many microseconds the wire stays high. The
// measurement stops once it exceeds limit.
func (l *line) measureHigh(limit uint32) uint32 {
	f := l.clock.Frequency()
	start := l.clock.Ticks()
	for l.read() {
		if ElapsedMicros(start, l.clock.Ticks(), f) > limit {
			break
		}
	}
	return ElapsedMicros(start, l.clock.Ticks(), f)
}
