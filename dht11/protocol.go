// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht11

import "time"

// Protocol timing.
const (
	// WakeLow is how long the host holds the line low to wake the sensor.
	WakeLow = 20 * time.Millisecond
	// ReleaseHigh is the high pulse driven before handing the line over.
	ReleaseHigh = 30 * time.Microsecond
	// HandshakePolls bounds each handshake wait, one microsecond per poll.
	HandshakePolls = 200
	// BitStartPolls bounds the wait for a data bit to go high.
	BitStartPolls = 200
	// BitThreshold is the high width in µs above which a bit is 1.
	BitThreshold = 40
	// MaxBitHigh caps the measurement of a bit high width in µs.
	MaxBitHigh = 200
	// FrameBits is the number of data bits in a frame.
	FrameBits = 40
)

// handshake is the sequence of levels the sensor drives after release.
var handshake = [...]struct {
	level bool
	step  Step
	phase Phase
	kind  Kind
}{
	{false, StepAckLow, PhaseAckLow, NoResponse},
	{true, StepAckHigh, PhaseAckHigh, InvalidResponseTiming},
	{false, StepAckEnd, PhaseAckEnd, ResponseTooLong},
}

// transact runs one complete exchange on the line and returns the raw frame.
//
// t may be nil. On failure the terminal record is already in t.
func transact(l *line, t *Trace) (Frame, *Error) {
	t.add(Record{Step: StepInitialLevel, Level: l.read()})
	l.driveLow()
	if l.err != nil {
		return Frame{}, t.failed(lineFault(PhaseWake, l.err))
	}
	t.add(Record{Step: StepWake})
	l.clock.Sleep(WakeLow)

	f, err := receive(l, t)
	if err != nil {
		return Frame{}, err
	}
	t.add(Record{Step: StepCriticalExit})
	t.add(Record{Step: StepBitsRead, Bit: FrameBits})
	t.add(Record{Step: StepRawFrame, Frame: f})
	return f, nil
}

// receive hands the line to the sensor and decodes its answer. It runs in
// the critical section; records are appended to preallocated storage only.
func receive(l *line, t *Trace) (Frame, *Error) {
	defer enterCritical()()
	var f Frame
	t.add(Record{Step: StepCriticalEnter})
	l.driveHighThenRelease(ReleaseHigh)
	if l.err != nil {
		return f, t.failed(lineFault(PhaseRelease, l.err))
	}
	t.add(Record{Step: StepRelease, Micros: uint32(ReleaseHigh / time.Microsecond)})
	t.add(Record{Step: StepInputMode})

	for _, h := range handshake {
		n, ok := l.waitFor(h.level, HandshakePolls)
		t.add(Record{Step: h.step, Polls: n})
		if !ok {
			return f, t.failed(&Error{Kind: h.kind, Phase: h.phase})
		}
	}
	t.add(Record{Step: StepDataStart})

	for i := 0; i < FrameBits; i++ {
		if _, ok := l.waitFor(true, BitStartPolls); !ok {
			return f, t.failed(&Error{Kind: BitTimeout, Phase: PhaseData, Bit: i})
		}
		us := l.measureHigh(MaxBitHigh)
		v := classify(us)
		if v {
			f[i/8] |= 1 << (7 - i%8)
		}
		t.bit(i, us, v)
	}
	return f, nil
}

// classify decodes a bit from its high width.
func classify(us uint32) bool {
	return us > BitThreshold
}
