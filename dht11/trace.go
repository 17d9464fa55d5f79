// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht11

import (
	"bytes"
	"fmt"
	"io"

	"periph.io/x/conn/v3/physic"
)

// Step tags a Record with the protocol transition it describes.
type Step uint8

// Steps, with the Record fields each one sets.
const (
	// StepInitialLevel is the line level before the wake pulse. Level.
	StepInitialLevel Step = iota + 1
	// StepWake is the line driven low for WakeLow.
	StepWake
	// StepCriticalEnter marks the start of the timing critical section.
	StepCriticalEnter
	// StepRelease is the high pulse handing over the line. Micros.
	StepRelease
	// StepInputMode is the switch to pulled up input.
	StepInputMode
	// StepAckLow counts the polls until the sensor pulled low. Polls.
	StepAckLow
	// StepAckHigh counts the polls until the sensor released high. Polls.
	StepAckHigh
	// StepAckEnd counts the polls until the first bit started. Polls.
	StepAckEnd
	// StepDataStart marks the start of the 40 data bits.
	StepDataStart
	// StepBit is a sampled data bit. Bit, Micros, Value.
	StepBit
	// StepCriticalExit marks the end of the critical section.
	StepCriticalExit
	// StepBitsRead is the number of bits received. Bit.
	StepBitsRead
	// StepRawFrame is the frame as received. Frame.
	StepRawFrame
	// StepChecksum compares the computed and received checksums. Frame.
	StepChecksum
	// StepHumidity is the decoded humidity. Frame.
	StepHumidity
	// StepTemperature is the decoded temperature. Frame.
	StepTemperature
	// StepSuccess terminates a successful read.
	StepSuccess
	// StepFailure terminates a failed read. Err.
	StepFailure
)

// Record is one entry of a Trace. Only the fields listed next to its Step
// are set.
type Record struct {
	Step   Step
	Level  bool
	Polls  int
	Bit    int
	Micros uint32
	Value  bool
	Frame  Frame
	Err    *Error
}

// BitSample is the measurement of one data bit.
type BitSample struct {
	Index  int
	Micros uint32
	Value  bool
}

// DefaultTraceRecords is the default capacity of a Trace.
const DefaultTraceRecords = 64

// Trace is the diagnostic account of one instrumented read.
//
// Records holds one entry per protocol transition, in order. Samples holds
// bits 0 to 15 and then every 8th bit (23, 31, 39). Once the capacity is
// reached further records are dropped, except the final success or failure
// record which is always kept. Nothing is recorded after a failure.
type Trace struct {
	// Pin is the name of the data pin.
	Pin string
	// Frequency is the frequency of the counter used to measure bits.
	Frequency physic.Frequency
	Records   []Record
	Samples   []BitSample

	limit   int
	dropped int
	done    bool
}

func newTrace(pin string, f physic.Frequency, limit int) *Trace {
	if limit <= 0 {
		limit = DefaultTraceRecords
	}
	return &Trace{
		Pin:       pin,
		Frequency: f,
		Records:   make([]Record, 0, limit+1),
		Samples:   make([]BitSample, 0, 19),
		limit:     limit,
	}
}

// Truncated reports whether records were dropped.
func (t *Trace) Truncated() bool {
	return t.dropped != 0
}

// Err returns the failure recorded by the trace, if any.
func (t *Trace) Err() error {
	if n := len(t.Records); n != 0 && t.Records[n-1].Step == StepFailure {
		return t.Records[n-1].Err
	}
	return nil
}

// Last returns the final record. It is the zero Record for an empty trace.
func (t *Trace) Last() Record {
	if len(t.Records) == 0 {
		return Record{}
	}
	return t.Records[len(t.Records)-1]
}

// add appends r. A nil Trace ignores all calls, which is how plain reads run.
func (t *Trace) add(r Record) {
	if t == nil || t.done {
		return
	}
	if len(t.Records) >= t.limit {
		t.dropped++
		return
	}
	t.Records = append(t.Records, r)
}

// finish appends the terminal record regardless of the capacity.
func (t *Trace) finish(r Record) {
	if t == nil || t.done {
		return
	}
	t.Records = append(t.Records, r)
	t.done = true
}

// failed records err as the final entry and returns it.
func (t *Trace) failed(err *Error) *Error {
	t.finish(Record{Step: StepFailure, Err: err})
	return err
}

// sampled reports whether bit i is part of the trace.
func sampled(i int) bool {
	return i < 16 || i%8 == 7
}

func (t *Trace) bit(i int, us uint32, v bool) {
	if t == nil || t.done || !sampled(i) {
		return
	}
	t.Samples = append(t.Samples, BitSample{Index: i, Micros: us, Value: v})
	t.add(Record{Step: StepBit, Bit: i, Micros: us, Value: v})
}

func (t *Trace) String() string {
	var b bytes.Buffer
	_, _ = t.WriteTo(&b)
	return b.String()
}

// WriteTo renders the trace as text, one line per record. Protocol steps are
// numbered, sampled bits and the final error are not.
func (t *Trace) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "=== DHT11 Debug Log ===\nPin: %s\n", t.Pin)
	fmt.Fprintf(&b, "Counter: %s, threshold: >%dus is 1\n", t.Frequency, BitThreshold)
	fmt.Fprintf(&b, "Expected: 0=26-28us, 1=70us\n")
	if t.dropped != 0 {
		fmt.Fprintf(&b, "Dropped: %d records\n", t.dropped)
	}
	b.WriteByte('\n')
	n := 0
	for _, r := range t.Records {
		switch r.Step {
		case StepBit:
			fmt.Fprintf(&b, "Bit %d: %dus = %d\n", r.Bit, r.Micros, b2i(r.Value))
			continue
		case StepFailure:
			fmt.Fprintf(&b, "ERROR: %s\n", r.Err.describe())
			if r.Err.Kind == NoResponse {
				fmt.Fprintf(&b, "Check: VCC->3.3V, GND->GND, DATA->%s with pull-up\n", t.Pin)
			}
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. ", n)
		switch r.Step {
		case StepInitialLevel:
			fmt.Fprintf(&b, "Initial line level: %s\n", levelName(r.Level))
		case StepWake:
			fmt.Fprintf(&b, "Wake signal: line LOW for %s\n", WakeLow)
		case StepCriticalEnter:
			b.WriteString("Critical section entered\n")
		case StepRelease:
			fmt.Fprintf(&b, "Release signal: line HIGH for %dus\n", r.Micros)
		case StepInputMode:
			b.WriteString("Input mode: pull-up enabled\n")
		case StepAckLow:
			fmt.Fprintf(&b, "Wait for LOW: %d polls, timeout=%d\n", r.Polls, b2i(r.Polls >= HandshakePolls))
		case StepAckHigh:
			fmt.Fprintf(&b, "Response LOW: %d polls, timeout=%d\n", r.Polls, b2i(r.Polls >= HandshakePolls))
		case StepAckEnd:
			fmt.Fprintf(&b, "Response HIGH: %d polls, timeout=%d\n", r.Polls, b2i(r.Polls >= HandshakePolls))
		case StepDataStart:
			b.WriteString("Data transmission started\n")
		case StepCriticalExit:
			b.WriteString("Critical section exited\n")
		case StepBitsRead:
			fmt.Fprintf(&b, "Bits read: %d/%d\n", r.Bit, FrameBits)
		case StepRawFrame:
			fmt.Fprintf(&b, "Raw data: %s\n", r.Frame)
		case StepChecksum:
			fmt.Fprintf(&b, "Checksum calc: %02X, received: %02X\n", r.Frame.Checksum(), r.Frame[4])
		case StepHumidity:
			fmt.Fprintf(&b, "Humidity: %d%%\n", r.Frame.Humidity())
		case StepTemperature:
			fmt.Fprintf(&b, "Temperature: %d°C\n", r.Frame.Temperature())
		case StepSuccess:
			b.WriteString("SUCCESS: read completed\n")
		default:
			fmt.Fprintf(&b, "Step(%d)\n", r.Step)
		}
	}
	return b.WriteTo(w)
}

func levelName(l bool) string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}
