// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht11

import "fmt"

// Kind classifies a failed read.
type Kind uint8

const (
	// NoResponse means the sensor never pulled the line low after release.
	NoResponse Kind = iota + 1
	// InvalidResponseTiming means the handshake high pulse never started.
	InvalidResponseTiming
	// ResponseTooLong means the handshake high pulse never ended.
	ResponseTooLong
	// BitTimeout means a data bit never started.
	BitTimeout
	// ChecksumMismatch means the fifth byte is not the sum of the first four.
	ChecksumMismatch
	// OutOfRange means the decoded values are outside of the sensor range.
	OutOfRange
	// LineFault means the pin refused a mode or level change.
	LineFault
)

func (k Kind) String() string {
	switch k {
	case NoResponse:
		return "no response"
	case InvalidResponseTiming:
		return "invalid response timing"
	case ResponseTooLong:
		return "response too long"
	case BitTimeout:
		return "bit timeout"
	case ChecksumMismatch:
		return "checksum mismatch"
	case OutOfRange:
		return "values out of range"
	case LineFault:
		return "line fault"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Phase is the protocol step a transaction was in.
type Phase uint8

const (
	// PhaseWake is the host holding the line low.
	PhaseWake Phase = iota + 1
	// PhaseRelease is the host pulse and switch to input.
	PhaseRelease
	// PhaseAckLow is the wait for the sensor to pull the line low.
	PhaseAckLow
	// PhaseAckHigh is the wait for the sensor to release the line.
	PhaseAckHigh
	// PhaseAckEnd is the wait for the first data bit.
	PhaseAckEnd
	// PhaseData covers the 40 data bits.
	PhaseData
	// PhaseValidate is the checksum and range check of the frame.
	PhaseValidate
)

func (p Phase) String() string {
	switch p {
	case PhaseWake:
		return "wake"
	case PhaseRelease:
		return "release"
	case PhaseAckLow:
		return "ack-low"
	case PhaseAckHigh:
		return "ack-high"
	case PhaseAckEnd:
		return "ack-end"
	case PhaseData:
		return "data"
	case PhaseValidate:
		return "validate"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Error is the error returned by a failed read.
type Error struct {
	Kind  Kind
	Phase Phase
	// Bit is the index of the bit that never started, for BitTimeout.
	Bit int
	// Err is the pin error, for LineFault.
	Err error
}

// Sentinel errors, one per Kind. Use errors.Is to match an *Error by Kind.
var (
	ErrNoResponse            = &Error{Kind: NoResponse, Phase: PhaseAckLow}
	ErrInvalidResponseTiming = &Error{Kind: InvalidResponseTiming, Phase: PhaseAckHigh}
	ErrResponseTooLong       = &Error{Kind: ResponseTooLong, Phase: PhaseAckEnd}
	ErrBitTimeout            = &Error{Kind: BitTimeout, Phase: PhaseData}
	ErrChecksumMismatch      = &Error{Kind: ChecksumMismatch, Phase: PhaseValidate}
	ErrOutOfRange            = &Error{Kind: OutOfRange, Phase: PhaseValidate}
	ErrLineFault             = &Error{Kind: LineFault}
)

func (e *Error) Error() string {
	return "dht11: " + e.describe()
}

// describe names the failure and the phase it happened in.
func (e *Error) describe() string {
	switch e.Kind {
	case BitTimeout:
		return fmt.Sprintf("bit %d start timeout during %s phase", e.Bit, e.Phase)
	case LineFault:
		return fmt.Sprintf("line fault during %s phase: %v", e.Phase, e.Err)
	default:
		return fmt.Sprintf("%s during %s phase", e.Kind, e.Phase)
	}
}

// Unwrap returns the pin error of a LineFault.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func lineFault(p Phase, err error) *Error {
	return &Error{Kind: LineFault, Phase: p, Err: err}
}
