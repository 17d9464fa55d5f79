// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dht11test simulates a DHT11 on a virtual clock to test code that
// uses package dht11 without hardware.
//
// A Sensor is both the data pin and the dht11.Clock: time only moves when
// the driver sleeps or samples the line, so exchanges are deterministic and
// run instantly.
package dht11test

import (
	"math"
	"time"

	"github.com/GermanBionicSystems/dht11/dht11"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

// Fault selects a misbehavior of the simulated sensor.
type Fault int

const (
	// FaultNone answers every properly woken exchange.
	FaultNone Fault = iota
	// FaultNoResponse never pulls the line low.
	FaultNoResponse
	// FaultStuckAckLow pulls the line low and never releases it.
	FaultStuckAckLow
	// FaultStuckAckHigh never ends the handshake high pulse.
	FaultStuckAckHigh
	// FaultDropBit holds the line low instead of sending bit FaultBit.
	FaultDropBit
	// FaultLongBit holds bit FaultBit high for LongHigh.
	FaultLongBit
)

// MinWake is the shortest low pulse the simulated sensor wakes up on.
const MinWake = 18 * time.Millisecond

// Sensor implements gpio.PinIO and dht11.Clock.
//
// Modify its exported members before an exchange to shape the waveform.
type Sensor struct {
	gpiotest.Pin

	// Frame is sent on every exchange.
	Frame dht11.Frame

	ResponseDelay time.Duration // release to first low
	AckLow        time.Duration
	AckHigh       time.Duration
	BitLow        time.Duration
	ZeroHigh      time.Duration
	OneHigh       time.Duration
	LongHigh      time.Duration
	// ReadCost is the virtual time consumed by each Read.
	ReadCost time.Duration
	// TickBase offsets the counter, to exercise wraparound.
	TickBase uint32

	Fault    Fault
	FaultBit int
	// OutErr is returned by every Out call.
	OutErr error
	// InErr is returned by In when the line is switched back from output.
	// The initial configuration as an input still succeeds.
	InErr error

	now      time.Duration
	output   bool
	driven   gpio.Level
	lowSince time.Duration
	armed    bool
	released time.Duration
	wave     []segment
	active   bool
}

type segment struct {
	end   time.Duration
	level gpio.Level
}

// New returns a Sensor named GPIO4 sending f with datasheet timings.
func New(f dht11.Frame) *Sensor {
	return &Sensor{
		Pin:           gpiotest.Pin{N: "GPIO4", Num: 4, Fn: "In/PullUp", L: gpio.High, P: gpio.PullUp},
		Frame:         f,
		ResponseDelay: 20 * time.Microsecond,
		AckLow:        80 * time.Microsecond,
		AckHigh:       80 * time.Microsecond,
		BitLow:        50 * time.Microsecond,
		ZeroHigh:      27 * time.Microsecond,
		OneHigh:       70 * time.Microsecond,
		LongHigh:      300 * time.Microsecond,
		ReadCost:      100 * time.Nanosecond,
	}
}

// Ticks implements dht11.Clock. The counter runs at 1GHz.
func (s *Sensor) Ticks() dht11.Tick {
	s.Lock()
	defer s.Unlock()
	return dht11.Tick(uint32(s.now.Nanoseconds()) + s.TickBase)
}

// Frequency implements dht11.Clock.
func (s *Sensor) Frequency() physic.Frequency {
	return physic.GigaHertz
}

// Sleep implements dht11.Clock. It advances virtual time by d.
func (s *Sensor) Sleep(d time.Duration) {
	s.Lock()
	defer s.Unlock()
	s.now += d
}

// Now returns the virtual time elapsed since the Sensor was created.
func (s *Sensor) Now() time.Duration {
	s.Lock()
	defer s.Unlock()
	return s.now
}

// SinceRelease returns the virtual time elapsed since the host last released
// the line to a woken sensor.
func (s *Sensor) SinceRelease() time.Duration {
	s.Lock()
	defer s.Unlock()
	return s.now - s.released
}

// In implements gpio.PinIn. Releasing the line after a long enough wake
// pulse starts the answer.
func (s *Sensor) In(pull gpio.Pull, edge gpio.Edge) error {
	s.Lock()
	defer s.Unlock()
	if s.output && s.InErr != nil {
		return s.InErr
	}
	s.P = pull
	s.output = false
	s.active = s.armed
	s.armed = false
	if s.active {
		s.released = s.now
		s.wave = s.waveform(s.now)
	}
	return nil
}

// Read implements gpio.PinIn.
func (s *Sensor) Read() gpio.Level {
	s.Lock()
	defer s.Unlock()
	s.now += s.ReadCost
	if s.output {
		return s.driven
	}
	if !s.active {
		return gpio.High
	}
	for _, seg := range s.wave {
		if s.now < seg.end {
			return seg.level
		}
	}
	return gpio.High
}

// Out implements gpio.PinOut. A high level following a low pulse of at
// least MinWake arms the sensor.
func (s *Sensor) Out(l gpio.Level) error {
	s.Lock()
	defer s.Unlock()
	if s.OutErr != nil {
		return s.OutErr
	}
	if l == gpio.Low && (!s.output || s.driven == gpio.High) {
		s.lowSince = s.now
	}
	if l == gpio.High && s.output && s.driven == gpio.Low {
		s.armed = s.now-s.lowSince >= MinWake
	}
	s.output = true
	s.driven = l
	s.L = l
	s.active = false
	return nil
}

func (s *Sensor) waveform(start time.Duration) []segment {
	const forever = time.Duration(math.MaxInt64)
	t := start
	var w []segment
	add := func(d time.Duration, l gpio.Level) {
		t += d
		w = append(w, segment{t, l})
	}
	if s.Fault == FaultNoResponse {
		return nil
	}
	add(s.ResponseDelay, gpio.High)
	if s.Fault == FaultStuckAckLow {
		return append(w, segment{forever, gpio.Low})
	}
	add(s.AckLow, gpio.Low)
	if s.Fault == FaultStuckAckHigh {
		return w
	}
	add(s.AckHigh, gpio.High)
	for i := 0; i < dht11.FrameBits; i++ {
		if s.Fault == FaultDropBit && i == s.FaultBit {
			return append(w, segment{forever, gpio.Low})
		}
		add(s.BitLow, gpio.Low)
		h := s.ZeroHigh
		if s.Frame[i/8]&(1<<(7-i%8)) != 0 {
			h = s.OneHigh
		}
		if s.Fault == FaultLongBit && i == s.FaultBit {
			h = s.LongHigh
		}
		add(h, gpio.High)
	}
	add(s.BitLow, gpio.Low)
	return w
}

var _ gpio.PinIO = &Sensor{}
var _ dht11.Clock = &Sensor{}
