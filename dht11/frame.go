// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht11

import (
	"fmt"

	"github.com/GermanBionicSystems/dht11/common"
	"periph.io/x/conn/v3/physic"
)

// Range of values the sensor reports.
const (
	MaxHumidity    = 100
	MinTemperature = -40
	MaxTemperature = 60
)

// Frame is the raw payload of a transaction:
//
//	[0] humidity, integral part
//	[1] humidity, fractional part (always 0)
//	[2] temperature, bit 7 is the sign, bits 6-0 the magnitude
//	[3] temperature, fractional part (always 0)
//	[4] checksum, sum of bytes 0-3 modulo 256
type Frame [5]byte

// Checksum returns the checksum the frame is expected to carry.
func (f Frame) Checksum() byte {
	return common.Sum8(f[:4])
}

// Humidity returns the relative humidity in percent.
func (f Frame) Humidity() uint {
	return uint(f[0])
}

// Temperature returns the temperature in °C. The byte is sign-magnitude, not
// two's complement: 0x85 is -5°C.
func (f Frame) Temperature() int {
	t := int(f[2] & 0x7f)
	if f[2]&0x80 != 0 {
		t = -t
	}
	return t
}

// Validate verifies the checksum and the range of the frame and decodes it.
// On failure the returned Reading is the zero value.
func (f Frame) Validate() (Reading, error) {
	r, err := f.validate(nil)
	if err != nil {
		return r, err
	}
	return r, nil
}

func (f Frame) validate(t *Trace) (Reading, *Error) {
	t.add(Record{Step: StepChecksum, Frame: f})
	if f.Checksum() != f[4] {
		return Reading{}, &Error{Kind: ChecksumMismatch, Phase: PhaseValidate}
	}
	h, c := f.Humidity(), f.Temperature()
	t.add(Record{Step: StepHumidity, Frame: f})
	t.add(Record{Step: StepTemperature, Frame: f})
	if h > MaxHumidity || c < MinTemperature || c > MaxTemperature {
		return Reading{}, &Error{Kind: OutOfRange, Phase: PhaseValidate}
	}
	return Reading{Temperature: c, Humidity: h, Valid: true}, nil
}

func (f Frame) String() string {
	return fmt.Sprintf("%02X %02X %02X %02X %02X", f[0], f[1], f[2], f[3], f[4])
}

// Reading is a decoded measurement. The fields are meaningful only when
// Valid is set.
type Reading struct {
	// Temperature in °C.
	Temperature int
	// Humidity in %rH.
	Humidity uint
	Valid    bool
}

// Env converts the reading to periph units. Pressure is not measured.
func (r Reading) Env() physic.Env {
	return physic.Env{
		Temperature: physic.ZeroCelsius + physic.Temperature(r.Temperature)*physic.Celsius,
		Humidity:    physic.RelativeHumidity(r.Humidity) * physic.PercentRH,
	}
}

// ReadingOf converts back a physic.Env produced by Reading.Env.
func ReadingOf(e physic.Env) Reading {
	return Reading{
		Temperature: int((e.Temperature - physic.ZeroCelsius) / physic.Celsius),
		Humidity:    uint(e.Humidity / physic.PercentRH),
		Valid:       true,
	}
}

func (r Reading) String() string {
	if !r.Valid {
		return "invalid"
	}
	return fmt.Sprintf("%d°C %d%%rH", r.Temperature, r.Humidity)
}
