// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht11

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// MinInterval is the minimum time the sensor needs between two reads.
const MinInterval = time.Second

// Opts holds the configuration options for the device.
type Opts struct {
	// Clock times the exchange. Nil means the host monotonic clock.
	Clock Clock
	// TraceRecords is the capacity of the trace returned by DebugRead. Leave 0
	// to use DefaultTraceRecords.
	TraceRecords int
	// Logger receives a debug event after each read. The zero value discards
	// everything.
	Logger zerolog.Logger
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	TraceRecords: DefaultTraceRecords,
}

// Dev is a handle to a DHT11 connected to a single GPIO pin.
type Dev struct {
	pin   gpio.PinIO
	clock Clock
	opts  Opts
	log   zerolog.Logger

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// New returns a handle to a DHT11 on pin p and leaves the line as a pulled up
// input, which is the idle state of the bus. The Opts can be nil.
func New(p gpio.PinIO, opts *Opts) (*Dev, error) {
	if p == nil {
		return nil, errors.New("dht11: pin is required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{pin: p, clock: opts.Clock, opts: *opts}
	if d.clock == nil {
		d.clock = NewHostClock(nil)
	}
	if d.opts.TraceRecords <= 0 {
		d.opts.TraceRecords = DefaultTraceRecords
	}
	d.log = opts.Logger.With().Str("pin", p.Name()).Logger()
	if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("dht11: failed to set %s as input: %w", p, err)
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("dht11{%s}", d.pin)
}

// Read performs one exchange with the sensor. The bool is false when the
// exchange or the validation failed, in which case the Reading is zero.
//
// The sensor must be left alone for MinInterval between two reads.
func (d *Dev) Read() (Reading, bool) {
	r, err := d.read(nil)
	return r, err == nil
}

// DebugRead is like Read but also returns a trace of the exchange. The trace
// is complete even when the read fails; its last record tells why.
func (d *Dev) DebugRead() (Reading, bool, *Trace) {
	t := newTrace(d.pin.Name(), d.clock.Frequency(), d.opts.TraceRecords)
	r, err := d.read(t)
	return r, err == nil, t
}

// Sense implements physic.SenseEnv. Pressure is not measured and left at 0.
//
// The returned error is a *Error describing where the exchange failed.
func (d *Dev) Sense(e *physic.Env) error {
	*e = physic.Env{}
	r, err := d.read(nil)
	if err != nil {
		return err
	}
	*e = r.Env()
	return nil
}

// SenseContinuous implements physic.SenseEnv. The first measurement is taken
// right away, then every interval. Failed reads are logged at warning level
// and skipped. It is the
// caller's responsibility to call Halt() when done.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < MinInterval {
		return nil, fmt.Errorf("dht11: interval %s is below the minimum of %s", interval, MinInterval)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil, errors.New("dht11: already sensing continuously")
	}
	stop := make(chan struct{})
	d.stop = stop
	sensing := make(chan physic.Env)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(sensing)
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			var e physic.Env
			if err := d.Sense(&e); err != nil {
				d.log.Warn().Err(err).Msg("skipped failed read")
			} else {
				select {
				case sensing <- e:
				case <-stop:
					return
				}
			}
			select {
			case <-tick.C:
			case <-stop:
				return
			}
		}
	}()
	return sensing, nil
}

// Precision implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Kelvin
	e.Pressure = 0
	e.Humidity = physic.PercentRH
}

// Halt stops a SenseContinuous session and waits for it to end. The line is
// left as an input.
func (d *Dev) Halt() error {
	d.mu.Lock()
	stop := d.stop
	d.stop = nil
	d.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	d.wg.Wait()
	return nil
}

func (d *Dev) read(t *Trace) (Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l := line{pin: d.pin, clock: d.clock}
	f, err := transact(&l, t)
	if err == nil {
		var r Reading
		if r, err = f.validate(t); err == nil {
			t.finish(Record{Step: StepSuccess})
			d.log.Debug().Stringer("frame", f).Int("temperature", r.Temperature).Uint("humidity", r.Humidity).Msg("read")
			return r, nil
		}
		t.failed(err)
		d.log.Debug().Stringer("frame", f).Stringer("kind", err.Kind).Msg("invalid frame")
		return Reading{}, err
	}
	d.log.Debug().Stringer("kind", err.Kind).Stringer("phase", err.Phase).Int("bit", err.Bit).Msg("read failed")
	return Reading{}, err
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
