// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GermanBionicSystems/dht11/dht11"
	"github.com/GermanBionicSystems/dht11/dht11/dht11test"
	"github.com/GermanBionicSystems/dht11/pulsestrip"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newDev(t *testing.T, s *dht11test.Sensor) *dht11.Dev {
	d, err := dht11.New(s, &dht11.Opts{Clock: s})
	require.NoError(t, err)
	return d
}

func TestRunRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runRead(&buf, newDev(t, dht11test.New(dht11.Frame{0x32, 0x00, 0x18, 0x00, 0x4a}))))
	assert.Equal(t, "24°C 50%rH\n", buf.String())

	s := dht11test.New(dht11.Frame{})
	s.Fault = dht11test.FaultNoResponse
	assert.Error(t, runRead(&buf, newDev(t, s)))
}

func TestRunDebug(t *testing.T) {
	fs := afero.NewMemMapFs()
	var out, strip bytes.Buffer
	d := newDev(t, dht11test.New(dht11.Frame{0x28, 0x00, 0x85, 0x00, 0xad}))
	require.NoError(t, runDebug(&out, fs, d, pulsestrip.New(&pulsestrip.Opts{W: &strip}), "chart.png"))
	assert.Contains(t, out.String(), "SUCCESS: read completed")
	assert.Contains(t, out.String(), "-5°C 40%rH")
	assert.Contains(t, strip.String(), "40 bits ok")
	ok, err := afero.Exists(fs, "chart.png")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunDebugFailure(t *testing.T) {
	s := dht11test.New(dht11.Frame{})
	s.Fault = dht11test.FaultStuckAckHigh
	var out bytes.Buffer
	err := runDebug(&out, afero.NewMemMapFs(), newDev(t, s), nil, "")
	assert.True(t, errors.Is(err, dht11.ErrResponseTooLong))
	assert.Contains(t, out.String(), "ERROR: response too long during ack-end phase")
}

type recorder struct {
	mu  sync.Mutex
	got []dht11.Reading
}

func (r *recorder) Publish(v dht11.Reading, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, v)
	return nil
}

// syncBuffer lets the test read output while runWatch writes it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func TestRunWatch(t *testing.T) {
	defer goleak.VerifyNone(t)
	d := newDev(t, dht11test.New(dht11.Frame{0x32, 0x00, 0x18, 0x00, 0x4a}))
	rec := &recorder{}
	var out syncBuffer
	clk := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- runWatch(ctx, &out, d, clk, dht11.MinInterval, rec)
	}()
	require.Eventually(t, func() bool { return rec.count() == 1 }, 5*time.Second, time.Millisecond)
	clk.Advance(dht11.MinInterval)
	require.Eventually(t, func() bool { return rec.count() == 2 }, 5*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, dht11.Reading{Temperature: 24, Humidity: 50, Valid: true}, rec.got[0])
	assert.Contains(t, out.String(), "24°C 50%rH")
}

func TestRunWatchReportsErrors(t *testing.T) {
	defer goleak.VerifyNone(t)
	s := dht11test.New(dht11.Frame{})
	s.Fault = dht11test.FaultNoResponse
	d := newDev(t, s)
	rec := &recorder{}
	var out syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- runWatch(ctx, &out, d, clockwork.NewFakeClock(), dht11.MinInterval, rec)
	}()
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "sensor error: dht11: no response during ack-low phase")
	}, 5*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, rec.count())
}

func TestRunWatchInterval(t *testing.T) {
	d := newDev(t, dht11test.New(dht11.Frame{}))
	assert.Error(t, runWatch(context.Background(), &bytes.Buffer{}, d, clockwork.NewFakeClock(), time.Millisecond, nil))
}
