// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pulsechart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/GermanBionicSystems/dht11/dht11"
	"github.com/GermanBionicSystems/dht11/dht11/dht11test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trace(t *testing.T, s *dht11test.Sensor) *dht11.Trace {
	d, err := dht11.New(s, &dht11.Opts{Clock: s})
	require.NoError(t, err)
	_, _, tr := d.DebugRead()
	return tr
}

func TestRender(t *testing.T) {
	tr := trace(t, dht11test.New(dht11.Frame{0x32, 0x00, 0x18, 0x00, 0x4a}))
	img, err := Render(tr, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOpts.Width, img.Bounds().Dx())
	assert.Equal(t, DefaultOpts.Height, img.Bounds().Dy())
	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b}, "background")
}

func TestRenderFailure(t *testing.T) {
	s := dht11test.New(dht11.Frame{})
	s.Fault = dht11test.FaultDropBit
	s.FaultBit = 5
	tr := trace(t, s)
	require.Len(t, tr.Samples, 5)
	_, err := Render(tr, &Opts{Width: 200, Height: 120, FontSize: 9})
	require.NoError(t, err)
}

func TestRenderErrors(t *testing.T) {
	_, err := Render(nil, nil)
	assert.Error(t, err)
	tr := trace(t, dht11test.New(dht11.Frame{}))
	_, err = Render(tr, &Opts{Width: 10, Height: 10, FontSize: 9})
	assert.Error(t, err)
}

func TestWritePNG(t *testing.T) {
	tr := trace(t, dht11test.New(dht11.Frame{0x28, 0x00, 0x85, 0x00, 0xad}))
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, tr, &Opts{Width: 320, Height: 160, FontSize: 9}))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 160, img.Bounds().Dy())
}
