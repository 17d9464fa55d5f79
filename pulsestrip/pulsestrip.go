// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pulsestrip renders the bit samples of a dht11.Trace as a strip of
// colored blocks on a terminal using ANSI color codes.
//
// Zeros are green, ones are blue, and bits that hit the measurement cap are
// red. The longer the pulse, the brighter the block.
package pulsestrip

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/GermanBionicSystems/dht11/dht11"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for the strip.
type Opts struct {
	// X is the number of blocks. Leave 0 for one block per sampled bit.
	X       int
	Palette *ansi256.Palette
	// W receives the output. Nil means stdout.
	W io.Writer

	_ struct{}
}

// Samples is the number of bits a trace samples.
const Samples = 19

// Dev is a strip of terminal blocks.
type Dev struct {
	w       io.Writer
	l       int
	palette ansi256.Palette

	pixels []byte
	buf    bytes.Buffer
}

// New returns a Dev that writes to the console. The Opts can be nil.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	l := opts.X
	if l <= 0 {
		l = Samples
	}
	return &Dev{
		w:       w,
		l:       l,
		palette: *p,
		pixels:  make([]byte, 3*l),
	}
}

func (d *Dev) String() string {
	return "PulseStrip"
}

// Halt implements conn.Resource. It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Color returns the block color of a sample.
func Color(s dht11.BitSample) color.NRGBA {
	us := s.Micros
	if us > dht11.MaxBitHigh {
		return color.NRGBA{R: 255, A: 255}
	}
	l := byte(64 + us*191/dht11.MaxBitHigh)
	if s.Value {
		return color.NRGBA{B: l, A: 255}
	}
	return color.NRGBA{G: l, A: 255}
}

// Show draws the samples of t, one block each, followed by the frame state.
// Blocks beyond the samples are black.
func (d *Dev) Show(t *dht11.Trace) error {
	if t == nil {
		return errors.New("pulsestrip: nil trace")
	}
	clear(d.pixels)
	for i, s := range t.Samples {
		if i >= d.l {
			break
		}
		c := Color(s)
		d.pixels[3*i], d.pixels[3*i+1], d.pixels[3*i+2] = c.R, c.G, c.B
	}
	d.render()
	if err := t.Err(); err != nil {
		fmt.Fprintf(&d.buf, "%v", err)
	} else {
		fmt.Fprintf(&d.buf, "%d bits ok", dht11.FrameBits)
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

// Write accepts a stream of raw RGB pixels and writes it to the console. A
// stream shorter than the strip only updates the first blocks.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("pulsestrip: invalid RGB stream length")
	}
	if len(pixels) > len(d.pixels) {
		return 0, fmt.Errorf("pulsestrip: %d pixels do not fit in %d blocks", len(pixels)/3, d.l)
	}
	copy(d.pixels, pixels)
	d.render()
	if _, err := d.buf.WriteTo(d.w); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: d.l, Y: 1}}
}

// Draw implements display.Drawer. Only the first row of src is used.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	deltaX3 := 3 * (r.Min.X - srcR.Min.X)
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		r16, g16, b16, _ := src.At(sX, srcR.Min.Y).RGBA()
		dX3 := 3*sX + deltaX3
		d.pixels[dX3] = byte(r16 >> 8)
		d.pixels[dX3+1] = byte(g16 >> 8)
		d.pixels[dX3+2] = byte(b16 >> 8)
	}
	d.render()
	_, err := d.buf.WriteTo(d.w)
	return err
}

// render fills buf with the blocks, reusing its storage.
func (d *Dev) render() {
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < d.l; i++ {
		c := color.NRGBA{d.pixels[3*i], d.pixels[3*i+1], d.pixels[3*i+2], 255}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
