// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pulsechart draws the bit samples of a dht11.Trace as a bar chart
// of high pulse widths, with the 0/1 decision threshold.
package pulsechart

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/GermanBionicSystems/dht11/dht11"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Opts holds the chart geometry.
type Opts struct {
	Width    int
	Height   int
	FontSize float64
}

// DefaultOpts is used when Render gets nil Opts.
var DefaultOpts = Opts{
	Width:    640,
	Height:   320,
	FontSize: 11,
}

const margin = 40

// scale is the top of the µs axis.
const scale = dht11.MaxBitHigh + 20

func face(size float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("pulsechart: failed to parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// Render draws the chart of t.
func Render(t *dht11.Trace, opts *Opts) (image.Image, error) {
	if t == nil {
		return nil, errors.New("pulsechart: nil trace")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Width < 2*margin || opts.Height < 2*margin {
		return nil, fmt.Errorf("pulsechart: %dx%d is too small", opts.Width, opts.Height)
	}
	ff, err := face(opts.FontSize)
	if err != nil {
		return nil, err
	}
	w, h := float64(opts.Width), float64(opts.Height)
	plotW, plotH := w-2*margin, h-2*margin
	y := func(us float64) float64 {
		if us > scale {
			us = scale
		}
		return h - margin - us*plotH/scale
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetFontFace(ff)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	title := "DHT11 " + t.Pin
	if err := t.Err(); err != nil {
		title += ": " + err.Error()
	}
	dc.DrawStringAnchored(title, w/2, margin/2, 0.5, 0.5)

	// Axes.
	dc.SetLineWidth(1)
	dc.DrawLine(margin, margin, margin, h-margin)
	dc.DrawLine(margin, h-margin, w-margin, h-margin)
	dc.Stroke()
	for _, us := range []float64{0, 50, 100, 150, 200} {
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", us), margin-4, y(us), 1, 0.5)
	}

	if n := len(t.Samples); n != 0 {
		slot := plotW / float64(n)
		for i, s := range t.Samples {
			x := margin + float64(i)*slot
			switch {
			case s.Micros > dht11.MaxBitHigh:
				dc.SetRGB(0.85, 0.1, 0.1)
			case s.Value:
				dc.SetRGB(0.1, 0.3, 0.85)
			default:
				dc.SetRGB(0.1, 0.65, 0.2)
			}
			top := y(float64(s.Micros))
			dc.DrawRectangle(x+slot*0.15, top, slot*0.7, h-margin-top)
			dc.Fill()
			dc.SetRGB(0, 0, 0)
			dc.DrawStringAnchored(fmt.Sprint(s.Index), x+slot/2, h-margin+12, 0.5, 0.5)
		}
	}

	dc.SetRGB(0.8, 0.2, 0.2)
	dc.SetDash(6, 4)
	dc.DrawLine(margin, y(dht11.BitThreshold), w-margin, y(dht11.BitThreshold))
	dc.Stroke()
	dc.SetDash()
	dc.DrawStringAnchored(fmt.Sprintf(">%dus = 1", dht11.BitThreshold), w-margin, y(dht11.BitThreshold)-8, 1, 0.5)
	return dc.Image(), nil
}

// WritePNG renders the chart of t and encodes it to w.
func WritePNG(w io.Writer, t *dht11.Trace, opts *Opts) error {
	img, err := Render(t, opts)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("pulsechart: %w", err)
	}
	return nil
}
