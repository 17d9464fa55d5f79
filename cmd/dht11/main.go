// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// dht11 reads a DHT11 temperature and humidity sensor.
//
// Usage:
//
//	dht11 [flags] [read|debug|watch|init]
//
// read prints one measurement. debug prints the protocol trace of one
// exchange, a strip of the sampled bits and optionally a PNG chart of their
// widths. watch prints a measurement or the read error every interval and
// publishes measurements to MQTT when a broker is configured, until
// interrupted. init writes the default configuration file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/GermanBionicSystems/dht11/config"
	"github.com/GermanBionicSystems/dht11/dht11"
	"github.com/GermanBionicSystems/dht11/publish"
	"github.com/GermanBionicSystems/dht11/pulsechart"
	"github.com/GermanBionicSystems/dht11/pulsestrip"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func mainImpl() error {
	cfgPath := flag.String("config", config.File, "configuration file")
	pin := flag.String("pin", "", "data pin, overrides the configuration")
	chart := flag.String("chart", "", "debug: write a PNG chart of the bit widths to this file")
	strip := flag.Bool("strip", true, "debug: print the bit strip")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()

	mode := "read"
	switch flag.NArg() {
	case 0:
	case 1:
		mode = flag.Arg(0)
	default:
		return errors.New("unexpected arguments")
	}

	fs := afero.NewOsFs()
	if mode == "init" {
		if err := config.Save(fs, *cfgPath, config.Default()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *cfgPath)
		return nil
	}
	cfg, err := config.Load(fs, *cfgPath)
	if err != nil {
		return err
	}
	if *pin != "" {
		cfg.Pin = *pin
	}
	level := cfg.Level()
	if *verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	if _, err := host.Init(); err != nil {
		return err
	}
	p := gpioreg.ByName(cfg.Pin)
	if p == nil {
		return fmt.Errorf("failed to find pin %q", cfg.Pin)
	}
	d, err := dht11.New(p, &dht11.Opts{TraceRecords: cfg.TraceRecords, Logger: log.Logger})
	if err != nil {
		return err
	}
	log.Debug().Msgf("using %s", d)

	switch mode {
	case "read":
		return runRead(os.Stdout, d)
	case "debug":
		var sd *pulsestrip.Dev
		if *strip {
			sd = pulsestrip.New(nil)
			defer sd.Halt()
		}
		return runDebug(os.Stdout, fs, d, sd, *chart)
	case "watch":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		var pub sink
		if cfg.MQTT.Broker != "" {
			pp, err := publish.New(cfg.MQTT, nil)
			if err != nil {
				return err
			}
			defer pp.Close()
			pub = pp
		}
		return runWatch(ctx, os.Stdout, d, clockwork.NewRealClock(), cfg.Period(), pub)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func runRead(w io.Writer, d *dht11.Dev) error {
	r, ok := d.Read()
	if !ok {
		return errors.New("read failed, run in debug mode for details")
	}
	_, err := fmt.Fprintln(w, r)
	return err
}

func runDebug(w io.Writer, fs afero.Fs, d *dht11.Dev, sd *pulsestrip.Dev, chart string) error {
	r, ok, tr := d.DebugRead()
	if _, err := tr.WriteTo(w); err != nil {
		return err
	}
	if sd != nil {
		if err := sd.Show(tr); err != nil {
			return err
		}
	}
	if chart != "" {
		f, err := fs.Create(chart)
		if err != nil {
			return err
		}
		err = pulsechart.WritePNG(f, tr, nil)
		if err2 := f.Close(); err == nil {
			err = err2
		}
		if err != nil {
			return err
		}
		log.Info().Msgf("wrote %s", chart)
	}
	if !ok {
		return tr.Err()
	}
	_, err := fmt.Fprintf(w, "\n%s\n", r)
	return err
}

// sink receives the readings of watch mode.
type sink interface {
	Publish(r dht11.Reading, t time.Time) error
}

// runWatch reads the sensor every interval until ctx is done. Failed reads
// are reported and the loop goes on.
func runWatch(ctx context.Context, w io.Writer, d *dht11.Dev, clk clockwork.Clock, interval time.Duration, pub sink) error {
	if interval < dht11.MinInterval {
		return fmt.Errorf("interval %s is below the minimum of %s", interval, dht11.MinInterval)
	}
	tick := clk.NewTicker(interval)
	defer tick.Stop()
	for {
		now := clk.Now()
		var e physic.Env
		if err := d.Sense(&e); err != nil {
			log.Warn().Err(err).Msg("sensor error")
			if _, err := fmt.Fprintf(w, "%s sensor error: %v\n", now.Format(time.TimeOnly), err); err != nil {
				return err
			}
		} else {
			r := dht11.ReadingOf(e)
			if _, err := fmt.Fprintf(w, "%s %s\n", now.Format(time.TimeOnly), r); err != nil {
				return err
			}
			if pub != nil {
				if err := pub.Publish(r, now); err != nil {
					log.Warn().Err(err).Msg("failed to publish")
				}
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick.Chan():
		}
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "dht11: %s.\n", err)
		os.Exit(1)
	}
}
