// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the settings of the dht11 command from a TOML file.
//
// A missing file is not an error: the defaults are used. Keys absent from
// the file keep their default value.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/GermanBionicSystems/dht11/dht11"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// File is the default name of the configuration file.
const File = "dht11.toml"

// Config holds every setting of the command.
type Config struct {
	Pin          string `toml:"pin" validate:"required"`
	Interval     string `toml:"interval" validate:"required,interval"`
	TraceRecords int    `toml:"trace_records" validate:"gte=1,lte=4096"`
	LogLevel     string `toml:"log_level" validate:"oneof=trace debug info warn error"`
	MQTT         MQTT   `toml:"mqtt"`
}

// MQTT holds the broker settings. An empty Broker disables publishing.
type MQTT struct {
	Broker   string `toml:"broker" validate:"omitempty,url"`
	Topic    string `toml:"topic" validate:"required_with=Broker"`
	ClientID string `toml:"client_id"`
	QoS      byte   `toml:"qos" validate:"lte=2"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Pin:          "GPIO4",
		Interval:     "2s",
		TraceRecords: dht11.DefaultTraceRecords,
		LogLevel:     "info",
		MQTT: MQTT{
			Topic:    "sensors/dht11",
			ClientID: "dht11",
			QoS:      1,
		},
	}
}

// Period returns the parsed Interval. It is only meaningful on a validated
// Config.
func (c *Config) Period() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

// Level returns the parsed LogLevel.
func (c *Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

// Validate checks every field of c.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: invalid values: %w", err)
	}
	return nil
}

// Load reads the configuration at path on fsys on top of Default.
func Load(fsys afero.Fs, path string) (Config, error) {
	c := Default()
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return c, c.Validate()
}

// Save writes c to path on fsys.
func Save(fsys afero.Fs, path string, c Config) error {
	data, err := toml.Marshal(&c)
	if err != nil {
		return fmt.Errorf("config: failed to marshal: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("interval", validateInterval)
	return v
}

// validateInterval accepts durations the sensor can sustain.
func validateInterval(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d >= dht11.MinInterval
}
