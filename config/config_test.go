// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	c, err := Load(afero.NewMemMapFs(), File)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, 2*time.Second, c.Period())
	assert.Equal(t, zerolog.InfoLevel, c.Level())
}

func TestLoadOverlay(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, File, []byte(`
pin = "GPIO17"
interval = "5s"
log_level = "debug"

[mqtt]
broker = "tcp://broker:1883"
`), 0o644))

	c, err := Load(fs, File)
	require.NoError(t, err)
	assert.Equal(t, "GPIO17", c.Pin)
	assert.Equal(t, 5*time.Second, c.Period())
	assert.Equal(t, zerolog.DebugLevel, c.Level())
	assert.Equal(t, 64, c.TraceRecords)
	assert.Equal(t, "tcp://broker:1883", c.MQTT.Broker)
	assert.Equal(t, "sensors/dht11", c.MQTT.Topic)
	assert.Equal(t, byte(1), c.MQTT.QoS)
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
	}{
		{name: "interval too short", body: `interval = "500ms"`},
		{name: "interval garbage", body: `interval = "soon"`},
		{name: "empty pin", body: `pin = ""`},
		{name: "log level", body: `log_level = "loud"`},
		{name: "trace records", body: `trace_records = 0`},
		{name: "qos", body: "[mqtt]\nqos = 3"},
		{name: "broker without topic", body: "[mqtt]\nbroker = \"tcp://b:1883\"\ntopic = \"\""},
		{name: "syntax", body: `pin = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, File, []byte(tt.body), 0o644))
			_, err := Load(fs, File)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	want := Default()
	want.Pin = "GPIO22"
	want.MQTT.Broker = "tcp://localhost:1883"
	require.NoError(t, Save(fs, File, want))

	got, err := Load(fs, File)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveReadOnly(t *testing.T) {
	t.Parallel()
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	assert.Error(t, Save(fs, File, Default()))
}
