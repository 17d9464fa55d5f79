// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices is a container for the DHT11 driver and its tooling.
//
// Package dht11 is the driver, dht11/dht11test simulates the sensor for
// tests. pulsestrip and pulsechart render the bit timing of a debug read,
// publish forwards readings to MQTT and config loads the settings of
// cmd/dht11.
package devices
