// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dht11 controls an Aosong DHT11 temperature and humidity sensor over
// its single-wire data line.
//
// The host pulls the line low for 20ms to wake the sensor, releases it, and
// the sensor answers with an 80µs low / 80µs high handshake followed by 40
// data bits. Each bit starts with a ~50µs low period; the length of the high
// period that follows carries the value: ~27µs is a 0, ~70µs is a 1. The 40
// bits form a 5 byte Frame ending with an additive checksum.
//
// Because the value of a bit is its duration, the data phase runs with the
// goroutine locked to its thread and the garbage collector stopped. Do not
// read the same sensor more often than once per second.
//
// Dev.Read returns a Reading and a success flag. Dev.DebugRead additionally
// returns a Trace describing every protocol phase, which records where a
// failed read stopped. Dev also implements physic.SenseEnv.
//
// # Datasheet
//
// https://www.mouser.com/datasheet/2/758/DHT11-Technical-Data-Sheet-Translated-Version-1143054.pdf
package dht11
