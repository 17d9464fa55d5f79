// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dht11_test

import (
	"fmt"
	"log"
	"os"

	"github.com/GermanBionicSystems/dht11/dht11"
	"github.com/GermanBionicSystems/dht11/dht11/dht11test"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// The data line of the sensor, with a 4.7kΩ pull-up to 3.3V.
	p := gpioreg.ByName("GPIO4")
	if p == nil {
		log.Fatal("failed to find GPIO4")
	}

	d, err := dht11.New(p, nil) // nil for default options or &dht11.DefaultOpts
	if err != nil {
		log.Fatalf("failed to initialize DHT11: %v", err)
	}

	r, ok := d.Read()
	if !ok {
		log.Fatal("failed to read DHT11")
	}
	fmt.Println(r)
}

func ExampleDev_DebugRead() {
	s := dht11test.New(dht11.Frame{0x32, 0x00, 0x18, 0x00, 0x4b})
	d, err := dht11.New(s, &dht11.Opts{Clock: s})
	if err != nil {
		log.Fatal(err)
	}
	r, ok, tr := d.DebugRead()
	fmt.Println(r, ok)
	fmt.Println(tr.Err())
	if _, err := tr.WriteTo(os.Stderr); err != nil {
		log.Fatal(err)
	}
	// Output:
	// invalid false
	// dht11: checksum mismatch during validate phase
}
