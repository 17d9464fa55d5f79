// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package publish sends DHT11 readings to an MQTT broker as JSON.
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/dht11/config"
	"github.com/GermanBionicSystems/dht11/dht11"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// ConnectTimeout bounds the initial connection to the broker.
const ConnectTimeout = 5 * time.Second

// ClientFactory creates the MQTT client. Tests replace it with a mock.
type ClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

// DefaultClientFactory creates a paho client.
var DefaultClientFactory ClientFactory = mqtt.NewClient

// Message is the payload published for each reading.
type Message struct {
	TemperatureC int       `json:"temperature_c"`
	HumidityRH   uint      `json:"humidity_rh"`
	Valid        bool      `json:"valid"`
	Time         time.Time `json:"time"`
}

// NewMessage converts a reading taken at t.
func NewMessage(r dht11.Reading, t time.Time) Message {
	return Message{
		TemperatureC: r.Temperature,
		HumidityRH:   r.Humidity,
		Valid:        r.Valid,
		Time:         t.UTC(),
	}
}

// Publisher is a connection to a broker publishing on a single topic.
type Publisher struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// New connects to the broker named in c. A nil factory means
// DefaultClientFactory.
func New(c config.MQTT, factory ClientFactory) (*Publisher, error) {
	if c.Broker == "" {
		return nil, errors.New("publish: no broker configured")
	}
	if c.Topic == "" {
		return nil, errors.New("publish: no topic configured")
	}
	if factory == nil {
		factory = DefaultClientFactory
	}
	opts := mqtt.NewClientOptions().
		AddBroker(c.Broker).
		SetClientID(c.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(ConnectTimeout)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("publish: connection lost")
	}

	client := factory(opts)
	token := client.Connect()
	if !token.WaitTimeout(ConnectTimeout) {
		client.Disconnect(0)
		return nil, errors.New("publish: failed to connect to broker: connection timeout")
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("publish: failed to connect to broker: %w", err)
	}
	log.Info().Msgf("publish: connected to %s (topic: %s)", c.Broker, c.Topic)
	return &Publisher{client: client, topic: c.Topic, qos: c.QoS}, nil
}

// Publish sends the reading taken at t and waits for the broker to accept it.
func (p *Publisher) Publish(r dht11.Reading, t time.Time) error {
	payload, err := json.Marshal(NewMessage(r, t))
	if err != nil {
		return fmt.Errorf("publish: failed to marshal reading: %w", err)
	}
	token := p.client.Publish(p.topic, p.qos, false, payload)
	if !token.WaitTimeout(ConnectTimeout) {
		return errors.New("publish: timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	if p.client.IsConnected() {
		log.Debug().Msg("publish: disconnecting")
		p.client.Disconnect(250)
	}
	return nil
}
