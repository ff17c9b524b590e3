// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher sends a payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

var connectMQTT = func(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	return client, nil
}

func subscribe(client mqtt.Client, topic string, handler mqtt.MessageHandler) error {
	token := client.Subscribe(topic, 0, handler)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe %s: %w", topic, token.Error())
	}
	return nil
}

// mqttPublisher publishes synchronously at QoS 0. It must not be used from
// inside a message handler: with ordered delivery a handler that waits on a
// token stalls the client.
type mqttPublisher struct {
	client   mqtt.Client
	retained bool
}

func (p mqttPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, p.retained, payload)
	token.Wait()
	return token.Error()
}

var errQueueFull = errors.New("publish queue full")

type outbound struct {
	topic   string
	payload []byte
}

// queuedPublisher lets message handlers publish without blocking. A single
// goroutine drains the queue into the wrapped publisher.
type queuedPublisher struct {
	queue chan outbound
	next  Publisher
}

func newQueuedPublisher(next Publisher, size int) *queuedPublisher {
	return &queuedPublisher{queue: make(chan outbound, size), next: next}
}

func (q *queuedPublisher) Publish(topic string, payload []byte) error {
	select {
	case q.queue <- outbound{topic: topic, payload: payload}:
		return nil
	default:
		return errQueueFull
	}
}

// run drains the queue until ctx is done. Publish failures are logged and
// do not stop the loop.
func (q *queuedPublisher) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-q.queue:
			if err := q.next.Publish(m.topic, m.payload); err != nil {
				log.Printf("MQTT publish error (%s): %v", m.topic, err)
			}
		}
	}
}
