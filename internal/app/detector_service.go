// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log"
	"time"

	"github.com/benbjohnson/clock"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/gesture_quiz/internal/config"
	"github.com/relabs-tech/gesture_quiz/internal/gesture"
)

// RunDetector subscribes to the sample topics, classifies every sample and
// publishes gestures until ctx is cancelled.
func RunDetector(ctx context.Context) error {
	log.Println("starting gesture detector")

	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDetector)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("detector: connected to MQTT broker at %s", cfg.MQTTBroker)

	queue := newQueuedPublisher(mqttPublisher{client: client}, 64)
	pipeline := NewPipeline(gesture.NewDetector(cfg.Thresholds()), queue, cfg.TopicGesture, clock.New())

	onSample := func(_ mqtt.Client, msg mqtt.Message) {
		ev, err := pipeline.HandleSample(msg.Payload())
		if err != nil {
			log.Printf("detector: %v", err)
			return
		}
		if ev != gesture.None {
			log.Printf("detector: %s -> %s", ev, NavigationAction(ev))
		}
	}

	onControl := func(_ mqtt.Client, msg mqtt.Message) {
		if err := pipeline.HandleControl(msg.Payload()); err != nil {
			log.Printf("detector: %v", err)
			return
		}
		log.Println("detector: calibration reset")
	}

	for _, topic := range []string{cfg.TopicSampleAccel, cfg.TopicSampleRotation} {
		if err := subscribe(client, topic, onSample); err != nil {
			return err
		}
		log.Printf("detector: subscribed to %s", topic)
	}
	if err := subscribe(client, cfg.TopicControl, onControl); err != nil {
		return err
	}
	log.Printf("detector: subscribed to %s", cfg.TopicControl)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return queue.run(gctx) })
	g.Go(func() error {
		ticker := time.NewTicker(time.Duration(cfg.ConsoleLogInterval) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				st := pipeline.Status()
				log.Printf("detector: calibrated accel=%t rotation=%t neutral=(%.2f, %.2f) yaw_ref=%.1f tilted=%t",
					st.AccelCalibrated, st.RotationCalibrated, st.NeutralX, st.NeutralY, st.ReferenceYaw, st.Tilted)
			}
		}
	})

	err = g.Wait()
	log.Println("detector: shutting down")
	return err
}
