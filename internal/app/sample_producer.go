// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/relabs-tech/gesture_quiz/internal/config"
	"github.com/relabs-tech/gesture_quiz/internal/gesture"
	"github.com/relabs-tech/gesture_quiz/internal/orientation"
	"github.com/relabs-tech/gesture_quiz/internal/sensor"
)

// SampleTopic returns the topic samples of kind k are published on.
func SampleTopic(cfg *config.Config, k sensor.Kind) (string, error) {
	switch k {
	case sensor.Accelerometer:
		return cfg.TopicSampleAccel, nil
	case sensor.RotationVector:
		return cfg.TopicSampleRotation, nil
	default:
		return "", fmt.Errorf("no topic for sensor kind %s", k)
	}
}

type closableSource interface {
	sensor.Source
	Close() error
}

var openSerial = func(port string, baud int) (closableSource, error) {
	src, err := sensor.NewSerialSource(port, baud)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// openSource builds the sample source selected by SAMPLE_SOURCE. The
// returned close func is never nil and is safe to call more than once.
func openSource(cfg *config.Config, clk clock.Clock) (sensor.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SampleSource {
	case config.SourceMock:
		log.Println("using mock sample source")
		return sensor.NewMockSource(clk), noop, nil
	case config.SourceIMU:
		log.Printf("using MPU-9250 on %s (accelerometer only)", cfg.IMUSPIDevice)
		src, err := sensor.NewIMUSource(cfg.IMUSPIDevice, cfg.IMUCSPin, clk)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	case config.SourceSerial:
		src, err := openSerial(cfg.SerialPort, cfg.SerialBaudRate)
		if err != nil {
			return nil, noop, err
		}
		return src, sync.OnceValue(src.Close), nil
	default:
		return nil, noop, fmt.Errorf("unknown sample source %q", cfg.SampleSource)
	}
}

// skipCounter is implemented by sources that drop unparseable input.
type skipCounter interface {
	Skipped() int
}

// producerStats tracks what has been published since the last log line.
// skipped is the source's running total.
type producerStats struct {
	accel, rotation int
	skipped         int
	lastAccel       []float64
	lastRotation    []float64
}

func (s *producerStats) record(sample sensor.Sample) {
	switch sample.Kind {
	case sensor.Accelerometer:
		s.accel++
		s.lastAccel = sample.Values
	case sensor.RotationVector:
		s.rotation++
		s.lastRotation = sample.Values
	}
}

func (s *producerStats) String() string {
	line := fmt.Sprintf("published accel=%d rotation=%d", s.accel, s.rotation)
	if s.skipped > 0 {
		line += fmt.Sprintf(" skipped=%d", s.skipped)
	}
	if s.lastAccel != nil {
		p := orientation.AccelToPose(s.lastAccel[0], s.lastAccel[1], s.lastAccel[2])
		line += fmt.Sprintf(" | R=%.1f P=%.1f |a|-g=%.2f", p.Roll, p.Pitch,
			gesture.Magnitude(s.lastAccel[0], s.lastAccel[1], s.lastAccel[2]))
	}
	if s.lastRotation != nil {
		line += fmt.Sprintf(" | azimuth=%.1f", orientation.Azimuth(s.lastRotation))
	}
	return line
}

func publishSample(pub Publisher, cfg *config.Config, s sensor.Sample) error {
	topic, err := SampleTopic(cfg, s.Kind)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("sample marshal: %w", err)
	}
	return pub.Publish(topic, payload)
}

// RunSampleProducer reads the configured sample source and publishes every
// sample as JSON until ctx is cancelled.
func RunSampleProducer(ctx context.Context) error {
	log.Println("starting gesture sample producer")

	cfg := config.Get()
	clk := clock.New()

	src, closeSource, err := openSource(cfg, clk)
	if err != nil {
		return fmt.Errorf("open sample source: %w", err)
	}
	defer closeSource()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	pub := mqttPublisher{client: client}

	log.Println("connected to MQTT, starting publish loop")

	// The serial bridge paces itself; polled sources run off the ticker.
	paced := cfg.SampleSource != config.SourceSerial
	ticker := clk.Ticker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()
	logTicker := clk.Ticker(time.Duration(cfg.ConsoleLogInterval) * time.Millisecond)
	defer logTicker.Stop()

	if !paced {
		// unblocks a pending serial read on shutdown
		go func() {
			<-ctx.Done()
			closeSource()
		}()
	}

	stats := &producerStats{}
	for {
		select {
		case <-ctx.Done():
			log.Println("producer: shutting down")
			return nil
		case <-logTicker.C:
			if sc, ok := src.(skipCounter); ok {
				stats.skipped = sc.Skipped()
			}
			log.Printf("producer: %s", stats)
			*stats = producerStats{}
			continue
		default:
		}

		if paced {
			select {
			case <-ctx.Done():
				continue
			case <-ticker.C:
			}
		}

		s, err := src.Next()
		if err != nil {
			if !paced {
				if ctx.Err() != nil {
					continue
				}
				return fmt.Errorf("sample source: %w", err)
			}
			log.Printf("sample source error: %v", err)
			continue
		}

		if err := publishSample(pub, cfg, s); err != nil {
			log.Printf("MQTT publish error (%s): %v", s.Kind, err)
			continue
		}
		stats.record(s)
	}
}
