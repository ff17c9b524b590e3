// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/relabs-tech/gesture_quiz/internal/gesture"
	"github.com/relabs-tech/gesture_quiz/internal/sensor"
)

// Pipeline feeds decoded samples to a detector and publishes the gestures
// it reports.
type Pipeline struct {
	detector *gesture.Detector
	pub      Publisher
	topic    string
	clk      clock.Clock
}

// NewPipeline wires a detector to a publisher. Gestures go to topic.
func NewPipeline(det *gesture.Detector, pub Publisher, topic string, clk clock.Clock) *Pipeline {
	if clk == nil {
		clk = clock.New()
	}
	return &Pipeline{detector: det, pub: pub, topic: topic, clk: clk}
}

// HandleSample classifies one JSON-encoded sample. A gesture, if any, is
// published and also returned.
func (p *Pipeline) HandleSample(payload []byte) (gesture.Event, error) {
	var s sensor.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return gesture.None, fmt.Errorf("sample unmarshal: %w", err)
	}

	ev := p.detector.OnSample(s)
	if ev == gesture.None {
		return ev, nil
	}

	msg := NewGestureMessage(ev, s.TimestampMillis, p.clk.Now())
	out, err := json.Marshal(msg)
	if err != nil {
		return ev, fmt.Errorf("gesture marshal: %w", err)
	}
	if err := p.pub.Publish(p.topic, out); err != nil {
		return ev, fmt.Errorf("gesture publish: %w", err)
	}
	return ev, nil
}

// HandleControl applies a JSON-encoded ControlMessage.
func (p *Pipeline) HandleControl(payload []byte) error {
	var c ControlMessage
	if err := json.Unmarshal(payload, &c); err != nil {
		return fmt.Errorf("control unmarshal: %w", err)
	}

	switch c.Action {
	case ControlResetCalibration:
		p.detector.ResetCalibration()
		return nil
	default:
		return fmt.Errorf("unknown control action %q", c.Action)
	}
}

// Status returns the detector's calibration state.
func (p *Pipeline) Status() gesture.Snapshot {
	return p.detector.Snapshot()
}
