// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package gesture turns accelerometer and rotation vector samples into
// debounced shake, tilt and rotate events.
package gesture

import (
	"sync"

	"github.com/relabs-tech/gesture_quiz/internal/sensor"
)

// ArbiterState is the state shared by all classifiers.
//
// IsTilted is set by a tilt fire and cleared by any other fire, so once a
// shake or rotation has reacted to the new orientation it is not reported
// again as a sustained tilt.
type ArbiterState struct {
	IsTilted bool
}

// Detector arbitrates between the classifiers. Accelerometer samples go to
// shake first and only reach tilt when no shake fired; rotation vector
// samples go to the rotation classifier alone.
//
// Each stream tracks its last timestamp. A timestamp that goes backwards
// means the source restarted (a new producer run or a rebooted bridge), so
// that stream's calibration and cooldowns start over.
//
// OnSample is O(1) and never blocks beyond the internal mutex, which is only
// there because MQTT and HTTP callbacks arrive on different goroutines.
type Detector struct {
	mu       sync.Mutex
	state    ArbiterState
	shake    ShakeClassifier
	tilt     TiltClassifier
	rotation RotationClassifier

	accelClock    streamClock
	rotationClock streamClock
}

// streamClock remembers the latest timestamp seen on one sensor stream.
type streamClock struct {
	last int64
	seen bool
}

// advance records now and reports whether the stream's clock went backwards.
func (c *streamClock) advance(now int64) bool {
	reset := c.seen && now < c.last
	c.last, c.seen = now, true
	return reset
}

// NewDetector returns an uncalibrated detector.
func NewDetector(t Thresholds) *Detector {
	return &Detector{
		shake:    NewShakeClassifier(t),
		tilt:     NewTiltClassifier(t),
		rotation: NewRotationClassifier(t),
	}
}

// OnSample classifies one sample and returns the gesture it completed, or
// None. Malformed samples are ignored.
func (d *Detector) OnSample(s sensor.Sample) Event {
	r, ok := Normalize(s)
	if !ok {
		return None
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch r.Kind {
	case sensor.Accelerometer:
		return d.onAccel(r)
	case sensor.RotationVector:
		return d.onRotation(r)
	}
	return None
}

func (d *Detector) onAccel(r Reading) Event {
	if d.accelClock.advance(r.TimestampMillis) {
		d.tilt.Uncalibrate()
		d.shake.Rearm()
		d.tilt.Rearm()
		d.state.IsTilted = false
	}
	if !d.tilt.Calibrated() {
		d.tilt.Calibrate(r.X, r.Y)
		return None
	}
	if d.shake.Classify(&d.state, r.X, r.Y, r.Z, r.TimestampMillis) {
		return Shake
	}
	if d.tilt.Classify(&d.state, r.X, r.Y, r.TimestampMillis) {
		return Tilt
	}
	return None
}

func (d *Detector) onRotation(r Reading) Event {
	if d.rotationClock.advance(r.TimestampMillis) {
		d.rotation.Uncalibrate()
		d.rotation.Rearm()
	}
	if !d.rotation.Calibrated() {
		d.rotation.Calibrate(r.Yaw)
		return None
	}
	if d.rotation.Classify(&d.state, r.Yaw, r.TimestampMillis) {
		return Rotate
	}
	return None
}

// ResetCalibration drops both calibrations and the tilt latch. The next
// sample of each kind becomes the new baseline. Cooldowns are kept.
func (d *Detector) ResetCalibration() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tilt.Uncalibrate()
	d.rotation.Uncalibrate()
	d.state.IsTilted = false
}

// Snapshot is a read-only view of the detector for status output.
type Snapshot struct {
	AccelCalibrated    bool    `json:"accel_calibrated"`
	RotationCalibrated bool    `json:"rotation_calibrated"`
	NeutralX           float64 `json:"neutral_x"`
	NeutralY           float64 `json:"neutral_y"`
	ReferenceYaw       float64 `json:"reference_yaw"`
	Tilted             bool    `json:"tilted"`
}

// Snapshot returns the current calibration and latch state.
func (d *Detector) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	nx, ny := d.tilt.Neutral()
	return Snapshot{
		AccelCalibrated:    d.tilt.Calibrated(),
		RotationCalibrated: d.rotation.Calibrated(),
		NeutralX:           nx,
		NeutralY:           ny,
		ReferenceYaw:       d.rotation.Reference(),
		Tilted:             d.state.IsTilted,
	}
}
