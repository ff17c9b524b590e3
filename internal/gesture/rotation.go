// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import "math"

// RotationClassifier fires when yaw moves far enough from a reference
// heading. The reference follows the device whenever it settles close to
// it, so slow drift never strands the detector behind a stale heading.
type RotationClassifier struct {
	threshold        float64
	neutralThreshold float64
	debounce         debounce

	calibrated   bool
	referenceYaw float64
}

// NewRotationClassifier returns an uncalibrated classifier using the rotation fields of t.
func NewRotationClassifier(t Thresholds) RotationClassifier {
	return RotationClassifier{
		threshold:        t.RotationThreshold,
		neutralThreshold: t.RotationNeutralThreshold,
		debounce:         newDebounce(t.RotationCooldown),
	}
}

// Calibrated reports whether a reference heading has been captured.
func (c *RotationClassifier) Calibrated() bool {
	return c.calibrated
}

// Calibrate records yaw as the reference heading.
func (c *RotationClassifier) Calibrate(yaw float64) {
	c.referenceYaw = yaw
	c.calibrated = true
}

// Uncalibrate drops the reference; the next reading recaptures it.
func (c *RotationClassifier) Uncalibrate() {
	c.calibrated = false
}

// Rearm forgets the last fire so the cooldown no longer applies.
func (c *RotationClassifier) Rearm() {
	c.debounce.rearm()
}

// Reference returns the current reference heading in degrees.
func (c *RotationClassifier) Reference() float64 {
	return c.referenceYaw
}

// CircularDistance returns the shortest angular distance between two
// headings in degrees, in [0, 180].
func CircularDistance(a, b float64) float64 {
	diff := math.Abs(a - b)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// Classify reports whether the reading is a rotation. Firing moves the
// reference to yaw and clears the shared tilt latch in st.
// The classifier must be calibrated.
func (c *RotationClassifier) Classify(st *ArbiterState, yaw float64, now int64) bool {
	diff := CircularDistance(yaw, c.referenceYaw)

	switch {
	case diff < c.neutralThreshold:
		// Settled near the reference: re-baseline quietly.
		if c.debounce.ready(now) {
			c.referenceYaw = yaw
		}
	case diff >= c.threshold && c.debounce.ready(now):
		c.debounce.fire(now)
		c.referenceYaw = yaw
		st.IsTilted = false
		return true
	}
	return false
}
