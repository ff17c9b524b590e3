// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import "math"

// TiltClassifier fires when the device leaves its neutral pose and stays
// latched until it comes back. Between the neutral and tilt thresholds
// nothing changes, so a device resting near the boundary does not chatter.
type TiltClassifier struct {
	tiltThreshold    float64
	neutralThreshold float64
	debounce         debounce

	calibrated         bool
	neutralX, neutralY float64
}

// NewTiltClassifier returns an uncalibrated classifier using the tilt fields of t.
func NewTiltClassifier(t Thresholds) TiltClassifier {
	return TiltClassifier{
		tiltThreshold:    t.TiltThreshold,
		neutralThreshold: t.NeutralThreshold,
		debounce:         newDebounce(t.TiltCooldown),
	}
}

// Calibrated reports whether a neutral pose has been captured.
func (c *TiltClassifier) Calibrated() bool {
	return c.calibrated
}

// Calibrate records (x, y) as the neutral pose.
func (c *TiltClassifier) Calibrate(x, y float64) {
	c.neutralX, c.neutralY = x, y
	c.calibrated = true
}

// Neutral returns the captured neutral pose.
func (c *TiltClassifier) Neutral() (x, y float64) {
	return c.neutralX, c.neutralY
}

// Uncalibrate drops the neutral pose; the next reading recaptures it.
func (c *TiltClassifier) Uncalibrate() {
	c.calibrated = false
}

// Rearm forgets the last fire so the cooldown no longer applies.
func (c *TiltClassifier) Rearm() {
	c.debounce.rearm()
}

// MaxDelta is the larger per-axis deviation from the neutral pose.
func (c *TiltClassifier) MaxDelta(x, y float64) float64 {
	return math.Max(math.Abs(x-c.neutralX), math.Abs(y-c.neutralY))
}

// Classify reports whether the reading starts a tilt. It sets the shared
// latch on fire and clears it once the device is back near neutral.
// The classifier must be calibrated.
func (c *TiltClassifier) Classify(st *ArbiterState, x, y float64, now int64) bool {
	delta := c.MaxDelta(x, y)

	switch {
	case delta > c.tiltThreshold && !st.IsTilted && c.debounce.ready(now):
		c.debounce.fire(now)
		st.IsTilted = true
		return true
	case delta < c.neutralThreshold && st.IsTilted:
		st.IsTilted = false
	}
	return false
}
