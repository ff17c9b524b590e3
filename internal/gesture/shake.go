// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import "github.com/golang/geo/r3"

// ShakeClassifier fires on sudden spikes of acceleration magnitude.
type ShakeClassifier struct {
	threshold float64
	debounce  debounce
}

// NewShakeClassifier returns a classifier using the shake fields of t.
func NewShakeClassifier(t Thresholds) ShakeClassifier {
	return ShakeClassifier{threshold: t.ShakeThreshold, debounce: newDebounce(t.ShakeCooldown)}
}

// Magnitude returns |a| minus standard gravity.
func Magnitude(x, y, z float64) float64 {
	return r3.Vector{X: x, Y: y, Z: z}.Norm() - StandardGravity
}

// Rearm forgets the last fire so the cooldown no longer applies.
func (c *ShakeClassifier) Rearm() {
	c.debounce.rearm()
}

// Classify reports whether the reading is a shake. Firing clears the
// shared tilt latch in st.
func (c *ShakeClassifier) Classify(st *ArbiterState, x, y, z float64, now int64) bool {
	if Magnitude(x, y, z) <= c.threshold || !c.debounce.ready(now) {
		return false
	}
	c.debounce.fire(now)
	st.IsTilted = false
	return true
}
