// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import (
	"fmt"
	"math"
	"time"
)

// StandardGravity is g in m/s², subtracted from the acceleration magnitude.
const StandardGravity = 9.80665

// Thresholds holds the tuning constants of every classifier.
type Thresholds struct {
	// Shake: acceleration magnitude above gravity, m/s².
	ShakeThreshold float64
	ShakeCooldown  time.Duration

	// Tilt: per-axis deviation from the neutral pose, m/s².
	// Between NeutralThreshold and TiltThreshold the latch holds.
	TiltThreshold    float64
	NeutralThreshold float64
	TiltCooldown     time.Duration

	// Rotation: shortest-arc yaw distance from the reference, degrees.
	RotationThreshold        float64
	RotationNeutralThreshold float64
	RotationCooldown         time.Duration
}

// DefaultThresholds returns the tuning used on phones.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ShakeThreshold:           12.0,
		ShakeCooldown:            1000 * time.Millisecond,
		TiltThreshold:            7.0,
		NeutralThreshold:         3.0,
		TiltCooldown:             1500 * time.Millisecond,
		RotationThreshold:        45.0,
		RotationNeutralThreshold: 10.0,
		RotationCooldown:         1500 * time.Millisecond,
	}
}

// Validate checks that the thresholds describe a usable detector.
func (t Thresholds) Validate() error {
	for _, v := range []float64{t.ShakeThreshold, t.TiltThreshold, t.NeutralThreshold, t.RotationThreshold, t.RotationNeutralThreshold} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("thresholds must be finite, got %v", v)
		}
	}
	if t.ShakeThreshold <= 0 {
		return fmt.Errorf("shake threshold must be positive, got %.2f", t.ShakeThreshold)
	}
	if t.NeutralThreshold <= 0 || t.NeutralThreshold > t.TiltThreshold {
		return fmt.Errorf("tilt neutral threshold must be in (0, %.2f], got %.2f", t.TiltThreshold, t.NeutralThreshold)
	}
	if t.RotationThreshold <= 0 || t.RotationThreshold > 180 {
		return fmt.Errorf("rotation threshold must be in (0, 180], got %.2f", t.RotationThreshold)
	}
	if t.RotationNeutralThreshold < 0 || t.RotationNeutralThreshold >= t.RotationThreshold {
		return fmt.Errorf("rotation neutral threshold must be in [0, %.2f), got %.2f", t.RotationThreshold, t.RotationNeutralThreshold)
	}
	if t.ShakeCooldown < 0 || t.TiltCooldown < 0 || t.RotationCooldown < 0 {
		return fmt.Errorf("cooldowns must not be negative")
	}
	return nil
}
