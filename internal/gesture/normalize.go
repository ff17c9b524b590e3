// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import (
	"github.com/relabs-tech/gesture_quiz/internal/orientation"
	"github.com/relabs-tech/gesture_quiz/internal/sensor"
)

// Reading is a sample reduced to what the classifiers consume.
// X, Y, Z are set for accelerometer readings, Yaw for rotation readings.
type Reading struct {
	Kind            sensor.Kind
	X, Y, Z         float64
	Yaw             float64
	TimestampMillis int64
}

// Normalize converts a raw sample into a Reading. The second result is
// false for malformed samples, which the detector drops silently.
func Normalize(s sensor.Sample) (Reading, bool) {
	if err := s.Validate(); err != nil {
		return Reading{}, false
	}

	r := Reading{Kind: s.Kind, TimestampMillis: s.TimestampMillis}
	switch s.Kind {
	case sensor.Accelerometer:
		r.X, r.Y, r.Z = s.Values[0], s.Values[1], s.Values[2]
	case sensor.RotationVector:
		r.Yaw = orientation.Azimuth(s.Values)
	}
	return r, true
}
