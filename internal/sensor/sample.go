// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensor

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformed is returned when a sample cannot be classified.
var ErrMalformed = errors.New("malformed sample")

// Kind identifies the physical sensor a sample came from.
type Kind int

const (
	KindUnknown Kind = iota
	Accelerometer
	RotationVector
)

func (k Kind) String() string {
	switch k {
	case Accelerometer:
		return "accelerometer"
	case RotationVector:
		return "rotation_vector"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind as its lowercase name for JSON payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "accelerometer":
		*k = Accelerometer
	case "rotation_vector":
		*k = RotationVector
	default:
		return fmt.Errorf("unknown sensor kind %q", string(b))
	}
	return nil
}

// Sample is a single sensor reading as delivered by the platform.
//
// Accelerometer values are (x, y, z) in m/s². Rotation vector values are
// (x, y, z) or (x, y, z, w), optionally followed by a heading accuracy.
// TimestampMillis comes from a monotonic clock shared by all sensors.
type Sample struct {
	Kind            Kind      `json:"kind"`
	Values          []float64 `json:"values"`
	TimestampMillis int64     `json:"timestamp_ms"`
}

// Validate reports whether the sample carries enough finite values for its kind.
func (s Sample) Validate() error {
	var min, max int
	switch s.Kind {
	case Accelerometer:
		min, max = 3, 3
	case RotationVector:
		min, max = 3, 5
	default:
		return fmt.Errorf("%w: kind %s", ErrMalformed, s.Kind)
	}
	if len(s.Values) < min {
		return fmt.Errorf("%w: %s needs %d values, got %d", ErrMalformed, s.Kind, min, len(s.Values))
	}
	for i, v := range s.Values {
		if i >= max {
			break
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s value %d is not finite", ErrMalformed, s.Kind, i)
		}
	}
	return nil
}

// Source is anything that can provide sensor samples over time.
type Source interface {
	Next() (Sample, error)
}
