// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensor

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/relabs-tech/gesture_quiz/internal/orientation"
)

// Mock motion script, repeated every mockCycle:
//
//	0s   - 2s   device flat on the table
//	2s   - 2.2s shake burst along Z
//	2.2s - 4s   flat
//	4s   - 6s   tilted to the right
//	6s   - 8s   flat
//	8s   - 10s  yaw sweep from 0° to 90°
//	10s  - 12s  held at 90°, then snaps back at the cycle boundary
const (
	mockCycle      = 12 * time.Second
	mockGravity    = 9.80665
	mockShakeAccel = 35.0
	mockTiltX      = 8.5
	mockMaxYawDeg  = 90.0
)

type mockSource struct {
	clk   clock.Clock
	start time.Time
	next  Kind
}

// NewMockSource creates a mock sensor source that replays a scripted
// shake / tilt / rotate cycle. Calls alternate between accelerometer and
// rotation vector samples.
func NewMockSource(clk clock.Clock) Source {
	if clk == nil {
		clk = clock.New()
	}
	return &mockSource{clk: clk, start: clk.Now(), next: Accelerometer}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := m.clk.Since(m.start)
	phase := elapsed % mockCycle
	ts := elapsed.Milliseconds()

	kind := m.next
	if m.next == Accelerometer {
		m.next = RotationVector
	} else {
		m.next = Accelerometer
	}

	if kind == Accelerometer {
		return Sample{Kind: Accelerometer, Values: mockAccel(phase), TimestampMillis: ts}, nil
	}
	return Sample{Kind: RotationVector, Values: orientation.YawRotationVector(mockYaw(phase)), TimestampMillis: ts}, nil
}

func mockAccel(phase time.Duration) []float64 {
	// small jitter so the stream looks like a real sensor at rest
	jitter := 0.05 * math.Sin(phase.Seconds()*7)

	switch {
	case phase >= 2*time.Second && phase < 2200*time.Millisecond:
		return []float64{jitter, jitter, mockShakeAccel}
	case phase >= 4*time.Second && phase < 6*time.Second:
		// gravity split between X and Z, |a| stays at 1 g
		z := math.Sqrt(mockGravity*mockGravity - mockTiltX*mockTiltX)
		return []float64{mockTiltX, jitter, z}
	default:
		return []float64{jitter, jitter, mockGravity}
	}
}

func mockYaw(phase time.Duration) float64 {
	switch {
	case phase >= 8*time.Second && phase < 10*time.Second:
		return mockMaxYawDeg * (phase - 8*time.Second).Seconds() / 2
	case phase >= 10*time.Second:
		return mockMaxYawDeg
	default:
		return 0
	}
}
