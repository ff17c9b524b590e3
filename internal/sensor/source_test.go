// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensor

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gesture_quiz/internal/orientation"
)

func TestMockSourceScript(t *testing.T) {
	clk := clock.NewMock()
	src := NewMockSource(clk)

	next := func() Sample {
		t.Helper()
		s, err := src.Next()
		require.NoError(t, err)
		require.NoError(t, s.Validate())
		return s
	}

	rest := next()
	assert.Equal(t, Accelerometer, rest.Kind)
	assert.InDelta(t, 9.80665, rest.Values[2], 1e-9)
	assert.Equal(t, int64(0), rest.TimestampMillis)

	rot := next()
	assert.Equal(t, RotationVector, rot.Kind)
	assert.InDelta(t, 0, orientation.Azimuth(rot.Values), 1e-9)

	clk.Add(2100 * time.Millisecond)
	shake := next()
	assert.Equal(t, Accelerometer, shake.Kind)
	assert.Equal(t, 35.0, shake.Values[2])
	assert.Equal(t, int64(2100), shake.TimestampMillis)
	next()

	clk.Add(2900 * time.Millisecond) // 5s: tilted right
	tilt := next()
	assert.Equal(t, 8.5, tilt.Values[0])
	tiltPose := orientation.AccelToPose(tilt.Values[0], tilt.Values[1], tilt.Values[2])
	assert.InDelta(t, -60, tiltPose.Pitch, 1)
	next()

	clk.Add(4 * time.Second) // 9s: halfway through the yaw sweep
	next()
	sweep := next()
	assert.InDelta(t, -45, orientation.Azimuth(sweep.Values), 1e-6)

	clk.Add(2 * time.Second) // 11s: held at 90°
	next()
	held := next()
	assert.InDelta(t, -90, orientation.Azimuth(held.Values), 1e-6)

	clk.Add(time.Second) // 12s: the cycle restarts flat
	next()
	assert.InDelta(t, 0, orientation.Azimuth(next().Values), 1e-9)
}

type fakeAccel struct {
	x, y, z int16
	err     error
}

func (f fakeAccel) GetAccelerationX() (int16, error) { return f.x, f.err }
func (f fakeAccel) GetAccelerationY() (int16, error) { return f.y, nil }
func (f fakeAccel) GetAccelerationZ() (int16, error) { return f.z, nil }

func TestIMUSourceConvertsCounts(t *testing.T) {
	clk := clock.NewMock()
	src := newIMUSource(fakeAccel{x: -8192, y: 0, z: 16384}, clk)

	clk.Add(250 * time.Millisecond)
	s, err := src.Next()
	require.NoError(t, err)

	assert.Equal(t, Accelerometer, s.Kind)
	assert.InDelta(t, -9.80665/2, s.Values[0], 1e-9)
	assert.InDelta(t, 0, s.Values[1], 1e-9)
	assert.InDelta(t, 9.80665, s.Values[2], 1e-9)
	assert.Equal(t, int64(250), s.TimestampMillis)
}

func TestIMUSourceReadError(t *testing.T) {
	src := newIMUSource(fakeAccel{err: errors.New("spi timeout")}, clock.NewMock())
	_, err := src.Next()
	assert.ErrorContains(t, err, "IMU accel X")
}
