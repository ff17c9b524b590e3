// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gesture_quiz/internal/orientation"
	"github.com/relabs-tech/gesture_quiz/internal/sensor"
)

func accel(x, y, z float64, t int64) sensor.Sample {
	return sensor.Sample{Kind: sensor.Accelerometer, Values: []float64{x, y, z}, TimestampMillis: t}
}

// heading builds a rotation vector sample whose azimuth is az degrees.
func heading(az float64, t int64) sensor.Sample {
	return sensor.Sample{Kind: sensor.RotationVector, Values: orientation.YawRotationVector(-az), TimestampMillis: t}
}

func feed(d *Detector, samples ...sensor.Sample) []Event {
	out := make([]Event, 0, len(samples))
	for _, s := range samples {
		out = append(out, d.OnSample(s))
	}
	return out
}

func TestShakeScenario(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		accel(0, 0, 9.8, 0),
		accel(0, 0, 35, 0),
		accel(0, 0, 9.8, 500),
		accel(0, 0, 35, 1100),
	)

	want := []Event{None, Shake, None, Shake}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestShakeWithinCooldown(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		accel(0, 0, 9.8, 0),
		accel(0, 0, 35, 10),
		accel(0, 0, 35, 1010), // exactly the cooldown: not strictly after
		accel(0, 0, 35, 1011),
	)

	assert.Equal(t, []Event{None, Shake, None, Shake}, got)
}

func TestFirstSampleOnlyCalibrates(t *testing.T) {
	t.Run("accelerometer", func(t *testing.T) {
		d := NewDetector(DefaultThresholds())
		assert.Equal(t, None, d.OnSample(accel(40, 40, 40, 0)))

		snap := d.Snapshot()
		assert.True(t, snap.AccelCalibrated)
		assert.Equal(t, 40.0, snap.NeutralX)
		assert.Equal(t, 40.0, snap.NeutralY)
		assert.False(t, snap.Tilted)
	})

	t.Run("rotation vector", func(t *testing.T) {
		d := NewDetector(DefaultThresholds())
		assert.Equal(t, None, d.OnSample(heading(120, 0)))

		snap := d.Snapshot()
		assert.True(t, snap.RotationCalibrated)
		assert.InDelta(t, 120.0, snap.ReferenceYaw, 1e-9)
	})

	t.Run("calibration does not consume cooldown", func(t *testing.T) {
		d := NewDetector(DefaultThresholds())
		got := feed(d, accel(0, 0, 9.8, 0), accel(8, 0, 9.8, 1))
		assert.Equal(t, []Event{None, Tilt}, got)
	})
}

func TestShakePreemptsTilt(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		accel(0, 0, 9.8, 0),
		accel(20, 20, 9.8, 100), // |a|-g ≈ 20.5 and both axes past 7
	)

	assert.Equal(t, []Event{None, Shake}, got)
	assert.False(t, d.Snapshot().Tilted)
}

func TestTiltAfterShakeCooldownOnSameOrientation(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		accel(0, 0, 9.8, 0),
		accel(20, 20, 9.8, 100),
		accel(20, 20, 9.8, 200), // shake cooling down, tilt evaluated
	)

	assert.Equal(t, []Event{None, Shake, Tilt}, got)
}

func TestTiltHysteresis(t *testing.T) {
	d := NewDetector(DefaultThresholds())
	require.Equal(t, None, d.OnSample(accel(0, 0, 9.8, 0)))

	var tilts int
	now := int64(100)
	for i := 0; i < 20; i++ {
		x := 7.1
		if i%2 == 1 {
			x = 6.9
		}
		if d.OnSample(accel(x, 0, 9.8, now)) == Tilt {
			tilts++
		}
		now += 2000 // always past the cooldown
	}
	assert.Equal(t, 1, tilts, "oscillating around the threshold must not chatter")
	assert.True(t, d.Snapshot().Tilted)

	// 2.9 is inside the neutral band: latch clears without firing.
	assert.Equal(t, None, d.OnSample(accel(2.9, 0, 9.8, now)))
	assert.False(t, d.Snapshot().Tilted)

	assert.Equal(t, Tilt, d.OnSample(accel(7.1, 0, 9.8, now+2000)))
}

func TestTiltDeadZoneHoldsLatch(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		accel(0, 0, 9.8, 0),
		accel(0, -8, 9.8, 100),
		accel(0, -5, 9.8, 200), // between 3 and 7
		accel(0, -8, 9.8, 3000),
	)

	assert.Equal(t, []Event{None, Tilt, None, None}, got)
	assert.True(t, d.Snapshot().Tilted)
}

func TestTiltCooldown(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		accel(0, 0, 9.8, 0),
		accel(8, 0, 9.8, 100),
		accel(0, 0, 9.8, 200),
		accel(8, 0, 9.8, 1600), // latch cleared but cooldown not over
		accel(8, 0, 9.8, 1601),
	)

	assert.Equal(t, []Event{None, Tilt, None, None, Tilt}, got)
}

func TestTiltUsesLargerAxis(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		accel(1, 2, 9.8, 0),
		accel(6, 9.5, 9.8, 100), // dx=5, dy=7.5
	)

	assert.Equal(t, []Event{None, Tilt}, got)
}

func TestCircularDistance(t *testing.T) {
	tests := []struct {
		a, b float64
		want float64
	}{
		{-170, 170, 20},
		{170, -170, 20},
		{0, 180, 180},
		{10, 55, 45},
		{-90, 90, 180},
		{179, -179, 2},
		{30, 30, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, CircularDistance(tt.a, tt.b), 1e-9, "CircularDistance(%v, %v)", tt.a, tt.b)
	}
}

func TestRotationAcrossWrap(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		heading(-170, 0),
		heading(170, 100), // 20° the short way round
	)

	assert.Equal(t, []Event{None, None}, got)
}

func TestRotationFiresAndRebaselines(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		heading(0, 0),
		heading(50, 100),
		heading(52, 2000), // near the new reference, cooldown over: re-baseline
		heading(90, 2100), // 38° from 52
		heading(100, 2200),
	)

	assert.Equal(t, []Event{None, Rotate, None, None, Rotate}, got)
	assert.InDelta(t, 100.0, d.Snapshot().ReferenceYaw, 1e-6)
}

func TestRotationSettlingProducesNoEvents(t *testing.T) {
	d := NewDetector(DefaultThresholds())
	require.Equal(t, []Event{None, Rotate}, feed(d, heading(0, 0), heading(60, 100)))

	// Drift within 10° of the (moving) reference for several seconds.
	yaw := 60.0
	for now := int64(200); now < 8000; now += 100 {
		yaw += 0.5
		assert.Equal(t, None, d.OnSample(heading(yaw, now)), "yaw %.1f at %d", yaw, now)
	}

	// A real departure fires again.
	assert.Equal(t, Rotate, d.OnSample(heading(yaw+46, 8100)))
}

func TestRotationNoRebaselineDuringCooldown(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	feed(d, heading(0, 0), heading(50, 100))
	assert.Equal(t, None, d.OnSample(heading(55, 500)))
	assert.InDelta(t, 50.0, d.Snapshot().ReferenceYaw, 1e-6, "reference must not move during cooldown")
}

func TestRotationCooldown(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		heading(0, 0),
		heading(50, 100),
		heading(100, 1000),
		heading(100, 1601),
	)

	assert.Equal(t, []Event{None, Rotate, None, Rotate}, got)
}

func TestRotationClearsTiltLatch(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	feed(d, accel(0, 0, 9.8, 0), heading(0, 0))
	require.Equal(t, Tilt, d.OnSample(accel(8, 0, 9.8, 100)))
	require.Equal(t, None, d.OnSample(accel(8, 0, 9.8, 2000)), "latched")

	require.Equal(t, Rotate, d.OnSample(heading(90, 2100)))
	assert.False(t, d.Snapshot().Tilted)

	assert.Equal(t, Tilt, d.OnSample(accel(8, 0, 9.8, 2200)))
}

func TestInterleavedStreamsAreIndependent(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		heading(0, 0),
		accel(0, 0, 9.8, 5),
		heading(2, 10),
		accel(0, 0, 35, 15),
		heading(60, 20),
		accel(8, 0, 9.8, 25), // shake cooling down, tilt never fired
	)

	assert.Equal(t, []Event{None, None, None, Shake, Rotate, Tilt}, got)
}

func TestResetCalibration(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	feed(d, accel(0, 0, 9.8, 0), heading(0, 0))
	require.Equal(t, Tilt, d.OnSample(accel(8, 0, 9.8, 100)))

	d.ResetCalibration()
	snap := d.Snapshot()
	assert.False(t, snap.AccelCalibrated)
	assert.False(t, snap.RotationCalibrated)
	assert.False(t, snap.Tilted)

	// The tilted pose becomes the new neutral, and a big yaw is just a baseline.
	got := feed(d,
		accel(8, 0, 9.8, 3000),
		heading(120, 3000),
		accel(8.5, 0, 9.8, 3100),
		heading(125, 3100),
	)
	assert.Equal(t, []Event{None, None, None, None}, got)
	// 5° from the new baseline with no rotation cooldown pending: re-baselined.
	assert.InDelta(t, 125.0, d.Snapshot().ReferenceYaw, 1e-6)
}

func TestResetKeepsCooldowns(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	feed(d, accel(0, 0, 9.8, 0))
	require.Equal(t, Shake, d.OnSample(accel(0, 0, 35, 100)))

	d.ResetCalibration()
	got := feed(d, accel(0, 0, 9.8, 200), accel(0, 0, 35, 300), accel(0, 0, 35, 1101))
	assert.Equal(t, []Event{None, None, Shake}, got)
}

func TestSourceRestartRearmsShake(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	got := feed(d,
		accel(0, 0, 9.8, 0),
		accel(0, 0, 35, 60000),
		// producer restarted: its clock starts over at zero
		accel(0, 0, 35, 0),
		accel(0, 0, 35, 5000),
		accel(0, 0, 35, 5500),
		accel(0, 0, 35, 10000),
	)

	want := []Event{None, Shake, None, Shake, None, Shake}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSourceRestartRecalibrates(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	feed(d, accel(0, 0, 9.8, 0), heading(0, 0))
	require.Equal(t, Tilt, d.OnSample(accel(8, 0, 9.8, 50000)))
	require.Equal(t, Rotate, d.OnSample(heading(90, 50000)))

	// Both streams restart; the first sample of each is the new baseline.
	assert.Equal(t, None, d.OnSample(accel(8, 0, 9.8, 10)))
	assert.Equal(t, None, d.OnSample(heading(170, 10)))

	snap := d.Snapshot()
	assert.True(t, snap.AccelCalibrated)
	assert.Equal(t, 8.0, snap.NeutralX)
	assert.False(t, snap.Tilted)
	assert.InDelta(t, 170.0, snap.ReferenceYaw, 1e-6)

	// Cooldowns from the previous run no longer apply.
	assert.Equal(t, Tilt, d.OnSample(accel(0, 0, 9.8, 20)))
	assert.Equal(t, Rotate, d.OnSample(heading(100, 20)))
}

func TestMalformedSamplesAreIgnored(t *testing.T) {
	d := NewDetector(DefaultThresholds())

	bad := []sensor.Sample{
		{},
		{Kind: sensor.Accelerometer},
		{Kind: sensor.Accelerometer, Values: []float64{1, 2}},
		{Kind: sensor.Accelerometer, Values: []float64{math.NaN(), 0, 9.8}},
		{Kind: sensor.RotationVector, Values: []float64{0, math.Inf(1), 0}},
		{Kind: sensor.Kind(42), Values: []float64{1, 2, 3}},
	}
	for _, s := range bad {
		assert.Equal(t, None, d.OnSample(s))
	}

	snap := d.Snapshot()
	assert.False(t, snap.AccelCalibrated, "malformed samples must not calibrate")
	assert.False(t, snap.RotationCalibrated)
}

func TestCooldownMonotonicity(t *testing.T) {
	th := DefaultThresholds()
	d := NewDetector(th)
	rng := rand.New(rand.NewSource(7))

	cooldown := map[Event]int64{
		Shake:  th.ShakeCooldown.Milliseconds(),
		Tilt:   th.TiltCooldown.Milliseconds(),
		Rotate: th.RotationCooldown.Milliseconds(),
	}
	last := map[Event]int64{}

	now := int64(0)
	for i := 0; i < 20000; i++ {
		now += int64(rng.Intn(40))
		var s sensor.Sample
		if rng.Intn(3) == 0 {
			s = heading(rng.Float64()*360-180, now)
		} else {
			s = accel(rng.NormFloat64()*10, rng.NormFloat64()*10, 9.8+rng.NormFloat64()*10, now)
		}

		ev := d.OnSample(s)
		if ev == None {
			continue
		}
		if prev, ok := last[ev]; ok {
			require.Greater(t, now-prev, cooldown[ev], "%s fired at %d and %d", ev, prev, now)
		}
		last[ev] = now
	}
	assert.Len(t, last, 3, "the random walk should exercise every family")
}
